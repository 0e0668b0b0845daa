package protocol

import "errors"

// Error kinds reported while preparing a report. Every failure returned by this
// module wraps exactly one of these.
var (
	// ErrInvalidParameter covers numeric conversion and range failures,
	// malformed measurements, and inconsistent scheme parameters.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDecode covers malformed task IDs and HPKE config lists.
	ErrDecode = errors.New("message decoding failed")

	// ErrMissingConfigs is returned when an aggregator offers no HPKE configs.
	ErrMissingConfigs = errors.New("aggregator provided empty HPKE config list")

	// ErrUnsupportedConfig is returned when none of an aggregator's HPKE
	// configs uses a supported set of algorithms.
	ErrUnsupportedConfig = errors.New("no supported HPKE config")

	// ErrVdaf covers VDAF construction and sharding failures.
	ErrVdaf = errors.New("VDAF error")

	// ErrEncryption covers failures to encode or seal an input share.
	ErrEncryption = errors.New("encryption failed")

	// ErrEncodeOverflow is returned when a length does not fit its prefix.
	ErrEncodeOverflow = errors.New("message encoding failed")

	// ErrRandomness is returned when the random source fails while drawing
	// a report ID.
	ErrRandomness = errors.New("random source failed")
)
