package vdaf

import (
	"crypto/rand"
	"encoding"
	"fmt"
	"io"
	"math"

	"github.com/cloudflare/circl/vdaf/prio3/count"
	"github.com/cloudflare/circl/vdaf/prio3/histogram"
	"github.com/cloudflare/circl/vdaf/prio3/sum"
	"github.com/cloudflare/circl/vdaf/prio3/sumvec"
	"github.com/divviup/divviup-android/protocol"
)

// Shares are produced with an empty application context (VDAF-13).
var applicationContext []byte

// Prio3Count shards boolean measurements.
type Prio3Count struct {
	vdaf *count.Count

	// Rand is the source of sharding randomness. Defaults to crypto/rand.Reader.
	Rand io.Reader
}

func NewPrio3Count() (*Prio3Count, error) {
	v, err := count.New(protocol.NumAggregators, applicationContext)
	if err != nil {
		return nil, fmt.Errorf("%w: Prio3Count: %w", protocol.ErrVdaf, err)
	}
	return &Prio3Count{vdaf: v}, nil
}

func (c *Prio3Count) Shard(measurement bool, reportID protocol.ReportID) (*Shares, error) {
	params := c.vdaf.Params()
	seed := make([]byte, params.RandSize())
	if err := readSeed(c.Rand, seed); err != nil {
		return nil, err
	}

	var nonce count.Nonce
	copy(nonce[:], reportID[:])
	publicShare, inputShares, err := c.vdaf.Shard(measurement, &nonce, seed)
	return encodeShares(&publicShare, inputShares, err)
}

// Prio3Sum shards integers in [0, 2^bits).
type Prio3Sum struct {
	vdaf *sum.Sum
	bits uint

	// Rand is the source of sharding randomness. Defaults to crypto/rand.Reader.
	Rand io.Reader
}

func NewPrio3Sum(bits int64) (*Prio3Sum, error) {
	width, err := toUint("bits", bits)
	if err != nil {
		return nil, err
	}
	if width == 0 || width > 64 {
		return nil, fmt.Errorf("%w: Prio3Sum: bit width %d out of range [1, 64]", protocol.ErrVdaf, width)
	}

	maxMeasurement := uint64(math.MaxUint64)
	if width < 64 {
		maxMeasurement = 1<<width - 1
	}
	v, err := sum.New(protocol.NumAggregators, maxMeasurement, applicationContext)
	if err != nil {
		return nil, fmt.Errorf("%w: Prio3Sum: %w", protocol.ErrVdaf, err)
	}
	return &Prio3Sum{vdaf: v, bits: width}, nil
}

func (s *Prio3Sum) Shard(measurement int64, reportID protocol.ReportID) (*Shares, error) {
	m, err := toUint64("measurement", measurement)
	if err != nil {
		return nil, err
	}
	if err := checkBits("measurement", m, s.bits); err != nil {
		return nil, err
	}

	params := s.vdaf.Params()
	seed := make([]byte, params.RandSize())
	if err := readSeed(s.Rand, seed); err != nil {
		return nil, err
	}

	var nonce sum.Nonce
	copy(nonce[:], reportID[:])
	publicShare, inputShares, err := s.vdaf.Shard(m, &nonce, seed)
	return encodeShares(&publicShare, inputShares, err)
}

// Prio3SumVec shards fixed-length vectors of integers in [0, 2^bits).
type Prio3SumVec struct {
	vdaf   *sumvec.SumVec
	length uint
	bits   uint

	// Rand is the source of sharding randomness. Defaults to crypto/rand.Reader.
	Rand io.Reader
}

func NewPrio3SumVec(length, bits, chunkLength int64) (*Prio3SumVec, error) {
	l, err := toUint("length", length)
	if err != nil {
		return nil, err
	}
	b, err := toUint("bits", bits)
	if err != nil {
		return nil, err
	}
	chunk, err := toUint("chunk length", chunkLength)
	if err != nil {
		return nil, err
	}
	if l == 0 || b == 0 || chunk == 0 {
		return nil, fmt.Errorf("%w: Prio3SumVec: length %d, bits %d, chunk length %d must all be positive", protocol.ErrVdaf, l, b, chunk)
	}

	v, err := sumvec.New(protocol.NumAggregators, l, b, chunk, applicationContext)
	if err != nil {
		return nil, fmt.Errorf("%w: Prio3SumVec: %w", protocol.ErrVdaf, err)
	}
	return &Prio3SumVec{vdaf: v, length: l, bits: b}, nil
}

func (s *Prio3SumVec) Shard(measurement []int64, reportID protocol.ReportID) (*Shares, error) {
	if uint(len(measurement)) != s.length {
		return nil, fmt.Errorf("%w: measurement has %d elements, want %d", protocol.ErrInvalidParameter, len(measurement), s.length)
	}
	m := make([]uint64, len(measurement))
	for i, e := range measurement {
		name := fmt.Sprintf("measurement[%d]", i)
		u, err := toUint64(name, e)
		if err != nil {
			return nil, err
		}
		if err := checkBits(name, u, s.bits); err != nil {
			return nil, err
		}
		m[i] = u
	}

	params := s.vdaf.Params()
	seed := make([]byte, params.RandSize())
	if err := readSeed(s.Rand, seed); err != nil {
		return nil, err
	}

	var nonce sumvec.Nonce
	copy(nonce[:], reportID[:])
	publicShare, inputShares, err := s.vdaf.Shard(m, &nonce, seed)
	return encodeShares(&publicShare, inputShares, err)
}

// Prio3Histogram shards bucket indices in [0, length).
type Prio3Histogram struct {
	vdaf   *histogram.Histogram
	length uint

	// Rand is the source of sharding randomness. Defaults to crypto/rand.Reader.
	Rand io.Reader
}

func NewPrio3Histogram(length, chunkLength int64) (*Prio3Histogram, error) {
	l, err := toUint("length", length)
	if err != nil {
		return nil, err
	}
	chunk, err := toUint("chunk length", chunkLength)
	if err != nil {
		return nil, err
	}
	if l == 0 || chunk == 0 {
		return nil, fmt.Errorf("%w: Prio3Histogram: length %d, chunk length %d must be positive", protocol.ErrVdaf, l, chunk)
	}

	v, err := histogram.New(protocol.NumAggregators, l, chunk, applicationContext)
	if err != nil {
		return nil, fmt.Errorf("%w: Prio3Histogram: %w", protocol.ErrVdaf, err)
	}
	return &Prio3Histogram{vdaf: v, length: l}, nil
}

func (h *Prio3Histogram) Shard(measurement int64, reportID protocol.ReportID) (*Shares, error) {
	bucket, err := toUint64("bucket", measurement)
	if err != nil {
		return nil, err
	}
	if bucket >= uint64(h.length) {
		return nil, fmt.Errorf("%w: bucket %d out of range for %d buckets", protocol.ErrInvalidParameter, bucket, h.length)
	}

	params := h.vdaf.Params()
	seed := make([]byte, params.RandSize())
	if err := readSeed(h.Rand, seed); err != nil {
		return nil, err
	}

	var nonce histogram.Nonce
	copy(nonce[:], reportID[:])
	publicShare, inputShares, err := h.vdaf.Shard(bucket, &nonce, seed)
	return encodeShares(&publicShare, inputShares, err)
}

func readSeed(r io.Reader, seed []byte) error {
	if r == nil {
		r = rand.Reader
	}
	if _, err := io.ReadFull(r, seed); err != nil {
		return fmt.Errorf("%w: read sharding randomness: %w", protocol.ErrVdaf, err)
	}
	return nil
}

// encodeShares takes the results of a Prio3 Shard call and encodes them.
func encodeShares[P any, I any](publicShare P, inputShares []I, shardErr error) (*Shares, error) {
	if shardErr != nil {
		return nil, fmt.Errorf("%w: shard: %w", protocol.ErrVdaf, shardErr)
	}
	if len(inputShares) != protocol.NumAggregators {
		return nil, fmt.Errorf("%w: got %d input shares, want %d", protocol.ErrVdaf, len(inputShares), protocol.NumAggregators)
	}

	var shares Shares
	var err error
	if shares.PublicShare, err = marshalBinary(publicShare); err != nil {
		return nil, fmt.Errorf("%w: encode public share: %w", protocol.ErrVdaf, err)
	}
	for i := range inputShares {
		if shares.InputShares[i], err = marshalBinary(&inputShares[i]); err != nil {
			return nil, fmt.Errorf("%w: encode input share %d: %w", protocol.ErrVdaf, i, err)
		}
	}
	return &shares, nil
}

func marshalBinary(v any) ([]byte, error) {
	m, ok := v.(encoding.BinaryMarshaler)
	if !ok {
		return nil, fmt.Errorf("%T does not implement encoding.BinaryMarshaler", v)
	}
	out, err := m.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}
