package crypto

import (
	"errors"
	"fmt"

	"github.com/cloudflare/circl/hpke"
	"github.com/divviup/divviup-android/protocol"
)

// Supported HPKE algorithms.
const (
	KemP256HkdfSha256   protocol.HpkeKemID = 0x0010
	KemX25519HkdfSha256 protocol.HpkeKemID = 0x0020

	KdfHkdfSha256 protocol.HpkeKdfID = 0x0001
	KdfHkdfSha384 protocol.HpkeKdfID = 0x0002
	KdfHkdfSha512 protocol.HpkeKdfID = 0x0003

	AeadAes128Gcm        protocol.HpkeAeadID = 0x0001
	AeadAes256Gcm        protocol.HpkeAeadID = 0x0002
	AeadChaCha20Poly1305 protocol.HpkeAeadID = 0x0003
)

// Reasons a config is unsupported. They are wrapped together with
// protocol.ErrUnsupportedConfig when a whole list is rejected.
var (
	ErrUnsupportedKEM  = errors.New("unsupported HPKE KEM")
	ErrUnsupportedKDF  = errors.New("unsupported HPKE KDF")
	ErrUnsupportedAEAD = errors.New("unsupported HPKE AEAD")
)

// IsConfigSupported reports whether c uses a supported algorithm triple. The
// KEM is checked first, then the KDF, then the AEAD. The public key is not
// inspected here; a malformed key fails when sealing.
func IsConfigSupported(c *protocol.HpkeConfig) error {
	switch c.KEM {
	case KemP256HkdfSha256, KemX25519HkdfSha256:
	default:
		return fmt.Errorf("%w: %#04x", ErrUnsupportedKEM, uint16(c.KEM))
	}

	switch c.KDF {
	case KdfHkdfSha256, KdfHkdfSha384, KdfHkdfSha512:
	default:
		return fmt.Errorf("%w: %#04x", ErrUnsupportedKDF, uint16(c.KDF))
	}

	switch c.AEAD {
	case AeadAes128Gcm, AeadAes256Gcm, AeadChaCha20Poly1305:
	default:
		return fmt.Errorf("%w: %#04x", ErrUnsupportedAEAD, uint16(c.AEAD))
	}

	return nil
}

// suiteFor maps a supported config onto circl's identifiers. circl uses the
// IANA code points, so the conversion is direct once the triple is known to be
// supported.
func suiteFor(c *protocol.HpkeConfig) (hpke.KEM, hpke.Suite, error) {
	if err := IsConfigSupported(c); err != nil {
		return 0, hpke.Suite{}, err
	}
	kem := hpke.KEM(c.KEM)
	return kem, hpke.NewSuite(kem, hpke.KDF(c.KDF), hpke.AEAD(c.AEAD)), nil
}
