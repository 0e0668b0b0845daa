package testutil

import (
	"testing"

	"github.com/divviup/divviup-android/crypto"
	"github.com/divviup/divviup-android/protocol"
	"github.com/stretchr/testify/require"
)

// TaskID is an arbitrary fixed task identifier.
var TaskID = protocol.TaskID{
	0x3a, 0x5f, 0x24, 0x91, 0x0c, 0x77, 0xd2, 0x18,
	0x6e, 0xa1, 0x4b, 0x09, 0xf3, 0x52, 0x8d, 0xc6,
	0x11, 0x2e, 0x9a, 0x64, 0xb7, 0x05, 0xe8, 0x3c,
	0x40, 0xfd, 0x86, 0x2b, 0x71, 0xce, 0x9f, 0x13,
}

// NewHpkeKeypair generates a keypair with the given config ID and KEM, using
// HKDF-SHA256 and AES-128-GCM.
func NewHpkeKeypair(t testing.TB, id protocol.HpkeConfigID, kem protocol.HpkeKemID) *crypto.HpkeKeypair {
	t.Helper()
	keypair, err := crypto.GenerateHpkeKeypair(id, kem, crypto.KdfHkdfSha256, crypto.AeadAes128Gcm)
	require.NoError(t, err)
	return keypair
}

// EncodeConfigList encodes configs as an HpkeConfigList.
func EncodeConfigList(t testing.TB, configs ...protocol.HpkeConfig) []byte {
	t.Helper()
	encoded, err := protocol.SerializeMessage(protocol.HpkeConfigList(configs))
	require.NoError(t, err)
	return encoded
}

// UnsupportedConfig returns a config with an unassigned KEM.
func UnsupportedConfig(id protocol.HpkeConfigID) protocol.HpkeConfig {
	return protocol.HpkeConfig{
		ID:        id,
		KEM:       0x0012, // DHKEM(P-521, HKDF-SHA512)
		KDF:       crypto.KdfHkdfSha256,
		AEAD:      crypto.AeadAes128Gcm,
		PublicKey: []byte{0x04, 0x01, 0x02},
	}
}

// Aggregators holds keypairs for a leader and a helper along with their
// encoded config lists.
type Aggregators struct {
	Leader        *crypto.HpkeKeypair
	Helper        *crypto.HpkeKeypair
	LeaderConfigs []byte
	HelperConfigs []byte
}

// NewAggregators creates a leader with an X25519 config and a helper with a
// P-256 config.
func NewAggregators(t testing.TB) *Aggregators {
	t.Helper()
	leader := NewHpkeKeypair(t, 1, crypto.KemX25519HkdfSha256)
	helper := NewHpkeKeypair(t, 2, crypto.KemP256HkdfSha256)
	return &Aggregators{
		Leader:        leader,
		Helper:        helper,
		LeaderConfigs: EncodeConfigList(t, leader.Config),
		HelperConfigs: EncodeConfigList(t, helper.Config),
	}
}

// SequenceReader yields 0, 1, 2, ... wrapping at 255. Each reader is
// deterministic, which makes report IDs predictable.
type SequenceReader struct {
	next byte
}

func (r *SequenceReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}
	return len(p), nil
}
