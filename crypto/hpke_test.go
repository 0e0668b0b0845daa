package crypto

import (
	"bytes"
	"testing"

	"github.com/divviup/divviup-android/protocol"
	"github.com/stretchr/testify/require"
)

func TestApplicationInfo(t *testing.T) {
	info := ApplicationInfo(InputShareLabel, protocol.RoleClient, protocol.RoleHelper)
	require.Equal(t, append([]byte("dap-09 input share"), 1, 3), info)
	require.NotEqual(t, info, ApplicationInfo(InputShareLabel, protocol.RoleClient, protocol.RoleLeader))
}

func TestSealOpen(t *testing.T) {
	plaintext := []byte("input share")
	aad := []byte("associated data")
	info := ApplicationInfo(InputShareLabel, protocol.RoleClient, protocol.RoleLeader)

	for _, kem := range []protocol.HpkeKemID{KemP256HkdfSha256, KemX25519HkdfSha256} {
		for _, aead := range []protocol.HpkeAeadID{AeadAes128Gcm, AeadAes256Gcm, AeadChaCha20Poly1305} {
			keypair, err := GenerateHpkeKeypair(9, kem, KdfHkdfSha256, aead)
			require.NoError(t, err)

			ciphertext, err := (&HPKE{}).Seal(&keypair.Config, info, plaintext, aad)
			require.NoError(t, err)
			require.Equal(t, protocol.HpkeConfigID(9), ciphertext.ConfigID)
			require.NotEmpty(t, ciphertext.EncapsulatedKey)
			require.False(t, bytes.Contains(ciphertext.Payload, plaintext))

			opened, err := Open(keypair, info, ciphertext, aad)
			require.NoError(t, err)
			require.Equal(t, plaintext, opened)
		}
	}
}

func TestOpenRejectsWrongContext(t *testing.T) {
	keypair, err := GenerateHpkeKeypair(1, KemX25519HkdfSha256, KdfHkdfSha256, AeadAes128Gcm)
	require.NoError(t, err)
	other, err := GenerateHpkeKeypair(1, KemX25519HkdfSha256, KdfHkdfSha256, AeadAes128Gcm)
	require.NoError(t, err)

	info := ApplicationInfo(InputShareLabel, protocol.RoleClient, protocol.RoleLeader)
	aad := []byte("aad")
	ciphertext, err := (&HPKE{}).Seal(&keypair.Config, info, []byte("secret"), aad)
	require.NoError(t, err)

	_, err = Open(keypair, info, ciphertext, []byte("other aad"))
	require.Error(t, err, "wrong aad")

	_, err = Open(keypair, ApplicationInfo(InputShareLabel, protocol.RoleClient, protocol.RoleHelper), ciphertext, aad)
	require.Error(t, err, "wrong receiver role")

	_, err = Open(other, info, ciphertext, aad)
	require.Error(t, err, "wrong private key")

	mismatched := *ciphertext
	mismatched.ConfigID = 2
	_, err = Open(keypair, info, &mismatched, aad)
	require.Error(t, err, "wrong config id")
}

func TestSealFreshness(t *testing.T) {
	keypair, err := GenerateHpkeKeypair(1, KemX25519HkdfSha256, KdfHkdfSha256, AeadAes128Gcm)
	require.NoError(t, err)

	first, err := (&HPKE{}).Seal(&keypair.Config, nil, []byte("same"), nil)
	require.NoError(t, err)
	second, err := (&HPKE{}).Seal(&keypair.Config, nil, []byte("same"), nil)
	require.NoError(t, err)

	require.NotEqual(t, first.EncapsulatedKey, second.EncapsulatedKey)
	require.NotEqual(t, first.Payload, second.Payload)
}

func TestSealErrors(t *testing.T) {
	malformed := protocol.HpkeConfig{ID: 1, KEM: KemX25519HkdfSha256, KDF: KdfHkdfSha256, AEAD: AeadAes128Gcm, PublicKey: []byte{1, 2, 3}}
	_, err := (&HPKE{}).Seal(&malformed, nil, []byte("pt"), nil)
	require.Error(t, err)

	unsupported := malformed
	unsupported.KEM = 0x0012
	_, err = (&HPKE{}).Seal(&unsupported, nil, []byte("pt"), nil)
	require.ErrorIs(t, err, ErrUnsupportedKEM)
}

func TestGenerateHpkeKeypairUnsupported(t *testing.T) {
	_, err := GenerateHpkeKeypair(1, KemX25519HkdfSha256, KdfHkdfSha256, 0x0004)
	require.ErrorIs(t, err, ErrUnsupportedAEAD)
}
