package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/divviup/divviup-android/protocol"
)

// InputShareLabel scopes the HPKE application info of input share ciphertexts.
const InputShareLabel = "dap-09 input share"

// ApplicationInfo builds the HPKE info string: the label followed by the
// sender's and the receiver's role.
func ApplicationInfo(label string, sender, receiver protocol.Role) []byte {
	info := make([]byte, 0, len(label)+2)
	info = append(info, label...)
	return append(info, byte(sender), byte(receiver))
}

// Sealer encrypts a plaintext toward the owner of an HPKE config.
type Sealer interface {
	Seal(config *protocol.HpkeConfig, info, plaintext, aad []byte) (*protocol.HpkeCiphertext, error)
}

// HPKE seals with single-shot HPKE in base mode.
type HPKE struct {
	// Rand is the source of ephemeral keys. Defaults to crypto/rand.Reader.
	Rand io.Reader
}

// Seal encapsulates a fresh key toward config's public key and encrypts
// plaintext bound to aad.
func (h *HPKE) Seal(config *protocol.HpkeConfig, info, plaintext, aad []byte) (*protocol.HpkeCiphertext, error) {
	kem, suite, err := suiteFor(config)
	if err != nil {
		return nil, err
	}

	publicKey, err := kem.Scheme().UnmarshalBinaryPublicKey(config.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("HPKE config %d: invalid public key: %w", config.ID, err)
	}

	sender, err := suite.NewSender(publicKey, info)
	if err != nil {
		return nil, fmt.Errorf("create HPKE sender: %w", err)
	}

	encapsulatedKey, sealer, err := sender.Setup(h.random())
	if err != nil {
		return nil, fmt.Errorf("HPKE setup: %w", err)
	}

	ciphertext, err := sealer.Seal(plaintext, aad)
	if err != nil {
		return nil, fmt.Errorf("HPKE seal: %w", err)
	}

	return &protocol.HpkeCiphertext{
		ConfigID:        config.ID,
		EncapsulatedKey: encapsulatedKey,
		Payload:         ciphertext,
	}, nil
}

func (h *HPKE) random() io.Reader {
	if h == nil || h.Rand == nil {
		return rand.Reader
	}
	return h.Rand
}

// Open decrypts a ciphertext sealed toward keypair's config. It is the
// aggregator-side counterpart of Seal and is used by tests and tooling.
func Open(keypair *HpkeKeypair, info []byte, ciphertext *protocol.HpkeCiphertext, aad []byte) ([]byte, error) {
	if ciphertext.ConfigID != keypair.Config.ID {
		return nil, fmt.Errorf("ciphertext is for HPKE config %d, keypair is for %d", ciphertext.ConfigID, keypair.Config.ID)
	}

	kem, suite, err := suiteFor(&keypair.Config)
	if err != nil {
		return nil, err
	}

	privateKey, err := kem.Scheme().UnmarshalBinaryPrivateKey(keypair.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	receiver, err := suite.NewReceiver(privateKey, info)
	if err != nil {
		return nil, fmt.Errorf("create HPKE receiver: %w", err)
	}

	opener, err := receiver.Setup(ciphertext.EncapsulatedKey)
	if err != nil {
		return nil, fmt.Errorf("HPKE setup: %w", err)
	}

	plaintext, err := opener.Open(ciphertext.Payload, aad)
	if err != nil {
		return nil, fmt.Errorf("HPKE open: %w", err)
	}
	return plaintext, nil
}
