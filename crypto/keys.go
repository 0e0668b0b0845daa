package crypto

import (
	"fmt"

	"github.com/cloudflare/circl/hpke"
	"github.com/divviup/divviup-android/protocol"
)

// HpkeKeypair is an aggregator's HPKE config together with its private key.
type HpkeKeypair struct {
	Config     protocol.HpkeConfig
	PrivateKey []byte
}

// GenerateHpkeKeypair creates a keypair for a supported algorithm triple.
func GenerateHpkeKeypair(id protocol.HpkeConfigID, kemID protocol.HpkeKemID, kdfID protocol.HpkeKdfID, aeadID protocol.HpkeAeadID) (*HpkeKeypair, error) {
	config := protocol.HpkeConfig{ID: id, KEM: kemID, KDF: kdfID, AEAD: aeadID}
	if err := IsConfigSupported(&config); err != nil {
		return nil, err
	}

	publicKey, privateKey, err := hpke.KEM(kemID).Scheme().GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate HPKE keypair: %w", err)
	}

	config.PublicKey, err = publicKey.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}

	privateKeyBytes, err := privateKey.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal private key: %w", err)
	}

	return &HpkeKeypair{Config: config, PrivateKey: privateKeyBytes}, nil
}
