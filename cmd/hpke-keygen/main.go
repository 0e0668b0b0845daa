// Command hpke-keygen generates an aggregator HPKE keypair for testing and
// local deployments.
//
// It writes the encoded single-entry HpkeConfigList, which dap-client reads,
// and a YAML file with the config and its private key.
//
// # Usage
//
//	go run ./cmd/hpke-keygen --id=1 --kem=x25519 --out=leader
//	# writes leader.hpke and leader.key.yaml
package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"os"

	"github.com/divviup/divviup-android/cmd/common"
	"github.com/divviup/divviup-android/crypto"
	"github.com/divviup/divviup-android/protocol"
	"gopkg.in/yaml.v3"
)

type keyFile struct {
	ConfigID   uint8  `yaml:"config_id"`
	KEM        uint16 `yaml:"kem_id"`
	KDF        uint16 `yaml:"kdf_id"`
	AEAD       uint16 `yaml:"aead_id"`
	PublicKey  string `yaml:"public_key"`
	PrivateKey string `yaml:"private_key"`
}

func main() {
	var (
		id   = flag.Uint("id", 1, "HPKE config ID (0-255)")
		kem  = flag.String("kem", "x25519", "KEM: x25519 or p256")
		kdf  = flag.String("kdf", "sha256", "KDF: sha256, sha384 or sha512")
		aead = flag.String("aead", "aes128gcm", "AEAD: aes128gcm, aes256gcm or chacha20poly1305")
		out  = flag.String("out", "aggregator", "Output file prefix")
	)
	flag.Parse()

	if *id > 255 {
		fmt.Fprintf(os.Stderr, "Config ID %d does not fit in one byte\n", *id)
		os.Exit(1)
	}

	kemID, kdfID, aeadID, err := common.ParseAlgorithms(*kem, *kdf, *aead)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	keypair, err := crypto.GenerateHpkeKeypair(protocol.HpkeConfigID(*id), kemID, kdfID, aeadID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Keygen error: %v\n", err)
		os.Exit(1)
	}

	if err := write(*out, keypair); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s.hpke and %s.key.yaml (config %d)\n", *out, *out, keypair.Config.ID)
}

func write(prefix string, keypair *crypto.HpkeKeypair) error {
	list, err := protocol.SerializeMessage(protocol.HpkeConfigList{keypair.Config})
	if err != nil {
		return err
	}
	if err := os.WriteFile(prefix+".hpke", list, 0o644); err != nil {
		return fmt.Errorf("write config list: %w", err)
	}

	key, err := yaml.Marshal(keyFile{
		ConfigID:   uint8(keypair.Config.ID),
		KEM:        uint16(keypair.Config.KEM),
		KDF:        uint16(keypair.Config.KDF),
		AEAD:       uint16(keypair.Config.AEAD),
		PublicKey:  base64.RawURLEncoding.EncodeToString(keypair.Config.PublicKey),
		PrivateKey: base64.RawURLEncoding.EncodeToString(keypair.PrivateKey),
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(prefix+".key.yaml", key, 0o600); err != nil {
		return fmt.Errorf("write key: %w", err)
	}
	return nil
}
