// Package common provides shared utilities for the CLI commands.
//
//   - YAML configuration with command-line overrides
//   - slog logger construction
//   - Measurement parsing and HPKE algorithm names
package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/divviup/divviup-android/crypto"
	"github.com/divviup/divviup-android/protocol"
)

// NewLogger builds a text or JSON slog logger writing to w.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: l}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// ReadConfigList reads an encoded HpkeConfigList from a file.
func ReadConfigList(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read HPKE config list: %w", err)
	}
	return data, nil
}

// ParseIntList parses comma-separated integers, as used for SumVec
// measurements.
func ParseIntList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return []int64{}, nil
	}
	fields := strings.Split(s, ",")
	out := make([]int64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", protocol.ErrInvalidParameter, i, err)
		}
		out[i] = v
	}
	return out, nil
}

var kemNames = map[string]protocol.HpkeKemID{
	"p256":   crypto.KemP256HkdfSha256,
	"x25519": crypto.KemX25519HkdfSha256,
}

var kdfNames = map[string]protocol.HpkeKdfID{
	"sha256": crypto.KdfHkdfSha256,
	"sha384": crypto.KdfHkdfSha384,
	"sha512": crypto.KdfHkdfSha512,
}

var aeadNames = map[string]protocol.HpkeAeadID{
	"aes128gcm":        crypto.AeadAes128Gcm,
	"aes256gcm":        crypto.AeadAes256Gcm,
	"chacha20poly1305": crypto.AeadChaCha20Poly1305,
}

// ParseAlgorithms maps KEM, KDF and AEAD names to their identifiers.
func ParseAlgorithms(kem, kdf, aead string) (protocol.HpkeKemID, protocol.HpkeKdfID, protocol.HpkeAeadID, error) {
	kemID, ok := kemNames[strings.ToLower(kem)]
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: %q", crypto.ErrUnsupportedKEM, kem)
	}
	kdfID, ok := kdfNames[strings.ToLower(kdf)]
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: %q", crypto.ErrUnsupportedKDF, kdf)
	}
	aeadID, ok := aeadNames[strings.ToLower(aead)]
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: %q", crypto.ErrUnsupportedAEAD, aead)
	}
	return kemID, kdfID, aeadID, nil
}
