// Package crypto provides the public-key encryption used to protect input
// shares in transit to the aggregators.
//
// Input shares are sealed with HPKE (RFC 9180) in base mode. This package
// covers:
//
//   - The set of supported (KEM, KDF, AEAD) algorithm triples
//   - Selection of one usable config from an aggregator's config list
//   - The application info string that scopes a ciphertext to its recipient
//   - Sealing toward an aggregator's config, and opening with its private key
//   - HPKE keypair generation for tests and tooling
//
// The primitive itself comes from github.com/cloudflare/circl/hpke. Report
// assembly only sees the Sealer interface.
package crypto
