/*
Package testutil provides fixtures for testing report preparation.

It covers the three collaborators a report touches:

# Aggregator keys

	leader := testutil.NewHpkeKeypair(t, 1, crypto.KemX25519HkdfSha256)
	configs := testutil.EncodeConfigList(t, leader.Config)

# Sharding

FakeCount is a Client for boolean measurements that splits the measurement
into two XOR shares. Its shares can be recombined with FakeCount.Reconstruct,
which lets tests check that the right share reached the right aggregator.

# Transport

MockLeader serves the DAP upload endpoint on an httptest server and records
every report it receives. DecryptReport opens both input shares of a report
with the aggregators' keypairs.

This package is intended for tests only.
*/
package testutil
