// Package vdaf shards measurements with the Prio3 family of VDAFs.
//
// Every scheme is exposed as a Client: given a measurement of the scheme's
// type and the report ID, Shard returns one encoded public share and two
// encoded input shares, the first for the leader and the second for the
// helper. The report ID doubles as the VDAF nonce.
//
// Measurements and parameters arrive as signed 64-bit integers, the widest
// type host runtimes hand over. Negative values, values that do not fit the
// scheme's integer width, and measurements outside the range allowed by the
// parameters are rejected with protocol.ErrInvalidParameter before the VDAF
// is consulted. Parameter sets the VDAF itself refuses, and sharding failures,
// wrap protocol.ErrVdaf.
//
// # VDAF Version
//
// Sharding uses github.com/cloudflare/circl/vdaf/prio3, which implements
// draft-irtf-cfrg-vdaf-13 with an empty application context. Report framing
// follows DAP draft-09, but DAP-09 aggregators run VDAF-08: the XOF domain
// separation differs, so such aggregators decrypt these shares and then fail
// preparation. Interoperation needs aggregators on the same VDAF draft as
// circl.
package vdaf
