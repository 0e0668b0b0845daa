// Package protocol defines the Distributed Aggregation Protocol (DAP) messages
// exchanged between a client and the two aggregators of a task, together with
// their fixed binary encoding.
//
// # Wire Encoding
//
// Every message is encoded in the TLS presentation language used by DAP.
// Integers are big-endian and variable-length fields carry a length prefix
// counted in bytes. The encoding is a contract
// with independently implemented aggregators, so each prefix width below is
// fixed:
//
//	HpkeConfig          id u8 | kem u16 | kdf u16 | aead u16 | public_key<1..2^16-1>
//	HpkeConfigList      HpkeConfig configs<0..2^16-1>
//	ReportMetadata      report_id[16] | time u64
//	HpkeCiphertext      config_id u8 | enc<0..2^16-1> | payload<0..2^32-1>
//	Extension           type u16 | data<0..2^16-1>
//	PlaintextInputShare Extension extensions<0..2^16-1> | payload<0..2^32-1>
//	InputShareAad       task_id[32] | ReportMetadata | public_share<0..2^32-1>
//	Report              ReportMetadata | public_share<0..2^32-1> | leader HpkeCiphertext | helper HpkeCiphertext
//
// Messages implement Marshal against a cryptobyte.Builder and Unmarshal against
// a cryptobyte.String. SerializeMessage and UnmarshalMessage wrap them for whole
// buffers; decoding copies every byte string out of the input, so callers may
// reuse their buffers once a call returns.
//
// # Errors
//
// Failures are classified by the sentinel errors in errors.go and are matched
// with errors.Is.
package protocol
