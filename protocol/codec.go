package protocol

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"
)

// Message is implemented by every wire entity.
type Message interface {
	Marshal(b *cryptobyte.Builder)
}

type unmarshaler[T any] interface {
	*T
	Unmarshal(s *cryptobyte.String) bool
}

// SerializeMessage encodes msg. A byte string or list too long for its length
// prefix yields ErrEncodeOverflow.
func SerializeMessage(msg Message) ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	msg.Marshal(b)
	out, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %T: %v", ErrEncodeOverflow, msg, err)
	}
	return out, nil
}

// UnmarshalMessage decodes a T from data, which must contain exactly one
// encoded message and nothing else.
func UnmarshalMessage[T any, P unmarshaler[T]](data []byte) (*T, error) {
	var msg T
	s := cryptobyte.String(data)
	if !P(&msg).Unmarshal(&s) {
		return nil, fmt.Errorf("%w: malformed %T", ErrDecode, msg)
	}
	if !s.Empty() {
		return nil, fmt.Errorf("%w: %d trailing bytes after %T", ErrDecode, len(s), msg)
	}
	return &msg, nil
}

func copyString(s cryptobyte.String) []byte {
	out := make([]byte, len(s))
	copy(out, s)
	return out
}

// readUint32LengthPrefixed reads a uint32 length prefix and that many bytes
// into out. cryptobyte.String has no 32-bit length-prefixed reader.
func readUint32LengthPrefixed(s *cryptobyte.String, out *cryptobyte.String) bool {
	var n uint32
	var v []byte
	if !s.ReadUint32(&n) || !s.ReadBytes(&v, int(n)) {
		return false
	}
	*out = v
	return true
}
