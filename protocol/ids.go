package protocol

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/cryptobyte"
)

const (
	// TaskIDSize is the length of a task identifier in bytes.
	TaskIDSize = 32

	// ReportIDSize is the length of a report identifier in bytes.
	ReportIDSize = 16
)

// TaskID identifies a DAP task. Its text form is unpadded URL-safe base64.
type TaskID [TaskIDSize]byte

// TaskIDFromBytes copies a raw task identifier. b must be exactly TaskIDSize
// bytes long.
func TaskIDFromBytes(b []byte) (TaskID, error) {
	var id TaskID
	if len(b) != TaskIDSize {
		return id, fmt.Errorf("%w: task ID must be %d bytes, got %d", ErrDecode, TaskIDSize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ParseTaskID decodes the unpadded URL-safe base64 form of a task identifier.
func ParseTaskID(s string) (TaskID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return TaskID{}, fmt.Errorf("%w: task ID is not unpadded base64url: %v", ErrDecode, err)
	}
	return TaskIDFromBytes(raw)
}

func (id TaskID) String() string {
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// MarshalText implements encoding.TextMarshaler.
func (id TaskID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *TaskID) UnmarshalText(text []byte) error {
	parsed, err := ParseTaskID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id TaskID) Marshal(b *cryptobyte.Builder) {
	b.AddBytes(id[:])
}

func (id *TaskID) Unmarshal(s *cryptobyte.String) bool {
	return s.CopyBytes(id[:])
}

// ReportID identifies a single report. A fresh one is drawn for every report.
type ReportID [ReportIDSize]byte

// NewReportID reads a report identifier from r, which must be a
// cryptographically secure source safe for concurrent use.
func NewReportID(r io.Reader) (ReportID, error) {
	var id ReportID
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return id, fmt.Errorf("%w: generate report ID: %w", ErrRandomness, err)
	}
	return id, nil
}

func (id ReportID) String() string {
	return hex.EncodeToString(id[:])
}

func (id ReportID) Marshal(b *cryptobyte.Builder) {
	b.AddBytes(id[:])
}

func (id *ReportID) Unmarshal(s *cryptobyte.String) bool {
	return s.CopyBytes(id[:])
}

// Time is a number of seconds since the UNIX epoch.
type Time uint64

// Duration is a number of seconds.
type Duration uint64

// TimeFromUnix converts a signed timestamp supplied by a caller. The timestamp
// should already be rounded down to the task's time precision.
func TimeFromUnix(seconds int64) (Time, error) {
	if seconds < 0 {
		return 0, fmt.Errorf("%w: timestamp %d is before the UNIX epoch", ErrInvalidParameter, seconds)
	}
	return Time(seconds), nil
}

// RoundDown truncates t to a multiple of precision. A zero precision leaves t
// unchanged.
func (t Time) RoundDown(precision Duration) Time {
	if precision == 0 {
		return t
	}
	return t - t%Time(precision)
}

func (t Time) Marshal(b *cryptobyte.Builder) {
	b.AddUint64(uint64(t))
}

func (t *Time) Unmarshal(s *cryptobyte.String) bool {
	return s.ReadUint64((*uint64)(t))
}
