package vdaf

import (
	"fmt"
	"strings"

	"github.com/divviup/divviup-android/protocol"
)

// Shares is the output of sharding one measurement.
type Shares struct {
	PublicShare []byte
	// InputShares holds the leader's share at index 0 and the helper's at 1.
	InputShares [protocol.NumAggregators][]byte
}

// Client shards measurements of type M.
type Client[M any] interface {
	Shard(measurement M, reportID protocol.ReportID) (*Shares, error)
}

// Scheme selects a Prio3 variant.
type Scheme int

const (
	SchemeCount Scheme = iota + 1
	SchemeSum
	SchemeSumVec
	SchemeHistogram
)

var schemeNames = map[Scheme]string{
	SchemeCount:     "count",
	SchemeSum:       "sum",
	SchemeSumVec:    "sumvec",
	SchemeHistogram: "histogram",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// ParseScheme accepts a scheme name, ignoring case and an optional "prio3"
// prefix.
func ParseScheme(name string) (Scheme, error) {
	normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "prio3")
	for scheme, n := range schemeNames {
		if n == normalized {
			return scheme, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown VDAF scheme %q", protocol.ErrInvalidParameter, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Scheme) MarshalText() ([]byte, error) {
	if _, ok := schemeNames[s]; !ok {
		return nil, fmt.Errorf("%w: unknown VDAF scheme %d", protocol.ErrInvalidParameter, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scheme) UnmarshalText(text []byte) error {
	parsed, err := ParseScheme(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Params describes a VDAF instance as it appears in task configuration. Only
// the fields used by Scheme are meaningful.
type Params struct {
	Scheme      Scheme `yaml:"scheme"`
	Bits        int64  `yaml:"bits,omitempty"`
	Length      int64  `yaml:"length,omitempty"`
	ChunkLength int64  `yaml:"chunk_length,omitempty"`
}

// Validate reports whether the parameters needed by the scheme are present.
// It does not construct the VDAF, so parameter sets the VDAF refuses are only
// detected by the constructors.
func (p Params) Validate() error {
	switch p.Scheme {
	case SchemeCount:
		return nil
	case SchemeSum:
		return requirePositive("bits", p.Bits)
	case SchemeSumVec:
		if err := requirePositive("length", p.Length); err != nil {
			return err
		}
		if err := requirePositive("bits", p.Bits); err != nil {
			return err
		}
		return requirePositive("chunk_length", p.ChunkLength)
	case SchemeHistogram:
		if err := requirePositive("length", p.Length); err != nil {
			return err
		}
		return requirePositive("chunk_length", p.ChunkLength)
	default:
		return fmt.Errorf("%w: unknown VDAF scheme %d", protocol.ErrInvalidParameter, int(p.Scheme))
	}
}

func requirePositive(name string, v int64) error {
	if v <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", protocol.ErrInvalidParameter, name, v)
	}
	return nil
}
