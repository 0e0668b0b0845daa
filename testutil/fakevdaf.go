package testutil

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/divviup/divviup-android/protocol"
	"github.com/divviup/divviup-android/vdaf"
)

// FakeCount shares a boolean as two bytes whose XOR is the measurement. The
// public share is the report ID followed by a marker byte, so tests can check
// the ID the share was bound to.
type FakeCount struct {
	// Rand defaults to crypto/rand.Reader.
	Rand io.Reader

	// Err, when set, is returned by Shard.
	Err error

	// Calls counts Shard invocations.
	Calls int
}

var _ vdaf.Client[bool] = (*FakeCount)(nil)

const fakePublicShareMarker = 0xfc

func (f *FakeCount) Shard(measurement bool, reportID protocol.ReportID) (*vdaf.Shares, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}

	r := f.Rand
	if r == nil {
		r = rand.Reader
	}
	var mask [1]byte
	if _, err := io.ReadFull(r, mask[:]); err != nil {
		return nil, err
	}

	var m byte
	if measurement {
		m = 1
	}
	publicShare := append(reportID[:], fakePublicShareMarker)
	return &vdaf.Shares{
		PublicShare: publicShare,
		InputShares: [protocol.NumAggregators][]byte{{mask[0]}, {mask[0] ^ m}},
	}, nil
}

// Reconstruct recombines a leader and a helper share produced by Shard.
func (*FakeCount) Reconstruct(leaderShare, helperShare []byte) (bool, error) {
	if len(leaderShare) != 1 || len(helperShare) != 1 {
		return false, errors.New("fake count shares are one byte long")
	}
	switch leaderShare[0] ^ helperShare[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("shares do not combine to a boolean: %#02x", leaderShare[0]^helperShare[0])
	}
}

// ReportIDFromPublicShare extracts the report ID embedded by Shard.
func ReportIDFromPublicShare(publicShare []byte) (protocol.ReportID, error) {
	var id protocol.ReportID
	if len(publicShare) != protocol.ReportIDSize+1 || publicShare[protocol.ReportIDSize] != fakePublicShareMarker {
		return id, errors.New("not a fake count public share")
	}
	copy(id[:], publicShare)
	return id, nil
}
