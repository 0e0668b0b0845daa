package testutil

import (
	"fmt"

	"github.com/divviup/divviup-android/crypto"
	"github.com/divviup/divviup-android/protocol"
)

// OpenedReport is a decoded report with both input shares decrypted.
type OpenedReport struct {
	Report      *protocol.Report
	LeaderShare *protocol.PlaintextInputShare
	HelperShare *protocol.PlaintextInputShare
}

// DecryptReport decodes an encoded report and opens each input share the way
// the receiving aggregator would.
func DecryptReport(encoded []byte, taskID protocol.TaskID, leader, helper *crypto.HpkeKeypair) (*OpenedReport, error) {
	report, err := protocol.UnmarshalMessage[protocol.Report](encoded)
	if err != nil {
		return nil, err
	}

	aad, err := protocol.SerializeMessage(protocol.InputShareAad{
		TaskID:      taskID,
		Metadata:    report.Metadata,
		PublicShare: report.PublicShare,
	})
	if err != nil {
		return nil, err
	}

	leaderShare, err := openShare(leader, protocol.RoleLeader, &report.LeaderEncryptedInputShare, aad)
	if err != nil {
		return nil, err
	}
	helperShare, err := openShare(helper, protocol.RoleHelper, &report.HelperEncryptedInputShare, aad)
	if err != nil {
		return nil, err
	}

	return &OpenedReport{Report: report, LeaderShare: leaderShare, HelperShare: helperShare}, nil
}

func openShare(keypair *crypto.HpkeKeypair, role protocol.Role, ciphertext *protocol.HpkeCiphertext, aad []byte) (*protocol.PlaintextInputShare, error) {
	info := crypto.ApplicationInfo(crypto.InputShareLabel, protocol.RoleClient, role)
	plaintext, err := crypto.Open(keypair, info, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("open %s share: %w", role, err)
	}
	return protocol.UnmarshalMessage[protocol.PlaintextInputShare](plaintext)
}
