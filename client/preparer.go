package client

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"

	"github.com/divviup/divviup-android/crypto"
	"github.com/divviup/divviup-android/protocol"
	"github.com/divviup/divviup-android/vdaf"
)

// Options configures a ReportPreparer. The zero value is ready to use.
type Options struct {
	// Log receives debug entries about prepared reports. Defaults to
	// discarding.
	Log *slog.Logger

	// Rand is the source of report IDs. It must be cryptographically secure
	// and safe for concurrent use. Defaults to crypto/rand.Reader.
	Rand io.Reader

	// Sealer encrypts input shares. Defaults to HPKE.
	Sealer crypto.Sealer
}

// ReportPreparer turns measurements into encoded reports. It holds no
// per-report state and may be shared between goroutines.
type ReportPreparer struct {
	log    *slog.Logger
	rand   io.Reader
	sealer crypto.Sealer
}

func NewReportPreparer(opts Options) *ReportPreparer {
	p := &ReportPreparer{log: opts.Log, rand: opts.Rand, sealer: opts.Sealer}
	if p.log == nil {
		p.log = slog.New(slog.DiscardHandler)
	}
	if p.rand == nil {
		p.rand = rand.Reader
	}
	if p.sealer == nil {
		p.sealer = &crypto.HPKE{}
	}
	return p
}

// ReportInput is the task context of a report as handed over by the caller.
// The buffers are read during the call only.
type ReportInput struct {
	// TaskID is the raw 32-byte task identifier.
	TaskID []byte

	// LeaderHpkeConfigList and HelperHpkeConfigList are encoded
	// HpkeConfigList messages.
	LeaderHpkeConfigList []byte
	HelperHpkeConfigList []byte

	// Timestamp is in seconds since the UNIX epoch, already rounded down to
	// the task's time precision.
	Timestamp int64
}

// PrepareReport shards measurement with v and returns the encoded report.
func PrepareReport[M any](p *ReportPreparer, v vdaf.Client[M], in ReportInput, measurement M) ([]byte, error) {
	task, err := p.decodeTask(in)
	if err != nil {
		return nil, err
	}

	shares, err := v.Shard(measurement, task.metadata.ReportID)
	if err != nil {
		return nil, err
	}

	return p.assemble(task, shares)
}

// preparedTask carries everything decided before sharding.
type preparedTask struct {
	taskID       protocol.TaskID
	leaderConfig *protocol.HpkeConfig
	helperConfig *protocol.HpkeConfig
	metadata     protocol.ReportMetadata
}

func (p *ReportPreparer) decodeTask(in ReportInput) (*preparedTask, error) {
	taskID, err := protocol.TaskIDFromBytes(in.TaskID)
	if err != nil {
		return nil, err
	}

	leaderConfig, err := selectConfig(protocol.RoleLeader, in.LeaderHpkeConfigList)
	if err != nil {
		return nil, err
	}
	helperConfig, err := selectConfig(protocol.RoleHelper, in.HelperHpkeConfigList)
	if err != nil {
		return nil, err
	}

	reportID, err := protocol.NewReportID(p.rand)
	if err != nil {
		return nil, err
	}
	reportTime, err := protocol.TimeFromUnix(in.Timestamp)
	if err != nil {
		return nil, err
	}

	return &preparedTask{
		taskID:       taskID,
		leaderConfig: leaderConfig,
		helperConfig: helperConfig,
		metadata:     protocol.ReportMetadata{ReportID: reportID, Time: reportTime},
	}, nil
}

func selectConfig(role protocol.Role, encoded []byte) (*protocol.HpkeConfig, error) {
	list, err := protocol.UnmarshalMessage[protocol.HpkeConfigList](encoded)
	if err != nil {
		return nil, fmt.Errorf("%s HPKE config list: %w", role, err)
	}
	config, err := crypto.SelectConfig(*list)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", role, err)
	}
	return config, nil
}

func (p *ReportPreparer) assemble(task *preparedTask, shares *vdaf.Shares) ([]byte, error) {
	leaderCiphertext, err := p.encryptInputShare(task, protocol.RoleLeader, task.leaderConfig, shares.InputShares[0], shares.PublicShare)
	if err != nil {
		return nil, err
	}
	helperCiphertext, err := p.encryptInputShare(task, protocol.RoleHelper, task.helperConfig, shares.InputShares[1], shares.PublicShare)
	if err != nil {
		return nil, err
	}

	report := protocol.Report{
		Metadata:                  task.metadata,
		PublicShare:               bytes.Clone(shares.PublicShare),
		LeaderEncryptedInputShare: *leaderCiphertext,
		HelperEncryptedInputShare: *helperCiphertext,
	}
	encoded, err := protocol.SerializeMessage(report)
	if err != nil {
		return nil, err
	}

	p.log.Debug("prepared report",
		"task_id", task.taskID.String(),
		"report_id", task.metadata.ReportID.String(),
		"time", uint64(task.metadata.Time),
		"leader_config_id", task.leaderConfig.ID,
		"helper_config_id", task.helperConfig.ID,
		"public_share_size", len(shares.PublicShare),
		"report_size", len(encoded),
	)
	return encoded, nil
}

// encryptInputShare seals one aggregator's input share. The AAD binds the
// ciphertext to the task, the report metadata, and the public share; the HPKE
// info binds it to the receiving role.
func (p *ReportPreparer) encryptInputShare(task *preparedTask, role protocol.Role, config *protocol.HpkeConfig, inputShare, publicShare []byte) (*protocol.HpkeCiphertext, error) {
	plaintext, err := protocol.SerializeMessage(protocol.PlaintextInputShare{
		Extensions: []protocol.Extension{},
		Payload:    inputShare,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s input share: %w", protocol.ErrEncryption, role, err)
	}

	aad, err := protocol.SerializeMessage(protocol.InputShareAad{
		TaskID:      task.taskID,
		Metadata:    task.metadata,
		PublicShare: bytes.Clone(publicShare),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s input share AAD: %w", protocol.ErrEncryption, role, err)
	}

	info := crypto.ApplicationInfo(crypto.InputShareLabel, protocol.RoleClient, role)
	ciphertext, err := p.sealer.Seal(config, info, plaintext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %s input share: %w", protocol.ErrEncryption, role, err)
	}
	return ciphertext, nil
}
