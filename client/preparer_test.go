package client

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/divviup/divviup-android/crypto"
	"github.com/divviup/divviup-android/protocol"
	"github.com/divviup/divviup-android/testutil"
	"github.com/stretchr/testify/require"
)

const testTimestamp = 1700000000

func testInput(aggs *testutil.Aggregators) ReportInput {
	return ReportInput{
		TaskID:               testutil.TaskID[:],
		LeaderHpkeConfigList: aggs.LeaderConfigs,
		HelperHpkeConfigList: aggs.HelperConfigs,
		Timestamp:            testTimestamp,
	}
}

// recordingSealer seals with HPKE and keeps every call's arguments.
type recordingSealer struct {
	calls []sealCall
	err   error
}

type sealCall struct {
	configID protocol.HpkeConfigID
	info     []byte
	aad      []byte
}

func (s *recordingSealer) Seal(config *protocol.HpkeConfig, info, plaintext, aad []byte) (*protocol.HpkeCiphertext, error) {
	s.calls = append(s.calls, sealCall{configID: config.ID, info: info, aad: aad})
	if s.err != nil {
		return nil, s.err
	}
	return (&crypto.HPKE{}).Seal(config, info, plaintext, aad)
}

func TestPrepareReportRoundTrip(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	p := NewReportPreparer(Options{Rand: &testutil.SequenceReader{}})

	for _, measurement := range []bool{true, false} {
		v := &testutil.FakeCount{}
		encoded, err := PrepareReport[bool](p, v, testInput(aggs), measurement)
		require.NoError(t, err)
		require.Equal(t, 1, v.Calls)

		opened, err := testutil.DecryptReport(encoded, testutil.TaskID, aggs.Leader, aggs.Helper)
		require.NoError(t, err)

		report := opened.Report
		require.Equal(t, protocol.Time(testTimestamp), report.Metadata.Time)
		require.Equal(t, aggs.Leader.Config.ID, report.LeaderEncryptedInputShare.ConfigID)
		require.Equal(t, aggs.Helper.Config.ID, report.HelperEncryptedInputShare.ConfigID)

		// The VDAF saw the same report ID that ended up in the metadata.
		sharded, err := testutil.ReportIDFromPublicShare(report.PublicShare)
		require.NoError(t, err)
		require.Equal(t, report.Metadata.ReportID, sharded)

		require.Empty(t, opened.LeaderShare.Extensions)
		require.Empty(t, opened.HelperShare.Extensions)
		got, err := v.Reconstruct(opened.LeaderShare.Payload, opened.HelperShare.Payload)
		require.NoError(t, err)
		require.Equal(t, measurement, got)
	}
}

func TestPrepareReportUsesInjectedRandomness(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	p := NewReportPreparer(Options{Rand: &testutil.SequenceReader{}})

	encoded, err := PrepareReport[bool](p, &testutil.FakeCount{}, testInput(aggs), true)
	require.NoError(t, err)

	report, err := protocol.UnmarshalMessage[protocol.Report](encoded)
	require.NoError(t, err)
	require.Equal(t, protocol.ReportID{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}, report.Metadata.ReportID)
}

func TestPrepareReportFreshness(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	p := NewReportPreparer(Options{})

	first, err := PrepareReport[bool](p, &testutil.FakeCount{}, testInput(aggs), true)
	require.NoError(t, err)
	second, err := PrepareReport[bool](p, &testutil.FakeCount{}, testInput(aggs), true)
	require.NoError(t, err)

	a, err := protocol.UnmarshalMessage[protocol.Report](first)
	require.NoError(t, err)
	b, err := protocol.UnmarshalMessage[protocol.Report](second)
	require.NoError(t, err)

	require.NotEqual(t, a.Metadata.ReportID, b.Metadata.ReportID)
	require.NotEqual(t, a.LeaderEncryptedInputShare.Payload, b.LeaderEncryptedInputShare.Payload)
	require.NotEqual(t, a.HelperEncryptedInputShare.EncapsulatedKey, b.HelperEncryptedInputShare.EncapsulatedKey)
}

func TestPrepareReportAad(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	sealer := &recordingSealer{}
	p := NewReportPreparer(Options{Sealer: sealer})

	encoded, err := PrepareReport[bool](p, &testutil.FakeCount{}, testInput(aggs), true)
	require.NoError(t, err)
	report, err := protocol.UnmarshalMessage[protocol.Report](encoded)
	require.NoError(t, err)

	require.Len(t, sealer.calls, 2)
	leader, helper := sealer.calls[0], sealer.calls[1]
	require.Equal(t, aggs.Leader.Config.ID, leader.configID)
	require.Equal(t, aggs.Helper.Config.ID, helper.configID)
	require.Equal(t, crypto.ApplicationInfo(crypto.InputShareLabel, protocol.RoleClient, protocol.RoleLeader), leader.info)
	require.Equal(t, crypto.ApplicationInfo(crypto.InputShareLabel, protocol.RoleClient, protocol.RoleHelper), helper.info)

	// Both AADs carry identical content but are built independently.
	require.Equal(t, leader.aad, helper.aad)
	require.NotSame(t, &leader.aad[0], &helper.aad[0])

	aad, err := protocol.UnmarshalMessage[protocol.InputShareAad](leader.aad)
	require.NoError(t, err)
	require.Equal(t, testutil.TaskID, aad.TaskID)
	require.Equal(t, report.Metadata, aad.Metadata)
	require.Equal(t, report.PublicShare, aad.PublicShare)
}

func TestPrepareReportCiphertextsAreRoleBound(t *testing.T) {
	// With one keypair on both sides, only the HPKE info tells the shares
	// apart.
	keypair := testutil.NewHpkeKeypair(t, 7, crypto.KemX25519HkdfSha256)
	configs := testutil.EncodeConfigList(t, keypair.Config)
	p := NewReportPreparer(Options{})

	encoded, err := PrepareReport[bool](p, &testutil.FakeCount{}, ReportInput{
		TaskID:               testutil.TaskID[:],
		LeaderHpkeConfigList: configs,
		HelperHpkeConfigList: configs,
		Timestamp:            testTimestamp,
	}, true)
	require.NoError(t, err)

	_, err = testutil.DecryptReport(encoded, testutil.TaskID, keypair, keypair)
	require.NoError(t, err)

	report, err := protocol.UnmarshalMessage[protocol.Report](encoded)
	require.NoError(t, err)
	report.LeaderEncryptedInputShare, report.HelperEncryptedInputShare = report.HelperEncryptedInputShare, report.LeaderEncryptedInputShare
	swapped, err := protocol.SerializeMessage(report)
	require.NoError(t, err)

	_, err = testutil.DecryptReport(swapped, testutil.TaskID, keypair, keypair)
	require.Error(t, err)
}

func TestPrepareReportSharesNeedTheirOwnKeys(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	encoded, err := PrepareReport[bool](NewReportPreparer(Options{}), &testutil.FakeCount{}, testInput(aggs), true)
	require.NoError(t, err)

	_, err = testutil.DecryptReport(encoded, testutil.TaskID, aggs.Helper, aggs.Leader)
	require.Error(t, err)

	report, err := protocol.UnmarshalMessage[protocol.Report](encoded)
	require.NoError(t, err)
	aad, err := protocol.SerializeMessage(protocol.InputShareAad{
		TaskID:      testutil.TaskID,
		Metadata:    report.Metadata,
		PublicShare: report.PublicShare,
	})
	require.NoError(t, err)

	// The leader's ciphertext under the helper's key, with the config ID
	// rewritten so that only the key differs.
	leaderShare := report.LeaderEncryptedInputShare
	leaderShare.ConfigID = aggs.Helper.Config.ID
	info := crypto.ApplicationInfo(crypto.InputShareLabel, protocol.RoleClient, protocol.RoleLeader)
	_, err = crypto.Open(aggs.Helper, info, &leaderShare, aad)
	require.Error(t, err)

	_, err = crypto.Open(aggs.Leader, info, &report.LeaderEncryptedInputShare, aad)
	require.NoError(t, err)
}

func TestPrepareReportBindsTaskID(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	encoded, err := PrepareReport[bool](NewReportPreparer(Options{}), &testutil.FakeCount{}, testInput(aggs), true)
	require.NoError(t, err)

	other := testutil.TaskID
	other[0] ^= 0xff
	_, err = testutil.DecryptReport(encoded, other, aggs.Leader, aggs.Helper)
	require.Error(t, err)
}

func TestPrepareReportConfigErrors(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	empty := testutil.EncodeConfigList(t)
	unsupported := testutil.EncodeConfigList(t, testutil.UnsupportedConfig(4))

	cases := []struct {
		name    string
		mutate  func(*ReportInput)
		err     error
		message string
	}{
		{"empty leader list", func(in *ReportInput) { in.LeaderHpkeConfigList = empty }, protocol.ErrMissingConfigs, "leader"},
		{"empty helper list", func(in *ReportInput) { in.HelperHpkeConfigList = empty }, protocol.ErrMissingConfigs, "helper"},
		{"unsupported leader", func(in *ReportInput) { in.LeaderHpkeConfigList = unsupported }, crypto.ErrUnsupportedKEM, "leader"},
		{"unsupported helper", func(in *ReportInput) { in.HelperHpkeConfigList = unsupported }, protocol.ErrUnsupportedConfig, "helper"},
		{"malformed leader list", func(in *ReportInput) { in.LeaderHpkeConfigList = []byte{0x00, 0x05, 0x01} }, protocol.ErrDecode, "leader"},
		{"trailing bytes", func(in *ReportInput) { in.HelperHpkeConfigList = append(bytes.Clone(aggs.HelperConfigs), 0) }, protocol.ErrDecode, "helper"},
		{"short task ID", func(in *ReportInput) { in.TaskID = make([]byte, 31) }, protocol.ErrDecode, "task ID"},
		{"long task ID", func(in *ReportInput) { in.TaskID = make([]byte, 33) }, protocol.ErrDecode, "task ID"},
		{"negative timestamp", func(in *ReportInput) { in.Timestamp = -1 }, protocol.ErrInvalidParameter, "timestamp"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := testInput(aggs)
			tc.mutate(&in)
			v := &testutil.FakeCount{}

			_, err := PrepareReport[bool](NewReportPreparer(Options{}), v, in, true)
			require.ErrorIs(t, err, tc.err)
			require.Contains(t, err.Error(), tc.message)
			require.Zero(t, v.Calls, "sharding must not run")
		})
	}
}

func TestPrepareReportSelectsFirstSupportedConfig(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	second := testutil.NewHpkeKeypair(t, 9, crypto.KemP256HkdfSha256)
	in := testInput(aggs)
	in.LeaderHpkeConfigList = testutil.EncodeConfigList(t, testutil.UnsupportedConfig(3), aggs.Leader.Config, second.Config)

	encoded, err := PrepareReport[bool](NewReportPreparer(Options{}), &testutil.FakeCount{}, in, false)
	require.NoError(t, err)

	opened, err := testutil.DecryptReport(encoded, testutil.TaskID, aggs.Leader, aggs.Helper)
	require.NoError(t, err)
	require.Equal(t, aggs.Leader.Config.ID, opened.Report.LeaderEncryptedInputShare.ConfigID)
}

func TestPrepareReportSealFailure(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	cause := errors.New("hardware keystore unavailable")
	sealer := &recordingSealer{err: cause}

	_, err := PrepareReport[bool](NewReportPreparer(Options{Sealer: sealer}), &testutil.FakeCount{}, testInput(aggs), true)
	require.ErrorIs(t, err, protocol.ErrEncryption)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "encryption failed: leader input share: hardware keystore unavailable", err.Error())
	require.Len(t, sealer.calls, 1)
}

func TestPrepareReportMalformedPublicKey(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	broken := aggs.Helper.Config.Clone()
	broken.PublicKey = []byte{0x04, 0x01}
	in := testInput(aggs)
	in.HelperHpkeConfigList = testutil.EncodeConfigList(t, broken)

	_, err := PrepareReport[bool](NewReportPreparer(Options{}), &testutil.FakeCount{}, in, true)
	require.ErrorIs(t, err, protocol.ErrEncryption)
}

func TestPrepareReportShardFailure(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	v := &testutil.FakeCount{Err: protocol.ErrVdaf}

	_, err := PrepareReport[bool](NewReportPreparer(Options{}), v, testInput(aggs), true)
	require.ErrorIs(t, err, protocol.ErrVdaf)
	require.Equal(t, 1, v.Calls)
}

func TestPrepareReportRandomnessFailure(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	p := NewReportPreparer(Options{Rand: bytes.NewReader(make([]byte, 4))})

	v := &testutil.FakeCount{}
	_, err := PrepareReport[bool](p, v, testInput(aggs), true)
	require.ErrorIs(t, err, protocol.ErrRandomness)
	require.ErrorContains(t, err, "generate report ID")
	require.Zero(t, v.Calls)
}

func TestPrepareReportDoesNotRetainInput(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	in := testInput(aggs)
	taskID := bytes.Clone(in.TaskID)
	leaderConfigs := bytes.Clone(in.LeaderHpkeConfigList)

	_, err := PrepareReport[bool](NewReportPreparer(Options{}), &testutil.FakeCount{}, in, true)
	require.NoError(t, err)
	require.Equal(t, taskID, in.TaskID)
	require.Equal(t, leaderConfigs, in.LeaderHpkeConfigList)
}

func TestPrepareReportLogsMetadataOnly(t *testing.T) {
	aggs := testutil.NewAggregators(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewReportPreparer(Options{Log: log, Rand: &testutil.SequenceReader{}})

	_, err := PrepareReport[bool](p, &testutil.FakeCount{}, testInput(aggs), true)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, `"msg":"prepared report"`)
	require.Contains(t, out, `"report_id":"000102030405060708090a0b0c0d0e0f"`)
	require.Contains(t, out, testutil.TaskID.String())
	require.NotContains(t, out, "measurement")
}
