package client

import (
	"testing"

	"github.com/divviup/divviup-android/protocol"
	"github.com/divviup/divviup-android/testutil"
	"github.com/stretchr/testify/require"
)

func requireOpens(t *testing.T, aggs *testutil.Aggregators, encoded []byte) *testutil.OpenedReport {
	t.Helper()
	opened, err := testutil.DecryptReport(encoded, testutil.TaskID, aggs.Leader, aggs.Helper)
	require.NoError(t, err)
	require.Equal(t, protocol.Time(testTimestamp), opened.Report.Metadata.Time)
	require.NotEmpty(t, opened.LeaderShare.Payload)
	require.NotEmpty(t, opened.HelperShare.Payload)
	return opened
}

func TestPrepareCountReport(t *testing.T) {
	aggs := testutil.NewAggregators(t)

	encoded, err := PrepareCountReport(testutil.TaskID[:], aggs.LeaderConfigs, aggs.HelperConfigs, testTimestamp, true)
	require.NoError(t, err)
	requireOpens(t, aggs, encoded)

	_, err = PrepareCountReport(testutil.TaskID[:], testutil.EncodeConfigList(t), aggs.HelperConfigs, testTimestamp, true)
	require.ErrorIs(t, err, protocol.ErrMissingConfigs)
}

func TestPrepareSumReport(t *testing.T) {
	aggs := testutil.NewAggregators(t)

	encoded, err := PrepareSumReport(testutil.TaskID[:], aggs.LeaderConfigs, aggs.HelperConfigs, testTimestamp, 8, 255)
	require.NoError(t, err)
	requireOpens(t, aggs, encoded)

	_, err = PrepareSumReport(testutil.TaskID[:], aggs.LeaderConfigs, aggs.HelperConfigs, testTimestamp, 8, 256)
	require.ErrorIs(t, err, protocol.ErrInvalidParameter)

	_, err = PrepareSumReport(testutil.TaskID[:], aggs.LeaderConfigs, aggs.HelperConfigs, testTimestamp, -8, 1)
	require.ErrorIs(t, err, protocol.ErrInvalidParameter)

	_, err = PrepareSumReport(testutil.TaskID[:], aggs.LeaderConfigs, aggs.HelperConfigs, testTimestamp, 0, 0)
	require.ErrorIs(t, err, protocol.ErrVdaf)
}

func TestPrepareSumVecReport(t *testing.T) {
	aggs := testutil.NewAggregators(t)

	encoded, err := PrepareSumVecReport(testutil.TaskID[:], aggs.LeaderConfigs, aggs.HelperConfigs, testTimestamp, 4, 8, 2, []int64{0, 1, 128, 255})
	require.NoError(t, err)
	requireOpens(t, aggs, encoded)

	_, err = PrepareSumVecReport(testutil.TaskID[:], aggs.LeaderConfigs, aggs.HelperConfigs, testTimestamp, 4, 8, 2, []int64{1, 2, 3})
	require.ErrorIs(t, err, protocol.ErrInvalidParameter)
}

func TestPrepareHistogramReport(t *testing.T) {
	aggs := testutil.NewAggregators(t)

	encoded, err := PrepareHistogramReport(testutil.TaskID[:], aggs.LeaderConfigs, aggs.HelperConfigs, testTimestamp, 10, 3, 9)
	require.NoError(t, err)
	requireOpens(t, aggs, encoded)

	_, err = PrepareHistogramReport(testutil.TaskID[:], aggs.LeaderConfigs, aggs.HelperConfigs, testTimestamp, 10, 3, 10)
	require.ErrorIs(t, err, protocol.ErrInvalidParameter)
}

func TestCheckReportSize(t *testing.T) {
	require.NoError(t, checkReportSize(10, 10))
	require.ErrorIs(t, checkReportSize(11, 10), protocol.ErrEncodeOverflow)
}
