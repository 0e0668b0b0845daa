package client

import (
	"fmt"
	"math"

	"github.com/divviup/divviup-android/protocol"
	"github.com/divviup/divviup-android/vdaf"
)

// MaxReportSize is the largest report the entry points return. Host byte
// arrays are indexed by 32-bit signed integers.
const MaxReportSize = math.MaxInt32

var defaultPreparer = NewReportPreparer(Options{})

// PrepareCountReport prepares a Prio3Count report.
func PrepareCountReport(taskID, leaderConfigs, helperConfigs []byte, timestamp int64, measurement bool) ([]byte, error) {
	v, err := vdaf.NewPrio3Count()
	if err != nil {
		return nil, err
	}
	return hostReport(PrepareReport[bool](defaultPreparer, v, input(taskID, leaderConfigs, helperConfigs, timestamp), measurement))
}

// PrepareSumReport prepares a Prio3Sum report for a measurement in
// [0, 2^bits).
func PrepareSumReport(taskID, leaderConfigs, helperConfigs []byte, timestamp int64, bits, measurement int64) ([]byte, error) {
	v, err := vdaf.NewPrio3Sum(bits)
	if err != nil {
		return nil, err
	}
	return hostReport(PrepareReport[int64](defaultPreparer, v, input(taskID, leaderConfigs, helperConfigs, timestamp), measurement))
}

// PrepareSumVecReport prepares a Prio3SumVec report. measurement must have
// length elements, each in [0, 2^bits).
func PrepareSumVecReport(taskID, leaderConfigs, helperConfigs []byte, timestamp int64, length, bits, chunkLength int64, measurement []int64) ([]byte, error) {
	v, err := vdaf.NewPrio3SumVec(length, bits, chunkLength)
	if err != nil {
		return nil, err
	}
	return hostReport(PrepareReport[[]int64](defaultPreparer, v, input(taskID, leaderConfigs, helperConfigs, timestamp), measurement))
}

// PrepareHistogramReport prepares a Prio3Histogram report for a bucket index
// in [0, length).
func PrepareHistogramReport(taskID, leaderConfigs, helperConfigs []byte, timestamp int64, length, chunkLength, measurement int64) ([]byte, error) {
	v, err := vdaf.NewPrio3Histogram(length, chunkLength)
	if err != nil {
		return nil, err
	}
	return hostReport(PrepareReport[int64](defaultPreparer, v, input(taskID, leaderConfigs, helperConfigs, timestamp), measurement))
}

func input(taskID, leaderConfigs, helperConfigs []byte, timestamp int64) ReportInput {
	return ReportInput{
		TaskID:               taskID,
		LeaderHpkeConfigList: leaderConfigs,
		HelperHpkeConfigList: helperConfigs,
		Timestamp:            timestamp,
	}
}

func hostReport(report []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if err := checkReportSize(len(report), MaxReportSize); err != nil {
		return nil, err
	}
	return report, nil
}

func checkReportSize(size, limit int) error {
	if size > limit {
		return fmt.Errorf("%w: report of %d bytes exceeds %d", protocol.ErrEncodeOverflow, size, limit)
	}
	return nil
}
