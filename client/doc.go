// Package client prepares and uploads DAP reports.
//
// A report is prepared in one linear pass: the task ID and both aggregators'
// HPKE config lists are decoded, one config is selected per aggregator, a
// fresh report ID is drawn, the measurement is sharded, each input share is
// sealed toward its aggregator, and the report is encoded. Any failure aborts
// the pass and no partial report is returned.
//
// PrepareCountReport, PrepareSumReport, PrepareSumVecReport and
// PrepareHistogramReport take raw bytes and signed integers, the shape in
// which host runtimes hand data over. Client wraps preparation together with
// upload to the leader for callers that hold a task configuration.
package client
