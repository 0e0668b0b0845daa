package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/divviup/divviup-android/protocol"
	"github.com/divviup/divviup-android/vdaf"
)

// TaskConfig describes a DAP task from the client's point of view.
type TaskConfig struct {
	TaskID         protocol.TaskID   `yaml:"task_id"`
	LeaderEndpoint string            `yaml:"leader_endpoint"`
	HelperEndpoint string            `yaml:"helper_endpoint"`
	TimePrecision  protocol.Duration `yaml:"time_precision"`
	Vdaf           vdaf.Params       `yaml:"vdaf"`
}

// Validate checks the time precision, the VDAF parameters, and any endpoints
// that are set. A leader endpoint is only needed for uploads; see
// ValidateForUpload.
func (c *TaskConfig) Validate() error {
	if c.LeaderEndpoint != "" {
		if _, err := parseEndpoint(c.LeaderEndpoint); err != nil {
			return err
		}
	}
	if c.HelperEndpoint != "" {
		if _, err := parseEndpoint(c.HelperEndpoint); err != nil {
			return fmt.Errorf("helper: %w", err)
		}
	}
	if c.TimePrecision == 0 {
		return fmt.Errorf("%w: time_precision must be positive", protocol.ErrInvalidParameter)
	}
	return c.Vdaf.Validate()
}

// ValidateForUpload is Validate plus a required leader endpoint.
func (c *TaskConfig) ValidateForUpload() error {
	if c.LeaderEndpoint == "" {
		return fmt.Errorf("%w: leader_endpoint is required for upload", protocol.ErrInvalidParameter)
	}
	return c.Validate()
}

// ClientOptions configures a Client.
type ClientOptions struct {
	Options

	// HTTPClient is used for uploads. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Client prepares measurements of type M for one task and uploads them to the
// task's leader. The aggregators' HPKE config lists are fixed at construction.
type Client[M any] struct {
	task          TaskConfig
	vdaf          vdaf.Client[M]
	leaderConfigs []byte
	helperConfigs []byte

	preparer *ReportPreparer
	uploader *Uploader
	now      func() time.Time
}

// NewClient validates task and copies the encoded config lists. Without a
// leader endpoint the client can prepare reports but not send them.
func NewClient[M any](task TaskConfig, v vdaf.Client[M], leaderConfigs, helperConfigs []byte, opts ClientOptions) (*Client[M], error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}
	preparer := NewReportPreparer(opts.Options)
	var uploader *Uploader
	if task.LeaderEndpoint != "" {
		var err error
		uploader, err = NewUploader(task.LeaderEndpoint, opts.HTTPClient, preparer.log)
		if err != nil {
			return nil, err
		}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Client[M]{
		task:          task,
		vdaf:          v,
		leaderConfigs: append([]byte(nil), leaderConfigs...),
		helperConfigs: append([]byte(nil), helperConfigs...),
		preparer:      preparer,
		uploader:      uploader,
		now:           now,
	}, nil
}

// PrepareMeasurement returns an encoded report for measurement, timestamped
// with the current time rounded down to the task's time precision.
func (c *Client[M]) PrepareMeasurement(measurement M) ([]byte, error) {
	timestamp, err := protocol.TimeFromUnix(c.now().Unix())
	if err != nil {
		return nil, err
	}
	timestamp = timestamp.RoundDown(c.task.TimePrecision)

	return PrepareReport(c.preparer, c.vdaf, ReportInput{
		TaskID:               c.task.TaskID[:],
		LeaderHpkeConfigList: c.leaderConfigs,
		HelperHpkeConfigList: c.helperConfigs,
		Timestamp:            int64(timestamp),
	}, measurement)
}

// SendMeasurement prepares a report for measurement and uploads it.
func (c *Client[M]) SendMeasurement(ctx context.Context, measurement M) error {
	if c.uploader == nil {
		return fmt.Errorf("%w: task has no leader endpoint", protocol.ErrInvalidParameter)
	}
	report, err := c.PrepareMeasurement(measurement)
	if err != nil {
		return err
	}
	return c.uploader.Upload(ctx, c.task.TaskID, report)
}
