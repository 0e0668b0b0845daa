package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/divviup/divviup-android/protocol"
)

// UserAgent is sent with every upload.
const UserAgent = "divviup-android-go/0.1"

// ErrUpload is returned when the leader rejects a report or cannot be reached.
var ErrUpload = errors.New("report upload failed")

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 1024

// Uploader sends encoded reports to a task's leader.
type Uploader struct {
	endpoint   *url.URL
	httpClient *http.Client
	log        *slog.Logger
}

// NewUploader validates leaderEndpoint, which must be an http or https URL.
// A nil httpClient uses http.DefaultClient and a nil log discards.
func NewUploader(leaderEndpoint string, httpClient *http.Client, log *slog.Logger) (*Uploader, error) {
	endpoint, err := parseEndpoint(leaderEndpoint)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Uploader{endpoint: endpoint, httpClient: httpClient, log: log}, nil
}

func parseEndpoint(raw string) (*url.URL, error) {
	endpoint, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: leader endpoint: %v", protocol.ErrInvalidParameter, err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("%w: leader endpoint %q must be an http or https URL", protocol.ErrInvalidParameter, raw)
	}
	if endpoint.Host == "" {
		return nil, fmt.Errorf("%w: leader endpoint %q has no host", protocol.ErrInvalidParameter, raw)
	}
	return endpoint, nil
}

// ReportURL is where reports for taskID are uploaded.
func (u *Uploader) ReportURL(taskID protocol.TaskID) string {
	return u.endpoint.JoinPath("tasks", taskID.String(), "reports").String()
}

// Upload PUTs an encoded report to the leader.
func (u *Uploader) Upload(ctx context.Context, taskID protocol.TaskID, report []byte) error {
	target := u.ReportURL(taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(report))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpload, err)
	}
	req.Header.Set("Content-Type", protocol.MediaTypeReport)
	req.Header.Set("User-Agent", UserAgent)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: leader returned status %d: %s", ErrUpload, resp.StatusCode, bytes.TrimSpace(body))
	}
	io.Copy(io.Discard, resp.Body)

	u.log.Debug("uploaded report", "url", target, "status", resp.StatusCode, "size", len(report))
	return nil
}
