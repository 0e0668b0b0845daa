package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/divviup/divviup-android/protocol"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UploadedReport is one request received by MockLeader.
type UploadedReport struct {
	TaskID      protocol.TaskID
	ContentType string
	UserAgent   string
	Body        []byte
}

// MockLeader accepts report uploads on PUT /tasks/{taskID}/reports.
type MockLeader struct {
	Server *httptest.Server

	mu      sync.Mutex
	reports []UploadedReport
	status  int
}

// NewMockLeader starts a mock leader. Call Close when done.
func NewMockLeader() *MockLeader {
	l := &MockLeader{status: http.StatusCreated}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Put("/tasks/{taskID}/reports", l.handleUpload)

	l.Server = httptest.NewServer(r)
	return l
}

// URL is the leader's endpoint.
func (l *MockLeader) URL() string {
	return l.Server.URL
}

func (l *MockLeader) Close() {
	l.Server.Close()
}

// FailWith makes subsequent uploads respond with status.
func (l *MockLeader) FailWith(status int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = status
}

// Reports returns the uploads received so far.
func (l *MockLeader) Reports() []UploadedReport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]UploadedReport(nil), l.reports...)
}

func (l *MockLeader) handleUpload(w http.ResponseWriter, r *http.Request) {
	taskID, err := protocol.ParseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status >= http.StatusBadRequest {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(l.status)
		w.Write([]byte(`{"type":"urn:ietf:params:ppm:dap:error:invalidMessage"}`))
		return
	}

	l.reports = append(l.reports, UploadedReport{
		TaskID:      taskID,
		ContentType: r.Header.Get("Content-Type"),
		UserAgent:   r.Header.Get("User-Agent"),
		Body:        body,
	})
	w.WriteHeader(l.status)
}
