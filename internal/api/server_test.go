package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/david/opportunity-scout/internal/discovery"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	reg := &discovery.Registry{Sources: []discovery.SourceConfig{
		{ID: "inert", Strategy: "stub", Enabled: true},
	}}
	engine, err := discovery.NewEngine(reg, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return &Server{Engine: engine, Echo: echo.New()}
}

func (s *Server) jobStatus() (string, string) {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.runningJob == nil {
		return "", ""
	}
	return s.runningJob.Status, s.runningJob.ID
}

func TestDiscoverAsyncJobLifecycle(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/discover", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := s.handleDiscoverAsync(s.Echo.NewContext(req, rec)); err != nil {
		t.Fatalf("handleDiscoverAsync: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	var accepted struct {
		JobID string `json:"job_id"`
		Poll  string `json:"poll"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decoding 202 body: %v", err)
	}
	if accepted.JobID == "" || !strings.HasSuffix(accepted.Poll, accepted.JobID) {
		t.Fatalf("bad accepted payload: %+v", accepted)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		status, _ := s.jobStatus()
		if status == "completed" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never completed, status %q", status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	pollReq := httptest.NewRequest(http.MethodGet, "/", nil)
	pollRec := httptest.NewRecorder()
	pollCtx := s.Echo.NewContext(pollReq, pollRec)
	pollCtx.SetParamNames("id")
	pollCtx.SetParamValues(accepted.JobID)
	if err := s.handleJobStatus(pollCtx); err != nil {
		t.Fatalf("handleJobStatus: %v", err)
	}

	var polled struct {
		Status string         `json:"status"`
		Result map[string]any `json:"result"`
		Error  string         `json:"error"`
	}
	if err := json.Unmarshal(pollRec.Body.Bytes(), &polled); err != nil {
		t.Fatalf("decoding poll body: %v", err)
	}
	if polled.Status != "completed" || polled.Error != "" {
		t.Errorf("polled job = %+v, want completed without error", polled)
	}
	if polled.Result == nil {
		t.Error("completed job should carry a result")
	}
}

func TestDiscoverAsyncRejectsConcurrentJob(t *testing.T) {
	s := testServer(t)
	s.runningJob = &backgroundJob{ID: "busy0001", Status: "running", StartedAt: time.Now()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/discover", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := s.handleDiscoverAsync(s.Echo.NewContext(req, rec)); err != nil {
		t.Fatalf("handleDiscoverAsync: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 while a job is running", rec.Code)
	}
}

func TestFailedJobSurfacesError(t *testing.T) {
	s := testServer(t)
	job := &backgroundJob{ID: "dead0001", Status: "running", StartedAt: time.Now()}
	s.runningJob = job

	s.failJob(job, "job deadline exceeded")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.Echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("dead0001")
	if err := s.handleJobStatus(c); err != nil {
		t.Fatalf("handleJobStatus: %v", err)
	}

	var polled struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &polled); err != nil {
		t.Fatalf("decoding poll body: %v", err)
	}
	if polled.Status != "failed" {
		t.Errorf("status = %q, want failed", polled.Status)
	}
	if polled.Error != "job deadline exceeded" {
		t.Errorf("error = %q", polled.Error)
	}
}
