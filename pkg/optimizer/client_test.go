package optimizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/me/sked/pkg/model"
)

func newTestClient(url string, push bool) *Client {
	cfg := DefaultConfig().WithBaseURL(url)
	cfg.PushData = push
	return NewClient(cfg, nil)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/health" {
			t.Errorf("path = %q, want /api/v1/health", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, true)
	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health: %v", err)
	}
}

func TestHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := newTestClient(srv.URL, true)
	err := c.Health(context.Background())
	if err == nil {
		t.Fatal("expected error against a closed server")
	}
	if !IsUnreachable(err) {
		t.Errorf("error = %v, want Unreachable kind", err)
	}
}

func TestHealthNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, true)
	if err := c.Health(context.Background()); !IsUnreachable(err) {
		t.Errorf("error = %v, want Unreachable kind", err)
	}
}

func TestSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/solve" || r.Method != http.MethodPost {
			t.Errorf("%s %s, want POST /api/v1/solve", r.Method, r.URL.Path)
		}
		var req SolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.OptimizationMode != "BALANCED" {
			t.Errorf("mode = %q, want BALANCED", req.OptimizationMode)
		}
		json.NewEncoder(w).Encode(SubmitResponse{JobID: "job-42"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, true)
	jobID, err := c.Submit(context.Background(), SolveRequest{
		OptimizationTimeSeconds: 300,
		OptimizationMode:        "BALANCED",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if jobID != "job-42" {
		t.Errorf("job id = %q, want job-42", jobID)
	}
}

func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no dataset loaded", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, true)
	_, err := c.Submit(context.Background(), SolveRequest{})
	if !IsRejected(err) {
		t.Errorf("error = %v, want Rejected kind for a 4xx", err)
	}
}

func TestSubmitServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, true)
	_, err := c.Submit(context.Background(), SolveRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := KindOf(err); kind != KindInternal {
		t.Errorf("kind = %s, want INTERNAL for a 5xx", kind)
	}
}

func TestStatusCarriesJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/solve/job-7" {
			t.Errorf("path = %q, want /api/v1/solve/job-7", r.URL.Path)
		}
		json.NewEncoder(w).Encode(JobStatus{Status: "RUNNING", ElapsedSeconds: 12.5})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, true)
	status, err := c.Status(context.Background(), "job-7")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.JobID != "job-7" {
		t.Errorf("job id = %q, want job-7 backfilled", status.JobID)
	}
	if status.State() != model.JobStateRunning {
		t.Errorf("state = %s, want RUNNING", status.State())
	}
}

func TestResult(t *testing.T) {
	hard := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/solve/job-7/result" {
			t.Errorf("path = %q, want /api/v1/solve/job-7/result", r.URL.Path)
		}
		json.NewEncoder(w).Encode(SolveResult{
			JobID:     "job-7",
			HardScore: &hard,
			Sections:  []SolvedSection{{CourseID: "c1", SectionNumber: 1}},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, true)
	result, err := c.Result(context.Background(), "job-7")
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if len(result.Sections) != 1 || result.Sections[0].CourseID != "c1" {
		t.Errorf("sections = %+v, want one c1 section", result.Sections)
	}
}

func TestImportDataPullModeSkipsRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, false)
	err := c.ImportData(context.Background(), &ExportPayload{
		Metadata: ExportMetadata{ExportID: "e1"},
	})
	if err != nil {
		t.Fatalf("ImportData: %v", err)
	}
	if requests != 0 {
		t.Errorf("made %d requests in pull mode, want 0", requests)
	}
}

func TestImportDataPush(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/data" || r.Method != http.MethodPost {
			t.Errorf("%s %s, want POST /api/v1/data", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"accepted": true})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, true)
	err := c.ImportData(context.Background(), &ExportPayload{
		Metadata: ExportMetadata{ExportID: "e1"},
	})
	if err != nil {
		t.Fatalf("ImportData: %v", err)
	}
}

func TestImportDataNotAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"accepted": false, "message": "schema mismatch"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, true)
	err := c.ImportData(context.Background(), &ExportPayload{})
	if !IsRejected(err) {
		t.Errorf("error = %v, want Rejected kind", err)
	}
}

func TestMapState(t *testing.T) {
	tests := []struct {
		raw  string
		want model.JobState
	}{
		{"SUBMITTED", model.JobStateSubmitted},
		{"QUEUED", model.JobStateSubmitted},
		{"RUNNING", model.JobStateRunning},
		{"SOLVING", model.JobStateRunning},
		{"SUCCEEDED", model.JobStateSucceeded},
		{"SOLVED", model.JobStateSucceeded},
		{"FAILED", model.JobStateFailed},
		{"TERMINATED", model.JobStateFailed},
		{"REJECTED", model.JobStateRejected},
		{"SOMETHING_NEW", model.JobStateRunning},
	}
	for _, tt := range tests {
		if got := MapState(tt.raw); got != tt.want {
			t.Errorf("MapState(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
