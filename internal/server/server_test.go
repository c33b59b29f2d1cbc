package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/me/sked/internal/config"
	"github.com/me/sked/internal/generate"
	"github.com/me/sked/internal/logging"
	"github.com/me/sked/internal/store"
	"github.com/me/sked/pkg/model"
	"github.com/me/sked/pkg/optimizer"
)

type stubGenerator struct {
	outcome *model.GenerationOutcome
	lastReq generate.Request
}

func (g *stubGenerator) Generate(ctx context.Context, req generate.Request) *model.GenerationOutcome {
	g.lastReq = req
	if g.outcome != nil {
		return g.outcome
	}
	return &model.GenerationOutcome{Success: true, ScheduleID: req.ScheduleID, Mode: req.Mode}
}

type stubBuilder struct {
	payload *optimizer.ExportPayload
	err     error
}

func (b *stubBuilder) Build(ctx context.Context, scheduleID string) (*optimizer.ExportPayload, error) {
	return b.payload, b.err
}

type stubValidator struct {
	outcomes map[string]*model.ValidationOutcome
}

func (v *stubValidator) Validate(ctx context.Context, scheduleID string) (*model.ValidationOutcome, error) {
	if out, ok := v.outcomes[scheduleID]; ok {
		return out, nil
	}
	return &model.ValidationOutcome{IsValid: true}, nil
}

type stubHealth struct {
	err error
}

func (h *stubHealth) Health(ctx context.Context) error { return h.err }

type testServer struct {
	srv   *Server
	store store.Store
	gen   *stubGenerator
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:", logging.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	gen := &stubGenerator{}
	builder := &stubBuilder{payload: &optimizer.ExportPayload{
		Metadata: optimizer.ExportMetadata{ExportID: "export-1"},
	}}
	validator := &stubValidator{outcomes: map[string]*model.ValidationOutcome{}}

	cfg := config.DefaultServerConfig()
	srv := New(cfg, st, gen, builder, validator, logging.Nop(), opts...)
	return &testServer{srv: srv, store: st, gen: gen}
}

func (ts *testServer) createSchedule(t *testing.T, id string) {
	t.Helper()
	now := time.Now().UTC()
	err := ts.store.CreateSchedule(context.Background(), &model.Schedule{
		ID:        id,
		Name:      "Fall Master",
		Status:    model.ScheduleStatusDraft,
		StartDate: now,
		EndDate:   now.AddDate(0, 9, 0),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
}

func (ts *testServer) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.Response {
	t.Helper()
	var resp model.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func TestHealthOptimizerDisabled(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	if resp.Status != "ok" {
		t.Errorf("envelope status = %q, want ok", resp.Status)
	}
	if !strings.HasPrefix(resp.RequestID, "req_") {
		t.Errorf("request id = %q, want req_ prefix", resp.RequestID)
	}

	data, _ := json.Marshal(resp.Data)
	var health healthResponse
	json.Unmarshal(data, &health)
	if health.Optimizer != "disabled" {
		t.Errorf("optimizer = %q, want disabled without a health checker", health.Optimizer)
	}
}

func TestHealthOptimizerReachability(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"reachable", nil, "reachable"},
		{"unreachable", errors.New("connection refused"), "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, WithOptimizerHealth(&stubHealth{err: tt.err}))

			rec := ts.request(t, http.MethodGet, "/api/v1/health", "")
			resp := decodeEnvelope(t, rec)
			data, _ := json.Marshal(resp.Data)
			var health healthResponse
			json.Unmarshal(data, &health)
			if health.Optimizer != tt.want {
				t.Errorf("optimizer = %q, want %q", health.Optimizer, tt.want)
			}
		})
	}
}

func TestCreateSchedule(t *testing.T) {
	ts := newTestServer(t)

	body := `{"name":"Spring Master","school_year":"2026-2027",` +
		`"start_date":"2027-01-10T00:00:00Z","end_date":"2027-06-10T00:00:00Z"}`
	rec := ts.request(t, http.MethodPost, "/api/v1/schedules", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201\nbody: %s", rec.Code, rec.Body.String())
	}

	resp := decodeEnvelope(t, rec)
	data, _ := json.Marshal(resp.Data)
	var sched model.Schedule
	json.Unmarshal(data, &sched)
	if sched.ID == "" {
		t.Error("created schedule has no id")
	}
	if sched.Status != model.ScheduleStatusDraft {
		t.Errorf("status = %s, want DRAFT", sched.Status)
	}
}

func TestCreateScheduleValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"start_date":"2027-01-10T00:00:00Z","end_date":"2027-06-10T00:00:00Z"}`},
		{"end before start", `{"name":"X","start_date":"2027-06-10T00:00:00Z","end_date":"2027-01-10T00:00:00Z"}`},
		{"bad json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.request(t, http.MethodPost, "/api/v1/schedules", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetScheduleNotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/v1/schedules/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Status != "error" || resp.Error == nil {
		t.Errorf("envelope = %+v, want error with details", resp)
	}
}

func TestListSchedules(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < 3; i++ {
		ts.createSchedule(t, fmt.Sprintf("sched-%d", i))
	}

	rec := ts.request(t, http.MethodGet, "/api/v1/schedules?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	data, _ := json.Marshal(resp.Data)
	var out struct {
		Schedules []model.Schedule `json:"schedules"`
		Total     int              `json:"total"`
	}
	json.Unmarshal(data, &out)
	if out.Total != 3 {
		t.Errorf("total = %d, want 3", out.Total)
	}
	if len(out.Schedules) != 2 {
		t.Errorf("got %d schedules, want 2 (limit)", len(out.Schedules))
	}
}

// A generation outcome, success or failure, is always HTTP 200.
func TestGenerateReturnsOutcome(t *testing.T) {
	ts := newTestServer(t)
	ts.createSchedule(t, "sched-1")
	ts.gen.outcome = &model.GenerationOutcome{
		Success:    false,
		ScheduleID: "sched-1",
		Mode:       model.GenerationModeAIAssisted,
		Message:    "schedule optimization service is not available; please try again later or use manual mode",
	}

	rec := ts.request(t, http.MethodPost, "/api/v1/schedules/sched-1/generate", `{"mode":"AI_ASSISTED"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even on generation failure", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	data, _ := json.Marshal(resp.Data)
	var outcome model.GenerationOutcome
	json.Unmarshal(data, &outcome)
	if outcome.Success {
		t.Error("outcome should report failure")
	}
	if !strings.Contains(outcome.Message, "not available") {
		t.Errorf("message = %q, want unreachable guidance", outcome.Message)
	}
}

func TestGenerateDefaultsToAIAssisted(t *testing.T) {
	ts := newTestServer(t)
	ts.createSchedule(t, "sched-1")

	rec := ts.request(t, http.MethodPost, "/api/v1/schedules/sched-1/generate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}
	if ts.gen.lastReq.Mode != model.GenerationModeAIAssisted {
		t.Errorf("mode = %s, want AI_ASSISTED default", ts.gen.lastReq.Mode)
	}
}

func TestGenerateUnknownSchedule(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/v1/schedules/missing/generate", `{"mode":"MANUAL"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGenerateRejectsBadMode(t *testing.T) {
	ts := newTestServer(t)
	ts.createSchedule(t, "sched-1")

	rec := ts.request(t, http.MethodPost, "/api/v1/schedules/sched-1/generate", `{"mode":"TURBO"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateConflictWhenOptimizerDisabled(t *testing.T) {
	ts := newTestServer(t)
	ts.createSchedule(t, "sched-1")
	ts.srv.config.Optimizer.Enabled = false

	rec := ts.request(t, http.MethodPost, "/api/v1/schedules/sched-1/generate", `{"mode":"AI_ASSISTED"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}

	// Manual mode does not need the optimizer.
	rec = ts.request(t, http.MethodPost, "/api/v1/schedules/sched-1/generate", `{"mode":"MANUAL"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("manual status = %d, want 200", rec.Code)
	}
}

func TestExportSchedule(t *testing.T) {
	ts := newTestServer(t)
	ts.createSchedule(t, "sched-1")

	rec := ts.request(t, http.MethodGet, "/api/v1/schedules/sched-1/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	data, _ := json.Marshal(resp.Data)
	var payload optimizer.ExportPayload
	json.Unmarshal(data, &payload)
	if payload.Metadata.ExportID != "export-1" {
		t.Errorf("export id = %q, want export-1", payload.Metadata.ExportID)
	}
}

func TestCompareRequiresBothParams(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/v1/schedules/compare?a=x", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCompareSchedules(t *testing.T) {
	ts := newTestServer(t)
	ts.createSchedule(t, "sched-a")
	ts.createSchedule(t, "sched-b")

	hard := 0
	if err := ts.store.UpdateScheduleScores(context.Background(), "sched-a", &hard, &hard); err != nil {
		t.Fatalf("update scores: %v", err)
	}

	rec := ts.request(t, http.MethodGet, "/api/v1/schedules/compare?a=sched-a&b=sched-b", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	resp := decodeEnvelope(t, rec)
	data, _ := json.Marshal(resp.Data)
	var result model.ComparisonResult
	json.Unmarshal(data, &result)
	if result.Winner != "sched-a" {
		t.Errorf("winner = %q, want sched-a (scored beats unscored)", result.Winner)
	}
}

func TestCompareUnknownSchedule(t *testing.T) {
	ts := newTestServer(t)
	ts.createSchedule(t, "sched-a")

	rec := ts.request(t, http.MethodGet, "/api/v1/schedules/compare?a=sched-a&b=missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
