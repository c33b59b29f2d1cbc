package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/me/sked/internal/generate"
	"github.com/me/sked/internal/reconcile"
	"github.com/me/sked/pkg/model"
)

// handleListSchedules returns schedules, paginated via limit/offset.
func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts := model.DefaultListOptions()
	if v := r.URL.Query().Get("limit"); v != "" {
		opts.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		opts.Offset, _ = strconv.Atoi(v)
	}
	opts.Clamp()

	schedules, total, err := s.store.ListSchedules(r.Context(), opts)
	if err != nil {
		s.logger.Error("list schedules failed", "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to list schedules"})
		return
	}

	respondOK(w, reqID, map[string]any{
		"schedules": schedules,
		"total":     total,
	})
}

type createScheduleRequest struct {
	Name       string    `json:"name"`
	SchoolName string    `json:"school_name"`
	SchoolYear string    `json:"school_year"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// handleCreateSchedule creates an empty draft schedule.
func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid JSON body"))
		return
	}
	if req.Name == "" {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("name is required"))
		return
	}
	if !req.EndDate.After(req.StartDate) {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("end_date must be after start_date"))
		return
	}

	now := time.Now().UTC()
	sched := &model.Schedule{
		ID:         uuid.New().String(),
		Name:       req.Name,
		SchoolName: req.SchoolName,
		SchoolYear: req.SchoolYear,
		Status:     model.ScheduleStatusDraft,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateSchedule(r.Context(), sched); err != nil {
		s.logger.Error("create schedule failed", "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to create schedule"})
		return
	}

	respondCreated(w, reqID, sched)
}

// handleGetSchedule returns one schedule by ID.
func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	sched, err := s.store.GetSchedule(r.Context(), id)
	if err != nil {
		s.logger.Error("get schedule failed", "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to get schedule"})
		return
	}
	if sched == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("schedule", id))
		return
	}

	respondOK(w, reqID, sched)
}

type generateRequest struct {
	Mode              string `json:"mode"`
	TimeBudgetSeconds int    `json:"time_budget_seconds"`
}

// handleGenerateSchedule runs one generation attempt. The outcome is
// always 200 with a structured result; success=false carries the
// human-readable failure message.
func (s *Server) handleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	sched, err := s.store.GetSchedule(r.Context(), id)
	if err != nil {
		s.logger.Error("get schedule failed", "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to get schedule"})
		return
	}
	if sched == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("schedule", id))
		return
	}

	var req generateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid JSON body"))
			return
		}
	}

	mode := model.GenerationMode(req.Mode)
	if mode == "" {
		mode = model.GenerationModeAIAssisted
	}
	switch mode {
	case model.GenerationModeManual, model.GenerationModeAIAssisted, model.GenerationModeFullyAutomated:
	default:
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("mode must be MANUAL, AI_ASSISTED, or FULLY_AUTOMATED"))
		return
	}

	if mode.UsesOptimizer() && !s.config.Optimizer.Enabled {
		respondError(w, reqID, http.StatusConflict, &model.APIError{
			Code:    model.ErrConflict,
			Message: "schedule generation is disabled on this server",
		})
		return
	}

	outcome := s.generator.Generate(r.Context(), generate.Request{
		ScheduleID: id,
		Mode:       mode,
		TimeBudget: time.Duration(req.TimeBudgetSeconds) * time.Second,
	})
	respondOK(w, reqID, outcome)
}

// handleExportSchedule returns the optimizer payload that a generation
// would submit, for inspection and debugging.
func (s *Server) handleExportSchedule(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	sched, err := s.store.GetSchedule(r.Context(), id)
	if err != nil {
		s.logger.Error("get schedule failed", "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to get schedule"})
		return
	}
	if sched == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("schedule", id))
		return
	}

	payload, err := s.mapper.Build(r.Context(), id)
	if err != nil {
		s.logger.Error("export build failed", "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to build export payload"})
		return
	}

	respondOK(w, reqID, payload)
}

// handleCompareSchedules compares two candidate schedules by conflicts
// then optimization score.
func (s *Server) handleCompareSchedules(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	aID := r.URL.Query().Get("a")
	bID := r.URL.Query().Get("b")
	if aID == "" || bID == "" {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("query parameters a and b are required"))
		return
	}

	a, ok := s.scheduleSummary(w, r, reqID, aID)
	if !ok {
		return
	}
	b, ok := s.scheduleSummary(w, r, reqID, bID)
	if !ok {
		return
	}

	respondOK(w, reqID, reconcile.Compare(a, b))
}

// scheduleSummary loads one schedule's comparison inputs, writing the
// error response itself when the schedule is missing or a query fails.
func (s *Server) scheduleSummary(w http.ResponseWriter, r *http.Request, reqID, id string) (model.ScheduleSummary, bool) {
	sched, err := s.store.GetSchedule(r.Context(), id)
	if err != nil {
		s.logger.Error("get schedule failed", "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to get schedule"})
		return model.ScheduleSummary{}, false
	}
	if sched == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("schedule", id))
		return model.ScheduleSummary{}, false
	}

	validation, err := s.validator.Validate(r.Context(), id)
	if err != nil {
		s.logger.Error("validate failed", "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError,
			&model.APIError{Code: model.ErrInternal, Message: "failed to validate schedule"})
		return model.ScheduleSummary{}, false
	}

	return model.ScheduleSummary{
		ScheduleID:    sched.ID,
		HardScore:     sched.HardScore,
		SoftScore:     sched.SoftScore,
		ConflictCount: validation.ConflictCount,
	}, true
}
