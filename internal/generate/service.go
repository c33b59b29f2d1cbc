// Package generate runs the end-to-end schedule generation flow: make
// the optimizer reachable, export the domain snapshot, submit a solve
// job, poll it within a time budget, and reconcile the solution back
// into storage. Every failure becomes a structured outcome; errors
// never escape Generate.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/sked/pkg/model"
	"github.com/me/sked/pkg/optimizer"
)

// ProcessEnsurer makes the optimizer process reachable, launching it
// when necessary.
type ProcessEnsurer interface {
	EnsureRunning(ctx context.Context) (launched bool, err error)
}

// PayloadBuilder builds the optimizer export payload for a schedule.
type PayloadBuilder interface {
	Build(ctx context.Context, scheduleID string) (*optimizer.ExportPayload, error)
}

// DataClient covers the non-job optimizer endpoints the service uses.
type DataClient interface {
	Health(ctx context.Context) error
	ImportData(ctx context.Context, payload *optimizer.ExportPayload) error
}

// Reconciler imports a solve result into storage and validates it.
type Reconciler interface {
	Reconcile(ctx context.Context, scheduleID string, result *optimizer.SolveResult) (*model.ImportOutcome, *model.ValidationOutcome, error)
}

// Archiver persists a copy of an export payload for audit and replay.
type Archiver interface {
	Archive(ctx context.Context, payload *optimizer.ExportPayload) (location string, err error)
}

// Request asks for one generation attempt.
type Request struct {
	ScheduleID string
	Mode       model.GenerationMode

	// TimeBudget bounds the solve poll loop; zero means the service
	// default.
	TimeBudget time.Duration
}

// Service coordinates one generation attempt end to end.
type Service struct {
	ensurer       ProcessEnsurer
	mapper        PayloadBuilder
	client        DataClient
	orchestrator  *Orchestrator
	reconciler    Reconciler
	archiver      Archiver
	defaultBudget time.Duration
	logger        *slog.Logger
}

// NewService wires the generation flow. ensurer and archiver may be nil:
// without an ensurer the optimizer must already be running, and without
// an archiver payloads are not persisted.
func NewService(
	ensurer ProcessEnsurer,
	mapper PayloadBuilder,
	client DataClient,
	orchestrator *Orchestrator,
	reconciler Reconciler,
	archiver Archiver,
	defaultBudget time.Duration,
	logger *slog.Logger,
) *Service {
	if defaultBudget <= 0 {
		defaultBudget = 5 * time.Minute
	}
	return &Service{
		ensurer:       ensurer,
		mapper:        mapper,
		client:        client,
		orchestrator:  orchestrator,
		reconciler:    reconciler,
		archiver:      archiver,
		defaultBudget: defaultBudget,
		logger:        logger.With("component", "generate"),
	}
}

// Generate runs one generation attempt and always returns an outcome.
// MANUAL mode performs no optimization and succeeds immediately.
func (s *Service) Generate(ctx context.Context, req Request) *model.GenerationOutcome {
	outcome := &model.GenerationOutcome{
		ScheduleID:     req.ScheduleID,
		Mode:           req.Mode,
		RequiresReview: req.Mode.RequiresReview(),
	}

	if !req.Mode.UsesOptimizer() {
		outcome.Success = true
		outcome.Message = "manual mode: schedule left for hand editing, no solve submitted"
		return outcome
	}

	budget := req.TimeBudget
	if budget <= 0 {
		budget = s.defaultBudget
	}

	s.logger.Info("generation started",
		"schedule_id", req.ScheduleID,
		"mode", req.Mode,
		"budget", budget,
	)

	if err := s.ensureReachable(ctx); err != nil {
		s.logger.Error("optimizer unreachable", "schedule_id", req.ScheduleID, "err", err)
		outcome.Message = "schedule optimization service is not available; please try again later or use manual mode"
		return outcome
	}

	payload, err := s.mapper.Build(ctx, req.ScheduleID)
	if err != nil {
		s.logger.Error("export failed", "schedule_id", req.ScheduleID, "err", err)
		outcome.Message = fmt.Sprintf("could not export schedule data: %v", err)
		return outcome
	}

	if s.archiver != nil {
		if loc, err := s.archiver.Archive(ctx, payload); err != nil {
			// Archiving is best effort; a failed archive never blocks a solve.
			s.logger.Warn("payload archive failed", "export_id", payload.Metadata.ExportID, "err", err)
		} else {
			s.logger.Debug("payload archived", "export_id", payload.Metadata.ExportID, "location", loc)
		}
	}

	if err := s.client.ImportData(ctx, payload); err != nil {
		s.logger.Error("data push failed", "schedule_id", req.ScheduleID, "err", err)
		outcome.Message = s.failureMessage(err, "optimizer refused the exported data")
		return outcome
	}

	solveReq := optimizer.SolveRequest{
		OptimizationTimeSeconds:    int(budget.Seconds()),
		EnableAdvancedOptimization: req.Mode == model.GenerationModeFullyAutomated,
		OptimizationMode:           req.Mode.OptimizationMode(),
	}

	jobID, err := s.orchestrator.Submit(ctx, solveReq)
	if err != nil {
		s.logger.Error("submit failed", "schedule_id", req.ScheduleID, "err", err)
		outcome.Message = s.failureMessage(err, "optimizer rejected the solve request")
		return outcome
	}
	outcome.JobID = jobID

	status, err := s.orchestrator.PollUntilComplete(ctx, jobID, budget)
	if status != nil {
		outcome.ElapsedSeconds = status.ElapsedSeconds
	}
	if err != nil {
		s.logger.Error("poll ended without success",
			"schedule_id", req.ScheduleID,
			"job_id", jobID,
			"err", err,
		)
		outcome.Message = s.failureMessage(err, "optimization did not finish")
		return outcome
	}

	if state := status.State(); state != model.JobStateSucceeded {
		s.logger.Error("solve ended in failure state",
			"schedule_id", req.ScheduleID,
			"job_id", jobID,
			"state", state,
		)
		outcome.Message = fmt.Sprintf("optimization ended in state %s without a solution", state)
		return outcome
	}

	result, err := s.orchestrator.Result(ctx, jobID)
	if err != nil {
		s.logger.Error("result fetch failed", "schedule_id", req.ScheduleID, "job_id", jobID, "err", err)
		outcome.Message = s.failureMessage(err, "could not fetch the completed solution")
		return outcome
	}

	imported, validation, err := s.reconciler.Reconcile(ctx, req.ScheduleID, result)
	if err != nil {
		s.logger.Error("reconcile failed", "schedule_id", req.ScheduleID, "job_id", jobID, "err", err)
		outcome.Message = fmt.Sprintf("solution import failed: %v", err)
		return outcome
	}

	outcome.Success = true
	outcome.HardScore = imported.HardScore
	outcome.SoftScore = imported.SoftScore
	outcome.SectionsCreated = imported.SectionsCreated
	outcome.StudentsScheduled = imported.StudentsScheduled
	outcome.Validation = validation
	if validation != nil && !validation.IsValid {
		outcome.Message = fmt.Sprintf("schedule generated with %d conflicts to resolve", validation.ConflictCount)
	} else {
		outcome.Message = "schedule generated successfully"
	}

	s.logger.Info("generation finished",
		"schedule_id", req.ScheduleID,
		"job_id", jobID,
		"sections", outcome.SectionsCreated,
		"students", outcome.StudentsScheduled,
		"elapsed_s", outcome.ElapsedSeconds,
	)
	return outcome
}

// ensureReachable makes the optimizer answer health checks, launching
// the process when a supervisor is configured.
func (s *Service) ensureReachable(ctx context.Context) error {
	if s.ensurer != nil {
		_, err := s.ensurer.EnsureRunning(ctx)
		return err
	}
	return s.client.Health(ctx)
}

// failureMessage renders a user-facing message for an optimizer error,
// keyed off its kind.
func (s *Service) failureMessage(err error, fallback string) string {
	switch optimizer.KindOf(err) {
	case optimizer.KindUnreachable:
		return "schedule optimization service is not available; please try again later or use manual mode"
	case optimizer.KindTimeout:
		return "optimization did not complete within the time budget; the schedule was left unchanged"
	case optimizer.KindRejected:
		return fmt.Sprintf("optimizer rejected the request: %v", err)
	case optimizer.KindProcessLaunchFailed:
		return "schedule optimization service is not available: the optimizer process could not be started"
	default:
		return fmt.Sprintf("%s: %v", fallback, err)
	}
}
