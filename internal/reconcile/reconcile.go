// Package reconcile takes a completed optimizer solution and folds it
// back into the domain: import the section assignments, then validate
// the imported schedule. Validation always runs after a successful
// import so a generated schedule is never reported without its
// conflict count.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/me/sked/pkg/model"
	"github.com/me/sked/pkg/optimizer"
)

// Importer writes a solve result into storage.
type Importer interface {
	Import(ctx context.Context, scheduleID string, result *optimizer.SolveResult) (*model.ImportOutcome, error)
}

// Validator checks an imported schedule for constraint conflicts.
type Validator interface {
	Validate(ctx context.Context, scheduleID string) (*model.ValidationOutcome, error)
}

// Reconciler runs import then validation as one unit.
type Reconciler struct {
	importer  Importer
	validator Validator
	logger    *slog.Logger
}

// NewReconciler creates a Reconciler.
func NewReconciler(importer Importer, validator Validator, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		importer:  importer,
		validator: validator,
		logger:    logger.With("component", "reconciler"),
	}
}

// Reconcile imports the solution and validates the result. A failed
// import aborts before validation; a failed validation still reports
// the successful import alongside the error.
func (r *Reconciler) Reconcile(ctx context.Context, scheduleID string, result *optimizer.SolveResult) (*model.ImportOutcome, *model.ValidationOutcome, error) {
	imported, err := r.importer.Import(ctx, scheduleID, result)
	if err != nil {
		return nil, nil, optimizer.WrapError(optimizer.KindImportFailed, "reconcile.import",
			fmt.Errorf("schedule %s: %w", scheduleID, err))
	}
	if !imported.Success {
		return imported, nil, optimizer.NewError(optimizer.KindImportFailed, "reconcile.import", imported.Message)
	}

	r.logger.Info("solution imported",
		"schedule_id", scheduleID,
		"job_id", result.JobID,
		"sections", imported.SectionsCreated,
		"students", imported.StudentsScheduled,
	)

	validation, err := r.validator.Validate(ctx, scheduleID)
	if err != nil {
		return imported, nil, optimizer.WrapError(optimizer.KindImportFailed, "reconcile.validate",
			fmt.Errorf("schedule %s: %w", scheduleID, err))
	}

	if !validation.IsValid {
		r.logger.Warn("imported schedule has conflicts",
			"schedule_id", scheduleID,
			"conflicts", validation.ConflictCount,
		)
	}
	return imported, validation, nil
}
