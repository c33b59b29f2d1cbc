package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/sked/pkg/model"
	"github.com/me/sked/pkg/optimizer"
)

// JobClient is the slice of the optimizer API the orchestrator drives.
type JobClient interface {
	Submit(ctx context.Context, req optimizer.SolveRequest) (string, error)
	Status(ctx context.Context, jobID string) (*optimizer.JobStatus, error)
	Result(ctx context.Context, jobID string) (*optimizer.SolveResult, error)
}

// Orchestrator submits solve jobs and polls them to completion within a
// time budget.
type Orchestrator struct {
	client       JobClient
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewOrchestrator creates an Orchestrator polling at the given interval.
func NewOrchestrator(client JobClient, pollInterval time.Duration, logger *slog.Logger) *Orchestrator {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Orchestrator{
		client:       client,
		pollInterval: pollInterval,
		logger:       logger.With("component", "orchestrator"),
	}
}

// Submit starts a solve job and returns its identifier.
func (o *Orchestrator) Submit(ctx context.Context, req optimizer.SolveRequest) (string, error) {
	return o.client.Submit(ctx, req)
}

// PollUntilComplete polls a job until it reaches a terminal state or the
// time budget runs out. The observed state only moves forward: a stale
// snapshot reporting an earlier state is ignored. Poll errors are
// informational; only the budget or an optimizer-reported terminal
// status ends polling.
//
// On budget exhaustion the job may still be running on the optimizer
// side; the returned Timeout error reports the last observed state.
func (o *Orchestrator) PollUntilComplete(ctx context.Context, jobID string, budget time.Duration) (*optimizer.JobStatus, error) {
	deadline := time.NewTimer(budget)
	defer deadline.Stop()

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	state := model.JobStateSubmitted
	var last *optimizer.JobStatus
	failures := 0

	for {
		status, err := o.client.Status(ctx, jobID)
		switch {
		case err != nil:
			failures++
			o.logger.Warn("poll failed",
				"job_id", jobID,
				"consecutive_failures", failures,
				"err", err,
			)
		default:
			failures = 0
			last = status
			next := status.State()
			if next != state && state.CanTransitionTo(next) {
				o.logger.Info("job state changed",
					"job_id", jobID,
					"from", state,
					"to", next,
					"elapsed_s", status.ElapsedSeconds,
				)
				state = next
			}
			if state.IsTerminal() {
				return status, nil
			}
		}

		select {
		case <-ctx.Done():
			return last, &optimizer.Error{
				Kind:    optimizer.KindTimeout,
				Op:      "orchestrator.poll",
				JobID:   jobID,
				Message: "cancelled while polling",
				Err:     ctx.Err(),
			}
		case <-deadline.C:
			return last, &optimizer.Error{
				Kind:    optimizer.KindTimeout,
				Op:      "orchestrator.poll",
				JobID:   jobID,
				Message: fmt.Sprintf("time budget %s exhausted in state %s", budget, state),
			}
		case <-ticker.C:
		}
	}
}

// Result fetches the solution for a job that reached SUCCEEDED.
func (o *Orchestrator) Result(ctx context.Context, jobID string) (*optimizer.SolveResult, error) {
	return o.client.Result(ctx, jobID)
}
