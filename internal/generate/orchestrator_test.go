package generate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/me/sked/internal/logging"
	"github.com/me/sked/pkg/optimizer"
)

// scriptedClient returns one canned status per poll, repeating the last
// entry once the script runs out. A nil entry means a poll error.
type scriptedClient struct {
	submitID  string
	submitErr error
	statuses  []*optimizer.JobStatus
	result    *optimizer.SolveResult
	resultErr error
	polls     int
}

func (c *scriptedClient) Submit(ctx context.Context, req optimizer.SolveRequest) (string, error) {
	return c.submitID, c.submitErr
}

func (c *scriptedClient) Status(ctx context.Context, jobID string) (*optimizer.JobStatus, error) {
	i := c.polls
	if i >= len(c.statuses) {
		i = len(c.statuses) - 1
	}
	c.polls++
	s := c.statuses[i]
	if s == nil {
		return nil, optimizer.NewError(optimizer.KindUnreachable, "Status", "connection refused")
	}
	return s, nil
}

func (c *scriptedClient) Result(ctx context.Context, jobID string) (*optimizer.SolveResult, error) {
	return c.result, c.resultErr
}

func status(s string) *optimizer.JobStatus {
	return &optimizer.JobStatus{JobID: "job-1", Status: s}
}

func newTestOrchestrator(c JobClient) *Orchestrator {
	return NewOrchestrator(c, 5*time.Millisecond, logging.Nop())
}

func TestPollUntilCompleteSucceeds(t *testing.T) {
	client := &scriptedClient{
		statuses: []*optimizer.JobStatus{
			status("SUBMITTED"),
			status("RUNNING"),
			status("RUNNING"),
			status("SUCCEEDED"),
		},
	}
	o := newTestOrchestrator(client)

	got, err := o.PollUntilComplete(context.Background(), "job-1", time.Second)
	if err != nil {
		t.Fatalf("PollUntilComplete: %v", err)
	}
	if got.State() != "SUCCEEDED" {
		t.Errorf("final state = %s, want SUCCEEDED", got.State())
	}
	if client.polls != 4 {
		t.Errorf("polled %d times, want 4", client.polls)
	}
}

func TestPollUntilCompleteTerminalFailure(t *testing.T) {
	client := &scriptedClient{
		statuses: []*optimizer.JobStatus{
			status("RUNNING"),
			status("FAILED"),
		},
	}
	o := newTestOrchestrator(client)

	got, err := o.PollUntilComplete(context.Background(), "job-1", time.Second)
	if err != nil {
		t.Fatalf("PollUntilComplete: %v", err)
	}
	if got.State() != "FAILED" {
		t.Errorf("final state = %s, want FAILED", got.State())
	}
}

// The budget bounds the wait: a job stuck in RUNNING yields a Timeout
// error instead of hanging.
func TestPollUntilCompleteBudgetExhausted(t *testing.T) {
	client := &scriptedClient{
		statuses: []*optimizer.JobStatus{status("RUNNING")},
	}
	o := newTestOrchestrator(client)

	done := make(chan struct{})
	var err error
	go func() {
		_, err = o.PollUntilComplete(context.Background(), "job-1", 50*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("PollUntilComplete did not return after budget exhaustion")
	}

	if !optimizer.IsTimeout(err) {
		t.Errorf("error = %v, want Timeout kind", err)
	}
	var e *optimizer.Error
	if errors.As(err, &e) && e.JobID != "job-1" {
		t.Errorf("error job id = %q, want job-1", e.JobID)
	}
}

// A dropped poll does not abandon the job.
func TestPollToleratesTransientErrors(t *testing.T) {
	client := &scriptedClient{
		statuses: []*optimizer.JobStatus{
			status("RUNNING"),
			nil,
			nil,
			status("SUCCEEDED"),
		},
	}
	o := newTestOrchestrator(client)

	got, err := o.PollUntilComplete(context.Background(), "job-1", time.Second)
	if err != nil {
		t.Fatalf("PollUntilComplete: %v", err)
	}
	if got.State() != "SUCCEEDED" {
		t.Errorf("final state = %s, want SUCCEEDED", got.State())
	}
}

// Poll errors never abandon a job on their own: a client failing every
// poll keeps the job alive until the budget runs out, ending in Timeout
// rather than Unreachable.
func TestPollFailuresRunToBudget(t *testing.T) {
	client := &scriptedClient{
		statuses: []*optimizer.JobStatus{nil},
	}
	o := newTestOrchestrator(client)

	start := time.Now()
	_, err := o.PollUntilComplete(context.Background(), "job-1", 60*time.Millisecond)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected error after budget exhaustion")
	}
	if !optimizer.IsTimeout(err) {
		t.Errorf("error = %v, want Timeout kind", err)
	}
	if elapsed < 60*time.Millisecond {
		t.Errorf("returned after %s, before the budget ran out", elapsed)
	}
	if client.polls < 5 {
		t.Errorf("polled %d times, want polling to continue through failures", client.polls)
	}
}

// A stale snapshot reporting an earlier state never regresses the
// observed state.
func TestPollStateIsMonotonic(t *testing.T) {
	client := &scriptedClient{
		statuses: []*optimizer.JobStatus{
			status("RUNNING"),
			status("SUBMITTED"), // stale
			status("SUCCEEDED"),
		},
	}
	o := newTestOrchestrator(client)

	got, err := o.PollUntilComplete(context.Background(), "job-1", time.Second)
	if err != nil {
		t.Fatalf("PollUntilComplete: %v", err)
	}
	if got.State() != "SUCCEEDED" {
		t.Errorf("final state = %s, want SUCCEEDED", got.State())
	}
}
