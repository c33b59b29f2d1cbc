package model

// JobState represents the lifecycle state of one optimizer job as seen
// by the orchestrator.
type JobState string

const (
	JobStateNotSubmitted JobState = "NOT_SUBMITTED"
	JobStateSubmitted    JobState = "SUBMITTED"
	JobStateRunning      JobState = "RUNNING"
	JobStateSucceeded    JobState = "SUCCEEDED"
	JobStateFailed       JobState = "FAILED"
	JobStateRejected     JobState = "REJECTED"
)

// String returns the string representation of the job state.
func (s JobState) String() string {
	return string(s)
}

// IsTerminal returns true if the job is in a final state.
func (s JobState) IsTerminal() bool {
	switch s {
	case JobStateSucceeded, JobStateFailed, JobStateRejected:
		return true
	}
	return false
}

// ValidJobTransitions defines the allowed state transitions for jobs.
// Terminal states have no successors; a job never regresses.
var ValidJobTransitions = map[JobState][]JobState{
	JobStateNotSubmitted: {JobStateSubmitted, JobStateRejected},
	JobStateSubmitted:    {JobStateRunning, JobStateSucceeded, JobStateFailed},
	JobStateRunning:      {JobStateSucceeded, JobStateFailed},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s JobState) CanTransitionTo(next JobState) bool {
	for _, allowed := range ValidJobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// GenerationMode selects how a schedule is produced.
type GenerationMode string

const (
	GenerationModeManual         GenerationMode = "MANUAL"
	GenerationModeAIAssisted     GenerationMode = "AI_ASSISTED"
	GenerationModeFullyAutomated GenerationMode = "FULLY_AUTOMATED"
)

// UsesOptimizer returns true for the modes that submit a job to the
// external optimizer.
func (m GenerationMode) UsesOptimizer() bool {
	return m == GenerationModeAIAssisted || m == GenerationModeFullyAutomated
}

// OptimizationMode maps a generation mode to the optimizer's mode string.
// AI_ASSISTED runs a balanced solve and flags the result for manual
// review; FULLY_AUTOMATED runs a thorough solve and publishes directly.
func (m GenerationMode) OptimizationMode() string {
	if m == GenerationModeFullyAutomated {
		return "THOROUGH"
	}
	return "BALANCED"
}

// RequiresReview returns true when the generated schedule should be
// flagged for manual editing before publication.
func (m GenerationMode) RequiresReview() bool {
	return m == GenerationModeAIAssisted
}
