package optimizer

import "github.com/me/sked/pkg/model"

// SolveRequest contains the parameters for submitting a solve job.
type SolveRequest struct {
	// OptimizationTimeSeconds is the solver's time budget.
	OptimizationTimeSeconds int `json:"optimizationTimeSeconds"`

	// EnableAdvancedOptimization turns on the solver's second-phase moves.
	EnableAdvancedOptimization bool `json:"enableAdvancedOptimization"`

	// OptimizationMode is "BALANCED" or "THOROUGH".
	OptimizationMode string `json:"optimizationMode"`
}

// SubmitResponse is the optimizer's reply to a solve submission.
type SubmitResponse struct {
	JobID string `json:"jobId"`
}

// JobStatus is one status snapshot of a running or finished job.
type JobStatus struct {
	JobID          string  `json:"jobId"`
	Status         string  `json:"status"`
	HardScore      *int    `json:"hardScore,omitempty"`
	SoftScore      *int    `json:"softScore,omitempty"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

// State maps the optimizer's raw status string to a JobState.
func (s *JobStatus) State() model.JobState {
	return MapState(s.Status)
}

// SolvedSection is one section assignment in a completed solution.
type SolvedSection struct {
	CourseID      string   `json:"courseId"`
	TeacherID     string   `json:"teacherId"`
	RoomID        string   `json:"roomId"`
	TimeSlotID    string   `json:"timeSlotId"`
	SectionNumber int      `json:"sectionNumber"`
	StudentIDs    []string `json:"studentIds"`
}

// SolveResult is the full solution for a succeeded job.
type SolveResult struct {
	JobID          string          `json:"jobId"`
	HardScore      *int            `json:"hardScore,omitempty"`
	SoftScore      *int            `json:"softScore,omitempty"`
	ElapsedSeconds float64         `json:"elapsedSeconds"`
	Sections       []SolvedSection `json:"sections"`
}

// MapState converts an optimizer job status string to a JobState.
func MapState(status string) model.JobState {
	switch status {
	case "SUBMITTED", "QUEUED", "NOT_STARTED":
		return model.JobStateSubmitted
	case "RUNNING", "SOLVING", "SOLVING_SCHEDULED":
		return model.JobStateRunning
	case "SUCCEEDED", "COMPLETED", "SOLVED":
		return model.JobStateSucceeded
	case "FAILED", "ERROR", "TERMINATED":
		return model.JobStateFailed
	case "REJECTED":
		return model.JobStateRejected
	default:
		return model.JobStateRunning
	}
}
