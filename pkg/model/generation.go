package model

// GenerationOutcome is the structured result of one generation attempt.
// Every failure path produces an outcome with Success=false and a
// human-readable Message; errors never cross the generation boundary.
type GenerationOutcome struct {
	Success        bool           `json:"success"`
	ScheduleID     string         `json:"schedule_id"`
	JobID          string         `json:"job_id,omitempty"`
	Mode           GenerationMode `json:"mode"`
	RequiresReview bool           `json:"requires_review"`

	HardScore      *int    `json:"hard_score,omitempty"`
	SoftScore      *int    `json:"soft_score,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`

	SectionsCreated   int `json:"sections_created"`
	StudentsScheduled int `json:"students_scheduled"`

	Validation *ValidationOutcome `json:"validation,omitempty"`
	Message    string             `json:"message"`
}

// ImportOutcome reports the result of importing an optimizer solution
// into the domain store.
type ImportOutcome struct {
	Success           bool   `json:"success"`
	SectionsCreated   int    `json:"sections_created"`
	StudentsScheduled int    `json:"students_scheduled"`
	HardScore         *int   `json:"hard_score,omitempty"`
	SoftScore         *int   `json:"soft_score,omitempty"`
	Message           string `json:"message"`
}

// ConflictKind classifies a validation conflict.
type ConflictKind string

const (
	ConflictTeacherDoubleBooked ConflictKind = "TEACHER_DOUBLE_BOOKED"
	ConflictRoomDoubleBooked    ConflictKind = "ROOM_DOUBLE_BOOKED"
	ConflictStudentOverlap      ConflictKind = "STUDENT_OVERLAP"
	ConflictRoomOverCapacity    ConflictKind = "ROOM_OVER_CAPACITY"
)

// Conflict is one constraint violation found during validation.
type Conflict struct {
	Kind        ConflictKind `json:"kind"`
	Description string       `json:"description"`
	SectionIDs  []string     `json:"section_ids,omitempty"`
}

// ValidationOutcome summarizes a post-import validation pass. It is
// produced after every successful import, conflicts or not.
type ValidationOutcome struct {
	IsValid       bool       `json:"is_valid"`
	ConflictCount int        `json:"conflict_count"`
	Conflicts     []Conflict `json:"conflicts"`
}

// ScheduleSummary is the per-schedule input to a comparison: scores from
// the last generation plus the current conflict count. Nil scores mean
// the schedule has never been scored.
type ScheduleSummary struct {
	ScheduleID    string `json:"schedule_id"`
	HardScore     *int   `json:"hard_score,omitempty"`
	SoftScore     *int   `json:"soft_score,omitempty"`
	ConflictCount int    `json:"conflict_count"`
}

// ComparisonResult is the outcome of comparing two candidate schedules.
// Winner is the ID of the preferred schedule, or empty when the two are
// equivalent.
type ComparisonResult struct {
	A              ScheduleSummary `json:"a"`
	B              ScheduleSummary `json:"b"`
	Winner         string          `json:"winner,omitempty"`
	Recommendation string          `json:"recommendation"`
}
