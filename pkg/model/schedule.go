// Package model defines the domain entities shared across sked:
// schedules and the students, courses, teachers, rooms, and time slots
// that belong to them, plus the generation lifecycle types.
package model

import "time"

// ScheduleStatus represents the lifecycle state of a Schedule.
type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "DRAFT"
	ScheduleStatusGenerated ScheduleStatus = "GENERATED"
	ScheduleStatusPublished ScheduleStatus = "PUBLISHED"
	ScheduleStatusArchived  ScheduleStatus = "ARCHIVED"
)

// Schedule is a master schedule for one school term.
type Schedule struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	SchoolName string         `json:"school_name"`
	SchoolYear string         `json:"school_year"`
	Status     ScheduleStatus `json:"status"`
	StartDate  time.Time      `json:"start_date"`
	EndDate    time.Time      `json:"end_date"`

	// HardScore and SoftScore hold the optimizer's quality measures for
	// the last completed generation. Nil until a generation succeeds.
	HardScore *int `json:"hard_score,omitempty"`
	SoftScore *int `json:"soft_score,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GradingPeriod is one grading span within a schedule's date range.
type GradingPeriod struct {
	Name              string    `json:"name"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	InstructionalDays int       `json:"instructional_days"`
}

// Section is one scheduled meeting of a course: a teacher, a room, a
// time slot, and a roster. Sections are written by the result importer.
type Section struct {
	ID            string    `json:"id"`
	ScheduleID    string    `json:"schedule_id"`
	CourseID      string    `json:"course_id"`
	TeacherID     string    `json:"teacher_id"`
	RoomID        string    `json:"room_id"`
	TimeSlotID    string    `json:"time_slot_id"`
	SectionNumber int       `json:"section_number"`
	StudentIDs    []string  `json:"student_ids"`
	CreatedAt     time.Time `json:"created_at"`
}
