package model

// Course is a catalog entry offered within a schedule.
type Course struct {
	ID         string `json:"id"`
	ScheduleID string `json:"schedule_id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	Subject    string `json:"subject"`
	Department string `json:"department"`
	GradeLevel int    `json:"grade_level"`

	// MaxPerSection is the seat limit used to size sections from demand.
	MaxPerSection int `json:"max_per_section"`

	// CoreRequired marks graduation-required courses, which always take
	// top scheduling priority.
	CoreRequired bool `json:"core_required"`
	Active       bool `json:"active"`
}

// Student is an enrolled student within a schedule.
type Student struct {
	ID         string `json:"id"`
	ScheduleID string `json:"schedule_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	GradeLevel int    `json:"grade_level"`
}

// RequestStatus represents the review state of a course request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusDenied   RequestStatus = "DENIED"
)

// CourseRequest is one student's request to take one course. Demand for
// a course counts every request regardless of status.
type CourseRequest struct {
	ID        string        `json:"id"`
	StudentID string        `json:"student_id"`
	CourseID  string        `json:"course_id"`
	Status    RequestStatus `json:"status"`
	Alternate bool          `json:"alternate"`
}

// Teacher is a staff member who can be assigned to sections.
type Teacher struct {
	ID             string   `json:"id"`
	ScheduleID     string   `json:"schedule_id"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Department     string   `json:"department"`
	Certifications []string `json:"certifications"`
	MaxPeriodsPerDay int    `json:"max_periods_per_day"`
}

// Room is a physical room available for section assignment.
type Room struct {
	ID         string `json:"id"`
	ScheduleID string `json:"schedule_id"`
	Number     string `json:"number"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Capacity   int    `json:"capacity"`
}

// TimeSlot is a recurring meeting window. DaysOfWeek is a comma-separated
// list of weekday names ("MONDAY,WEDNESDAY"); an empty string means the
// slot repeats on every weekday.
type TimeSlot struct {
	ID         string `json:"id"`
	ScheduleID string `json:"schedule_id"`
	Name       string `json:"name"`
	Period     int    `json:"period"`
	DaysOfWeek string `json:"days_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// LunchPeriod is a reserved lunch window for a grade band.
type LunchPeriod struct {
	ID         string `json:"id"`
	ScheduleID string `json:"schedule_id"`
	Name       string `json:"name"`
	GradeLevel int    `json:"grade_level"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}
