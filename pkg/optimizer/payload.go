package optimizer

import (
	"time"

	"github.com/me/sked/pkg/model"
)

// ExportPayload is the optimizer's full input schema: a snapshot of one
// schedule's domain state plus the derived fields the solver needs. It
// is built fresh for every export and has no lifecycle of its own.
type ExportPayload struct {
	School              SchoolInfo               `json:"school"`
	Academic            AcademicConfig           `json:"academic"`
	StudentRequests     []StudentRequest         `json:"studentRequests"`
	Courses             []CourseEntry            `json:"courses"`
	Teachers            []TeacherEntry           `json:"teachers"`
	Rooms               []RoomEntry              `json:"rooms"`
	TimeSlots           []TimeSlotEntry          `json:"timeSlots"`
	LunchPeriods        []LunchPeriodEntry       `json:"lunchPeriods"`
	Weights             model.ConstraintWeights  `json:"constraintWeights"`
	PreAssignedSections []PreAssignedSection     `json:"preAssignedSections"`
	Metadata            ExportMetadata           `json:"metadata"`
}

// SchoolInfo identifies the school and schedule being solved.
type SchoolInfo struct {
	ScheduleID string `json:"scheduleId"`
	Name       string `json:"name"`
	Year       string `json:"year"`
}

// AcademicConfig carries the term structure.
type AcademicConfig struct {
	StartDate      time.Time             `json:"startDate"`
	EndDate        time.Time             `json:"endDate"`
	GradingPeriods []model.GradingPeriod `json:"gradingPeriods"`
}

// StudentRequest is one student's course request list.
type StudentRequest struct {
	StudentID  string   `json:"studentId"`
	GradeLevel int      `json:"gradeLevel"`
	CourseIDs  []string `json:"courseIds"`
}

// CourseEntry is a course catalog entry enriched with the derived fields
// the optimizer needs but the domain does not store directly.
type CourseEntry struct {
	CourseID               string   `json:"courseId"`
	Name                   string   `json:"name"`
	Code                   string   `json:"code"`
	Subject                string   `json:"subject"`
	Department             string   `json:"department"`
	GradeLevel             int      `json:"gradeLevel"`
	MaxPerSection          int      `json:"maxPerSection"`
	Active                 bool     `json:"active"`
	CoreRequired           bool     `json:"coreRequired"`
	TotalDemand            int      `json:"totalDemand"`
	SectionsNeeded         int      `json:"sectionsNeeded"`
	Priority               int      `json:"priority"`
	IsAdvanced             bool     `json:"isAdvanced"`
	IsSpecialEducation     bool     `json:"isSpecialEducation"`
	RequiredCertifications []string `json:"requiredCertifications"`
}

// TeacherEntry is a teacher availability entry with derived course
// qualifications.
type TeacherEntry struct {
	TeacherID          string   `json:"teacherId"`
	Name               string   `json:"name"`
	Department         string   `json:"department"`
	Certifications     []string `json:"certifications"`
	MaxPeriodsPerDay   int      `json:"maxPeriodsPerDay"`
	QualifiedCourseIDs []string `json:"qualifiedCourseIds"`
}

// RoomEntry is a room availability entry with derived department affinity.
type RoomEntry struct {
	RoomID              string   `json:"roomId"`
	Number              string   `json:"number"`
	Name                string   `json:"name"`
	Type                string   `json:"type"`
	Capacity            int      `json:"capacity"`
	AssignedDepartments []string `json:"assignedDepartments"`
}

// TimeSlotEntry is a meeting window in the optimizer's encoding.
// DayOfWeek 0 means every weekday; 1-7 is a single specific weekday.
type TimeSlotEntry struct {
	TimeSlotID string `json:"timeSlotId"`
	Name       string `json:"name"`
	Period     int    `json:"period"`
	DayOfWeek  int    `json:"dayOfWeek"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
}

// LunchPeriodEntry is a reserved lunch window.
type LunchPeriodEntry struct {
	Name       string `json:"name"`
	GradeLevel int    `json:"gradeLevel"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
}

// PreAssignedSection pins a section that the solver must keep in place.
type PreAssignedSection struct {
	CourseID      string `json:"courseId"`
	TeacherID     string `json:"teacherId"`
	RoomID        string `json:"roomId"`
	TimeSlotID    string `json:"timeSlotId"`
	SectionNumber int    `json:"sectionNumber"`
}

// ExportMetadata identifies one export snapshot.
type ExportMetadata struct {
	ExportID    string    `json:"exportId"`
	GeneratedAt time.Time `json:"generatedAt"`
	Source      string    `json:"source"`
}
