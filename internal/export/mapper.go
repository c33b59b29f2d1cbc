// Package export builds the optimizer's input payload from live domain
// state: one deterministic snapshot per generation attempt, with the
// derived fields (section counts, priorities, qualifications, room
// affinities) the optimizer needs but the domain does not store.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/me/sked/internal/store"
	"github.com/me/sked/pkg/model"
	"github.com/me/sked/pkg/optimizer"
)

// Mapper builds ExportPayloads. It performs read queries only; calling
// Build repeatedly over unchanged data yields the same payload apart
// from the export ID and timestamp.
type Mapper struct {
	store   store.Store
	weights model.ConstraintWeights
	logger  *slog.Logger
}

// NewMapper creates a Mapper over the given store and constraint weights.
func NewMapper(st store.Store, weights model.ConstraintWeights, logger *slog.Logger) *Mapper {
	return &Mapper{
		store:   st,
		weights: weights,
		logger:  logger.With("component", "export-mapper"),
	}
}

// courseDerivation pairs a course with its derived optimizer fields.
type courseDerivation struct {
	Course                 *model.Course
	Demand                 int
	SectionsNeeded         int
	Priority               int
	IsAdvanced             bool
	IsSpecialEducation     bool
	RequiredCertifications []string
}

// Build assembles the full export payload for one schedule.
func (m *Mapper) Build(ctx context.Context, scheduleID string) (*optimizer.ExportPayload, error) {
	sched, err := m.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("get schedule %s: %w", scheduleID, err)
	}
	if sched == nil {
		return nil, fmt.Errorf("schedule %s not found", scheduleID)
	}

	students, err := m.store.ListStudents(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	courses, err := m.store.ListCourses(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	requests, err := m.store.ListCourseRequests(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list course requests: %w", err)
	}
	teachers, err := m.store.ListTeachers(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	rooms, err := m.store.ListRooms(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	slots, err := m.store.ListTimeSlots(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	lunches, err := m.store.ListLunchPeriods(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list lunch periods: %w", err)
	}
	sections, err := m.store.ListSections(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}

	// Demand counts every request for a course, across all students,
	// regardless of request status.
	demand := make(map[string]int)
	requestsByStudent := make(map[string][]string)
	for _, r := range requests {
		demand[r.CourseID]++
		requestsByStudent[r.StudentID] = append(requestsByStudent[r.StudentID], r.CourseID)
	}

	derivations := deriveCourses(courses, demand)

	payload := &optimizer.ExportPayload{
		School: optimizer.SchoolInfo{
			ScheduleID: sched.ID,
			Name:       sched.SchoolName,
			Year:       sched.SchoolYear,
		},
		Academic: optimizer.AcademicConfig{
			StartDate:      sched.StartDate,
			EndDate:        sched.EndDate,
			GradingPeriods: synthesizeQuarters(sched.StartDate, sched.EndDate),
		},
		StudentRequests:     mapStudentRequests(students, requestsByStudent),
		Courses:             mapCourses(derivations),
		Teachers:            mapTeachers(teachers, derivations),
		Rooms:               mapRooms(rooms),
		TimeSlots:           mapTimeSlots(slots),
		LunchPeriods:        mapLunchPeriods(lunches),
		Weights:             m.weights,
		PreAssignedSections: mapPreAssigned(sections),
		Metadata: optimizer.ExportMetadata{
			ExportID:    uuid.New().String(),
			GeneratedAt: time.Now().UTC(),
			Source:      "sked",
		},
	}

	m.logger.Debug("export payload built",
		"schedule_id", scheduleID,
		"export_id", payload.Metadata.ExportID,
		"students", len(payload.StudentRequests),
		"courses", len(payload.Courses),
		"teachers", len(payload.Teachers),
		"rooms", len(payload.Rooms),
	)

	return payload, nil
}

// deriveCourses computes the optimizer fields for every course.
func deriveCourses(courses []*model.Course, demand map[string]int) []courseDerivation {
	derivations := make([]courseDerivation, 0, len(courses))
	for _, c := range courses {
		d := demand[c.ID]
		advanced := isAdvanced(c.Name, c.Code)
		specialEd := isSpecialEducation(c.Name, c.Code, c.Subject)
		derivations = append(derivations, courseDerivation{
			Course:                 c,
			Demand:                 d,
			SectionsNeeded:         sectionsNeeded(d, c.MaxPerSection, c.Active),
			Priority:               coursePriority(c.CoreRequired, advanced, d, specialEd),
			IsAdvanced:             advanced,
			IsSpecialEducation:     specialEd,
			RequiredCertifications: requiredCertifications(c.Subject, specialEd),
		})
	}
	return derivations
}

func mapStudentRequests(students []*model.Student, byStudent map[string][]string) []optimizer.StudentRequest {
	out := make([]optimizer.StudentRequest, 0, len(students))
	for _, st := range students {
		out = append(out, optimizer.StudentRequest{
			StudentID:  st.ID,
			GradeLevel: st.GradeLevel,
			CourseIDs:  byStudent[st.ID],
		})
	}
	return out
}

func mapCourses(derivations []courseDerivation) []optimizer.CourseEntry {
	out := make([]optimizer.CourseEntry, 0, len(derivations))
	for _, d := range derivations {
		c := d.Course
		out = append(out, optimizer.CourseEntry{
			CourseID:               c.ID,
			Name:                   c.Name,
			Code:                   c.Code,
			Subject:                c.Subject,
			Department:             c.Department,
			GradeLevel:             c.GradeLevel,
			MaxPerSection:          c.MaxPerSection,
			Active:                 c.Active,
			CoreRequired:           c.CoreRequired,
			TotalDemand:            d.Demand,
			SectionsNeeded:         d.SectionsNeeded,
			Priority:               d.Priority,
			IsAdvanced:             d.IsAdvanced,
			IsSpecialEducation:     d.IsSpecialEducation,
			RequiredCertifications: d.RequiredCertifications,
		})
	}
	return out
}

func mapTeachers(teachers []*model.Teacher, derivations []courseDerivation) []optimizer.TeacherEntry {
	out := make([]optimizer.TeacherEntry, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, optimizer.TeacherEntry{
			TeacherID:          t.ID,
			Name:               t.FirstName + " " + t.LastName,
			Department:         t.Department,
			Certifications:     t.Certifications,
			MaxPeriodsPerDay:   t.MaxPeriodsPerDay,
			QualifiedCourseIDs: qualifiedCourseIDs(t, derivations),
		})
	}
	return out
}

func mapRooms(rooms []*model.Room) []optimizer.RoomEntry {
	out := make([]optimizer.RoomEntry, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, optimizer.RoomEntry{
			RoomID:              r.ID,
			Number:              r.Number,
			Name:                r.Name,
			Type:                r.Type,
			Capacity:            r.Capacity,
			AssignedDepartments: roomDepartments(r),
		})
	}
	return out
}

func mapTimeSlots(slots []*model.TimeSlot) []optimizer.TimeSlotEntry {
	out := make([]optimizer.TimeSlotEntry, 0, len(slots))
	for _, ts := range slots {
		out = append(out, optimizer.TimeSlotEntry{
			TimeSlotID: ts.ID,
			Name:       ts.Name,
			Period:     ts.Period,
			DayOfWeek:  dayOfWeekCode(ts.DaysOfWeek),
			StartTime:  ts.StartTime,
			EndTime:    ts.EndTime,
		})
	}
	return out
}

func mapLunchPeriods(lunches []*model.LunchPeriod) []optimizer.LunchPeriodEntry {
	out := make([]optimizer.LunchPeriodEntry, 0, len(lunches))
	for _, lp := range lunches {
		out = append(out, optimizer.LunchPeriodEntry{
			Name:       lp.Name,
			GradeLevel: lp.GradeLevel,
			StartTime:  lp.StartTime,
			EndTime:    lp.EndTime,
		})
	}
	return out
}

// mapPreAssigned pins sections that already exist on the schedule so a
// re-solve keeps manual placements in place.
func mapPreAssigned(sections []*model.Section) []optimizer.PreAssignedSection {
	out := make([]optimizer.PreAssignedSection, 0, len(sections))
	for _, sec := range sections {
		if sec.TeacherID == "" || sec.RoomID == "" || sec.TimeSlotID == "" {
			continue
		}
		out = append(out, optimizer.PreAssignedSection{
			CourseID:      sec.CourseID,
			TeacherID:     sec.TeacherID,
			RoomID:        sec.RoomID,
			TimeSlotID:    sec.TimeSlotID,
			SectionNumber: sec.SectionNumber,
		})
	}
	return out
}
