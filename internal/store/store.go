package store

import (
	"context"

	"github.com/me/sked/pkg/model"
)

// Store defines the persistence layer for sked entities.
type Store interface {
	// Schedule CRUD
	CreateSchedule(ctx context.Context, s *model.Schedule) error
	GetSchedule(ctx context.Context, id string) (*model.Schedule, error)
	ListSchedules(ctx context.Context, opts model.ListOptions) ([]*model.Schedule, int, error)
	UpdateSchedule(ctx context.Context, s *model.Schedule) error
	UpdateScheduleScores(ctx context.Context, id string, hard, soft *int) error

	// Roster data (read by the export mapper)
	CreateStudent(ctx context.Context, st *model.Student) error
	ListStudents(ctx context.Context, scheduleID string) ([]*model.Student, error)
	CreateCourse(ctx context.Context, c *model.Course) error
	ListCourses(ctx context.Context, scheduleID string) ([]*model.Course, error)
	CreateCourseRequest(ctx context.Context, r *model.CourseRequest) error
	ListCourseRequests(ctx context.Context, scheduleID string) ([]*model.CourseRequest, error)
	CreateTeacher(ctx context.Context, t *model.Teacher) error
	ListTeachers(ctx context.Context, scheduleID string) ([]*model.Teacher, error)
	CreateRoom(ctx context.Context, r *model.Room) error
	ListRooms(ctx context.Context, scheduleID string) ([]*model.Room, error)
	CreateTimeSlot(ctx context.Context, ts *model.TimeSlot) error
	ListTimeSlots(ctx context.Context, scheduleID string) ([]*model.TimeSlot, error)
	CreateLunchPeriod(ctx context.Context, lp *model.LunchPeriod) error
	ListLunchPeriods(ctx context.Context, scheduleID string) ([]*model.LunchPeriod, error)

	// Sections (written by the result importer)
	ReplaceSections(ctx context.Context, scheduleID string, sections []*model.Section) error
	ListSections(ctx context.Context, scheduleID string) ([]*model.Section, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
