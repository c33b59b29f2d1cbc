package store

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/me/sked/internal/logging"
	"github.com/me/sked/pkg/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(":memory:", logging.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st
}

func TestMigrateIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	sched := &model.Schedule{
		ID:         "sched-1",
		Name:       "Fall Master",
		SchoolName: "Jefferson High",
		SchoolYear: "2026-2027",
		Status:     model.ScheduleStatusDraft,
		StartDate:  now,
		EndDate:    now.AddDate(0, 9, 0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := st.CreateSchedule(ctx, sched); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := st.GetSchedule(ctx, "sched-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("schedule not found after create")
	}
	if got.Name != sched.Name || got.SchoolYear != sched.SchoolYear || got.Status != sched.Status {
		t.Errorf("got %+v, want %+v", got, sched)
	}
	if !got.StartDate.Equal(sched.StartDate) {
		t.Errorf("start date = %v, want %v", got.StartDate, sched.StartDate)
	}
	if got.HardScore != nil {
		t.Errorf("hard score = %v, want nil before any generation", got.HardScore)
	}
}

func TestGetScheduleMissing(t *testing.T) {
	st := newTestStore(t)

	got, err := st.GetSchedule(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for a missing schedule", got)
	}
}

func TestUpdateScheduleScores(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := st.CreateSchedule(ctx, &model.Schedule{
		ID: "sched-1", Name: "S", Status: model.ScheduleStatusDraft,
		StartDate: now, EndDate: now.AddDate(0, 9, 0), CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	hard, soft := 0, -42
	if err := st.UpdateScheduleScores(ctx, "sched-1", &hard, &soft); err != nil {
		t.Fatalf("update scores: %v", err)
	}

	got, err := st.GetSchedule(ctx, "sched-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.HardScore == nil || *got.HardScore != 0 {
		t.Errorf("hard score = %v, want 0", got.HardScore)
	}
	if got.SoftScore == nil || *got.SoftScore != -42 {
		t.Errorf("soft score = %v, want -42", got.SoftScore)
	}
}

func TestListSchedulesPagination(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Second)
		if err := st.CreateSchedule(ctx, &model.Schedule{
			ID: string(rune('a' + i)), Name: "S", Status: model.ScheduleStatusDraft,
			StartDate: ts, EndDate: ts.AddDate(0, 9, 0), CreatedAt: ts, UpdatedAt: ts,
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	schedules, total, err := st.ListSchedules(ctx, model.ListOptions{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(schedules) != 2 {
		t.Errorf("got %d schedules, want 2", len(schedules))
	}
	// Newest first.
	if len(schedules) == 2 && schedules[0].CreatedAt.Before(schedules[1].CreatedAt) {
		t.Error("schedules not ordered newest first")
	}
}

func TestTeacherCertificationsRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	teacher := &model.Teacher{
		ID:               "t1",
		ScheduleID:       "sched-1",
		FirstName:        "Grace",
		LastName:         "Hopper",
		Department:       "Computer Science",
		Certifications:   []string{"COMPUTER_SCIENCE", "MATHEMATICS"},
		MaxPeriodsPerDay: 5,
	}
	if err := st.CreateTeacher(ctx, teacher); err != nil {
		t.Fatalf("create: %v", err)
	}

	teachers, err := st.ListTeachers(ctx, "sched-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(teachers) != 1 {
		t.Fatalf("got %d teachers, want 1", len(teachers))
	}
	if !reflect.DeepEqual(teachers[0].Certifications, teacher.Certifications) {
		t.Errorf("certifications = %v, want %v", teachers[0].Certifications, teacher.Certifications)
	}
}

func TestReplaceSections(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := []*model.Section{
		{ID: "sec1", ScheduleID: "sched-1", CourseID: "c1", SectionNumber: 1,
			StudentIDs: []string{"s1", "s2"}, CreatedAt: now},
		{ID: "sec2", ScheduleID: "sched-1", CourseID: "c1", SectionNumber: 2,
			StudentIDs: []string{"s3"}, CreatedAt: now},
	}
	if err := st.ReplaceSections(ctx, "sched-1", first); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	second := []*model.Section{
		{ID: "sec3", ScheduleID: "sched-1", CourseID: "c2", SectionNumber: 1,
			StudentIDs: []string{"s1"}, CreatedAt: now},
	}
	if err := st.ReplaceSections(ctx, "sched-1", second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	sections, err := st.ListSections(ctx, "sched-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1 after replacement", len(sections))
	}
	if sections[0].ID != "sec3" {
		t.Errorf("section id = %q, want sec3", sections[0].ID)
	}
	if !reflect.DeepEqual(sections[0].StudentIDs, []string{"s1"}) {
		t.Errorf("student ids = %v, want [s1]", sections[0].StudentIDs)
	}
}

// Sections of other schedules survive a replacement.
func TestReplaceSectionsScopedToSchedule(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := st.ReplaceSections(ctx, "sched-a", []*model.Section{
		{ID: "a1", ScheduleID: "sched-a", CourseID: "c1", SectionNumber: 1, StudentIDs: nil, CreatedAt: now},
	}); err != nil {
		t.Fatalf("replace a: %v", err)
	}
	if err := st.ReplaceSections(ctx, "sched-b", []*model.Section{
		{ID: "b1", ScheduleID: "sched-b", CourseID: "c1", SectionNumber: 1, StudentIDs: nil, CreatedAt: now},
	}); err != nil {
		t.Fatalf("replace b: %v", err)
	}

	sections, err := st.ListSections(ctx, "sched-a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sections) != 1 || sections[0].ID != "a1" {
		t.Errorf("sched-a sections = %+v, want just a1", sections)
	}
}
