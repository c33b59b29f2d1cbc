package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/me/sked/internal/logging"
	"github.com/me/sked/internal/store"
	"github.com/me/sked/pkg/model"
	"github.com/me/sked/pkg/optimizer"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:", logging.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st
}

func createSchedule(t *testing.T, st store.Store, id string) {
	t.Helper()
	now := time.Now().UTC()
	err := st.CreateSchedule(context.Background(), &model.Schedule{
		ID:        id,
		Name:      "Test",
		Status:    model.ScheduleStatusDraft,
		StartDate: now,
		EndDate:   now.AddDate(0, 9, 0),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
}

func TestImporterImport(t *testing.T) {
	st := newTestStore(t)
	createSchedule(t, st, "sched-1")

	hard, soft := 0, -7
	result := &optimizer.SolveResult{
		JobID:     "job-1",
		HardScore: &hard,
		SoftScore: &soft,
		Sections: []optimizer.SolvedSection{
			{CourseID: "c1", TeacherID: "t1", RoomID: "r1", TimeSlotID: "s1", SectionNumber: 1,
				StudentIDs: []string{"stu1", "stu2"}},
			{CourseID: "c1", TeacherID: "t2", RoomID: "r2", TimeSlotID: "s1", SectionNumber: 2,
				StudentIDs: []string{"stu3"}},
		},
	}

	imp := NewImporter(st, logging.Nop())
	outcome, err := imp.Import(context.Background(), "sched-1", result)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("import failed: %s", outcome.Message)
	}
	if outcome.SectionsCreated != 2 {
		t.Errorf("sections created = %d, want 2", outcome.SectionsCreated)
	}
	if outcome.StudentsScheduled != 3 {
		t.Errorf("students scheduled = %d, want 3", outcome.StudentsScheduled)
	}

	sections, err := st.ListSections(context.Background(), "sched-1")
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("stored %d sections, want 2", len(sections))
	}

	sched, err := st.GetSchedule(context.Background(), "sched-1")
	if err != nil {
		t.Fatalf("get schedule: %v", err)
	}
	if sched.HardScore == nil || *sched.HardScore != 0 {
		t.Errorf("hard score = %v, want 0", sched.HardScore)
	}
	if sched.SoftScore == nil || *sched.SoftScore != -7 {
		t.Errorf("soft score = %v, want -7", sched.SoftScore)
	}
}

// Re-importing replaces the previous sections instead of accumulating.
func TestImporterReplacesPreviousSections(t *testing.T) {
	st := newTestStore(t)
	createSchedule(t, st, "sched-1")
	imp := NewImporter(st, logging.Nop())

	first := &optimizer.SolveResult{Sections: []optimizer.SolvedSection{
		{CourseID: "c1", SectionNumber: 1},
		{CourseID: "c2", SectionNumber: 1},
		{CourseID: "c3", SectionNumber: 1},
	}}
	if _, err := imp.Import(context.Background(), "sched-1", first); err != nil {
		t.Fatalf("first import: %v", err)
	}

	second := &optimizer.SolveResult{Sections: []optimizer.SolvedSection{
		{CourseID: "c1", SectionNumber: 1},
	}}
	if _, err := imp.Import(context.Background(), "sched-1", second); err != nil {
		t.Fatalf("second import: %v", err)
	}

	sections, err := st.ListSections(context.Background(), "sched-1")
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(sections) != 1 {
		t.Errorf("stored %d sections after re-import, want 1", len(sections))
	}
}

func TestImporterEmptySolution(t *testing.T) {
	st := newTestStore(t)
	createSchedule(t, st, "sched-1")
	imp := NewImporter(st, logging.Nop())

	outcome, err := imp.Import(context.Background(), "sched-1", &optimizer.SolveResult{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if outcome.Success {
		t.Error("empty solution should not import successfully")
	}
}

func TestImporterUnknownSchedule(t *testing.T) {
	st := newTestStore(t)
	imp := NewImporter(st, logging.Nop())

	result := &optimizer.SolveResult{Sections: []optimizer.SolvedSection{{CourseID: "c1"}}}
	if _, err := imp.Import(context.Background(), "missing", result); err == nil {
		t.Fatal("expected error for unknown schedule")
	}
}

func seedSections(t *testing.T, st store.Store, sections []*model.Section) {
	t.Helper()
	if err := st.ReplaceSections(context.Background(), "sched-1", sections); err != nil {
		t.Fatalf("replace sections: %v", err)
	}
}

func TestValidatorCleanSchedule(t *testing.T) {
	st := newTestStore(t)
	createSchedule(t, st, "sched-1")
	now := time.Now().UTC()
	seedSections(t, st, []*model.Section{
		{ID: "sec1", ScheduleID: "sched-1", CourseID: "c1", TeacherID: "t1", RoomID: "r1",
			TimeSlotID: "s1", SectionNumber: 1, StudentIDs: []string{"stu1"}, CreatedAt: now},
		{ID: "sec2", ScheduleID: "sched-1", CourseID: "c2", TeacherID: "t2", RoomID: "r2",
			TimeSlotID: "s1", SectionNumber: 1, StudentIDs: []string{"stu2"}, CreatedAt: now},
	})

	v := NewValidator(st, logging.Nop())
	outcome, err := v.Validate(context.Background(), "sched-1")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !outcome.IsValid || outcome.ConflictCount != 0 {
		t.Errorf("outcome = %+v, want valid with zero conflicts", outcome)
	}
}

func TestValidatorFindsConflicts(t *testing.T) {
	st := newTestStore(t)
	createSchedule(t, st, "sched-1")
	if err := st.CreateRoom(context.Background(), &model.Room{
		ID: "r-small", ScheduleID: "sched-1", Number: "10", Type: "CLASSROOM", Capacity: 2,
	}); err != nil {
		t.Fatalf("create room: %v", err)
	}

	now := time.Now().UTC()
	seedSections(t, st, []*model.Section{
		// t1 teaches two sections in slot s1.
		{ID: "sec1", ScheduleID: "sched-1", CourseID: "c1", TeacherID: "t1", RoomID: "r1",
			TimeSlotID: "s1", SectionNumber: 1, StudentIDs: []string{"stu1"}, CreatedAt: now},
		{ID: "sec2", ScheduleID: "sched-1", CourseID: "c2", TeacherID: "t1", RoomID: "r2",
			TimeSlotID: "s1", SectionNumber: 1, StudentIDs: []string{"stu2"}, CreatedAt: now},
		// r3 hosts two sections in slot s2; stu3 is in both; r-small overflows.
		{ID: "sec3", ScheduleID: "sched-1", CourseID: "c3", TeacherID: "t2", RoomID: "r3",
			TimeSlotID: "s2", SectionNumber: 1, StudentIDs: []string{"stu3"}, CreatedAt: now},
		{ID: "sec4", ScheduleID: "sched-1", CourseID: "c4", TeacherID: "t3", RoomID: "r3",
			TimeSlotID: "s2", SectionNumber: 1, StudentIDs: []string{"stu3"}, CreatedAt: now},
		{ID: "sec5", ScheduleID: "sched-1", CourseID: "c5", TeacherID: "t4", RoomID: "r-small",
			TimeSlotID: "s3", SectionNumber: 1, StudentIDs: []string{"a", "b", "c"}, CreatedAt: now},
	})

	v := NewValidator(st, logging.Nop())
	outcome, err := v.Validate(context.Background(), "sched-1")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if outcome.IsValid {
		t.Fatal("expected conflicts")
	}

	kinds := make(map[model.ConflictKind]int)
	for _, c := range outcome.Conflicts {
		kinds[c.Kind]++
	}
	if kinds[model.ConflictTeacherDoubleBooked] != 1 {
		t.Errorf("teacher conflicts = %d, want 1", kinds[model.ConflictTeacherDoubleBooked])
	}
	if kinds[model.ConflictRoomDoubleBooked] != 1 {
		t.Errorf("room conflicts = %d, want 1", kinds[model.ConflictRoomDoubleBooked])
	}
	if kinds[model.ConflictStudentOverlap] != 1 {
		t.Errorf("student conflicts = %d, want 1", kinds[model.ConflictStudentOverlap])
	}
	if kinds[model.ConflictRoomOverCapacity] != 1 {
		t.Errorf("capacity conflicts = %d, want 1", kinds[model.ConflictRoomOverCapacity])
	}
	if outcome.ConflictCount != len(outcome.Conflicts) {
		t.Errorf("conflict count %d != len(conflicts) %d", outcome.ConflictCount, len(outcome.Conflicts))
	}
}
