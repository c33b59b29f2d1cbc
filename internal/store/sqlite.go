// Package store persists sked domain entities in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/sked/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Schedule CRUD ---

func (s *SQLiteStore) CreateSchedule(ctx context.Context, sched *model.Schedule) error {
	s.logger.Debug("sql", "op", "insert", "table", "schedules", "id", sched.ID)

	status := sched.Status
	if status == "" {
		status = model.ScheduleStatusDraft
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedules (id, name, school_name, school_year, status, start_date, end_date, hard_score, soft_score, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sched.ID, sched.Name, sched.SchoolName, sched.SchoolYear, string(status),
		sched.StartDate.Format(time.RFC3339Nano), sched.EndDate.Format(time.RFC3339Nano),
		sched.HardScore, sched.SoftScore,
		sched.CreatedAt.Format(time.RFC3339Nano), sched.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetSchedule(ctx context.Context, id string) (*model.Schedule, error) {
	s.logger.Debug("sql", "op", "select", "table", "schedules", "id", id)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, school_name, school_year, status, start_date, end_date, hard_score, soft_score, created_at, updated_at
		 FROM schedules WHERE id = ?`, id)

	sched, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sched, err
}

func (s *SQLiteStore) ListSchedules(ctx context.Context, opts model.ListOptions) ([]*model.Schedule, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "schedules", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedules`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, school_name, school_year, status, start_date, end_date, hard_score, soft_score, created_at, updated_at
		 FROM schedules ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var schedules []*model.Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, 0, err
		}
		schedules = append(schedules, sched)
	}
	return schedules, total, rows.Err()
}

func (s *SQLiteStore) UpdateSchedule(ctx context.Context, sched *model.Schedule) error {
	s.logger.Debug("sql", "op", "update", "table", "schedules", "id", sched.ID)

	sched.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE schedules SET name = ?, school_name = ?, school_year = ?, status = ?, start_date = ?, end_date = ?, hard_score = ?, soft_score = ?, updated_at = ?
		 WHERE id = ?`,
		sched.Name, sched.SchoolName, sched.SchoolYear, string(sched.Status),
		sched.StartDate.Format(time.RFC3339Nano), sched.EndDate.Format(time.RFC3339Nano),
		sched.HardScore, sched.SoftScore, sched.UpdatedAt.Format(time.RFC3339Nano), sched.ID,
	)
	return err
}

func (s *SQLiteStore) UpdateScheduleScores(ctx context.Context, id string, hard, soft *int) error {
	s.logger.Debug("sql", "op", "update_scores", "table", "schedules", "id", id)

	_, err := s.db.ExecContext(ctx,
		`UPDATE schedules SET hard_score = ?, soft_score = ?, updated_at = ? WHERE id = ?`,
		hard, soft, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	return err
}

// --- Roster data ---

func (s *SQLiteStore) CreateStudent(ctx context.Context, st *model.Student) error {
	s.logger.Debug("sql", "op", "insert", "table", "students", "id", st.ID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (id, schedule_id, first_name, last_name, grade_level) VALUES (?, ?, ?, ?, ?)`,
		st.ID, st.ScheduleID, st.FirstName, st.LastName, st.GradeLevel,
	)
	return err
}

func (s *SQLiteStore) ListStudents(ctx context.Context, scheduleID string) ([]*model.Student, error) {
	s.logger.Debug("sql", "op", "list", "table", "students", "schedule_id", scheduleID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, schedule_id, first_name, last_name, grade_level FROM students WHERE schedule_id = ? ORDER BY last_name, first_name`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*model.Student
	for rows.Next() {
		var st model.Student
		if err := rows.Scan(&st.ID, &st.ScheduleID, &st.FirstName, &st.LastName, &st.GradeLevel); err != nil {
			return nil, err
		}
		students = append(students, &st)
	}
	return students, rows.Err()
}

func (s *SQLiteStore) CreateCourse(ctx context.Context, c *model.Course) error {
	s.logger.Debug("sql", "op", "insert", "table", "courses", "id", c.ID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, schedule_id, name, code, subject, department, grade_level, max_per_section, core_required, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ScheduleID, c.Name, c.Code, c.Subject, c.Department, c.GradeLevel,
		c.MaxPerSection, boolToInt(c.CoreRequired), boolToInt(c.Active),
	)
	return err
}

func (s *SQLiteStore) ListCourses(ctx context.Context, scheduleID string) ([]*model.Course, error) {
	s.logger.Debug("sql", "op", "list", "table", "courses", "schedule_id", scheduleID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, schedule_id, name, code, subject, department, grade_level, max_per_section, core_required, active
		 FROM courses WHERE schedule_id = ? ORDER BY name`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		var c model.Course
		var core, active int
		if err := rows.Scan(&c.ID, &c.ScheduleID, &c.Name, &c.Code, &c.Subject, &c.Department,
			&c.GradeLevel, &c.MaxPerSection, &core, &active); err != nil {
			return nil, err
		}
		c.CoreRequired = core != 0
		c.Active = active != 0
		courses = append(courses, &c)
	}
	return courses, rows.Err()
}

func (s *SQLiteStore) CreateCourseRequest(ctx context.Context, r *model.CourseRequest) error {
	s.logger.Debug("sql", "op", "insert", "table", "course_requests", "id", r.ID)

	status := r.Status
	if status == "" {
		status = model.RequestStatusPending
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO course_requests (id, student_id, course_id, status, alternate) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.StudentID, r.CourseID, string(status), boolToInt(r.Alternate),
	)
	return err
}

func (s *SQLiteStore) ListCourseRequests(ctx context.Context, scheduleID string) ([]*model.CourseRequest, error) {
	s.logger.Debug("sql", "op", "list", "table", "course_requests", "schedule_id", scheduleID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.student_id, r.course_id, r.status, r.alternate
		 FROM course_requests r
		 JOIN students st ON st.id = r.student_id
		 WHERE st.schedule_id = ?
		 ORDER BY r.id`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*model.CourseRequest
	for rows.Next() {
		var r model.CourseRequest
		var alternate int
		if err := rows.Scan(&r.ID, &r.StudentID, &r.CourseID, &r.Status, &alternate); err != nil {
			return nil, err
		}
		r.Alternate = alternate != 0
		requests = append(requests, &r)
	}
	return requests, rows.Err()
}

func (s *SQLiteStore) CreateTeacher(ctx context.Context, t *model.Teacher) error {
	s.logger.Debug("sql", "op", "insert", "table", "teachers", "id", t.ID)

	certsJSON, err := json.Marshal(t.Certifications)
	if err != nil {
		return fmt.Errorf("marshal certifications: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO teachers (id, schedule_id, first_name, last_name, department, certifications, max_periods_per_day)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ScheduleID, t.FirstName, t.LastName, t.Department, string(certsJSON), t.MaxPeriodsPerDay,
	)
	return err
}

func (s *SQLiteStore) ListTeachers(ctx context.Context, scheduleID string) ([]*model.Teacher, error) {
	s.logger.Debug("sql", "op", "list", "table", "teachers", "schedule_id", scheduleID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, schedule_id, first_name, last_name, department, certifications, max_periods_per_day
		 FROM teachers WHERE schedule_id = ? ORDER BY last_name, first_name`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teachers []*model.Teacher
	for rows.Next() {
		var t model.Teacher
		var certsJSON string
		if err := rows.Scan(&t.ID, &t.ScheduleID, &t.FirstName, &t.LastName, &t.Department, &certsJSON, &t.MaxPeriodsPerDay); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(certsJSON), &t.Certifications); err != nil {
			return nil, fmt.Errorf("unmarshal certifications: %w", err)
		}
		teachers = append(teachers, &t)
	}
	return teachers, rows.Err()
}

func (s *SQLiteStore) CreateRoom(ctx context.Context, r *model.Room) error {
	s.logger.Debug("sql", "op", "insert", "table", "rooms", "id", r.ID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (id, schedule_id, number, name, type, capacity) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.ScheduleID, r.Number, r.Name, r.Type, r.Capacity,
	)
	return err
}

func (s *SQLiteStore) ListRooms(ctx context.Context, scheduleID string) ([]*model.Room, error) {
	s.logger.Debug("sql", "op", "list", "table", "rooms", "schedule_id", scheduleID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, schedule_id, number, name, type, capacity FROM rooms WHERE schedule_id = ? ORDER BY number`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*model.Room
	for rows.Next() {
		var r model.Room
		if err := rows.Scan(&r.ID, &r.ScheduleID, &r.Number, &r.Name, &r.Type, &r.Capacity); err != nil {
			return nil, err
		}
		rooms = append(rooms, &r)
	}
	return rooms, rows.Err()
}

func (s *SQLiteStore) CreateTimeSlot(ctx context.Context, ts *model.TimeSlot) error {
	s.logger.Debug("sql", "op", "insert", "table", "time_slots", "id", ts.ID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO time_slots (id, schedule_id, name, period, days_of_week, start_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ts.ID, ts.ScheduleID, ts.Name, ts.Period, ts.DaysOfWeek, ts.StartTime, ts.EndTime,
	)
	return err
}

func (s *SQLiteStore) ListTimeSlots(ctx context.Context, scheduleID string) ([]*model.TimeSlot, error) {
	s.logger.Debug("sql", "op", "list", "table", "time_slots", "schedule_id", scheduleID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, schedule_id, name, period, days_of_week, start_time, end_time
		 FROM time_slots WHERE schedule_id = ? ORDER BY period`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*model.TimeSlot
	for rows.Next() {
		var ts model.TimeSlot
		if err := rows.Scan(&ts.ID, &ts.ScheduleID, &ts.Name, &ts.Period, &ts.DaysOfWeek, &ts.StartTime, &ts.EndTime); err != nil {
			return nil, err
		}
		slots = append(slots, &ts)
	}
	return slots, rows.Err()
}

func (s *SQLiteStore) CreateLunchPeriod(ctx context.Context, lp *model.LunchPeriod) error {
	s.logger.Debug("sql", "op", "insert", "table", "lunch_periods", "id", lp.ID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lunch_periods (id, schedule_id, name, grade_level, start_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		lp.ID, lp.ScheduleID, lp.Name, lp.GradeLevel, lp.StartTime, lp.EndTime,
	)
	return err
}

func (s *SQLiteStore) ListLunchPeriods(ctx context.Context, scheduleID string) ([]*model.LunchPeriod, error) {
	s.logger.Debug("sql", "op", "list", "table", "lunch_periods", "schedule_id", scheduleID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, schedule_id, name, grade_level, start_time, end_time
		 FROM lunch_periods WHERE schedule_id = ? ORDER BY grade_level`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []*model.LunchPeriod
	for rows.Next() {
		var lp model.LunchPeriod
		if err := rows.Scan(&lp.ID, &lp.ScheduleID, &lp.Name, &lp.GradeLevel, &lp.StartTime, &lp.EndTime); err != nil {
			return nil, err
		}
		periods = append(periods, &lp)
	}
	return periods, rows.Err()
}

// --- Sections ---

// ReplaceSections atomically swaps a schedule's sections for a new set.
// Used by the result importer so a re-generation never leaves a mix of
// old and new sections behind.
func (s *SQLiteStore) ReplaceSections(ctx context.Context, scheduleID string, sections []*model.Section) error {
	s.logger.Debug("sql", "op", "replace", "table", "sections", "schedule_id", scheduleID, "count", len(sections))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE schedule_id = ?`, scheduleID); err != nil {
		return err
	}

	for _, sec := range sections {
		idsJSON, err := json.Marshal(sec.StudentIDs)
		if err != nil {
			return fmt.Errorf("marshal student ids: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sections (id, schedule_id, course_id, teacher_id, room_id, time_slot_id, section_number, student_ids, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sec.ID, sec.ScheduleID, sec.CourseID, sec.TeacherID, sec.RoomID, sec.TimeSlotID,
			sec.SectionNumber, string(idsJSON), sec.CreatedAt.Format(time.RFC3339Nano),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListSections(ctx context.Context, scheduleID string) ([]*model.Section, error) {
	s.logger.Debug("sql", "op", "list", "table", "sections", "schedule_id", scheduleID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, schedule_id, course_id, teacher_id, room_id, time_slot_id, section_number, student_ids, created_at
		 FROM sections WHERE schedule_id = ? ORDER BY course_id, section_number`,
		scheduleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []*model.Section
	for rows.Next() {
		var sec model.Section
		var idsJSON, createdAt string
		if err := rows.Scan(&sec.ID, &sec.ScheduleID, &sec.CourseID, &sec.TeacherID, &sec.RoomID,
			&sec.TimeSlotID, &sec.SectionNumber, &idsJSON, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(idsJSON), &sec.StudentIDs); err != nil {
			return nil, fmt.Errorf("unmarshal student ids: %w", err)
		}
		sec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		sections = append(sections, &sec)
	}
	return sections, rows.Err()
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*model.Schedule, error) {
	var sched model.Schedule
	var status, startDate, endDate, createdAt, updatedAt string

	err := row.Scan(&sched.ID, &sched.Name, &sched.SchoolName, &sched.SchoolYear, &status,
		&startDate, &endDate, &sched.HardScore, &sched.SoftScore, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	sched.Status = model.ScheduleStatus(status)
	sched.StartDate, _ = time.Parse(time.RFC3339Nano, startDate)
	sched.EndDate, _ = time.Parse(time.RFC3339Nano, endDate)
	sched.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	sched.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &sched, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
