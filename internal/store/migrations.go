package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all sked tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS schedules (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		school_name TEXT NOT NULL DEFAULT '',
		school_year TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'DRAFT',
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		hard_score  INTEGER,
		soft_score  INTEGER,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS students (
		id          TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL,
		first_name  TEXT NOT NULL,
		last_name   TEXT NOT NULL,
		grade_level INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS courses (
		id              TEXT PRIMARY KEY,
		schedule_id     TEXT NOT NULL,
		name            TEXT NOT NULL,
		code            TEXT NOT NULL DEFAULT '',
		subject         TEXT NOT NULL DEFAULT '',
		department      TEXT NOT NULL DEFAULT '',
		grade_level     INTEGER NOT NULL DEFAULT 0,
		max_per_section INTEGER NOT NULL DEFAULT 30,
		core_required   INTEGER NOT NULL DEFAULT 0,
		active          INTEGER NOT NULL DEFAULT 1
	)`,

	`CREATE TABLE IF NOT EXISTS course_requests (
		id         TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		course_id  TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'PENDING',
		alternate  INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS teachers (
		id                  TEXT PRIMARY KEY,
		schedule_id         TEXT NOT NULL,
		first_name          TEXT NOT NULL,
		last_name           TEXT NOT NULL,
		department          TEXT NOT NULL DEFAULT '',
		certifications      TEXT NOT NULL DEFAULT '[]',
		max_periods_per_day INTEGER NOT NULL DEFAULT 6
	)`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id          TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL,
		number      TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL DEFAULT '',
		type        TEXT NOT NULL DEFAULT 'CLASSROOM',
		capacity    INTEGER NOT NULL DEFAULT 30
	)`,

	`CREATE TABLE IF NOT EXISTS time_slots (
		id           TEXT PRIMARY KEY,
		schedule_id  TEXT NOT NULL,
		name         TEXT NOT NULL DEFAULT '',
		period       INTEGER NOT NULL DEFAULT 0,
		days_of_week TEXT NOT NULL DEFAULT '',
		start_time   TEXT NOT NULL DEFAULT '',
		end_time     TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS lunch_periods (
		id          TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL,
		name        TEXT NOT NULL DEFAULT '',
		grade_level INTEGER NOT NULL DEFAULT 0,
		start_time  TEXT NOT NULL DEFAULT '',
		end_time    TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS sections (
		id             TEXT PRIMARY KEY,
		schedule_id    TEXT NOT NULL,
		course_id      TEXT NOT NULL,
		teacher_id     TEXT NOT NULL DEFAULT '',
		room_id        TEXT NOT NULL DEFAULT '',
		time_slot_id   TEXT NOT NULL DEFAULT '',
		section_number INTEGER NOT NULL DEFAULT 1,
		student_ids    TEXT NOT NULL DEFAULT '[]',
		created_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_students_schedule_id ON students(schedule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_schedule_id ON courses(schedule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_course_requests_course_id ON course_requests(course_id)`,
	`CREATE INDEX IF NOT EXISTS idx_course_requests_student_id ON course_requests(student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_teachers_schedule_id ON teachers(schedule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_rooms_schedule_id ON rooms(schedule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_time_slots_schedule_id ON time_slots(schedule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_lunch_periods_schedule_id ON lunch_periods(schedule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sections_schedule_id ON sections(schedule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sections_course_id ON sections(course_id)`,
}

// migrate executes all schema DDL statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
