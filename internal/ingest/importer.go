// Package ingest provides the store-backed import and validation halves
// of reconciliation: writing a solve result's sections into SQLite and
// checking the stored schedule for double-bookings and capacity
// violations.
package ingest

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

// Importer writes optimizer solutions into the store.
type Importer struct {
	store  store.Store
	logger *slog.Logger
}

// NewImporter creates an Importer.
func NewImporter(st store.Store, logger *slog.Logger) *Importer {
	return &Importer{
		store:  st,
		logger: logger.With("component", "importer"),
	}
}

// Import replaces the schedule's sections with the solution's section
// assignments and records the solution scores. The replacement is
// atomic: on any error the previous sections remain.
func (i *Importer) Import(ctx context.Context, scheduleID string, result *optimizer.SolveResult) (*model.ImportOutcome, error) {
	if result == nil || len(result.Sections) == 0 {
		return &model.ImportOutcome{
			Success: false,
			Message: "solution contained no sections",
		}, nil
	}

	sched, err := i.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	if sched == nil {
		return nil, fmt.Errorf("schedule %s not found", scheduleID)
	}

	now := time.Now().UTC()
	sections := make([]*model.Section, 0, len(result.Sections))
	students := make(map[string]bool)
	for _, solved := range result.Sections {
		if solved.CourseID == "" {
			return &model.ImportOutcome{
				Success: false,
				Message: "solution contained a section without a course",
			}, nil
		}
		for _, sid := range solved.StudentIDs {
			students[sid] = true
		}
		sections = append(sections, &model.Section{
			ID:            uuid.New().String(),
			ScheduleID:    scheduleID,
			CourseID:      solved.CourseID,
			TeacherID:     solved.TeacherID,
			RoomID:        solved.RoomID,
			TimeSlotID:    solved.TimeSlotID,
			SectionNumber: solved.SectionNumber,
			StudentIDs:    solved.StudentIDs,
			CreatedAt:     now,
		})
	}

	if err := i.store.ReplaceSections(ctx, scheduleID, sections); err != nil {
		return nil, fmt.Errorf("replace sections: %w", err)
	}
	if err := i.store.UpdateScheduleScores(ctx, scheduleID, result.HardScore, result.SoftScore); err != nil {
		return nil, fmt.Errorf("update scores: %w", err)
	}

	i.logger.Info("sections imported",
		"schedule_id", scheduleID,
		"sections", len(sections),
		"students", len(students),
	)

	return &model.ImportOutcome{
		Success:           true,
		SectionsCreated:   len(sections),
		StudentsScheduled: len(students),
		HardScore:         result.HardScore,
		SoftScore:         result.SoftScore,
		Message:           fmt.Sprintf("imported %d sections", len(sections)),
	}, nil
}
