package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/me/sked/internal/store"
	"github.com/me/sked/pkg/model"
)

// Validator checks a stored schedule for hard-constraint conflicts.
type Validator struct {
	store  store.Store
	logger *slog.Logger
}

// NewValidator creates a Validator.
func NewValidator(st store.Store, logger *slog.Logger) *Validator {
	return &Validator{
		store:  st,
		logger: logger.With("component", "validator"),
	}
}

// Validate scans the schedule's sections for teacher and room
// double-bookings, student overlaps, and over-capacity rooms. Sections
// conflict when they share the same time slot; unassigned fields are
// skipped.
func (v *Validator) Validate(ctx context.Context, scheduleID string) (*model.ValidationOutcome, error) {
	sections, err := v.store.ListSections(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	rooms, err := v.store.ListRooms(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	capacities := make(map[string]int, len(rooms))
	for _, r := range rooms {
		capacities[r.ID] = r.Capacity
	}

	var conflicts []model.Conflict
	conflicts = append(conflicts, doubleBookings(sections, model.ConflictTeacherDoubleBooked,
		func(s *model.Section) string { return s.TeacherID }, "teacher")...)
	conflicts = append(conflicts, doubleBookings(sections, model.ConflictRoomDoubleBooked,
		func(s *model.Section) string { return s.RoomID }, "room")...)
	conflicts = append(conflicts, studentOverlaps(sections)...)
	conflicts = append(conflicts, overCapacity(sections, capacities)...)

	outcome := &model.ValidationOutcome{
		IsValid:       len(conflicts) == 0,
		ConflictCount: len(conflicts),
		Conflicts:     conflicts,
	}

	v.logger.Debug("validation finished",
		"schedule_id", scheduleID,
		"sections", len(sections),
		"conflicts", outcome.ConflictCount,
	)
	return outcome, nil
}

// doubleBookings finds sections sharing both a resource (by key) and a
// time slot. One conflict is reported per overbooked resource+slot pair.
func doubleBookings(sections []*model.Section, kind model.ConflictKind, key func(*model.Section) string, label string) []model.Conflict {
	type slotKey struct {
		resource string
		slot     string
	}
	grouped := make(map[slotKey][]string)
	for _, s := range sections {
		r := key(s)
		if r == "" || s.TimeSlotID == "" {
			continue
		}
		k := slotKey{resource: r, slot: s.TimeSlotID}
		grouped[k] = append(grouped[k], s.ID)
	}

	var conflicts []model.Conflict
	for k, ids := range grouped {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		conflicts = append(conflicts, model.Conflict{
			Kind: kind,
			Description: fmt.Sprintf("%s %s assigned to %d sections in time slot %s",
				label, k.resource, len(ids), k.slot),
			SectionIDs: ids,
		})
	}
	sortConflicts(conflicts)
	return conflicts
}

// studentOverlaps finds students enrolled in more than one section of
// the same time slot.
func studentOverlaps(sections []*model.Section) []model.Conflict {
	type slotKey struct {
		student string
		slot    string
	}
	grouped := make(map[slotKey][]string)
	for _, s := range sections {
		if s.TimeSlotID == "" {
			continue
		}
		for _, sid := range s.StudentIDs {
			k := slotKey{student: sid, slot: s.TimeSlotID}
			grouped[k] = append(grouped[k], s.ID)
		}
	}

	var conflicts []model.Conflict
	for k, ids := range grouped {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		conflicts = append(conflicts, model.Conflict{
			Kind: model.ConflictStudentOverlap,
			Description: fmt.Sprintf("student %s enrolled in %d sections in time slot %s",
				k.student, len(ids), k.slot),
			SectionIDs: ids,
		})
	}
	sortConflicts(conflicts)
	return conflicts
}

// overCapacity finds sections whose enrollment exceeds the room's
// capacity. Sections in unknown rooms are skipped.
func overCapacity(sections []*model.Section, capacities map[string]int) []model.Conflict {
	var conflicts []model.Conflict
	for _, s := range sections {
		capacity, ok := capacities[s.RoomID]
		if !ok || capacity <= 0 {
			continue
		}
		if len(s.StudentIDs) > capacity {
			conflicts = append(conflicts, model.Conflict{
				Kind: model.ConflictRoomOverCapacity,
				Description: fmt.Sprintf("section %s has %d students in room %s with capacity %d",
					s.ID, len(s.StudentIDs), s.RoomID, capacity),
				SectionIDs: []string{s.ID},
			})
		}
	}
	sortConflicts(conflicts)
	return conflicts
}

// sortConflicts makes validation output deterministic across runs.
func sortConflicts(conflicts []model.Conflict) {
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Description < conflicts[j].Description
	})
}
