package reconcile

import "github.com/me/sked/pkg/model"

// Compare ranks two candidate schedules. Fewer conflicts always wins;
// among equal conflict counts, the better hard score wins, then the
// better soft score. A schedule with a score beats one that has never
// been scored. When nothing separates them the winner is empty.
//
// Compare(a, b) and Compare(b, a) always agree on the winner.
func Compare(a, b model.ScheduleSummary) model.ComparisonResult {
	result := model.ComparisonResult{A: a, B: b}

	switch {
	case a.ConflictCount < b.ConflictCount:
		result.Winner = a.ScheduleID
		result.Recommendation = "fewer conflicts"
	case b.ConflictCount < a.ConflictCount:
		result.Winner = b.ScheduleID
		result.Recommendation = "fewer conflicts"
	default:
		if cmp := compareScores(a, b); cmp > 0 {
			result.Winner = a.ScheduleID
			result.Recommendation = "better optimization score"
		} else if cmp < 0 {
			result.Winner = b.ScheduleID
			result.Recommendation = "better optimization score"
		} else {
			result.Recommendation = "schedules are equivalent"
		}
	}
	return result
}

// compareScores orders two summaries by hard score then soft score.
// Returns >0 when a is better, <0 when b is better, 0 when tied.
func compareScores(a, b model.ScheduleSummary) int {
	if cmp := compareScore(a.HardScore, b.HardScore); cmp != 0 {
		return cmp
	}
	return compareScore(a.SoftScore, b.SoftScore)
}

// compareScore orders two optional scores: higher wins, and any score
// beats an absent one.
func compareScore(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a > *b:
		return 1
	case *a < *b:
		return -1
	default:
		return 0
	}
}
