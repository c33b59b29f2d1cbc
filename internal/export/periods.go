package export

import (
	"fmt"
	"time"

	"github.com/me/sked/pkg/model"
)

// synthesizeQuarters divides a schedule's date range into four equal
// day-spans when no grading periods are configured. Instructional days
// per quarter are estimated as spanDays * 5/7 (weekday approximation).
func synthesizeQuarters(start, end time.Time) []model.GradingPeriod {
	if !end.After(start) {
		return nil
	}

	totalDays := int(end.Sub(start).Hours()/24) + 1
	spanDays := totalDays / 4
	if spanDays < 1 {
		spanDays = 1
	}

	periods := make([]model.GradingPeriod, 0, 4)
	qStart := start
	for q := 1; q <= 4; q++ {
		qEnd := qStart.AddDate(0, 0, spanDays-1)
		if q == 4 || qEnd.After(end) {
			qEnd = end
		}
		days := int(qEnd.Sub(qStart).Hours()/24) + 1
		periods = append(periods, model.GradingPeriod{
			Name:              fmt.Sprintf("Q%d", q),
			StartDate:         qStart,
			EndDate:           qEnd,
			InstructionalDays: days * 5 / 7,
		})
		qStart = qEnd.AddDate(0, 0, 1)
		if qStart.After(end) {
			break
		}
	}
	return periods
}
