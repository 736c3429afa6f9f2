package reconcile

import (
	"github.com/claude/healthsync/internal/models"
	"github.com/claude/healthsync/internal/timewindow"
)

// FillMissingDays turns the reconciled date-keyed records into an ordered
// series with exactly one entry per calendar day of the window, stepping by
// local date from the window start. Days without data get zeroed cumulative
// fields; point-in-time fields stay absent.
func FillMissingDays(w timewindow.Window, byDate map[string]models.DailyRecord) []models.DailyRecord {
	days := make([]models.DailyRecord, 0, len(byDate))
	for d := timewindow.StartOfDay(w.Start); !d.After(w.End); d = d.AddDate(0, 0, 1) {
		key := timewindow.DayKey(d)
		if rec, ok := byDate[key]; ok {
			days = append(days, rec)
			continue
		}
		days = append(days, models.DailyRecord{
			Date:          key,
			Steps:         ptr(0),
			Calories:      ptr(0),
			DistanceKm:    ptr(0),
			SleepMinutes:  ptr(0),
			ActiveMinutes: ptr(0),
		})
	}
	return days
}
