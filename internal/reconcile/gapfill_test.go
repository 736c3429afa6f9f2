package reconcile

import (
	"testing"
	"time"

	"github.com/claude/healthsync/internal/models"
	"github.com/claude/healthsync/internal/timewindow"
)

func window(startDay, endDay int) timewindow.Window {
	return timewindow.Window{
		Start: time.Date(2024, 1, startDay, 0, 0, 0, 0, time.Local),
		End:   time.Date(2024, 1, endDay, 23, 59, 59, 0, time.Local),
	}
}

// TestFillMissingDaysSynthesis verifies a 3-day window with data only on
// the middle day produces 3 records where the synthesized days have zeroed
// cumulative fields and absent point fields.
func TestFillMissingDaysSynthesis(t *testing.T) {
	byDate := map[string]models.DailyRecord{
		"2024-01-02": {Date: "2024-01-02", Steps: ptr(800), AverageHeartRate: ptr(72)},
	}

	days := FillMissingDays(window(1, 3), byDate)
	if len(days) != 3 {
		t.Fatalf("got %d records, want 3", len(days))
	}
	for _, i := range []int{0, 2} {
		d := days[i]
		if d.Steps == nil || *d.Steps != 0 {
			t.Errorf("day %s steps = %v, want 0", d.Date, d.Steps)
		}
		if d.Calories == nil || *d.Calories != 0 {
			t.Errorf("day %s calories = %v, want 0", d.Date, d.Calories)
		}
		if d.AverageHeartRate != nil {
			t.Errorf("day %s averageHeartRate = %v, want absent", d.Date, *d.AverageHeartRate)
		}
	}
	if days[1].Steps == nil || *days[1].Steps != 800 {
		t.Errorf("middle day steps = %v, want 800", days[1].Steps)
	}
}

// TestFillMissingDaysLengthAndOrder verifies the series always has exactly
// one entry per calendar day of the window, strictly ascending with no
// duplicates.
func TestFillMissingDaysLengthAndOrder(t *testing.T) {
	w := window(5, 11)
	days := FillMissingDays(w, map[string]models.DailyRecord{})
	if len(days) != w.Days() {
		t.Fatalf("len = %d, want window day count %d", len(days), w.Days())
	}
	for i := 1; i < len(days); i++ {
		if days[i].Date <= days[i-1].Date {
			t.Errorf("dates not strictly ascending: %s then %s", days[i-1].Date, days[i].Date)
		}
	}
}

// TestFillMissingDaysOffMidnightBounds verifies day stepping uses the
// local date component of the bounds, not elapsed 24h periods: a window
// from 23:00 on day 1 to 01:00 on day 3 still covers 3 calendar days.
func TestFillMissingDaysOffMidnightBounds(t *testing.T) {
	w := timewindow.Window{
		Start: time.Date(2024, 1, 1, 23, 0, 0, 0, time.Local),
		End:   time.Date(2024, 1, 3, 1, 0, 0, 0, time.Local),
	}
	days := FillMissingDays(w, nil)
	if len(days) != 3 {
		t.Fatalf("got %d records, want 3", len(days))
	}
	if days[0].Date != "2024-01-01" || days[2].Date != "2024-01-03" {
		t.Errorf("series spans %s..%s, want 2024-01-01..2024-01-03", days[0].Date, days[2].Date)
	}
}
