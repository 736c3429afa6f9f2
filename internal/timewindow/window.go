// Package timewindow resolves named sync ranges into concrete local-time
// window bounds and provides calendar day keys.
package timewindow

import (
	"errors"
	"time"
)

// RangeKind names a caller-requested sync range.
type RangeKind string

const (
	RangeToday      RangeKind = "today"
	RangeTrailing7  RangeKind = "7d"
	RangeTrailing30 RangeKind = "30d"
	RangeCustom     RangeKind = "custom"
)

// ErrInvalidWindow is returned when a custom range resolves to an end
// before its start.
var ErrInvalidWindow = errors.New("window end precedes start")

// DayKeyLayout is the canonical per-day bucketing key format.
const DayKeyLayout = "2006-01-02"

// Window is the [Start, End] instant range of one sync.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the inclusive calendar day count of the window, stepping by
// local date rather than dividing elapsed time, since bounds need not align
// to midnight.
func (w Window) Days() int {
	n := 0
	for d := StartOfDay(w.Start); !d.After(w.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Resolve computes the window for a range kind relative to the current
// local time. Custom bounds may be RFC 3339 or "2006-01-02"; an absent or
// unparsable custom bound falls back to the today default for its side.
func Resolve(kind RangeKind, customStart, customEnd string) (Window, error) {
	return ResolveAt(time.Now(), kind, customStart, customEnd)
}

// ResolveAt is Resolve with an explicit reference instant.
func ResolveAt(now time.Time, kind RangeKind, customStart, customEnd string) (Window, error) {
	start := StartOfDay(now)
	end := EndOfDay(now)

	switch kind {
	case RangeToday:
		// start/end already cover today
	case RangeTrailing7:
		start = start.AddDate(0, 0, -6)
	case RangeTrailing30:
		start = start.AddDate(0, 0, -29)
	default:
		if t, err := parseFlexTime(customStart); err == nil {
			start = StartOfDay(t)
		}
		if t, err := parseFlexTime(customEnd); err == nil {
			end = EndOfDay(t)
		}
		if end.Before(start) {
			return Window{}, ErrInvalidWindow
		}
	}

	return Window{Start: start, End: end}, nil
}

// DayKey formats an instant as its local calendar day key.
func DayKey(t time.Time) string {
	return t.Local().Format(DayKeyLayout)
}

// TodayKey returns the day key for the current local day.
func TodayKey() string {
	return DayKey(time.Now())
}

// StartOfDay returns local midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's local day.
func EndOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func parseFlexTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty time string")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation(DayKeyLayout, s, time.Local)
}
