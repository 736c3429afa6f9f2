package reconcile

import "github.com/claude/healthsync/internal/models"

// Summarize reduces the gap-filled daily series to one window record.
// Cumulative metrics sum across days. Point-in-time metrics take the value
// from the first day where one is present, scanning in date order; this is
// a representative-sample policy, not an average. windowWeight is the
// window-level weight fallback used when no day carries a weight reading.
func Summarize(daily []models.DailyRecord, windowWeight *float64) models.SummaryRecord {
	s := models.SummaryRecord{
		Steps:         ptr(0),
		Calories:      ptr(0),
		DistanceKm:    ptr(0),
		SleepMinutes:  ptr(0),
		ActiveMinutes: ptr(0),
	}

	for _, d := range daily {
		sumInto(&s.Steps, d.Steps)
		sumInto(&s.Calories, d.Calories)
		sumInto(&s.DistanceKm, d.DistanceKm)
		sumInto(&s.SleepMinutes, d.SleepMinutes)
		sumInto(&s.ActiveMinutes, d.ActiveMinutes)

		keepFirst(&s.AverageHeartRate, d.AverageHeartRate)
		keepFirst(&s.BloodPressureSystolic, d.BloodPressureSystolic)
		keepFirst(&s.BloodPressureDiastolic, d.BloodPressureDiastolic)
		keepFirst(&s.WeightKg, d.WeightKg)
		keepFirst(&s.BloodGlucoseMgPerDl, d.BloodGlucoseMgPerDl)
		keepFirst(&s.BodyTemperatureC, d.BodyTemperatureC)
		keepFirst(&s.OxygenSaturationPercent, d.OxygenSaturationPercent)
		keepFirst(&s.RespiratoryRate, d.RespiratoryRate)
	}

	if s.WeightKg == nil && windowWeight != nil {
		keepFirst(&s.WeightKg, windowWeight)
	}

	return s
}
