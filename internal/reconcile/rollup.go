package reconcile

import (
	"math"

	"github.com/claude/healthsync/internal/models"
)

// RollupHourly collapses hourly records sharing a date into one daily
// record each. Cumulative fields sum across hours; heart rate is an
// average of the per-hour averages with its own hour-count divisor, and
// min/max span all hours; point-in-time fields keep the first non-missing
// hour value in ascending hour order. Input must be ordered as
// Engine.FinalizeHourly returns it.
func RollupHourly(hours []models.HourlyRecord) map[string]models.DailyRecord {
	type hrAcc struct {
		sum   float64
		count int
	}
	out := make(map[string]models.DailyRecord)
	hrAccs := make(map[string]*hrAcc)

	for _, h := range hours {
		d := out[h.Date]
		d.Date = h.Date

		sumInto(&d.Steps, h.Steps)
		sumInto(&d.Calories, h.Calories)
		sumInto(&d.DistanceKm, h.DistanceKm)
		sumInto(&d.SleepMinutes, h.SleepMinutes)
		sumInto(&d.SleepAwakeMinutes, h.SleepAwakeMinutes)
		sumInto(&d.SleepRemMinutes, h.SleepRemMinutes)
		sumInto(&d.SleepCoreMinutes, h.SleepCoreMinutes)
		sumInto(&d.SleepDeepMinutes, h.SleepDeepMinutes)
		sumInto(&d.ActiveMinutes, h.ActiveMinutes)

		if h.AverageHeartRate != nil {
			acc := hrAccs[h.Date]
			if acc == nil {
				acc = &hrAcc{}
				hrAccs[h.Date] = acc
			}
			acc.sum += *h.AverageHeartRate
			acc.count++
		}
		if h.MinHeartRate != nil {
			trackMin(&d.MinHeartRate, *h.MinHeartRate)
		}
		if h.MaxHeartRate != nil {
			trackMax(&d.MaxHeartRate, *h.MaxHeartRate)
		}

		keepFirst(&d.BloodPressureSystolic, h.BloodPressureSystolic)
		keepFirst(&d.BloodPressureDiastolic, h.BloodPressureDiastolic)
		keepFirst(&d.MinSystolic, h.MinSystolic)
		keepFirst(&d.MaxSystolic, h.MaxSystolic)
		keepFirst(&d.MinDiastolic, h.MinDiastolic)
		keepFirst(&d.MaxDiastolic, h.MaxDiastolic)
		keepFirst(&d.WeightKg, h.WeightKg)
		keepFirst(&d.BloodGlucoseMgPerDl, h.BloodGlucoseMgPerDl)
		keepFirst(&d.BodyTemperatureC, h.BodyTemperatureC)
		keepFirst(&d.OxygenSaturationPercent, h.OxygenSaturationPercent)
		keepFirst(&d.RespiratoryRate, h.RespiratoryRate)

		out[h.Date] = d
	}

	for date, acc := range hrAccs {
		d := out[date]
		d.AverageHeartRate = ptr(math.Round(acc.sum / float64(acc.count)))
		out[date] = d
	}

	return out
}

// HourlyPoints flattens every non-missing hourly field into chart tuples.
func HourlyPoints(hours []models.HourlyRecord) []models.HourlyPoint {
	var points []models.HourlyPoint
	push := func(date string, hour int, m models.MetricType, v *float64) {
		if v == nil {
			return
		}
		points = append(points, models.HourlyPoint{
			Date:       date,
			Hour:       hour,
			MetricType: m,
			Value:      *v,
			Unit:       m.Unit(),
		})
	}
	for _, h := range hours {
		push(h.Date, h.Hour, models.MetricSteps, h.Steps)
		push(h.Date, h.Hour, models.MetricHeartRate, h.AverageHeartRate)
		push(h.Date, h.Hour, models.MetricCalories, h.Calories)
		push(h.Date, h.Hour, models.MetricDistance, h.DistanceKm)
		push(h.Date, h.Hour, models.MetricSleep, h.SleepMinutes)
		push(h.Date, h.Hour, models.MetricActiveMinutes, h.ActiveMinutes)
		push(h.Date, h.Hour, models.MetricBPSystolic, h.BloodPressureSystolic)
		push(h.Date, h.Hour, models.MetricBPDiastolic, h.BloodPressureDiastolic)
		push(h.Date, h.Hour, models.MetricWeight, h.WeightKg)
		push(h.Date, h.Hour, models.MetricBloodGlucose, h.BloodGlucoseMgPerDl)
		push(h.Date, h.Hour, models.MetricBodyTemperature, h.BodyTemperatureC)
		push(h.Date, h.Hour, models.MetricOxygenSaturation, h.OxygenSaturationPercent)
		push(h.Date, h.Hour, models.MetricRespiratoryRate, h.RespiratoryRate)
	}
	return points
}

func sumInto(dst **float64, v *float64) {
	if v == nil {
		return
	}
	addTo(dst, *v)
}

func keepFirst(dst **float64, v *float64) {
	if *dst == nil && v != nil {
		val := *v
		*dst = &val
	}
}
