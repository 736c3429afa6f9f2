package models

import "time"

// MetricType identifies one physiological measurement stream.
type MetricType string

const (
	MetricSteps            MetricType = "steps"
	MetricHeartRate        MetricType = "heart_rate"
	MetricCalories         MetricType = "calories"
	MetricDistance         MetricType = "distance"
	MetricSleep            MetricType = "sleep"
	MetricActiveMinutes    MetricType = "active_minutes"
	MetricWeight           MetricType = "weight"
	MetricBloodPressure    MetricType = "blood_pressure"
	MetricBloodGlucose     MetricType = "blood_glucose"
	MetricBodyTemperature  MetricType = "body_temperature"
	MetricOxygenSaturation MetricType = "oxygen_saturation"
	MetricRespiratoryRate  MetricType = "respiratory_rate"

	// Chart-only projections of the two blood pressure series; never
	// fetched directly.
	MetricBPSystolic  MetricType = "bp_systolic"
	MetricBPDiastolic MetricType = "bp_diastolic"
)

// AllMetricTypes lists every metric the sync engine knows about, in the
// order fetches are issued.
var AllMetricTypes = []MetricType{
	MetricSteps,
	MetricHeartRate,
	MetricCalories,
	MetricDistance,
	MetricSleep,
	MetricActiveMinutes,
	MetricWeight,
	MetricBloodPressure,
	MetricBloodGlucose,
	MetricBodyTemperature,
	MetricOxygenSaturation,
	MetricRespiratoryRate,
}

// AggregationKind describes how an upstream platform pre-aggregated a bucket.
type AggregationKind int

const (
	AggCountTotal AggregationKind = iota
	AggSum
	AggAverage
	AggMin
	AggMax
)

// Sample is a single instantaneous reading from a raw-records source.
// Value2 carries the diastolic reading for blood_pressure samples and is
// zero for every other metric. Stage carries the sleep stage label for
// sleep samples, and DurationMinutes the segment length.
type Sample struct {
	Time            time.Time  `json:"time"`
	Type            MetricType `json:"type"`
	Value           float64    `json:"value"`
	Value2          float64    `json:"value2,omitempty"`
	Unit            string     `json:"unit,omitempty"`
	Stage           string     `json:"stage,omitempty"`
	DurationMinutes float64    `json:"durationMinutes,omitempty"`
}

// Bucket is a pre-aggregated value for one sub-period, produced by a
// grouped-by-duration source call.
type Bucket struct {
	Start time.Time       `json:"start"`
	End   time.Time       `json:"end"`
	Type  MetricType      `json:"type"`
	Kind  AggregationKind `json:"kind"`
	Value float64         `json:"value"`
	Unit  string          `json:"unit,omitempty"`
}

// PoundsToKg converts a weight reading in pounds to kilograms.
func PoundsToKg(lb float64) float64 { return lb * 0.453592 }

// MetersToKm converts a distance reading in meters to kilometers.
func MetersToKm(m float64) float64 { return m / 1000 }

// Unit returns the display unit for a metric's hourly points.
func (m MetricType) Unit() string {
	switch m {
	case MetricSteps:
		return "count"
	case MetricHeartRate:
		return "bpm"
	case MetricCalories:
		return "kcal"
	case MetricDistance:
		return "km"
	case MetricSleep, MetricActiveMinutes:
		return "min"
	case MetricWeight:
		return "kg"
	case MetricBloodPressure, MetricBPSystolic, MetricBPDiastolic:
		return "mmHg"
	case MetricBloodGlucose:
		return "mg/dL"
	case MetricBodyTemperature:
		return "C"
	case MetricOxygenSaturation:
		return "%"
	case MetricRespiratoryRate:
		return "breaths/min"
	}
	return ""
}
