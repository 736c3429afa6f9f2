package models

// DailyRecord is one calendar day's reconciled metrics. Nil fields mean
// "no data for that day"; gap-filled days get zeroed cumulative fields and
// nil point-in-time fields.
type DailyRecord struct {
	Date string `json:"date"` // "2006-01-02", local calendar day

	Steps      *float64 `json:"steps,omitempty"`
	Calories   *float64 `json:"calories,omitempty"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`

	SleepMinutes      *float64 `json:"sleepMinutes,omitempty"`
	SleepAwakeMinutes *float64 `json:"sleepAwakeMinutes,omitempty"`
	SleepRemMinutes   *float64 `json:"sleepRemMinutes,omitempty"`
	SleepCoreMinutes  *float64 `json:"sleepCoreMinutes,omitempty"`
	SleepDeepMinutes  *float64 `json:"sleepDeepMinutes,omitempty"`

	ActiveMinutes *float64 `json:"activeMinutes,omitempty"`

	AverageHeartRate *float64 `json:"averageHeartRate,omitempty"`
	MinHeartRate     *float64 `json:"minHeartRate,omitempty"`
	MaxHeartRate     *float64 `json:"maxHeartRate,omitempty"`

	BloodPressureSystolic  *float64 `json:"bloodPressureSystolic,omitempty"`
	BloodPressureDiastolic *float64 `json:"bloodPressureDiastolic,omitempty"`
	MinSystolic            *float64 `json:"minSystolic,omitempty"`
	MaxSystolic            *float64 `json:"maxSystolic,omitempty"`
	MinDiastolic           *float64 `json:"minDiastolic,omitempty"`
	MaxDiastolic           *float64 `json:"maxDiastolic,omitempty"`

	WeightKg                *float64 `json:"weightKg,omitempty"`
	BloodGlucoseMgPerDl     *float64 `json:"bloodGlucoseMgPerDl,omitempty"`
	BodyTemperatureC        *float64 `json:"bodyTemperatureC,omitempty"`
	OxygenSaturationPercent *float64 `json:"oxygenSaturationPercent,omitempty"`
	RespiratoryRate         *float64 `json:"respiratoryRate,omitempty"`
}

// HourlyRecord carries the same metric set as DailyRecord for one local
// hour of one day. It is an internal refinement: hourly records are always
// rolled up into daily records before results leave the sync service.
type HourlyRecord struct {
	Date string // "2006-01-02"
	Hour int    // 0-23

	Steps      *float64
	Calories   *float64
	DistanceKm *float64

	SleepMinutes      *float64
	SleepAwakeMinutes *float64
	SleepRemMinutes   *float64
	SleepCoreMinutes  *float64
	SleepDeepMinutes  *float64

	ActiveMinutes *float64

	AverageHeartRate *float64
	MinHeartRate     *float64
	MaxHeartRate     *float64

	BloodPressureSystolic  *float64
	BloodPressureDiastolic *float64
	MinSystolic            *float64
	MaxSystolic            *float64
	MinDiastolic           *float64
	MaxDiastolic           *float64

	WeightKg                *float64
	BloodGlucoseMgPerDl     *float64
	BodyTemperatureC        *float64
	OxygenSaturationPercent *float64
	RespiratoryRate         *float64
}

// HourlyPoint is one non-missing hourly metric value, flattened for
// intraday charts. It is a derived projection, not part of the
// authoritative daily series.
type HourlyPoint struct {
	Date       string     `json:"date"`
	Hour       int        `json:"hour"`
	MetricType MetricType `json:"metricType"`
	Value      float64    `json:"value"`
	Unit       string     `json:"unit,omitempty"`
}

// SummaryRecord represents the whole requested window: cumulative metrics
// are summed over the daily series, point-in-time metrics take the first
// non-missing daily value in date order (a representative sample, not an
// average).
type SummaryRecord struct {
	Steps      *float64 `json:"steps,omitempty"`
	Calories   *float64 `json:"calories,omitempty"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`

	SleepMinutes  *float64 `json:"sleepMinutes,omitempty"`
	ActiveMinutes *float64 `json:"activeMinutes,omitempty"`

	AverageHeartRate *float64 `json:"averageHeartRate,omitempty"`

	BloodPressureSystolic  *float64 `json:"bloodPressureSystolic,omitempty"`
	BloodPressureDiastolic *float64 `json:"bloodPressureDiastolic,omitempty"`

	WeightKg                *float64 `json:"weightKg,omitempty"`
	BloodGlucoseMgPerDl     *float64 `json:"bloodGlucoseMgPerDl,omitempty"`
	BodyTemperatureC        *float64 `json:"bodyTemperatureC,omitempty"`
	OxygenSaturationPercent *float64 `json:"oxygenSaturationPercent,omitempty"`
	RespiratoryRate         *float64 `json:"respiratoryRate,omitempty"`
}

// RangeResult is the primary sync output: one window summary, a gap-filled
// daily series, and (when hourly granularity was requested) the flat list
// of hourly points.
type RangeResult struct {
	Summary SummaryRecord `json:"summary"`
	Daily   []DailyRecord `json:"daily"`
	Hourly  []HourlyPoint `json:"hourly,omitempty"`
}
