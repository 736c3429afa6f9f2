// Package reconcile merges per-metric fetch results into canonical
// per-period records: folding with per-metric combination rules, hourly to
// daily rollup, gap filling, and the window summary reduction.
package reconcile

import (
	"math"
	"sort"
	"time"

	"github.com/claude/healthsync/internal/models"
	"github.com/claude/healthsync/internal/timewindow"
)

// Granularity selects the period key samples and buckets are folded into.
type Granularity int

const (
	Daily Granularity = iota
	Hourly
)

type periodKey struct {
	date string
	hour int // -1 for daily granularity
}

// accumulator holds the running state for one period while sources fold.
// It is separate from the output records so partial sums and counts never
// leak to callers; Finalize converts it exactly once.
type accumulator struct {
	steps         *float64
	calories      *float64
	distanceKm    *float64
	sleepMinutes  *float64
	stageMinutes  [5]*float64 // indexed by models.SleepStage
	activeMinutes *float64

	hrSum   float64
	hrCount int
	hrMin   *float64
	hrMax   *float64

	bpSystolic  *float64
	bpDiastolic *float64
	minSys      *float64
	maxSys      *float64
	minDia      *float64
	maxDia      *float64

	weightKg        *float64
	glucose         *float64
	temperature     *float64
	oxygen          *float64
	respiratoryRate *float64
}

// Engine folds all per-metric results for one sync into a period-keyed
// accumulator map. Folding is single-threaded: callers must let every
// fetch settle before the first Fold call.
type Engine struct {
	gran         Granularity
	accs         map[periodKey]*accumulator
	windowWeight *float64
}

// NewEngine creates an engine folding at the given granularity.
func NewEngine(gran Granularity) *Engine {
	return &Engine{gran: gran, accs: make(map[periodKey]*accumulator)}
}

func (e *Engine) keyFor(t time.Time) periodKey {
	local := t.Local()
	k := periodKey{date: timewindow.DayKey(local), hour: -1}
	if e.gran == Hourly {
		k.hour = local.Hour()
	}
	return k
}

func (e *Engine) acc(k periodKey) *accumulator {
	a, ok := e.accs[k]
	if !ok {
		a = &accumulator{}
		e.accs[k] = a
	}
	return a
}

// FoldBucket merges a pre-aggregated bucket into its period, keyed by the
// bucket's own start instant.
func (e *Engine) FoldBucket(b models.Bucket) {
	a := e.acc(e.keyFor(b.Start))
	v := normalizedValue(b.Type, b.Value, b.Unit)

	switch b.Type {
	case models.MetricSteps:
		addTo(&a.steps, v)
	case models.MetricCalories:
		addTo(&a.calories, v)
	case models.MetricDistance:
		addTo(&a.distanceKm, v)
	case models.MetricActiveMinutes:
		addTo(&a.activeMinutes, v)
	case models.MetricSleep:
		addTo(&a.sleepMinutes, v)
	case models.MetricHeartRate:
		// Platform-averaged bucket: feed the running average so one
		// finalization divide covers grouped and raw sources alike.
		a.hrSum += v
		a.hrCount++
	case models.MetricWeight:
		a.weightKg = ptr(v)
		e.windowWeight = ptr(v)
	case models.MetricBloodGlucose:
		a.glucose = ptr(v)
	case models.MetricBodyTemperature:
		a.temperature = ptr(v)
	case models.MetricOxygenSaturation:
		a.oxygen = ptr(v)
	case models.MetricRespiratoryRate:
		a.respiratoryRate = ptr(v)
	}
}

// FoldSample merges a raw reading into its period, keyed by the sample's
// own timestamp.
func (e *Engine) FoldSample(s models.Sample) {
	a := e.acc(e.keyFor(s.Time))
	v := normalizedValue(s.Type, s.Value, s.Unit)

	switch s.Type {
	case models.MetricSteps:
		addTo(&a.steps, v)
	case models.MetricCalories:
		addTo(&a.calories, v)
	case models.MetricDistance:
		addTo(&a.distanceKm, v)
	case models.MetricActiveMinutes:
		addTo(&a.activeMinutes, v)
	case models.MetricSleep:
		minutes := s.DurationMinutes
		addTo(&a.sleepMinutes, minutes)
		if stage := models.ClassifySleepStage(s.Stage); stage != models.StageUnknown {
			addTo(&a.stageMinutes[stage], minutes)
		}
	case models.MetricHeartRate:
		a.hrSum += v
		a.hrCount++
		trackMin(&a.hrMin, v)
		trackMax(&a.hrMax, v)
	case models.MetricBloodPressure:
		a.bpSystolic = ptr(v)
		a.bpDiastolic = ptr(s.Value2)
		trackMin(&a.minSys, v)
		trackMax(&a.maxSys, v)
		trackMin(&a.minDia, s.Value2)
		trackMax(&a.maxDia, s.Value2)
	case models.MetricWeight:
		a.weightKg = ptr(v)
		e.windowWeight = ptr(v)
	case models.MetricBloodGlucose:
		a.glucose = ptr(v)
	case models.MetricBodyTemperature:
		a.temperature = ptr(v)
	case models.MetricOxygenSaturation:
		a.oxygen = ptr(v)
	case models.MetricRespiratoryRate:
		a.respiratoryRate = ptr(v)
	}
}

// WindowWeight returns the latest weight reading folded during this sync,
// independent of per-day bucketing. Weight changes rarely enough that one
// representative value stands for the whole window.
func (e *Engine) WindowWeight() *float64 {
	return e.windowWeight
}

// FinalizeDaily converts the accumulators into daily records keyed by
// date. It must run once, after every source has been folded.
func (e *Engine) FinalizeDaily() map[string]models.DailyRecord {
	out := make(map[string]models.DailyRecord, len(e.accs))
	for k, a := range e.accs {
		out[k.date] = a.finalizeDaily(k.date)
	}
	return out
}

// FinalizeHourly converts the accumulators into hourly records ordered by
// (date, hour) ascending. Only valid for an Hourly engine.
func (e *Engine) FinalizeHourly() []models.HourlyRecord {
	out := make([]models.HourlyRecord, 0, len(e.accs))
	for k, a := range e.accs {
		out = append(out, a.finalizeHourly(k.date, k.hour))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Hour < out[j].Hour
	})
	return out
}

func (a *accumulator) finalizeDaily(date string) models.DailyRecord {
	r := models.DailyRecord{
		Date:                    date,
		Steps:                   a.steps,
		Calories:                a.calories,
		DistanceKm:              a.distanceKm,
		SleepMinutes:            a.sleepMinutes,
		SleepAwakeMinutes:       a.stageMinutes[models.StageAwake],
		SleepRemMinutes:         a.stageMinutes[models.StageRem],
		SleepCoreMinutes:        a.stageMinutes[models.StageCore],
		SleepDeepMinutes:        a.stageMinutes[models.StageDeep],
		ActiveMinutes:           a.activeMinutes,
		MinHeartRate:            a.hrMin,
		MaxHeartRate:            a.hrMax,
		BloodPressureSystolic:   a.bpSystolic,
		BloodPressureDiastolic:  a.bpDiastolic,
		MinSystolic:             a.minSys,
		MaxSystolic:             a.maxSys,
		MinDiastolic:            a.minDia,
		MaxDiastolic:            a.maxDia,
		WeightKg:                a.weightKg,
		BloodGlucoseMgPerDl:     a.glucose,
		BodyTemperatureC:        a.temperature,
		OxygenSaturationPercent: a.oxygen,
		RespiratoryRate:         a.respiratoryRate,
	}
	if a.hrCount > 0 {
		r.AverageHeartRate = ptr(math.Round(a.hrSum / float64(a.hrCount)))
	}
	return r
}

func (a *accumulator) finalizeHourly(date string, hour int) models.HourlyRecord {
	r := models.HourlyRecord{
		Date:                    date,
		Hour:                    hour,
		Steps:                   a.steps,
		Calories:                a.calories,
		DistanceKm:              a.distanceKm,
		SleepMinutes:            a.sleepMinutes,
		SleepAwakeMinutes:       a.stageMinutes[models.StageAwake],
		SleepRemMinutes:         a.stageMinutes[models.StageRem],
		SleepCoreMinutes:        a.stageMinutes[models.StageCore],
		SleepDeepMinutes:        a.stageMinutes[models.StageDeep],
		ActiveMinutes:           a.activeMinutes,
		MinHeartRate:            a.hrMin,
		MaxHeartRate:            a.hrMax,
		BloodPressureSystolic:   a.bpSystolic,
		BloodPressureDiastolic:  a.bpDiastolic,
		MinSystolic:             a.minSys,
		MaxSystolic:             a.maxSys,
		MinDiastolic:            a.minDia,
		MaxDiastolic:            a.maxDia,
		WeightKg:                a.weightKg,
		BloodGlucoseMgPerDl:     a.glucose,
		BodyTemperatureC:        a.temperature,
		OxygenSaturationPercent: a.oxygen,
		RespiratoryRate:         a.respiratoryRate,
	}
	if a.hrCount > 0 {
		r.AverageHeartRate = ptr(math.Round(a.hrSum / float64(a.hrCount)))
	}
	return r
}

// normalizedValue converts source units to the canonical ones: meters to
// kilometers for distance, pounds to kilograms for weight, seconds to
// whole minutes for durations.
func normalizedValue(m models.MetricType, v float64, unit string) float64 {
	switch m {
	case models.MetricDistance:
		if unit == "m" {
			return models.MetersToKm(v)
		}
	case models.MetricWeight:
		if unit == "lb" {
			return models.PoundsToKg(v)
		}
	case models.MetricSleep, models.MetricActiveMinutes:
		if unit == "s" {
			return math.Round(v / 60)
		}
	}
	return v
}

func ptr(v float64) *float64 { return &v }

func addTo(field **float64, v float64) {
	if *field == nil {
		*field = ptr(0)
	}
	**field += v
}

func trackMin(field **float64, v float64) {
	if *field == nil || v < **field {
		*field = ptr(v)
	}
}

func trackMax(field **float64, v float64) {
	if *field == nil || v > **field {
		*field = ptr(v)
	}
}
