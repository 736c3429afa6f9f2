// Package source defines the contract between the sync engine and a
// backing health platform. A platform delivers each metric either as
// pre-aggregated buckets (grouped-by-duration) or as raw timestamped
// samples; the fetch plan says which shape to use per metric.
package source

import (
	"context"
	"errors"

	"github.com/claude/healthsync/internal/models"
	"github.com/claude/healthsync/internal/timewindow"
)

// ErrPermissionDenied is returned by Permissions when a required read
// capability is not granted. Optional capabilities never produce it; they
// are reported as absent in the Permissions result and skipped.
var ErrPermissionDenied = errors.New("required health read permission not granted")

// SliceSize selects the sub-period granularity of a grouped fetch.
type SliceSize int

const (
	SliceDay SliceSize = iota
	SliceHour
)

// Shape says whether a metric is fetched grouped or raw from a platform.
type Shape int

const (
	ShapeGrouped Shape = iota
	ShapeRaw
)

// FetchPlan is one row of a platform's capability table.
type FetchPlan struct {
	Metric models.MetricType
	Shape  Shape
	// Optional metrics are skipped silently when their read capability is
	// missing instead of failing the permission check.
	Optional bool
}

// Permissions reports which read capabilities a platform granted.
type Permissions struct {
	Granted bool
	Details []string
	Reads   map[models.MetricType]bool
}

// CanRead reports whether the read capability for a metric was granted.
func (p Permissions) CanRead(m models.MetricType) bool {
	return p.Reads[m]
}

// Source is a backing health platform. Implementations wrap SDK or HTTP
// calls; any call may fail independently and callers degrade failures to
// empty results.
type Source interface {
	// Permissions checks and, where the platform supports it, requests the
	// read capabilities the fetch plan needs.
	Permissions(ctx context.Context) (Permissions, error)

	// Plan returns the platform's per-metric capability table.
	Plan() []FetchPlan

	// FetchGrouped returns one pre-aggregated bucket per slice with data.
	// Slices without data are absent from the result.
	FetchGrouped(ctx context.Context, metric models.MetricType, w timewindow.Window, slice SliceSize) ([]models.Bucket, error)

	// FetchRaw returns individual timestamped readings in the window.
	FetchRaw(ctx context.Context, metric models.MetricType, w timewindow.Window) ([]models.Sample, error)
}

// DefaultPlan is the capability table shared by the bundled platform
// shims: cumulative metrics and heart rate arrive pre-aggregated, the
// instantaneous vitals arrive as raw records, and weight is an optional
// grant some devices withhold.
func DefaultPlan() []FetchPlan {
	return []FetchPlan{
		{Metric: models.MetricSteps, Shape: ShapeGrouped},
		{Metric: models.MetricHeartRate, Shape: ShapeRaw},
		{Metric: models.MetricCalories, Shape: ShapeGrouped},
		{Metric: models.MetricDistance, Shape: ShapeGrouped},
		{Metric: models.MetricSleep, Shape: ShapeRaw},
		{Metric: models.MetricActiveMinutes, Shape: ShapeGrouped},
		{Metric: models.MetricWeight, Shape: ShapeRaw, Optional: true},
		{Metric: models.MetricBloodPressure, Shape: ShapeRaw},
		{Metric: models.MetricBloodGlucose, Shape: ShapeRaw},
		{Metric: models.MetricBodyTemperature, Shape: ShapeRaw},
		{Metric: models.MetricOxygenSaturation, Shape: ShapeRaw},
		{Metric: models.MetricRespiratoryRate, Shape: ShapeRaw},
	}
}

// Result is the settled outcome of one metric fetch. A failed fetch keeps
// its error for logging but carries empty data, so reconciliation treats
// it as a source that contributed nothing.
type Result struct {
	Metric  models.MetricType
	Shape   Shape
	Buckets []models.Bucket
	Samples []models.Sample
	Err     error
}
