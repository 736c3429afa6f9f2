package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/healthsync/internal/models"
	"github.com/claude/healthsync/internal/source"
	"github.com/claude/healthsync/internal/timewindow"
)

// fakeSource is an in-memory Source with per-metric canned data and
// injectable failures.
type fakeSource struct {
	perms   source.Permissions
	permErr error
	plan    []source.FetchPlan
	buckets map[models.MetricType][]models.Bucket
	samples map[models.MetricType][]models.Sample
	errs    map[models.MetricType]error

	// When set, Permissions signals started then blocks until release is
	// closed, for reentrancy tests.
	started chan struct{}
	release chan struct{}
}

func newFakeSource() *fakeSource {
	reads := make(map[models.MetricType]bool)
	for _, m := range models.AllMetricTypes {
		reads[m] = true
	}
	return &fakeSource{
		perms:   source.Permissions{Granted: true, Reads: reads},
		plan:    source.DefaultPlan(),
		buckets: make(map[models.MetricType][]models.Bucket),
		samples: make(map[models.MetricType][]models.Sample),
		errs:    make(map[models.MetricType]error),
	}
}

func (f *fakeSource) Permissions(ctx context.Context) (source.Permissions, error) {
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.perms, f.permErr
}

func (f *fakeSource) Plan() []source.FetchPlan { return f.plan }

func (f *fakeSource) FetchGrouped(ctx context.Context, m models.MetricType, w timewindow.Window, slice source.SliceSize) ([]models.Bucket, error) {
	if err := f.errs[m]; err != nil {
		return nil, err
	}
	return f.buckets[m], nil
}

func (f *fakeSource) FetchRaw(ctx context.Context, m models.MetricType, w timewindow.Window) ([]models.Sample, error) {
	if err := f.errs[m]; err != nil {
		return nil, err
	}
	return f.samples[m], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func janWindow(startDay, endDay int) timewindow.Window {
	return timewindow.Window{
		Start: time.Date(2024, 1, startDay, 0, 0, 0, 0, time.Local),
		End:   time.Date(2024, 1, endDay, 23, 59, 59, 0, time.Local),
	}
}

func stepsBucket(day int, v float64) models.Bucket {
	start := time.Date(2024, 1, day, 0, 0, 0, 0, time.Local)
	return models.Bucket{
		Start: start, End: start.AddDate(0, 0, 1),
		Type: models.MetricSteps, Kind: models.AggCountTotal, Value: v,
	}
}

// TestSyncRangeSparseBuckets runs the canonical scenario: a 3-day window
// with grouped steps buckets on days 1 and 3 produces a gap-filled series
// of 1000 / 0 / 500 and a summary total of 1500.
func TestSyncRangeSparseBuckets(t *testing.T) {
	src := newFakeSource()
	src.buckets[models.MetricSteps] = []models.Bucket{stepsBucket(1, 1000), stepsBucket(3, 500)}

	svc := New(src, testLogger())
	res, err := svc.SyncRange(context.Background(), janWindow(1, 3), false)
	if err != nil {
		t.Fatalf("SyncRange: %v", err)
	}

	if len(res.Daily) != 3 {
		t.Fatalf("got %d daily records, want 3", len(res.Daily))
	}
	wantSteps := []float64{1000, 0, 500}
	for i, want := range wantSteps {
		if res.Daily[i].Steps == nil || *res.Daily[i].Steps != want {
			t.Errorf("day %d steps = %v, want %v", i+1, res.Daily[i].Steps, want)
		}
	}
	if res.Summary.Steps == nil || *res.Summary.Steps != 1500 {
		t.Errorf("summary steps = %v, want 1500", res.Summary.Steps)
	}
}

// TestSyncRangeFailureIsolation verifies a failing heart-rate fetch leaves
// steps and calories intact and heart rate absent on every day, instead of
// failing the whole sync.
func TestSyncRangeFailureIsolation(t *testing.T) {
	src := newFakeSource()
	src.buckets[models.MetricSteps] = []models.Bucket{stepsBucket(1, 1200)}
	src.buckets[models.MetricCalories] = []models.Bucket{{
		Start: time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local),
		Type:  models.MetricCalories, Kind: models.AggSum, Value: 450,
	}}
	src.errs[models.MetricHeartRate] = errors.New("sensor unavailable")

	svc := New(src, testLogger())
	res, err := svc.SyncRange(context.Background(), janWindow(1, 2), false)
	if err != nil {
		t.Fatalf("SyncRange: %v", err)
	}

	if res.Daily[0].Steps == nil || *res.Daily[0].Steps != 1200 {
		t.Errorf("day 1 steps = %v, want 1200", res.Daily[0].Steps)
	}
	if res.Daily[1].Calories == nil || *res.Daily[1].Calories != 450 {
		t.Errorf("day 2 calories = %v, want 450", res.Daily[1].Calories)
	}
	for _, d := range res.Daily {
		if d.AverageHeartRate != nil {
			t.Errorf("day %s averageHeartRate = %v, want absent", d.Date, *d.AverageHeartRate)
		}
	}
}

// TestSyncRangeAllSourcesFailed verifies that total adapter unavailability
// surfaces as an error instead of an empty result.
func TestSyncRangeAllSourcesFailed(t *testing.T) {
	src := newFakeSource()
	for _, p := range src.plan {
		src.errs[p.Metric] = errors.New("platform offline")
	}

	svc := New(src, testLogger())
	_, err := svc.SyncRange(context.Background(), janWindow(1, 2), false)
	if !errors.Is(err, ErrAllSourcesFailed) {
		t.Errorf("err = %v, want ErrAllSourcesFailed", err)
	}
}

// TestSyncRangePermissionDenied verifies an ungranted required capability
// aborts the whole sync.
func TestSyncRangePermissionDenied(t *testing.T) {
	src := newFakeSource()
	src.perms.Granted = false

	svc := New(src, testLogger())
	_, err := svc.SyncRange(context.Background(), janWindow(1, 1), false)
	if !errors.Is(err, source.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
}

// TestSyncRangeOptionalMetricSkipped verifies an ungranted optional
// capability (weight) is skipped silently: the sync succeeds and weight is
// simply absent.
func TestSyncRangeOptionalMetricSkipped(t *testing.T) {
	src := newFakeSource()
	src.perms.Reads[models.MetricWeight] = false
	src.samples[models.MetricWeight] = []models.Sample{{
		Time: time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local),
		Type: models.MetricWeight, Value: 70,
	}}
	src.buckets[models.MetricSteps] = []models.Bucket{stepsBucket(1, 100)}

	svc := New(src, testLogger())
	res, err := svc.SyncRange(context.Background(), janWindow(1, 1), false)
	if err != nil {
		t.Fatalf("SyncRange: %v", err)
	}
	if res.Summary.WeightKg != nil {
		t.Errorf("summary weightKg = %v, want absent", *res.Summary.WeightKg)
	}
	if res.Summary.Steps == nil || *res.Summary.Steps != 100 {
		t.Errorf("summary steps = %v, want 100", res.Summary.Steps)
	}
}

// TestSyncRangeHourly verifies hourly granularity: hour buckets roll up
// into one daily record per date and the flat hourly point list is
// emitted.
func TestSyncRangeHourly(t *testing.T) {
	src := newFakeSource()
	hour := func(day, h int) time.Time { return time.Date(2024, 1, day, h, 0, 0, 0, time.Local) }
	src.buckets[models.MetricSteps] = []models.Bucket{
		{Start: hour(1, 9), Type: models.MetricSteps, Kind: models.AggCountTotal, Value: 300},
		{Start: hour(1, 10), Type: models.MetricSteps, Kind: models.AggCountTotal, Value: 700},
	}
	src.samples[models.MetricHeartRate] = []models.Sample{
		{Time: hour(1, 9), Type: models.MetricHeartRate, Value: 60},
		{Time: hour(1, 10), Type: models.MetricHeartRate, Value: 80},
	}

	svc := New(src, testLogger())
	res, err := svc.SyncRange(context.Background(), janWindow(1, 1), true)
	if err != nil {
		t.Fatalf("SyncRange: %v", err)
	}

	if len(res.Daily) != 1 {
		t.Fatalf("got %d daily records, want 1", len(res.Daily))
	}
	d := res.Daily[0]
	if d.Steps == nil || *d.Steps != 1000 {
		t.Errorf("daily steps = %v, want 1000", d.Steps)
	}
	// Average of the per-hour averages: (60 + 80) / 2
	if d.AverageHeartRate == nil || *d.AverageHeartRate != 70 {
		t.Errorf("daily averageHeartRate = %v, want 70", d.AverageHeartRate)
	}
	if len(res.Hourly) == 0 {
		t.Fatal("expected hourly points")
	}
	foundSteps := false
	for _, p := range res.Hourly {
		if p.MetricType == models.MetricSteps && p.Hour == 9 && p.Value == 300 {
			foundSteps = true
		}
	}
	if !foundSteps {
		t.Error("missing hourly steps point for hour 9")
	}
}

// TestSyncSummaryLegacy verifies the summary-only entry point returns the
// same reduction as the range sync's summary.
func TestSyncSummaryLegacy(t *testing.T) {
	src := newFakeSource()
	src.buckets[models.MetricSteps] = []models.Bucket{stepsBucket(1, 1000), stepsBucket(2, 500)}

	svc := New(src, testLogger())
	sum, err := svc.SyncSummary(context.Background(), janWindow(1, 2))
	if err != nil {
		t.Fatalf("SyncSummary: %v", err)
	}
	if sum.Steps == nil || *sum.Steps != 1500 {
		t.Errorf("summary steps = %v, want 1500", sum.Steps)
	}
}

// TestSyncReentrancyGuard verifies a second sync requested while one is in
// flight gets ErrSyncInProgress instead of being queued.
func TestSyncReentrancyGuard(t *testing.T) {
	src := newFakeSource()
	src.started = make(chan struct{})
	src.release = make(chan struct{})

	svc := New(src, testLogger())
	done := make(chan error, 1)
	go func() {
		_, err := svc.SyncRange(context.Background(), janWindow(1, 1), false)
		done <- err
	}()

	<-src.started
	if svc.Status() != Syncing {
		t.Error("Status() != Syncing while first sync in flight")
	}
	if _, err := svc.SyncRange(context.Background(), janWindow(1, 1), false); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("second sync err = %v, want ErrSyncInProgress", err)
	}

	close(src.release)
	if err := <-done; err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if svc.Status() != Idle {
		t.Error("Status() != Idle after sync completed")
	}
}
