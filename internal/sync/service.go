// Package sync orchestrates one sync operation: resolve permissions, fetch
// every metric concurrently, then fold, roll up, gap-fill and summarize the
// settled results.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"

	"github.com/claude/healthsync/internal/models"
	"github.com/claude/healthsync/internal/reconcile"
	"github.com/claude/healthsync/internal/source"
	"github.com/claude/healthsync/internal/timewindow"
)

// ErrSyncInProgress is returned when a sync is requested while another is
// still running. The new request is a no-op, never queued.
var ErrSyncInProgress = errors.New("sync already in progress")

// ErrAllSourcesFailed is returned when every metric fetch of a sync failed,
// leaving nothing to reconcile.
var ErrAllSourcesFailed = errors.New("all metric fetches failed")

// State is the service's explicit sync lifecycle state.
type State int

const (
	Idle State = iota
	Syncing
)

// Service runs sync operations against one backing source. Fetches within
// a sync run concurrently; folding starts only after all of them settle
// and is single-threaded.
type Service struct {
	src source.Source
	log *slog.Logger

	mu    stdsync.Mutex
	state State
}

// New creates a sync service over a source.
func New(src source.Source, log *slog.Logger) *Service {
	return &Service{src: src, log: log}
}

// Status returns the current lifecycle state.
func (s *Service) Status() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Service) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Syncing {
		return ErrSyncInProgress
	}
	s.state = Syncing
	return nil
}

func (s *Service) end() {
	s.mu.Lock()
	s.state = Idle
	s.mu.Unlock()
}

// SyncSummary produces the single-window aggregate without hourly
// refinement, for callers that only need the legacy summary record.
func (s *Service) SyncSummary(ctx context.Context, w timewindow.Window) (models.SummaryRecord, error) {
	if err := s.begin(); err != nil {
		return models.SummaryRecord{}, err
	}
	defer s.end()

	res, err := s.run(ctx, w, false)
	if err != nil {
		return models.SummaryRecord{}, err
	}
	return res.Summary, nil
}

// SyncRange is the primary entry point: it produces the window summary,
// the gap-filled daily series, and, when hourly granularity is requested,
// the flat intraday point list.
func (s *Service) SyncRange(ctx context.Context, w timewindow.Window, hourly bool) (models.RangeResult, error) {
	if err := s.begin(); err != nil {
		return models.RangeResult{}, err
	}
	defer s.end()

	return s.run(ctx, w, hourly)
}

func (s *Service) run(ctx context.Context, w timewindow.Window, hourly bool) (models.RangeResult, error) {
	perms, err := s.src.Permissions(ctx)
	if err != nil {
		return models.RangeResult{}, fmt.Errorf("checking permissions: %w", err)
	}
	if !perms.Granted {
		return models.RangeResult{}, source.ErrPermissionDenied
	}

	slice := source.SliceDay
	gran := reconcile.Daily
	if hourly {
		slice = source.SliceHour
		gran = reconcile.Hourly
	}

	results := s.fetchAll(ctx, perms, w, slice)
	if len(results) > 0 {
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		if failed == len(results) {
			return models.RangeResult{}, ErrAllSourcesFailed
		}
	}

	// All fetches have settled; folding is single-threaded from here.
	eng := reconcile.NewEngine(gran)
	for _, r := range results {
		for _, b := range r.Buckets {
			eng.FoldBucket(b)
		}
		for _, sm := range r.Samples {
			eng.FoldSample(sm)
		}
	}

	var res models.RangeResult
	var byDate map[string]models.DailyRecord
	if hourly {
		hours := eng.FinalizeHourly()
		byDate = reconcile.RollupHourly(hours)
		res.Hourly = reconcile.HourlyPoints(hours)
	} else {
		byDate = eng.FinalizeDaily()
	}

	res.Daily = reconcile.FillMissingDays(w, byDate)
	res.Summary = reconcile.Summarize(res.Daily, eng.WindowWeight())

	s.log.Info("sync complete",
		"days", len(res.Daily),
		"hourly_points", len(res.Hourly),
		"window_start", w.Start,
		"window_end", w.End,
	)
	return res, nil
}

// fetchAll issues every planned metric fetch concurrently and waits for
// all of them to settle. A failed fetch degrades to an empty result so one
// unavailable metric never aborts the sync; ungranted optional metrics are
// skipped entirely.
func (s *Service) fetchAll(ctx context.Context, perms source.Permissions, w timewindow.Window, slice source.SliceSize) []source.Result {
	plan := s.src.Plan()
	results := make([]source.Result, 0, len(plan))

	var wg stdsync.WaitGroup
	ch := make(chan source.Result, len(plan))

	for _, p := range plan {
		if !perms.CanRead(p.Metric) {
			if p.Optional {
				s.log.Debug("skipping ungranted optional metric", "metric", p.Metric)
				continue
			}
			// Required reads are covered by the Granted check; treat a
			// stray gap as an empty contribution rather than failing.
			s.log.Warn("required metric read not granted, treating as empty", "metric", p.Metric)
			continue
		}

		wg.Add(1)
		go func(p source.FetchPlan) {
			defer wg.Done()
			ch <- s.fetchOne(ctx, p, w, slice)
		}(p)
	}

	wg.Wait()
	close(ch)
	for r := range ch {
		results = append(results, r)
	}
	return results
}

func (s *Service) fetchOne(ctx context.Context, p source.FetchPlan, w timewindow.Window, slice source.SliceSize) source.Result {
	r := source.Result{Metric: p.Metric, Shape: p.Shape}
	var err error

	switch p.Shape {
	case source.ShapeGrouped:
		r.Buckets, err = s.src.FetchGrouped(ctx, p.Metric, w, slice)
	case source.ShapeRaw:
		r.Samples, err = s.src.FetchRaw(ctx, p.Metric, w)
	}

	if err != nil {
		s.log.Warn("metric fetch failed, continuing with empty result", "metric", p.Metric, "error", err)
		r.Buckets = nil
		r.Samples = nil
		r.Err = err
	}
	return r
}
