package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/claude/healthsync/internal/models"
	"github.com/claude/healthsync/internal/timewindow"
)

// Export is the on-disk format the agent reads: a JSON dump of device
// readings, grouped metrics already bucketed and raw metrics as samples.
type Export struct {
	Platform string          `json:"platform"`
	Granted  []string        `json:"granted,omitempty"`
	Buckets  []models.Bucket `json:"buckets,omitempty"`
	Samples  []models.Sample `json:"samples,omitempty"`
}

// FileSource serves metrics from a JSON export file. It stands in for a
// live platform SDK on machines where readings are dumped by a companion
// app, and doubles as the fixture-driven source in tests.
type FileSource struct {
	export Export
	plan   []FetchPlan
	reads  map[models.MetricType]bool
}

var _ Source = (*FileSource)(nil)

// OpenFile loads a JSON export and prepares it for fetching. When the
// export lists granted metrics, only those read capabilities are reported;
// an empty list grants everything. A file is not a permission system, so
// metrics simply absent from the export fetch as empty rather than denied.
func OpenFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export %s: %w", path, err)
	}

	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("parsing export %s: %w", path, err)
	}

	return NewFileSource(export), nil
}

// NewFileSource wraps an already-decoded export.
func NewFileSource(export Export) *FileSource {
	plan := DefaultPlan()
	reads := make(map[models.MetricType]bool)
	if len(export.Granted) > 0 {
		for _, name := range export.Granted {
			reads[models.MetricType(name)] = true
		}
	} else {
		for _, p := range plan {
			reads[p.Metric] = true
		}
	}

	return &FileSource{
		export: export,
		plan:   plan,
		reads:  reads,
	}
}

// Platform returns the platform string recorded in the export.
func (f *FileSource) Platform() string {
	if f.export.Platform == "" {
		return "file"
	}
	return f.export.Platform
}

func (f *FileSource) Permissions(ctx context.Context) (Permissions, error) {
	granted := true
	var missing []string
	for _, p := range f.plan {
		if p.Optional {
			continue
		}
		if !f.reads[p.Metric] {
			granted = false
			missing = append(missing, string(p.Metric))
		}
	}
	return Permissions{
		Granted: granted,
		Details: missing,
		Reads:   f.reads,
	}, nil
}

func (f *FileSource) Plan() []FetchPlan {
	return f.plan
}

func (f *FileSource) FetchGrouped(ctx context.Context, metric models.MetricType, w timewindow.Window, slice SliceSize) ([]models.Bucket, error) {
	var result []models.Bucket
	for _, b := range f.export.Buckets {
		if b.Type != metric {
			continue
		}
		if b.Start.Before(w.Start) || b.Start.After(w.End) {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (f *FileSource) FetchRaw(ctx context.Context, metric models.MetricType, w timewindow.Window) ([]models.Sample, error) {
	var result []models.Sample
	for _, s := range f.export.Samples {
		if s.Type != metric {
			continue
		}
		if s.Time.Before(w.Start) || s.Time.After(w.End) {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}
