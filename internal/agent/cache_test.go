package agent

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/healthsync/internal/models"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func fptr(v float64) *float64 { return &v }

// TestCacheDailyRoundTrip verifies cached days come back in date order with
// optional fields intact, including absent ones.
func TestCacheDailyRoundTrip(t *testing.T) {
	c := openTestCache(t)

	daily := []models.DailyRecord{
		{Date: "2024-03-14", Steps: fptr(5000), AverageHeartRate: fptr(62)},
		{Date: "2024-03-15", Steps: fptr(0)},
	}
	if err := c.SaveDaily(daily); err != nil {
		t.Fatalf("SaveDaily: %v", err)
	}

	got, err := c.ReadDaily("2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatalf("ReadDaily: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0].Date != "2024-03-14" || got[1].Date != "2024-03-15" {
		t.Errorf("dates = %s, %s, want 2024-03-14, 2024-03-15", got[0].Date, got[1].Date)
	}
	if got[0].AverageHeartRate == nil || *got[0].AverageHeartRate != 62 {
		t.Errorf("averageHeartRate = %v, want 62", got[0].AverageHeartRate)
	}
	if got[1].AverageHeartRate != nil {
		t.Errorf("day without heart rate decoded as %v, want nil", *got[1].AverageHeartRate)
	}
}

// TestCacheDailyOverwrite verifies a re-sync of the same date replaces the
// cached row rather than duplicating it.
func TestCacheDailyOverwrite(t *testing.T) {
	c := openTestCache(t)

	if err := c.SaveDaily([]models.DailyRecord{{Date: "2024-03-14", Steps: fptr(1000)}}); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveDaily([]models.DailyRecord{{Date: "2024-03-14", Steps: fptr(9000)}}); err != nil {
		t.Fatal(err)
	}

	got, err := c.ReadDaily("2024-03-14", "2024-03-14")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if *got[0].Steps != 9000 {
		t.Errorf("steps = %v, want 9000", *got[0].Steps)
	}
}

// TestQueueOrdering verifies pending payloads come back oldest first and
// MarkSynced removes them.
func TestQueueOrdering(t *testing.T) {
	c := openTestCache(t)

	for _, dev := range []string{"first", "second", "third"} {
		if err := c.Enqueue(models.SyncPayload{DeviceID: dev}); err != nil {
			t.Fatalf("Enqueue(%s): %v", dev, err)
		}
	}

	pending, err := c.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 3 {
		t.Fatalf("len(pending) = %d, want 3", len(pending))
	}
	if pending[0].Payload.DeviceID != "first" || pending[2].Payload.DeviceID != "third" {
		t.Errorf("queue order = %s..%s, want first..third",
			pending[0].Payload.DeviceID, pending[2].Payload.DeviceID)
	}

	if err := c.MarkSynced(pending[0].ID); err != nil {
		t.Fatal(err)
	}
	pending, err = c.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 || pending[0].Payload.DeviceID != "second" {
		t.Errorf("after MarkSynced pending = %d rows starting %q, want 2 starting second",
			len(pending), pending[0].Payload.DeviceID)
	}
}

// TestFlushQueue verifies queued payloads are delivered in order and
// removed from the queue on success.
func TestFlushQueue(t *testing.T) {
	c := openTestCache(t)
	var gotDevices []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "k" {
			t.Errorf("X-API-Key = %q, want k", r.Header.Get("X-API-Key"))
		}
		var p models.SyncPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode: %v", err)
		}
		gotDevices = append(gotDevices, p.DeviceID)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c.Enqueue(models.SyncPayload{DeviceID: "a", SyncedAt: time.Now()})
	c.Enqueue(models.SyncPayload{DeviceID: "b", SyncedAt: time.Now()})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	n, err := FlushQueue(c, NewClient(srv.URL, "k"), log)
	if err != nil {
		t.Fatalf("FlushQueue: %v", err)
	}
	if n != 2 {
		t.Errorf("delivered = %d, want 2", n)
	}
	if len(gotDevices) != 2 || gotDevices[0] != "a" || gotDevices[1] != "b" {
		t.Errorf("server received %v, want [a b]", gotDevices)
	}

	pending, err := c.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("len(pending) = %d after flush, want 0", len(pending))
	}
}

// TestDeviceIDPersists verifies a generated device ID is stable across
// calls and that a configured ID wins.
func TestDeviceIDPersists(t *testing.T) {
	dir := t.TempDir()

	id1, err := DeviceID("", dir)
	if err != nil {
		t.Fatalf("DeviceID: %v", err)
	}
	if id1 == "" {
		t.Fatal("generated device ID is empty")
	}

	id2, err := DeviceID("", dir)
	if err != nil {
		t.Fatal(err)
	}
	if id2 != id1 {
		t.Errorf("second call = %q, want %q", id2, id1)
	}

	id3, err := DeviceID("configured-id", dir)
	if err != nil {
		t.Fatal(err)
	}
	if id3 != "configured-id" {
		t.Errorf("configured ID = %q, want configured-id", id3)
	}
}
