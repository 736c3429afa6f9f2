package agent

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DeviceID returns the configured device ID, or loads a generated one from
// dir/device_id, creating it on first run. The generated ID is a random
// UUID so two fresh installs never collide.
func DeviceID(configured, dir string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	path := filepath.Join(dir, "device_id")
	if data, err := os.ReadFile(path); err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			return id, nil
		}
	}

	id := uuid.NewString()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating device id dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("persisting device id: %w", err)
	}
	return id, nil
}

// FlushQueue delivers pending payloads oldest first, stopping at the first
// failure so ordering is preserved for the next run. Returns the number
// delivered.
func FlushQueue(cache *Cache, client *Client, log *slog.Logger) (int, error) {
	pending, err := cache.Pending()
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, q := range pending {
		if err := client.SendPayload(q.Payload); err != nil {
			log.Warn("push failed, leaving payload queued", "queue_id", q.ID, "error", err)
			return delivered, err
		}
		if err := cache.MarkSynced(q.ID); err != nil {
			return delivered, fmt.Errorf("dequeuing payload %d: %w", q.ID, err)
		}
		delivered++
	}
	return delivered, nil
}
