package agent

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/claude/healthsync/internal/models"
)

// Cache is the agent's local SQLite store. It keeps the last reconciled
// daily series for offline display and a queue of payloads awaiting
// delivery to the server.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the SQLite cache database at dir/cache.db.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "cache.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS vitals_daily (
		date TEXT PRIMARY KEY,
		data TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating daily cache table: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sync_queue (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		payload    TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating queue table: %w", err)
	}

	return &Cache{db: db}, nil
}

// SaveDaily replaces cached days with the given series. Existing dates are
// overwritten; dates outside the series are left alone.
func (c *Cache) SaveDaily(daily []models.DailyRecord) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning cache transaction: %w", err)
	}
	defer tx.Rollback()

	for _, d := range daily {
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshaling day %s: %w", d.Date, err)
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO vitals_daily (date, data) VALUES (?, ?)`,
			d.Date, string(data),
		); err != nil {
			return fmt.Errorf("caching day %s: %w", d.Date, err)
		}
	}
	return tx.Commit()
}

// ReadDaily returns the cached days in [startDate, endDate] (inclusive,
// "2006-01-02" keys), oldest first.
func (c *Cache) ReadDaily(startDate, endDate string) ([]models.DailyRecord, error) {
	rows, err := c.db.Query(
		`SELECT data FROM vitals_daily WHERE date >= ? AND date <= ? ORDER BY date ASC`,
		startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("reading cached days: %w", err)
	}
	defer rows.Close()

	var result []models.DailyRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning cached day: %w", err)
		}
		var d models.DailyRecord
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, fmt.Errorf("decoding cached day: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// Enqueue appends a payload to the delivery queue.
func (c *Cache) Enqueue(p models.SyncPayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}
	if _, err := c.db.Exec(
		`INSERT INTO sync_queue (payload) VALUES (?)`, string(data),
	); err != nil {
		return fmt.Errorf("enqueueing payload: %w", err)
	}
	return nil
}

// QueuedPayload is a pending delivery with its queue ID.
type QueuedPayload struct {
	ID      int64
	Payload models.SyncPayload
}

// Pending returns queued payloads oldest first.
func (c *Cache) Pending() ([]QueuedPayload, error) {
	rows, err := c.db.Query(`SELECT id, payload FROM sync_queue ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("reading queue: %w", err)
	}
	defer rows.Close()

	var result []QueuedPayload
	for rows.Next() {
		var q QueuedPayload
		var data string
		if err := rows.Scan(&q.ID, &data); err != nil {
			return nil, fmt.Errorf("scanning queue row: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &q.Payload); err != nil {
			return nil, fmt.Errorf("decoding queued payload: %w", err)
		}
		result = append(result, q)
	}
	return result, rows.Err()
}

// MarkSynced removes a delivered payload from the queue.
func (c *Cache) MarkSynced(id int64) error {
	_, err := c.db.Exec(`DELETE FROM sync_queue WHERE id = ?`, id)
	return err
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}
