package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/healthsync/internal/models"
	"github.com/jackc/pgx/v5"
)

// UpsertVitals stores a device's sync payload: the window summary plus the
// daily series. Re-syncing the same day replaces the previous rows
// (last write wins per device and date).
func (db *DB) UpsertVitals(ctx context.Context, p models.SyncPayload) (int64, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	s := p.Summary
	summaryDate := p.SyncedAt.Truncate(24 * time.Hour)

	var summaryID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO vitals_summaries (device_id, platform, summary_date, steps, avg_heart_rate, calories, distance_km,
		        sleep_minutes, active_minutes, weight_kg, bp_systolic, bp_diastolic, blood_glucose, body_temp,
		        oxygen_sat, respiratory_rate, synced_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		 ON CONFLICT (device_id, summary_date) DO UPDATE SET
		        platform = EXCLUDED.platform, steps = EXCLUDED.steps, avg_heart_rate = EXCLUDED.avg_heart_rate,
		        calories = EXCLUDED.calories, distance_km = EXCLUDED.distance_km, sleep_minutes = EXCLUDED.sleep_minutes,
		        active_minutes = EXCLUDED.active_minutes, weight_kg = EXCLUDED.weight_kg,
		        bp_systolic = EXCLUDED.bp_systolic, bp_diastolic = EXCLUDED.bp_diastolic,
		        blood_glucose = EXCLUDED.blood_glucose, body_temp = EXCLUDED.body_temp,
		        oxygen_sat = EXCLUDED.oxygen_sat, respiratory_rate = EXCLUDED.respiratory_rate,
		        synced_at = EXCLUDED.synced_at
		 RETURNING id`,
		p.DeviceID, p.Platform, summaryDate,
		models.Val(s.Steps), models.Val(s.AverageHeartRate), models.Val(s.Calories), models.Val(s.DistanceKm),
		models.Val(s.SleepMinutes), models.Val(s.ActiveMinutes), models.Val(s.WeightKg),
		models.Val(s.BloodPressureSystolic), models.Val(s.BloodPressureDiastolic),
		models.Val(s.BloodGlucoseMgPerDl), models.Val(s.BodyTemperatureC),
		models.Val(s.OxygenSaturationPercent), models.Val(s.RespiratoryRate),
		p.SyncedAt).Scan(&summaryID)
	if err != nil {
		return 0, fmt.Errorf("upserting summary: %w", err)
	}

	n, err := upsertDaily(ctx, tx, summaryID, p.DeviceID, p.Daily)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return n, nil
}

func upsertDaily(ctx context.Context, tx pgx.Tx, summaryID int64, deviceID string, daily []models.DailyRecord) (int64, error) {
	if len(daily) == 0 {
		return 0, nil
	}

	query := `INSERT INTO vitals_daily (summary_id, device_id, date, steps, avg_heart_rate, calories, distance_km,
	sleep_minutes, active_minutes, weight_kg, bp_systolic, bp_diastolic, blood_glucose, body_temp, oxygen_sat, respiratory_rate)
VALUES `
	args := make([]any, 0, len(daily)*16)
	valueStrings := make([]string, 0, len(daily))

	for i, d := range daily {
		date, err := time.ParseInLocation("2006-01-02", d.Date, time.UTC)
		if err != nil {
			return 0, fmt.Errorf("parsing daily date %q: %w", d.Date, err)
		}
		base := i * 16
		placeholders := make([]string, 16)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		args = append(args, summaryID, deviceID, date,
			models.Val(d.Steps), models.Val(d.AverageHeartRate), models.Val(d.Calories), models.Val(d.DistanceKm),
			models.Val(d.SleepMinutes), models.Val(d.ActiveMinutes), models.Val(d.WeightKg),
			models.Val(d.BloodPressureSystolic), models.Val(d.BloodPressureDiastolic),
			models.Val(d.BloodGlucoseMgPerDl), models.Val(d.BodyTemperatureC),
			models.Val(d.OxygenSaturationPercent), models.Val(d.RespiratoryRate))
	}

	query += strings.Join(valueStrings, ",") + ` ON CONFLICT (device_id, date) DO UPDATE SET
	summary_id = EXCLUDED.summary_id, steps = EXCLUDED.steps, avg_heart_rate = EXCLUDED.avg_heart_rate,
	calories = EXCLUDED.calories, distance_km = EXCLUDED.distance_km, sleep_minutes = EXCLUDED.sleep_minutes,
	active_minutes = EXCLUDED.active_minutes, weight_kg = EXCLUDED.weight_kg,
	bp_systolic = EXCLUDED.bp_systolic, bp_diastolic = EXCLUDED.bp_diastolic,
	blood_glucose = EXCLUDED.blood_glucose, body_temp = EXCLUDED.body_temp,
	oxygen_sat = EXCLUDED.oxygen_sat, respiratory_rate = EXCLUDED.respiratory_rate`

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upserting daily rows: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RecentSummaries returns the most recent stored summaries, newest first.
func (db *DB) RecentSummaries(ctx context.Context, limit int) ([]models.VitalsSummaryRow, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, device_id, platform, summary_date, steps, avg_heart_rate, calories, distance_km,
		        sleep_minutes, active_minutes, weight_kg, bp_systolic, bp_diastolic, blood_glucose,
		        body_temp, oxygen_sat, respiratory_rate, synced_at
		 FROM vitals_summaries
		 ORDER BY summary_date DESC, device_id ASC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var result []models.VitalsSummaryRow
	for rows.Next() {
		var r models.VitalsSummaryRow
		if err := rows.Scan(&r.ID, &r.DeviceID, &r.Platform, &r.SummaryDate, &r.Steps, &r.AvgHeartRate,
			&r.Calories, &r.DistanceKm, &r.SleepMinutes, &r.ActiveMin, &r.WeightKg,
			&r.BPSystolic, &r.BPDiastolic, &r.BloodGlucose, &r.BodyTemp,
			&r.OxygenSat, &r.Respiratory, &r.SyncedAt); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// LatestSummary returns the most recently synced summary across all devices.
func (db *DB) LatestSummary(ctx context.Context) (*models.VitalsSummaryRow, error) {
	rows, err := db.RecentSummaries(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// DailySeries returns a device's stored daily rows within [start, end], oldest first.
func (db *DB) DailySeries(ctx context.Context, deviceID string, start, end time.Time) ([]models.VitalsDailyRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, summary_id, device_id, date, steps, avg_heart_rate, calories, distance_km,
		        sleep_minutes, active_minutes, weight_kg, bp_systolic, bp_diastolic, blood_glucose,
		        body_temp, oxygen_sat, respiratory_rate
		 FROM vitals_daily
		 WHERE device_id = $1 AND date >= $2 AND date <= $3
		 ORDER BY date ASC`,
		deviceID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying daily series: %w", err)
	}
	defer rows.Close()

	var result []models.VitalsDailyRow
	for rows.Next() {
		var r models.VitalsDailyRow
		if err := rows.Scan(&r.ID, &r.SummaryID, &r.DeviceID, &r.Date, &r.Steps, &r.AvgHeartRate,
			&r.Calories, &r.DistanceKm, &r.SleepMinutes, &r.ActiveMin, &r.WeightKg,
			&r.BPSystolic, &r.BPDiastolic, &r.BloodGlucose, &r.BodyTemp,
			&r.OxygenSat, &r.Respiratory); err != nil {
			return nil, fmt.Errorf("scanning daily row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ListDevices returns each known device with its latest sync time.
func (db *DB) ListDevices(ctx context.Context) ([]models.DeviceInfo, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT ON (device_id) device_id, platform, synced_at
		 FROM vitals_summaries
		 ORDER BY device_id, synced_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var result []models.DeviceInfo
	for rows.Next() {
		var d models.DeviceInfo
		if err := rows.Scan(&d.DeviceID, &d.Platform, &d.LastSynced); err != nil {
			return nil, fmt.Errorf("scanning device row: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
