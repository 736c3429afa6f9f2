package models

import "time"

// SyncPayload is the envelope a device pushes to the server after a sync:
// the window summary plus the gap-filled daily series, keyed by device.
type SyncPayload struct {
	DeviceID string        `json:"deviceId"`
	Platform string        `json:"platform"`
	Summary  SummaryRecord `json:"summary"`
	Daily    []DailyRecord `json:"daily"`
	SyncedAt time.Time     `json:"syncedAt"`
}

// VitalsSummaryRow is a stored window summary, one per (device, date).
type VitalsSummaryRow struct {
	ID           int64     `json:"id"`
	DeviceID     string    `json:"device_id"`
	Platform     string    `json:"platform"`
	SummaryDate  time.Time `json:"summary_date"`
	Steps        float64   `json:"steps"`
	AvgHeartRate float64   `json:"avg_heart_rate"`
	Calories     float64   `json:"calories"`
	DistanceKm   float64   `json:"distance_km"`
	SleepMinutes float64   `json:"sleep_minutes"`
	ActiveMin    float64   `json:"active_minutes"`
	WeightKg     float64   `json:"weight_kg"`
	BPSystolic   float64   `json:"bp_systolic"`
	BPDiastolic  float64   `json:"bp_diastolic"`
	BloodGlucose float64   `json:"blood_glucose"`
	BodyTemp     float64   `json:"body_temp"`
	OxygenSat    float64   `json:"oxygen_sat"`
	Respiratory  float64   `json:"respiratory_rate"`
	SyncedAt     time.Time `json:"synced_at"`
}

// VitalsDailyRow is one stored day of a device's series.
type VitalsDailyRow struct {
	ID           int64     `json:"id"`
	SummaryID    int64     `json:"summary_id"`
	DeviceID     string    `json:"device_id"`
	Date         time.Time `json:"date"`
	Steps        float64   `json:"steps"`
	AvgHeartRate float64   `json:"avg_heart_rate"`
	Calories     float64   `json:"calories"`
	DistanceKm   float64   `json:"distance_km"`
	SleepMinutes float64   `json:"sleep_minutes"`
	ActiveMin    float64   `json:"active_minutes"`
	WeightKg     float64   `json:"weight_kg"`
	BPSystolic   float64   `json:"bp_systolic"`
	BPDiastolic  float64   `json:"bp_diastolic"`
	BloodGlucose float64   `json:"blood_glucose"`
	BodyTemp     float64   `json:"body_temp"`
	OxygenSat    float64   `json:"oxygen_sat"`
	Respiratory  float64   `json:"respiratory_rate"`
}

// DeviceInfo is a known device with its most recent sync time.
type DeviceInfo struct {
	DeviceID   string    `json:"device_id"`
	Platform   string    `json:"platform"`
	LastSynced time.Time `json:"last_synced"`
}

// Val returns the float behind an optional metric field, or 0 when absent.
// Stored rows flatten absent fields to zero; the in-memory records keep
// the distinction.
func Val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
