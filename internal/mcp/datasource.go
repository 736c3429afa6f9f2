package mcp

import (
	"context"
	"time"

	"github.com/claude/healthsync/internal/models"
	"github.com/claude/healthsync/internal/storage"
)

// DataSource abstracts the data layer for MCP tools, so tests can
// substitute a fake without a running database.
type DataSource interface {
	RecentSummaries(ctx context.Context, limit int) ([]models.VitalsSummaryRow, error)
	LatestSummary(ctx context.Context) (*models.VitalsSummaryRow, error)
	DailySeries(ctx context.Context, deviceID string, start, end time.Time) ([]models.VitalsDailyRow, error)
	ListDevices(ctx context.Context) ([]models.DeviceInfo, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
