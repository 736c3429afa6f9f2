package mcp

import (
	"context"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetVitalsSummary = mcp.NewTool("get_vitals_summary",
	mcp.WithDescription("Retrieve recently synced vitals summaries. Each summary covers one device's sync window: step/calorie/distance/sleep totals plus representative heart rate, blood pressure, and weight."),
	mcp.WithString("limit", mcp.Description("Maximum number of summaries to return. Defaults to 30.")),
)

var toolGetDailySeries = mcp.NewTool("get_daily_series",
	mcp.WithDescription("Retrieve one device's stored day-by-day vitals series. Days the device reported no data carry zeroed activity totals."),
	mcp.WithString("device", mcp.Required(), mcp.Description("Device ID as returned by list_devices")),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolListDevices = mcp.NewTool("list_devices",
	mcp.WithDescription("List known devices with their platform and last sync time."),
)

// --- Tool handlers ---

func (h *handlers) getVitalsSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 30
	if v := req.GetString("limit", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return mcp.NewToolResultError("invalid limit: " + v), nil
		}
		limit = n
	}

	rows, err := h.ds.RecentSummaries(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_vitals_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) getDailySeries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	device, err := req.RequireString("device")
	if err != nil {
		return mcp.NewToolResultError("device parameter is required"), nil
	}

	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	rows, err := h.ds.DailySeries(ctx, device, start, end)
	if err != nil {
		h.log.Error("mcp get_daily_series", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}

func (h *handlers) listDevices(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	devices, err := h.ds.ListDevices(ctx)
	if err != nil {
		h.log.Error("mcp list_devices", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(devices)
	if err != nil {
		return mcp.NewToolResultError("encoding failed: " + err.Error()), nil
	}
	return result, nil
}
