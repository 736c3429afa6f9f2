package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("HealthSync", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("HealthSync vitals server. Query synced device summaries, per-device daily series, and known devices."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetVitalsSummary, Handler: h.getVitalsSummary},
		server.ServerTool{Tool: toolGetDailySeries, Handler: h.getDailySeries},
		server.ServerTool{Tool: toolListDevices, Handler: h.listDevices},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resLatestSummary, Handler: h.latestSummary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resLatestSummary = mcp.NewResource(
	"healthsync://latest_summary",
	"Latest Summary",
	mcp.WithResourceDescription("Most recently synced vitals summary across all devices"),
	mcp.WithMIMEType("application/json"),
)
