package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/healthsync/internal/models"
	"github.com/go-chi/chi/v5"
)

// VitalsStore is the storage surface the handlers need. *storage.DB
// satisfies it; tests substitute a fake.
type VitalsStore interface {
	UpsertVitals(ctx context.Context, p models.SyncPayload) (int64, error)
	RecentSummaries(ctx context.Context, limit int) ([]models.VitalsSummaryRow, error)
	DailySeries(ctx context.Context, deviceID string, start, end time.Time) ([]models.VitalsDailyRow, error)
	ListDevices(ctx context.Context) ([]models.DeviceInfo, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  VitalsStore
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(store VitalsStore, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Device push endpoint (API key required)
	s.router.Route("/api/v1/vitals", func(r chi.Router) {
		r.With(APIKeyAuth(s.apiKey)).Post("/", s.handlePushVitals)

		// Read endpoints (no auth — tsnet handles access)
		r.Get("/", s.handleRecentSummaries)
		r.Get("/{deviceID}/daily", s.handleDailySeries)
	})

	s.router.Get("/api/v1/devices", s.handleListDevices)
	s.router.Get("/healthz", s.handleHealthz)
}
