package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/claude/healthsync/internal/agent"
	"github.com/claude/healthsync/internal/config"
	"github.com/claude/healthsync/internal/models"
	"github.com/claude/healthsync/internal/source"
	"github.com/claude/healthsync/internal/sync"
	"github.com/claude/healthsync/internal/timewindow"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "agent.yaml", "path to config file")
	rangeFlag := flag.String("range", "", "sync range: today, 7d, 30d, custom (overrides config)")
	startFlag := flag.String("start", "", "custom range start (ISO 8601 or YYYY-MM-DD)")
	endFlag := flag.String("end", "", "custom range end (ISO 8601 or YYYY-MM-DD)")
	hourly := flag.Bool("hourly", false, "also reconcile per-hour points")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("HealthSync agent starting", "version", Version)

	cfg, err := config.LoadAgent(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rangeKind := cfg.Agent.Range
	if *rangeFlag != "" {
		rangeKind = *rangeFlag
	}
	if rangeKind == "" {
		rangeKind = string(timewindow.RangeToday)
	}

	w, err := timewindow.Resolve(timewindow.RangeKind(rangeKind), *startFlag, *endFlag)
	if err != nil {
		log.Error("invalid sync window", "range", rangeKind, "error", err)
		os.Exit(1)
	}

	cacheDir := cfg.Agent.CachePath
	if cacheDir == "" {
		cacheDir = "healthsync-agent"
	}

	deviceID, err := agent.DeviceID(cfg.Agent.DeviceID, cacheDir)
	if err != nil {
		log.Error("failed to resolve device ID", "error", err)
		os.Exit(1)
	}

	src, err := source.OpenFile(cfg.Agent.DataFile)
	if err != nil {
		log.Error("failed to open data export", "path", cfg.Agent.DataFile, "error", err)
		os.Exit(1)
	}

	platform := cfg.Agent.Platform
	if platform == "" {
		platform = src.Platform()
	}

	ctx := context.Background()
	svc := sync.New(src, log)

	result, err := svc.SyncRange(ctx, w, *hourly)
	if err != nil {
		switch {
		case errors.Is(err, source.ErrPermissionDenied):
			log.Error("health read permissions not granted")
		case errors.Is(err, sync.ErrAllSourcesFailed):
			log.Error("every metric fetch failed, nothing to sync")
		default:
			log.Error("sync failed", "error", err)
		}
		os.Exit(1)
	}
	log.Info("sync complete", "days", len(result.Daily), "hourly_points", len(result.Hourly))

	cache, err := agent.OpenCache(cacheDir)
	if err != nil {
		log.Error("failed to open cache", "error", err)
		os.Exit(1)
	}
	defer cache.Close()

	if err := cache.SaveDaily(result.Daily); err != nil {
		log.Error("failed to cache daily series", "error", err)
		os.Exit(1)
	}

	payload := models.SyncPayload{
		DeviceID: deviceID,
		Platform: platform,
		Summary:  result.Summary,
		Daily:    result.Daily,
		SyncedAt: time.Now(),
	}
	if err := cache.Enqueue(payload); err != nil {
		log.Error("failed to enqueue payload", "error", err)
		os.Exit(1)
	}

	client := agent.NewClient(cfg.Agent.ServerURL, cfg.Auth.APIKey)
	delivered, err := agent.FlushQueue(cache, client, log)
	if err != nil {
		// Queued payloads survive for the next run.
		log.Warn("push incomplete", "delivered", delivered, "error", err)
		return
	}
	log.Info("push complete", "delivered", delivered, "device", deviceID)
}
