package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/institutodpc/idc-soul-compass/internal/api"
	"github.com/institutodpc/idc-soul-compass/internal/catalog"
	"github.com/institutodpc/idc-soul-compass/internal/config"
	"github.com/institutodpc/idc-soul-compass/internal/events"
	"github.com/institutodpc/idc-soul-compass/internal/scoring"
	"github.com/institutodpc/idc-soul-compass/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if lvl := parseLogLevel(cfg.Logging.Level); lvl != slog.LevelInfo {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
		slog.SetDefault(logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	var db store.Store
	switch cfg.Database.Driver {
	case "postgres":
		db, err = store.NewPostgresStore(ctx, cfg.Database.URL)
	default:
		db, err = store.NewSQLiteStore(ctx, cfg.Database.URL)
	}
	if err != nil {
		logger.Error("failed to connect to database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database", "driver", cfg.Database.Driver)

	// Events (optional)
	var eventsClient events.Client
	if cfg.Events.URL != "" {
		ec, err := events.NewNATSClient(ctx, cfg.Events.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			eventsClient = ec
			defer ec.Close()
			logger.Info("connected to nats")
		}
	}

	// Scoring engine
	params := scoring.Params{
		NearTieThreshold: cfg.Scoring.NearTieThreshold,
		SecondaryCutoff:  cfg.Scoring.SecondaryCutoff,
		MaxSecondary:     cfg.Scoring.MaxSecondary,
		HighMultiplier:   cfg.Scoring.HighMultiplier,
		MediumMultiplier: cfg.Scoring.MediumMultiplier,
	}
	if err := params.Validate(); err != nil {
		logger.Error("invalid scoring parameters", "error", err)
		os.Exit(1)
	}
	cache := catalog.NewCache(db, logger)
	engine := scoring.NewEngine(params, cache, db, eventsClient, logger)

	// API server
	router := api.NewRouter(db, cache, engine, eventsClient, cfg.Server.AdminToken, cfg.Server.AllowedOrigins, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsRouter := api.NewMetricsRouter()
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsRouter,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
