package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/lilblessings/White-River-Basin/internal/adapter/http"
	kafkaadapter "github.com/lilblessings/White-River-Basin/internal/adapter/kafka"
	"github.com/lilblessings/White-River-Basin/internal/config"
	"github.com/lilblessings/White-River-Basin/internal/derive"
	"github.com/lilblessings/White-River-Basin/internal/observability"
	"github.com/lilblessings/White-River-Basin/internal/pipeline"
	"github.com/lilblessings/White-River-Basin/internal/prefs"
	"github.com/lilblessings/White-River-Basin/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	stations, err := config.LoadStations(cfg.StationsFile)
	if err != nil {
		logger.Error("failed to load stations", "error", err)
		os.Exit(1)
	}
	logger.Info("stations loaded", "count", len(stations), "file", cfg.StationsFile)

	records := store.New(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	preferences := prefs.NewStore(prefs.NewFileKV(cfg.PreferencesFile), logger)
	cache := derive.NewViewCache(cfg.ViewCacheSize)

	reader := kafkaadapter.NewReader(cfg, logger)
	transformer := pipeline.NewTransformer(logger)

	p := pipeline.New(reader, transformer, records, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:     cfg.HTTPAddr,
		Stations: stations,
		Records:  records,
		Prefs:    preferences,
		Cache:    cache,
		Metrics:  metrics,
		Ready:    p,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingest pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}

	logger.Info("shutdown complete")
}
