package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/climatescope/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/climatescope/internal/adapter/kafka"
	"github.com/couchcryptid/climatescope/internal/adapter/mapbox"
	"github.com/couchcryptid/climatescope/internal/config"
	"github.com/couchcryptid/climatescope/internal/dashboard"
	"github.com/couchcryptid/climatescope/internal/dataset"
	"github.com/couchcryptid/climatescope/internal/observability"
	"github.com/couchcryptid/climatescope/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The dataset is loaded once; nothing is served without it.
	data, err := dataset.Load(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	settings := dashboard.Settings{
		RankingSize:   cfg.RankingSize,
		MissingPolicy: cfg.MissingPolicy,
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		settings.Geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, cfg.MapboxNegativeTTL, metrics)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		settings.Publisher = writer
		logger.Info("report events enabled", "topic", cfg.KafkaReportTopic, "brokers", cfg.KafkaBrokers)
	}

	renderer := report.NewWriter(cfg.ReportsDir, logger)
	dash := dashboard.New(data, renderer, logger, metrics, settings)

	srv := httpadapter.NewServer(cfg.HTTPAddr, dash, dash, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
