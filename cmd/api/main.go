// Command api serves the plant directory and climate suitability API
// over a previously loaded plant store. Weather and geocoding data
// come from Open-Meteo, with geocoding results cached in memory.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/florahub/ecocrop-etl/internal/adapter/httpapi"
	"github.com/florahub/ecocrop-etl/internal/adapter/openmeteo"
	"github.com/florahub/ecocrop-etl/internal/adapter/sqlite"
	"github.com/florahub/ecocrop-etl/internal/config"
	"github.com/florahub/ecocrop-etl/internal/observability"
	"github.com/florahub/ecocrop-etl/internal/suitability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := sqlite.Open(cfg.SQLitePath, logger)
	if err != nil {
		logger.Error("failed to open plant store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client := openmeteo.NewClient(cfg.ForecastBaseURL, cfg.GeocodingBaseURL, cfg.WeatherTimeout, logger, metrics)
	geocoder := openmeteo.NewCachedGeocoder(client, cfg.GeocodeCacheSize, metrics)
	assessor := suitability.New(geocoder, client, store, cfg.ForecastDays, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, store, store, assessor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
