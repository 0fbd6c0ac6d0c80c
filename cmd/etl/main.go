// Command etl runs one complete EcoCrop transformation pass: it reads
// the dataset export, cleans and scores it, writes the run artifacts,
// loads the plant store, and optionally publishes document chunks to
// Kafka. Health and metrics endpoints are served while the run is
// active.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/florahub/ecocrop-etl/internal/adapter/dataset"
	"github.com/florahub/ecocrop-etl/internal/adapter/export"
	"github.com/florahub/ecocrop-etl/internal/adapter/httpapi"
	kafkaadapter "github.com/florahub/ecocrop-etl/internal/adapter/kafka"
	"github.com/florahub/ecocrop-etl/internal/adapter/sqlite"
	"github.com/florahub/ecocrop-etl/internal/config"
	"github.com/florahub/ecocrop-etl/internal/domain"
	"github.com/florahub/ecocrop-etl/internal/observability"
	"github.com/florahub/ecocrop-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	schema := domain.DefaultSchema()

	store, err := sqlite.Open(cfg.SQLitePath, logger)
	if err != nil {
		logger.Error("failed to open plant store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	sinks := []pipeline.Sink{
		store,
		export.New(cfg.OutputDir, schema, logger),
	}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, writer)
		logger.Info("kafka document sink enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka document sink disabled")
	}

	source := dataset.NewReader(cfg.DatasetPath, logger)
	p := pipeline.New(schema, source, sinks, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, p, nil, nil, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	res, err := p.Run(ctx)
	if err != nil {
		logger.Error("pipeline error", "error", err)
	} else {
		logger.Info("run artifacts written",
			"output_dir", cfg.OutputDir,
			"plants", len(res.Records),
		)
	}

	stop()
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
