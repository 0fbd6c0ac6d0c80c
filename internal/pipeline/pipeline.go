package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/florahub/ecocrop-etl/internal/domain"
	"github.com/florahub/ecocrop-etl/internal/observability"
)

// Source reads the complete raw record set from the dataset export.
type Source interface {
	Extract(ctx context.Context) ([]domain.RawPlantRecord, error)
}

// Sink persists one completed run. Sinks are independent: the sqlite
// store, the artifact exporter, and the document producer all implement
// this and are loaded in order.
type Sink interface {
	Load(ctx context.Context, res *Result) error
}

// Result carries everything a completed run produced. RunID and
// StartedAt identify the run in exported artifacts and log lines.
type Result struct {
	RunID     string
	StartedAt time.Time

	Report        domain.CleaningReport
	MissingBefore domain.MissingValueCounts
	MissingAfter  domain.MissingValueCounts
	Records       []domain.ScoredPlantRecord
	Documents     []domain.DocumentChunk
}

// Pipeline orchestrates the extract-clean-score-render-load run.
type Pipeline struct {
	schema  domain.Schema
	source  Source
	sinks   []Sink
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(schema domain.Schema, source Source, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		schema:  schema,
		source:  source,
		sinks:   sinks,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once a run has completed, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no pipeline run has completed yet")
	}
	return nil
}

// Run executes one complete ETL pass. Cleaning never fails a run; only
// the source and the sinks can.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	start := domain.Now()
	logger := p.logger.With("run_id", runID)

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	rows, err := p.source.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract dataset: %w", err)
	}
	p.metrics.RowsRead.Add(float64(len(rows)))
	logger.Info("dataset extracted", "rows", len(rows))

	missingBefore := domain.CountMissingRaw(p.schema, rows)

	cleaned, report := domain.Clean(p.schema, rows)
	p.recordCleaningMetrics(report)
	logger.Info("dataset cleaned",
		"rows_in", report.RowsIn,
		"rows_out", report.RowsOut,
		"dropped_implausible_opt_temp", report.DroppedImplausibleOptTemp,
		"dropped_missing_core", report.DroppedMissingCore,
		"dropped_missing_identity", report.DroppedMissingIdentity,
	)

	res := &Result{
		RunID:         runID,
		StartedAt:     start,
		Report:        report,
		MissingBefore: missingBefore,
		MissingAfter:  domain.CountMissingCleaned(p.schema, cleaned),
		Records:       make([]domain.ScoredPlantRecord, 0, len(cleaned)),
		Documents:     make([]domain.DocumentChunk, 0, len(cleaned)),
	}

	for _, rec := range cleaned {
		scored := domain.Score(p.schema, rec)
		res.Records = append(res.Records, scored)
		res.Documents = append(res.Documents, domain.RenderDocument(p.schema, scored))
	}
	p.metrics.RowsCleaned.Add(float64(len(res.Records)))
	p.metrics.DocumentsRendered.Add(float64(len(res.Documents)))

	for _, sink := range p.sinks {
		if err := sink.Load(ctx, res); err != nil {
			return nil, fmt.Errorf("load run results: %w", err)
		}
	}

	duration := domain.Now().Sub(start)
	p.metrics.RunDuration.Observe(duration.Seconds())
	p.ready.Store(true)
	logger.Info("pipeline run complete",
		"records", len(res.Records),
		"duration", duration,
	)
	return res, nil
}

func (p *Pipeline) recordCleaningMetrics(report domain.CleaningReport) {
	p.metrics.RowsDropped.WithLabelValues("implausible_opt_temp").Add(float64(report.DroppedImplausibleOptTemp))
	p.metrics.RowsDropped.WithLabelValues("missing_core").Add(float64(report.DroppedMissingCore))
	p.metrics.RowsDropped.WithLabelValues("missing_identity").Add(float64(report.DroppedMissingIdentity))

	p.metrics.ValuesRepaired.WithLabelValues("placeholder").Add(float64(report.PlaceholdersNormalized))
	p.metrics.ValuesRepaired.WithLabelValues("bracket").Add(float64(report.BracketsRepaired))
	p.metrics.ValuesRepaired.WithLabelValues("killing_temp").Add(float64(report.KillingTempImputed + report.KillingTempClamped))
	p.metrics.ValuesRepaired.WithLabelValues("growth_cycle").Add(float64(report.GrowthCycleDefaulted))
	for _, n := range report.LatitudeNulled {
		p.metrics.ValuesRepaired.WithLabelValues("latitude").Add(float64(n))
	}
}
