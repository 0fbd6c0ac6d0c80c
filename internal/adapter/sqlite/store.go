// Package sqlite persists plant summaries in an embedded SQLite
// database and serves the lookup modes of the HTTP API.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/florahub/ecocrop-etl/internal/domain"
	"github.com/florahub/ecocrop-etl/internal/pipeline"
)

//go:embed sql/schema.sql
var schemaSQL string

//go:embed sql/upsert-plant.sql
var upsertPlantSQL string

//go:embed sql/get-by-code.sql
var getByCodeSQL string

//go:embed sql/get-by-scientific-name.sql
var getByScientificNameSQL string

//go:embed sql/search-by-common-name.sql
var searchByCommonNameSQL string

//go:embed sql/search-by-name.sql
var searchByNameSQL string

// Store persists and serves plant summaries. It implements
// pipeline.Sink for loading and suitability.PlantStore for lookups.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CheckReadiness reports ready once the database answers a ping.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.Ping(ctx)
}

// Load upserts every record of a completed run in one transaction.
func (s *Store) Load(ctx context.Context, res *pipeline.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Warn("rollback failed", "error", err)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertPlantSQL)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range res.Records {
		p := rec.Summary(res.Documents[i])
		if _, err := stmt.ExecContext(ctx,
			p.EcoPortCode, p.ScientificName, p.CommonNames, p.Synonyms,
			p.Envelope.TempOptMin, p.Envelope.TempOptMax,
			p.Envelope.TempAbsMin, p.Envelope.TempAbsMax,
			p.Envelope.PrecipOptMin, p.Envelope.PrecipOptMax,
			p.Envelope.PrecipAbsMin, p.Envelope.PrecipAbsMax,
			p.AdaptabilityScore, p.AdaptabilityLabel, p.Document,
		); err != nil {
			return fmt.Errorf("upsert plant %d: %w", p.EcoPortCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("plant store loaded", "plants", len(res.Records))
	return nil
}

// GetByCode returns the plant with the exact EcoPort code.
func (s *Store) GetByCode(ctx context.Context, code int) (domain.PlantSummary, error) {
	return s.queryOne(ctx, getByCodeSQL, code)
}

// GetByScientificName returns the plant whose scientific name matches
// case-insensitively.
func (s *Store) GetByScientificName(ctx context.Context, name string) (domain.PlantSummary, error) {
	return s.queryOne(ctx, getByScientificNameSQL, name)
}

// SearchByCommonName returns plants whose common names contain the
// query, case-insensitively, ordered by code.
func (s *Store) SearchByCommonName(ctx context.Context, query string, limit int) ([]domain.PlantSummary, error) {
	return s.queryMany(ctx, searchByCommonNameSQL, query, limit)
}

// SearchByName returns plants whose scientific name or synonyms contain
// the query, case-insensitively, ordered by code.
func (s *Store) SearchByName(ctx context.Context, query string, limit int) ([]domain.PlantSummary, error) {
	return s.queryMany(ctx, searchByNameSQL, query, limit)
}

func (s *Store) queryOne(ctx context.Context, query string, arg any) (domain.PlantSummary, error) {
	p, err := scanPlant(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PlantSummary{}, domain.ErrPlantNotFound
	}
	return p, err
}

func (s *Store) queryMany(ctx context.Context, query string, args ...any) ([]domain.PlantSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Warn("close plant rows", "error", err)
		}
	}()

	var out []domain.PlantSummary
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlant(row rowScanner) (domain.PlantSummary, error) {
	var p domain.PlantSummary
	err := row.Scan(
		&p.EcoPortCode, &p.ScientificName, &p.CommonNames, &p.Synonyms,
		&p.Envelope.TempOptMin, &p.Envelope.TempOptMax,
		&p.Envelope.TempAbsMin, &p.Envelope.TempAbsMax,
		&p.Envelope.PrecipOptMin, &p.Envelope.PrecipOptMax,
		&p.Envelope.PrecipAbsMin, &p.Envelope.PrecipAbsMax,
		&p.AdaptabilityScore, &p.AdaptabilityLabel, &p.Document,
	)
	return p, err
}
