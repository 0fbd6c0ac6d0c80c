// Package dataset reads the EcoCrop database export into raw records.
// Both the original .xlsx export and .csv extracts of it are supported;
// the format is chosen by file extension.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/florahub/ecocrop-etl/internal/domain"
)

// Reader implements pipeline.Source over a dataset file on disk.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a dataset reader for the given file path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Extract reads every data row of the dataset. The first row is the
// header; cells are keyed by header name and kept as raw strings, typing
// happens during cleaning. Cells under empty or duplicate headers are
// dropped with a warning.
func (r *Reader) Extract(ctx context.Context) ([]domain.RawPlantRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(r.path)) {
	case ".xlsx":
		rows, err = r.readXLSX()
	case ".csv":
		rows, err = r.readCSV()
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(r.path))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset %s has no header row", r.path)
	}

	header := rows[0]
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			r.logger.Warn("dropping unnamed dataset column", "index", i)
		} else if seen[h] {
			r.logger.Warn("dropping duplicate dataset column", "name", h)
			h = ""
		}
		seen[h] = true
		header[i] = h
	}

	records := make([]domain.RawPlantRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		cells := make(map[string]string, len(header))
		for j, v := range row {
			if j < len(header) && header[j] != "" {
				cells[header[j]] = v
			}
		}
		// Row numbers are 1-based spreadsheet rows, header included.
		records = append(records, domain.RawPlantRecord{Row: i + 2, Cells: cells})
	}
	return records, nil
}

func (r *Reader) readXLSX() ([][]string, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", r.path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			r.logger.Warn("close dataset file", "error", err)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("dataset %s has no sheets", r.path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func (r *Reader) readCSV() ([][]string, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", r.path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", r.path, err)
	}
	return rows, nil
}
