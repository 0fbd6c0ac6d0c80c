// Package export writes the artifacts of a pipeline run to an output
// directory: the cleaned dataset, the scored records, the per-species
// document chunks, the transformation summary, and the missing-value
// charts.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/florahub/ecocrop-etl/internal/domain"
	"github.com/florahub/ecocrop-etl/internal/pipeline"
)

// Exporter implements pipeline.Sink by writing run artifacts under dir.
type Exporter struct {
	dir    string
	schema domain.Schema
	logger *slog.Logger
}

// New creates an Exporter rooted at dir.
func New(dir string, schema domain.Schema, logger *slog.Logger) *Exporter {
	return &Exporter{dir: dir, schema: schema, logger: logger}
}

// Load writes every artifact for one run. Files are overwritten; the
// documents subdirectory is recreated so stale chunks from earlier runs
// cannot linger.
func (e *Exporter) Load(ctx context.Context, res *pipeline.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	steps := []struct {
		name string
		fn   func(*pipeline.Result) error
	}{
		{"cleaned dataset xlsx", e.writeCleanedXLSX},
		{"cleaned dataset csv", e.writeCleanedCSV},
		{"scored records json", e.writeScoredJSON},
		{"transformation summary", e.writeSummary},
		{"document chunks", e.writeDocuments},
		{"missing value charts", e.writeCharts},
	}
	for _, step := range steps {
		if err := step.fn(res); err != nil {
			return fmt.Errorf("write %s: %w", step.name, err)
		}
		e.logger.Debug("artifact written", "artifact", step.name)
	}
	return nil
}

// writeCleanedXLSX exports the cleaned records as a spreadsheet with the
// schema's numeric and text columns, nulls as empty cells.
func (e *Exporter) writeCleanedXLSX(res *pipeline.Result) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	header := e.cleanedHeader()
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, rec := range res.Records {
		row := make([]any, 0, len(header))
		row = append(row, rec.EcoPortCode, rec.ScientificName)
		for _, col := range e.schema.NumericColumns {
			if v := rec.NumField(col); v != nil {
				row = append(row, *v)
			} else {
				row = append(row, nil)
			}
		}
		for _, col := range e.schema.ListColumns {
			row = append(row, rec.TextField(col))
		}
		for _, col := range e.schema.NotesColumns {
			row = append(row, rec.TextField(col))
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(filepath.Join(e.dir, "ecocrop_cleaned.xlsx")); err != nil {
		return err
	}
	return f.Close()
}

// writeCleanedCSV exports the cleaned records as delimited text with the
// same column layout as the spreadsheet, nulls as empty fields.
func (e *Exporter) writeCleanedCSV(res *pipeline.Result) error {
	f, err := os.Create(filepath.Join(e.dir, "ecocrop_cleaned.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(e.cleanedHeader()); err != nil {
		return err
	}

	for _, rec := range res.Records {
		row := make([]string, 0, 2+len(e.schema.NumericColumns)+len(e.schema.ListColumns)+len(e.schema.NotesColumns))
		row = append(row, strconv.Itoa(rec.EcoPortCode), rec.ScientificName)
		for _, col := range e.schema.NumericColumns {
			if v := rec.NumField(col); v != nil {
				row = append(row, strconv.FormatFloat(*v, 'g', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		for _, col := range e.schema.ListColumns {
			row = append(row, rec.TextField(col))
		}
		for _, col := range e.schema.NotesColumns {
			row = append(row, rec.TextField(col))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// cleanedHeader is the shared column order of the cleaned exports.
func (e *Exporter) cleanedHeader() []string {
	header := append([]string{"EcoPortCode", "ScientificName"}, e.schema.NumericColumns...)
	header = append(header, e.schema.ListColumns...)
	header = append(header, e.schema.NotesColumns...)
	return header
}

// writeScoredJSON exports one JSON object per record with identity,
// envelope, and derived features.
func (e *Exporter) writeScoredJSON(res *pipeline.Result) error {
	type scoredRow struct {
		EcoPortCode    int                 `json:"eco_port_code"`
		ScientificName string              `json:"scientific_name"`
		Tags           map[string][]string `json:"tags,omitempty"`
		Features       domain.Features     `json:"features"`
	}

	rows := make([]scoredRow, 0, len(res.Records))
	for _, rec := range res.Records {
		rows = append(rows, scoredRow{
			EcoPortCode:    rec.EcoPortCode,
			ScientificName: rec.ScientificName,
			Tags:           rec.Parsed.Tags,
			Features:       rec.Features,
		})
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(e.dir, "ecocrop_scored.json"), data, 0o644)
}

// writeSummary prefixes the transformation report with the run identity
// so exported artifacts can be traced back to a pipeline run.
func (e *Exporter) writeSummary(res *pipeline.Result) error {
	var header string
	if res.RunID != "" {
		header = fmt.Sprintf("Run %s at %s\n\n", res.RunID, res.StartedAt.UTC().Format(time.RFC3339))
	}
	return os.WriteFile(filepath.Join(e.dir, "transformation_summary.txt"),
		[]byte(header+res.Report.Summary()), 0o644)
}

// writeDocuments writes one text file per species chunk, keyed by
// EcoPortCode.
func (e *Exporter) writeDocuments(res *pipeline.Result) error {
	docDir := filepath.Join(e.dir, "documents")
	if err := os.RemoveAll(docDir); err != nil {
		return err
	}
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		return err
	}
	for _, doc := range res.Documents {
		name := strconv.Itoa(doc.EcoPortCode) + ".txt"
		if err := os.WriteFile(filepath.Join(docDir, name), []byte(doc.Text), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeCharts(res *pipeline.Result) error {
	if err := renderMissingChart(
		filepath.Join(e.dir, "missing_values_before.html"),
		"Missing values per column (raw dataset)",
		e.schema, res.MissingBefore,
	); err != nil {
		return err
	}
	return renderMissingChart(
		filepath.Join(e.dir, "missing_values_after.html"),
		"Missing values per column (cleaned dataset)",
		e.schema, res.MissingAfter,
	)
}
