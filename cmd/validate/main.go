// Command validate performs end-to-end integrity checks on an EcoCrop
// dataset export: it runs the full cleaning, scoring, and rendering
// passes in memory and verifies column coverage, cleaning invariants,
// derived feature consistency, and document completeness.
//
// Usage:
//
//	go run ./cmd/validate -dataset data/EcoCrop_DB.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/florahub/ecocrop-etl/internal/adapter/dataset"
	"github.com/florahub/ecocrop-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	datasetPath := flag.String("dataset", "", "path to the EcoCrop dataset export (.xlsx or .csv)")
	flag.Parse()

	if *datasetPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*datasetPath); code != 0 {
		os.Exit(code)
	}
}

func run(datasetPath string) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	schema := domain.DefaultSchema()

	fmt.Println("=== EcoCrop Dataset Integrity Validation ===")
	fmt.Println()

	raws, err := dataset.NewReader(datasetPath, logger).Extract(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read dataset: %v\n", err)
		return 1
	}

	cleaned, report := domain.Clean(schema, raws)
	scored := make([]domain.ScoredPlantRecord, len(cleaned))
	docs := make([]domain.DocumentChunk, len(cleaned))
	for i, rec := range cleaned {
		scored[i] = domain.Score(schema, rec)
		docs[i] = domain.RenderDocument(schema, scored[i])
	}

	phases := []*phase{
		validateColumnCoverage(schema, raws),
		validateCleaningInvariants(report, raws, cleaned),
		validateDerivedFeatures(scored),
		validateDocuments(scored, docs),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw rows, %d cleaned, %d scored, %d documents\n",
		len(raws), len(cleaned), len(scored), len(docs))
	fmt.Println()
	fmt.Println(report.Summary())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Column Coverage ──
// Validates that the export carries every column the pipeline depends on.

func validateColumnCoverage(schema domain.Schema, raws []domain.RawPlantRecord) *phase {
	p := &phase{name: "Phase 1: Column Coverage"}
	if len(raws) == 0 {
		p.errorf("dataset has no data rows")
		return p
	}

	present := map[string]bool{}
	for i := range raws {
		for col := range raws[i].Cells {
			present[col] = true
		}
	}

	required := []string{"EcoPortCode", "ScientificName"}
	required = append(required, schema.CoreNumericColumns...)
	for _, col := range required {
		if !present[col] {
			p.errorf("required column %q missing from export", col)
		}
	}
	for _, col := range schema.ListColumns {
		if !present[col] {
			p.errorf("list column %q missing from export", col)
		}
	}
	for _, col := range schema.NotesColumns {
		if !present[col] {
			p.errorf("notes column %q missing from export", col)
		}
	}
	return p
}

// ── Phase 2: Envelope Integrity ──
// Validates report bookkeeping, the bounds guaranteed by cleaning, and
// the consistency of the tolerance envelopes the scorer depends on.

func validateCleaningInvariants(report domain.CleaningReport, raws []domain.RawPlantRecord, cleaned []domain.CleanedPlantRecord) *phase {
	p := &phase{name: "Phase 2: Envelope Integrity"}

	if report.RowsIn != len(raws) {
		p.errorf("report rows_in: expected %d, got %d", len(raws), report.RowsIn)
	}
	if report.RowsOut != len(cleaned) {
		p.errorf("report rows_out: expected %d, got %d", len(cleaned), report.RowsOut)
	}

	seen := map[int]int{}
	for i := range cleaned {
		rec := &cleaned[i]
		id := fmt.Sprintf("record %d (code %d)", i, rec.EcoPortCode)

		if rec.EcoPortCode <= 0 {
			p.errorf("record %d: non-positive EcoPortCode %d", i, rec.EcoPortCode)
		}
		if strings.TrimSpace(rec.ScientificName) == "" {
			p.errorf("record %d: empty ScientificName", i)
		}
		seen[rec.EcoPortCode]++

		checkOrdered(p, id, "temperature", rec.TMIN, rec.TOPMN, rec.TOPMX, rec.TMAX)
		checkOrdered(p, id, "rainfall", rec.RMIN, rec.ROPMN, rec.ROPMX, rec.RMAX)

		if rec.KTMP < 1 {
			p.errorf("%s: KTMP %g below clamp floor 1", id, rec.KTMP)
		}
		if rec.GMAX > 0 && rec.GMIN > rec.GMAX {
			p.errorf("%s: GMIN %g > GMAX %g", id, rec.GMIN, rec.GMAX)
		}

		checkLatitude(p, id, "LATOPMN", rec.LATOPMN)
		checkLatitude(p, id, "LATOPMX", rec.LATOPMX)
		checkLatitude(p, id, "LATMN", rec.LATMN)
		checkLatitude(p, id, "LATMX", rec.LATMX)

		checkPH(p, id, "PHOPMN", rec.PHOPMN)
		checkPH(p, id, "PHOPMX", rec.PHOPMX)
		checkPH(p, id, "PHMIN", rec.PHMIN)
		checkPH(p, id, "PHMAX", rec.PHMAX)
		if rec.PHMIN != nil && rec.PHMAX != nil && *rec.PHMIN > *rec.PHMAX {
			p.errorf("%s: PHMIN %g > PHMAX %g", id, *rec.PHMIN, *rec.PHMAX)
		}
	}

	for code, n := range seen {
		if n > 1 {
			p.errorf("EcoPortCode %d appears %d times in cleaned output", code, n)
		}
	}
	return p
}

func checkOrdered(p *phase, id, kind string, absMin, optMin, optMax, absMax float64) {
	if optMin > optMax {
		p.errorf("%s: %s optimal range inverted (%g > %g)", id, kind, optMin, optMax)
	}
	if absMin > absMax {
		p.errorf("%s: %s absolute range inverted (%g > %g)", id, kind, absMin, absMax)
	}
	if optMin < absMin {
		p.errorf("%s: %s optimal min %g below absolute min %g", id, kind, optMin, absMin)
	}
	if optMax > absMax {
		p.errorf("%s: %s optimal max %g above absolute max %g", id, kind, optMax, absMax)
	}
}

func checkLatitude(p *phase, id, col string, v *float64) {
	if v != nil && (*v < -90 || *v > 90) {
		p.errorf("%s: %s %g outside [-90, 90]", id, col, *v)
	}
}

func checkPH(p *phase, id, col string, v *float64) {
	if v != nil && (*v < 0 || *v > 14) {
		p.errorf("%s: %s %g outside [0, 14]", id, col, *v)
	}
}

// ── Phase 3: Derived Features ──
// Validates score bounds, the weighted composite, and label bands.

func validateDerivedFeatures(scored []domain.ScoredPlantRecord) *phase {
	p := &phase{name: "Phase 3: Derived Features"}

	for i := range scored {
		f := &scored[i].Features
		id := fmt.Sprintf("record %d (code %d)", i, scored[i].EcoPortCode)

		checkUnitInterval(p, id, "climate_adapt_score", f.ClimateAdaptScore)
		checkUnitInterval(p, id, "soil_adapt_score", f.SoilAdaptScore)
		checkUnitInterval(p, id, "water_adapt_score", f.WaterAdaptScore)
		checkUnitInterval(p, id, "adaptability_score", f.AdaptabilityScore)

		composite := 0.4*f.ClimateAdaptScore + 0.35*f.SoilAdaptScore + 0.25*f.WaterAdaptScore
		if math.Abs(f.AdaptabilityScore-composite) > 5e-4 {
			p.errorf("%s: adaptability %g differs from weighted composite %g", id, f.AdaptabilityScore, composite)
		}

		if want := domain.LabelForScore(&f.AdaptabilityScore); f.AdaptabilityLabel != want {
			p.errorf("%s: label %q does not match score %g (expected %q)", id, f.AdaptabilityLabel, f.AdaptabilityScore, want)
		}

		if want := scored[i].TMAX - scored[i].TMIN; !floatEq(f.TempRangeWidth, want) {
			p.errorf("%s: temp_range_width %g, expected %g", id, f.TempRangeWidth, want)
		}
		if want := scored[i].RMAX - scored[i].RMIN; !floatEq(f.PrecipRangeWidth, want) {
			p.errorf("%s: precip_range_width %g, expected %g", id, f.PrecipRangeWidth, want)
		}
	}
	return p
}

func checkUnitInterval(p *phase, id, name string, v float64) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		p.errorf("%s: %s %g outside [0, 1]", id, name, v)
	}
}

// ── Phase 4: Documents ──
// Validates that every scored record renders a complete document.

func validateDocuments(scored []domain.ScoredPlantRecord, docs []domain.DocumentChunk) *phase {
	p := &phase{name: "Phase 4: Documents"}

	if len(docs) != len(scored) {
		p.errorf("document count %d does not match scored count %d", len(docs), len(scored))
		return p
	}

	for i := range docs {
		id := fmt.Sprintf("document %d (code %d)", i, docs[i].EcoPortCode)

		if docs[i].EcoPortCode != scored[i].EcoPortCode {
			p.errorf("%s: code mismatch with scored record %d", id, scored[i].EcoPortCode)
		}
		if strings.TrimSpace(docs[i].Text) == "" {
			p.errorf("%s: empty text", id)
			continue
		}
		if !strings.Contains(docs[i].Text, scored[i].ScientificName) {
			p.errorf("%s: text does not mention %q", id, scored[i].ScientificName)
		}
		if !strings.Contains(docs[i].Text, "Adaptability:") {
			p.errorf("%s: missing adaptability header", id)
		}
		if !strings.Contains(docs[i].Text, "📊 Subscores") {
			p.errorf("%s: missing subscores line", id)
		}
	}
	return p
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
