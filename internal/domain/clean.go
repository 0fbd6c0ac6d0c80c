package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// placeholderTokens are the literal cell values treated as null markers.
// Matching is exact and case-sensitive: "Na" or "NONE" pass through.
var placeholderTokens = map[string]struct{}{
	"NA": {}, "na": {}, "None": {}, "none": {}, "n/a": {}, "-": {}, "--": {},
}

// maxPlausibleOptTempC is the implausibility threshold for the optimal
// minimum temperature; rows above it are data-entry errors.
const maxPlausibleOptTempC = 40

// killingTempFloorC is the lower clamp applied to every killing
// temperature, imputed or original.
const killingTempFloorC = 1

// CleaningReport counts the rows and fields affected by each cleaning
// rule, for the transformation summary and observability.
type CleaningReport struct {
	RowsIn  int `json:"rows_in"`
	RowsOut int `json:"rows_out"`

	PlaceholdersNormalized    int            `json:"placeholders_normalized"`
	BracketsRepaired          int            `json:"brackets_repaired"`
	DroppedImplausibleOptTemp int            `json:"dropped_implausible_opt_temp"`
	KillingTempImputed        int            `json:"killing_temp_imputed"`
	KillingTempClamped        int            `json:"killing_temp_clamped"`
	LatitudeNulled            map[string]int `json:"latitude_nulled"`
	GrowthCycleDefaulted      int            `json:"growth_cycle_defaulted"`
	DroppedMissingCore        int            `json:"dropped_missing_core"`
	DroppedMissingIdentity    int            `json:"dropped_missing_identity"`
}

// Summary renders the report as the plain-text transformation summary
// exported next to the cleaned dataset.
func (r CleaningReport) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Data Transformation Summary:\n")
	fmt.Fprintf(&b, "1. Normalized %d placeholder cells to null and repaired %d doubled brackets.\n",
		r.PlaceholdersNormalized, r.BracketsRepaired)
	fmt.Fprintf(&b, "2. Removed %d rows where TOPMN > %d degrees.\n",
		r.DroppedImplausibleOptTemp, maxPlausibleOptTempC)
	fmt.Fprintf(&b, "3. Imputed KTMP as TMIN - 5 for %d rows; clamped %d values to a floor of %d.\n",
		r.KillingTempImputed, r.KillingTempClamped, killingTempFloorC)

	cols := make([]string, 0, len(r.LatitudeNulled))
	for col := range r.LatitudeNulled {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		fmt.Fprintf(&b, "4. Nulled latitude values outside [-90, 90] for %d rows in %q.\n",
			r.LatitudeNulled[col], col)
	}

	fmt.Fprintf(&b, "5. Defaulted %d missing GMIN/GMAX values to 0.\n", r.GrowthCycleDefaulted)
	fmt.Fprintf(&b, "6. Removed %d rows missing core numeric fields and %d rows without a usable species key.\n",
		r.DroppedMissingCore, r.DroppedMissingIdentity)
	fmt.Fprintf(&b, "Resulting dataset contains %d of %d rows.\n", r.RowsOut, r.RowsIn)
	return b.String()
}

// Clean runs the ordered cleaning and validation passes over the raw
// record set and returns the surviving records plus a per-rule report.
// Violations are resolved by row exclusion or field nulling, never by
// error: malformed rows cannot fail the run.
func Clean(schema Schema, rows []RawPlantRecord) ([]CleanedPlantRecord, CleaningReport) {
	report := CleaningReport{
		RowsIn:         len(rows),
		LatitudeNulled: make(map[string]int, len(schema.LatitudeColumns)),
	}
	for _, col := range schema.LatitudeColumns {
		report.LatitudeNulled[col] = 0
	}

	cleaned := make([]CleanedPlantRecord, 0, len(rows))
	for _, row := range rows {
		if rec, ok := cleanRow(schema, row, &report); ok {
			cleaned = append(cleaned, rec)
		}
	}

	report.RowsOut = len(cleaned)
	return cleaned, report
}

// cleanRow applies the cleaning passes to a single row. The passes are
// order-sensitive: imputation reads values that normalization may have
// nulled, and the required-field check runs last.
func cleanRow(schema Schema, row RawPlantRecord, report *CleaningReport) (CleanedPlantRecord, bool) {
	text, num := normalizeCells(schema, row, report)

	// Rule 2: implausible optimal minimum temperature drops the row
	// regardless of any other field.
	if v := num["TOPMN"]; v != nil && *v > maxPlausibleOptTempC {
		report.DroppedImplausibleOptTemp++
		return CleanedPlantRecord{}, false
	}

	// Rule 3: impute missing killing temperature from the absolute
	// minimum, then clamp every value to the floor.
	if num["KTMP"] == nil {
		if tmin := num["TMIN"]; tmin != nil {
			imputed := *tmin - 5
			num["KTMP"] = &imputed
			report.KillingTempImputed++
		}
	}
	if ktmp := num["KTMP"]; ktmp != nil && *ktmp < killingTempFloorC {
		clamped := float64(killingTempFloorC)
		num["KTMP"] = &clamped
		report.KillingTempClamped++
	}

	// Rule 4: latitude sanitization nulls the field, the row survives.
	for _, col := range schema.LatitudeColumns {
		if v := num[col]; v != nil && (*v < -90 || *v > 90) {
			num[col] = nil
			report.LatitudeNulled[col]++
		}
	}

	// Rule 5: growth cycle bounds default to 0.
	for _, col := range []string{"GMIN", "GMAX"} {
		if num[col] == nil {
			zero := 0.0
			num[col] = &zero
			report.GrowthCycleDefaulted++
		}
	}

	// Rule 6: rows still missing a core numeric field are excluded,
	// never repaired.
	for _, col := range schema.CoreNumericColumns {
		if num[col] == nil {
			report.DroppedMissingCore++
			return CleanedPlantRecord{}, false
		}
	}

	code, err := strconv.Atoi(strings.TrimSpace(row.Cells["EcoPortCode"]))
	if err != nil || text["ScientificName"] == "" {
		report.DroppedMissingIdentity++
		return CleanedPlantRecord{}, false
	}

	return buildCleanedRecord(code, text, num), true
}

// normalizeCells applies placeholder normalization, bracket repair, and
// numeric parsing, yielding the Text / Number|Null split of the row.
func normalizeCells(schema Schema, row RawPlantRecord, report *CleaningReport) (map[string]string, map[string]*float64) {
	// Placeholder tokens match the raw cell exactly, before trimming: a
	// cell " NA " is ordinary text, not a placeholder.
	text := make(map[string]string, len(schema.TextColumns))
	for _, col := range schema.TextColumns {
		v := row.Cells[col]
		if _, placeholder := placeholderTokens[v]; placeholder {
			report.PlaceholdersNormalized++
			v = ""
		}
		text[col] = strings.TrimSpace(v)
	}

	for _, col := range schema.NotesColumns {
		if repaired := strings.ReplaceAll(text[col], "))", ")"); repaired != text[col] {
			report.BracketsRepaired++
			text[col] = repaired
		}
	}

	num := make(map[string]*float64, len(schema.NumericColumns))
	for _, col := range schema.NumericColumns {
		v := row.Cells[col]
		if _, placeholder := placeholderTokens[v]; placeholder {
			report.PlaceholdersNormalized++
			v = ""
		}
		num[col] = parseNumberOrNull(strings.TrimSpace(v))
	}

	return text, num
}

// parseNumberOrNull parses a cell as float64, treating empty and
// unparsable values as null.
func parseNumberOrNull(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func buildCleanedRecord(code int, text map[string]string, num map[string]*float64) CleanedPlantRecord {
	core := func(col string) float64 { return *num[col] }

	return CleanedPlantRecord{
		EcoPortCode:    code,
		ScientificName: text["ScientificName"],

		TOPMN: core("TOPMN"), TOPMX: core("TOPMX"),
		TMIN: core("TMIN"), TMAX: core("TMAX"),
		ROPMN: core("ROPMN"), ROPMX: core("ROPMX"),
		RMIN: core("RMIN"), RMAX: core("RMAX"),
		KTMP: core("KTMP"),
		GMIN: core("GMIN"), GMAX: core("GMAX"),

		LATOPMN: num["LATOPMN"], LATOPMX: num["LATOPMX"],
		LATMN: num["LATMN"], LATMX: num["LATMX"],

		PHOPMN: num["PHOPMN"], PHOPMX: num["PHOPMX"],
		PHMIN: num["PHMIN"], PHMAX: num["PHMAX"],

		ALTMX: num["ALTMX"], KTMPR: num["KTMPR"],
		LIOPMN: num["LIOPMN"], LIOPMX: num["LIOPMX"],
		LIMN: num["LIMN"], LIMX: num["LIMX"],
		DEP: num["DEP"],

		Text: text,
	}
}

// MissingValueCounts tallies missing-or-empty cells per column; the
// before/after pair feeds the diagnostic distribution charts.
type MissingValueCounts map[string]int

// CountMissingRaw counts placeholder, empty, and unparsable cells per
// schema column in the raw record set.
func CountMissingRaw(schema Schema, rows []RawPlantRecord) MissingValueCounts {
	counts := make(MissingValueCounts, len(schema.TextColumns)+len(schema.NumericColumns))
	missing := func(v string) bool {
		if _, placeholder := placeholderTokens[v]; placeholder {
			return true
		}
		return v == ""
	}

	for _, col := range schema.TextColumns {
		for _, row := range rows {
			if missing(strings.TrimSpace(row.Cells[col])) {
				counts[col]++
			}
		}
	}
	for _, col := range schema.NumericColumns {
		for _, row := range rows {
			v := strings.TrimSpace(row.Cells[col])
			if missing(v) || parseNumberOrNull(v) == nil {
				counts[col]++
			}
		}
	}
	return counts
}

// CountMissingCleaned counts null numeric fields and empty text fields
// per schema column in the cleaned record set.
func CountMissingCleaned(schema Schema, recs []CleanedPlantRecord) MissingValueCounts {
	counts := make(MissingValueCounts, len(schema.TextColumns)+len(schema.NumericColumns))
	for _, rec := range recs {
		for _, col := range schema.TextColumns {
			if rec.TextField(col) == "" {
				counts[col]++
			}
		}
		for _, col := range schema.NumericColumns {
			if rec.NumField(col) == nil {
				counts[col]++
			}
		}
	}
	return counts
}
