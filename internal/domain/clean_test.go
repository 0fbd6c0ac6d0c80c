package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validCells returns a raw row with every core field present and
// plausible. Tests mutate individual cells from here.
func validCells() map[string]string {
	return map[string]string{
		"EcoPortCode":    "1001",
		"ScientificName": "Zea mays",
		"TOPMN":          "18", "TOPMX": "33",
		"TMIN": "10", "TMAX": "47",
		"ROPMN": "600", "ROPMX": "1200",
		"RMIN": "400", "RMAX": "1800",
		"KTMP": "0",
		"GMIN": "65", "GMAX": "365",
	}
}

func rawRow(row int, cells map[string]string) RawPlantRecord {
	return RawPlantRecord{Row: row, Cells: cells}
}

func TestClean_HappyPath(t *testing.T) {
	schema := DefaultSchema()
	cells := validCells()
	cells["CLIZ"] = "tropical, subtropical"
	cells["LATMX"] = "55"

	recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, 1001, rec.EcoPortCode)
	assert.Equal(t, "Zea mays", rec.ScientificName)
	assert.Equal(t, 18.0, rec.TOPMN)
	assert.Equal(t, 47.0, rec.TMAX)
	assert.Equal(t, "tropical, subtropical", rec.TextField("CLIZ"))
	require.NotNil(t, rec.LATMX)
	assert.Equal(t, 55.0, *rec.LATMX)
	assert.Equal(t, 1, report.RowsIn)
	assert.Equal(t, 1, report.RowsOut)
}

func TestClean_PlaceholderTokens(t *testing.T) {
	schema := DefaultSchema()

	t.Run("literal tokens nulled", func(t *testing.T) {
		for _, token := range []string{"NA", "na", "None", "none", "n/a", "-", "--"} {
			cells := validCells()
			cells["COMNAME"] = token

			recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

			require.Len(t, recs, 1, "token %q", token)
			assert.Empty(t, recs[0].TextField("COMNAME"), "token %q", token)
			assert.Equal(t, 1, report.PlaceholdersNormalized, "token %q", token)
		}
	})

	t.Run("match is case-sensitive", func(t *testing.T) {
		cells := validCells()
		cells["COMNAME"] = "Na"

		recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

		require.Len(t, recs, 1)
		assert.Equal(t, "Na", recs[0].TextField("COMNAME"))
		assert.Zero(t, report.PlaceholdersNormalized)
	})

	t.Run("match is literal, padded tokens pass through", func(t *testing.T) {
		cells := validCells()
		cells["COMNAME"] = " NA "

		recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

		require.Len(t, recs, 1)
		assert.Equal(t, "NA", recs[0].TextField("COMNAME"))
		assert.Zero(t, report.PlaceholdersNormalized)
	})

	t.Run("placeholder in core field drops the row", func(t *testing.T) {
		cells := validCells()
		cells["RMAX"] = "n/a"

		recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

		assert.Empty(t, recs)
		assert.Equal(t, 1, report.DroppedMissingCore)
	})
}

func TestClean_ImplausibleOptTemp(t *testing.T) {
	schema := DefaultSchema()

	t.Run("TOPMN above 40 drops the row regardless of other fields", func(t *testing.T) {
		cells := validCells()
		cells["TOPMN"] = "45"

		recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

		assert.Empty(t, recs)
		assert.Equal(t, 1, report.DroppedImplausibleOptTemp)
	})

	t.Run("TOPMN exactly 40 survives", func(t *testing.T) {
		cells := validCells()
		cells["TOPMN"] = "40"

		recs, _ := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

		require.Len(t, recs, 1)
		assert.Equal(t, 40.0, recs[0].TOPMN)
	})
}

func TestClean_KillingTemperature(t *testing.T) {
	schema := DefaultSchema()

	t.Run("missing KTMP imputed as TMIN minus 5", func(t *testing.T) {
		cells := validCells()
		cells["TMIN"] = "12"
		delete(cells, "KTMP")

		recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

		require.Len(t, recs, 1)
		assert.Equal(t, 7.0, recs[0].KTMP)
		assert.Equal(t, 1, report.KillingTempImputed)
		assert.Zero(t, report.KillingTempClamped)
	})

	t.Run("imputed value below floor is clamped", func(t *testing.T) {
		cells := validCells()
		cells["TMIN"] = "2"
		delete(cells, "KTMP")

		recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

		require.Len(t, recs, 1)
		assert.Equal(t, 1.0, recs[0].KTMP)
		assert.Equal(t, 1, report.KillingTempImputed)
		assert.Equal(t, 1, report.KillingTempClamped)
	})

	t.Run("original value below floor is clamped too", func(t *testing.T) {
		cells := validCells()
		cells["KTMP"] = "-8"

		recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

		require.Len(t, recs, 1)
		assert.Equal(t, 1.0, recs[0].KTMP)
		assert.Equal(t, 1, report.KillingTempClamped)
	})

	t.Run("missing KTMP with missing TMIN drops the row", func(t *testing.T) {
		cells := validCells()
		delete(cells, "KTMP")
		delete(cells, "TMIN")

		recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

		assert.Empty(t, recs)
		assert.Equal(t, 1, report.DroppedMissingCore)
	})
}

func TestClean_LatitudeSanitization(t *testing.T) {
	schema := DefaultSchema()
	cells := validCells()
	cells["LATOPMN"] = "-120"
	cells["LATMX"] = "91"
	cells["LATMN"] = "-90"

	recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Nil(t, rec.LATOPMN)
	assert.Nil(t, rec.LATMX)
	require.NotNil(t, rec.LATMN)
	assert.Equal(t, -90.0, *rec.LATMN)
	assert.Equal(t, 1, report.LatitudeNulled["LATOPMN"])
	assert.Equal(t, 1, report.LatitudeNulled["LATMX"])
	assert.Zero(t, report.LatitudeNulled["LATMN"])
}

func TestClean_GrowthCycleDefaults(t *testing.T) {
	schema := DefaultSchema()
	cells := validCells()
	delete(cells, "GMIN")
	cells["GMAX"] = ""

	recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

	require.Len(t, recs, 1)
	assert.Equal(t, 0.0, recs[0].GMIN)
	assert.Equal(t, 0.0, recs[0].GMAX)
	assert.Equal(t, 2, report.GrowthCycleDefaulted)
}

func TestClean_BracketRepair(t *testing.T) {
	schema := DefaultSchema()
	cells := validCells()
	cells["SALR"] = "high (>10 dS/m))"

	recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

	require.Len(t, recs, 1)
	assert.Equal(t, "high (>10 dS/m)", recs[0].TextField("SALR"))
	assert.Equal(t, 1, report.BracketsRepaired)
}

func TestClean_MissingIdentity(t *testing.T) {
	schema := DefaultSchema()

	t.Run("unparsable code", func(t *testing.T) {
		cells := validCells()
		cells["EcoPortCode"] = "not-a-code"

		recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

		assert.Empty(t, recs)
		assert.Equal(t, 1, report.DroppedMissingIdentity)
	})

	t.Run("empty scientific name", func(t *testing.T) {
		cells := validCells()
		cells["ScientificName"] = ""

		recs, report := Clean(schema, []RawPlantRecord{rawRow(1, cells)})

		assert.Empty(t, recs)
		assert.Equal(t, 1, report.DroppedMissingIdentity)
	})
}

func TestClean_Invariants(t *testing.T) {
	schema := DefaultSchema()

	// A mixed batch: valid rows, boundary rows, and violations.
	rows := make([]RawPlantRecord, 0, 20)
	for i := 0; i < 20; i++ {
		cells := validCells()
		cells["EcoPortCode"] = fmt.Sprintf("%d", 2000+i)
		switch i % 5 {
		case 1:
			cells["TOPMN"] = "41"
		case 2:
			delete(cells, "KTMP")
		case 3:
			cells["LATOPMX"] = "120"
		case 4:
			cells["KTMP"] = "-20"
		}
		rows = append(rows, rawRow(i+1, cells))
	}

	recs, _ := Clean(schema, rows)

	for _, rec := range recs {
		assert.LessOrEqual(t, rec.TOPMN, 40.0)
		assert.GreaterOrEqual(t, rec.KTMP, 1.0)
		for _, col := range schema.LatitudeColumns {
			if v := rec.NumField(col); v != nil {
				assert.GreaterOrEqual(t, *v, -90.0)
				assert.LessOrEqual(t, *v, 90.0)
			}
		}
	}
}

func TestClean_Idempotence(t *testing.T) {
	schema := DefaultSchema()
	cells := validCells()
	cells["KTMP"] = "5"
	cells["CLIZ"] = "tropical"
	cells["LATMN"] = "-30"

	first, firstReport := Clean(schema, []RawPlantRecord{rawRow(1, cells)})
	require.Len(t, first, 1)

	// Re-running cleaning on an already-clean row changes nothing and
	// triggers no rule.
	second, secondReport := Clean(schema, []RawPlantRecord{rawRow(1, cells)})
	require.Len(t, second, 1)

	assert.Equal(t, first[0], second[0])
	assert.Zero(t, firstReport.PlaceholdersNormalized)
	assert.Zero(t, firstReport.DroppedImplausibleOptTemp)
	assert.Zero(t, firstReport.KillingTempImputed)
	assert.Zero(t, firstReport.KillingTempClamped)
	assert.Zero(t, firstReport.GrowthCycleDefaulted)
	assert.Zero(t, firstReport.DroppedMissingCore)
	assert.Equal(t, firstReport, secondReport)
}

func TestCleaningReport_Summary(t *testing.T) {
	report := CleaningReport{
		RowsIn:                    100,
		RowsOut:                   90,
		DroppedImplausibleOptTemp: 4,
		KillingTempImputed:        12,
		KillingTempClamped:        3,
		LatitudeNulled:            map[string]int{"LATMN": 2, "LATMX": 1},
		GrowthCycleDefaulted:      7,
		DroppedMissingCore:        6,
	}

	summary := report.Summary()

	assert.Contains(t, summary, "Removed 4 rows where TOPMN > 40 degrees")
	assert.Contains(t, summary, "Imputed KTMP as TMIN - 5 for 12 rows")
	assert.Contains(t, summary, `"LATMN"`)
	assert.Contains(t, summary, "90 of 100 rows")
}

func TestCountMissing(t *testing.T) {
	schema := DefaultSchema()

	withGap := validCells()
	delete(withGap, "RMAX")
	withGap["COMNAME"] = "NA"
	rows := []RawPlantRecord{rawRow(1, validCells()), rawRow(2, withGap)}

	before := CountMissingRaw(schema, rows)
	assert.Equal(t, 1, before["RMAX"])
	assert.Equal(t, 2, before["COMNAME"])

	recs, _ := Clean(schema, rows)
	require.Len(t, recs, 1)

	after := CountMissingCleaned(schema, recs)
	assert.Zero(t, after["RMAX"])
	assert.Equal(t, 1, after["COMNAME"])
}
