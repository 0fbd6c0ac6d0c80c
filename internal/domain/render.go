package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// lowZoneThreshold triggers the low-diversity warning on the climate
// zone line.
const lowZoneThreshold = 2

// RenderDocument turns one scored record into the retrieval document
// chunk. Output is deterministic: fixed line order, fixed column order
// within each section, and columns with no tags or descriptors produce
// no line at all. The text is opaque to the indexer beyond that.
func RenderDocument(schema Schema, rec ScoredPlantRecord) DocumentChunk {
	f := rec.Features
	lines := []string{fmt.Sprintf("**%s** — Adaptability: **%s** (score: %s)",
		rec.ScientificName, f.AdaptabilityLabel, formatNum(rec.Features.AdaptabilityScore))}

	for _, col := range schema.ListColumns {
		if tags := rec.Parsed.Tags[col]; len(tags) > 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", schema.DisplayName(col), strings.Join(tags, ", ")))
		}
	}

	for _, col := range schema.NotesColumns {
		if desc := rec.Parsed.Descriptors[col]; len(desc) > 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", schema.DisplayName(col), strings.Join(desc, ", ")))
		}
	}

	if zones := FullDescriptor(rec.TextField("CLIZ")); len(zones) > 0 {
		lines = append(lines, fmt.Sprintf("🌍 Climate zones: %s", strings.Join(zones, ", ")))
		if f.ZoneCount <= lowZoneThreshold {
			lines = append(lines, "⚠️ Warning: Grows in very few zones — may need ideal conditions.")
		}
	}

	lines = append(lines, fmt.Sprintf("📊 Subscores — Climate: %.2f, Soil: %.2f, Water: %.2f",
		f.ClimateAdaptScore, f.SoilAdaptScore, f.WaterAdaptScore))

	lines = append(lines,
		fmt.Sprintf("🌡️ Temperature: Optimal %s–%s°C | Absolute: %s–%s°C",
			formatNum(rec.TOPMN), formatNum(rec.TOPMX), formatNum(rec.TMIN), formatNum(rec.TMAX)),
		fmt.Sprintf("💧 Precipitation: Optimal %s–%s mm | Absolute: %s–%s mm",
			formatNum(rec.ROPMN), formatNum(rec.ROPMX), formatNum(rec.RMIN), formatNum(rec.RMAX)),
		fmt.Sprintf("🧪 Soil pH: Optimal %s–%s | Absolute: %s–%s",
			formatOptNum(rec.PHOPMN), formatOptNum(rec.PHOPMX), formatOptNum(rec.PHMIN), formatOptNum(rec.PHMAX)),
		fmt.Sprintf("📈 Ranges — Temp: %s°C | pH: %s | Precip: %s mm",
			formatNum(f.TempRangeWidth), formatOptNum(f.PHRangeWidth), formatNum(f.PrecipRangeWidth)),
	)

	if traits := traitSummary(f); len(traits) > 0 {
		lines = append(lines, fmt.Sprintf("🔎 Traits: %s", strings.Join(traits, ", ")))
	}

	lines = append(lines, fmt.Sprintf("🕒 Growth cycle: %d days", int(f.GrowthCycleDays)))

	if photo := rec.Parsed.Descriptors["PHOTO"]; len(photo) > 0 {
		lines = append(lines, fmt.Sprintf("🌞 Photoperiod: %s", strings.Join(photo, ", ")))
	}

	return DocumentChunk{
		EcoPortCode:    rec.EcoPortCode,
		ScientificName: rec.ScientificName,
		Text:           strings.Join(lines, "\n"),
	}
}

// traitSummary lists the true trait flags in a fixed check order.
func traitSummary(f Features) []string {
	var traits []string
	add := func(on bool, name string) {
		if on {
			traits = append(traits, name)
		}
	}
	add(f.IsDroughtTolerant, "drought-tolerant")
	add(f.IsDroughtSusceptible, "drought-susceptible")
	add(f.IsFireTolerant, "fire-tolerant")
	add(f.IsFireSusceptible, "fire-susceptible")
	add(f.IsSalineTolerant, "salinity-tolerant")
	add(f.IsSalineIntolerant, "salinity-intolerant")
	add(f.IsTempFlexible, "temperature-flexible")
	add(f.IsLowTempTolerant, "cold-tolerant")
	add(f.IsPHFlexible, "pH-flexible")
	add(f.IsSoilTextureTolerant, "soil-tolerant")
	add(f.IsFastCycle, "fast growth cycle")
	add(f.IsShallowRooted, "shallow-rooted")
	add(f.IsMultiplePhotoperiods, "flexible photoperiod")
	add(f.IsShortDay, "short-day plant")
	return traits
}

// formatNum renders a float without trailing zeros: 25 not 25.000000.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatOptNum renders a nullable float, "n/a" when absent.
func formatOptNum(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return formatNum(*v)
}
