package domain

import (
	"math"
	"strings"
)

// Weights of the three sub-scores in the final adaptability score.
const (
	climateWeight = 0.40
	soilWeight    = 0.35
	waterWeight   = 0.25
)

// Normalization ceilings for the ratio terms: a 30 °C tolerated span or
// membership in all 7 climate zones saturates its contribution, as does
// a pH span of 3.
const (
	tempRangeCeiling = 30.0
	zoneCountCeiling = 7.0
	phRangeCeiling   = 3.0
)

// Derive computes the trait flags, range widths, sub-scores, and final
// adaptability score for one cleaned record and its parsed fields. It is
// a pure function: identical inputs yield identical output, and missing
// operands degrade to zero contributions, never errors.
func Derive(rec CleanedPlantRecord, parsed ParsedFields) Features {
	f := Features{
		IsDroughtTolerant:    hasTag(parsed, "ABITOL", "drought"),
		IsDroughtSusceptible: hasTag(parsed, "ABISUS", "drought"),
		IsFireTolerant:       hasTag(parsed, "ABITOL", "fire"),
		IsFireSusceptible:    hasTag(parsed, "ABISUS", "fire"),
		IsSalineTolerant:     hasTag(parsed, "SALR", "high"),
		IsSalineIntolerant:   hasTag(parsed, "SALR", "low"),

		IsMultiplePhotoperiods: distinctTagCount(parsed, "PHOTO") > 1,
		IsShortDay:             hasTag(parsed, "PHOTO", "short day"),
		IsShallowRooted:        anyTagContains(parsed, "DEPR", "shallow"),
		HasMultipleCommonNames: len(parsed.Tags["COMNAME"]) > 3,

		SoilTextureFlexibility: distinctTagCount(parsed, "TEXT"),

		IsHighTempTolerant: rec.TMAX >= 40,
		IsLowTempTolerant:  rec.TMIN <= 10,

		GrowthCycleDays:  rec.GMAX - rec.GMIN,
		TempRangeWidth:   rec.TMAX - rec.TMIN,
		PrecipRangeWidth: rec.RMAX - rec.RMIN,

		ZoneCount: len(parsed.Tags["CLIZ"]),
	}

	f.IsSoilTextureTolerant = f.SoilTextureFlexibility >= 3
	f.IsFastCycle = f.GrowthCycleDays <= 90
	f.IsTempFlexible = f.TempRangeWidth >= 20
	f.IsWidePrecip = f.PrecipRangeWidth > 1500

	if rec.PHMIN != nil && rec.PHMAX != nil {
		width := *rec.PHMAX - *rec.PHMIN
		f.PHRangeWidth = &width
		f.IsPHFlexible = width >= 2
	}

	f.ClimateAdaptScore = (clip01(f.TempRangeWidth/tempRangeCeiling) +
		boolScore(f.IsTempFlexible) +
		boolScore(f.IsHighTempTolerant) +
		boolScore(f.IsLowTempTolerant) +
		clip01(float64(f.ZoneCount)/zoneCountCeiling)) / 5

	phContribution := 0.0
	if f.PHRangeWidth != nil {
		phContribution = clip01(*f.PHRangeWidth / phRangeCeiling)
	}
	f.SoilAdaptScore = (boolScore(f.IsSoilTextureTolerant) +
		phContribution +
		boolScore(f.IsPHFlexible)) / 3

	f.WaterAdaptScore = (boolScore(f.IsDroughtTolerant) +
		boolScore(f.IsWidePrecip)) / 2

	f.AdaptabilityScore = round3(climateWeight*f.ClimateAdaptScore +
		soilWeight*f.SoilAdaptScore +
		waterWeight*f.WaterAdaptScore)
	f.AdaptabilityLabel = LabelForScore(&f.AdaptabilityScore)

	return f
}

// LabelForScore maps an adaptability score to its categorical label.
// Bands are inclusive at their lower bound: exactly 0.8 is High. An
// undefined score maps to Unknown.
func LabelForScore(score *float64) string {
	switch {
	case score == nil || math.IsNaN(*score):
		return LabelUnknown
	case *score >= 0.8:
		return LabelHigh
	case *score >= 0.6:
		return LabelModerate
	case *score >= 0.4:
		return LabelLow
	default:
		return LabelVeryLow
	}
}

func hasTag(parsed ParsedFields, col, tag string) bool {
	for _, t := range parsed.Tags[col] {
		if t == tag {
			return true
		}
	}
	return false
}

func anyTagContains(parsed ParsedFields, col, substr string) bool {
	for _, t := range parsed.Tags[col] {
		if strings.Contains(t, substr) {
			return true
		}
	}
	return false
}

func distinctTagCount(parsed ParsedFields, col string) int {
	seen := make(map[string]struct{}, len(parsed.Tags[col]))
	for _, t := range parsed.Tags[col] {
		seen[t] = struct{}{}
	}
	return len(seen)
}

func clip01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Score builds the final ScoredPlantRecord for one cleaned record:
// parsed categorical fields plus derived features.
func Score(schema Schema, rec CleanedPlantRecord) ScoredPlantRecord {
	parsed := ParseFields(schema, rec)
	return ScoredPlantRecord{
		CleanedPlantRecord: rec,
		Parsed:             parsed,
		Features:           Derive(rec, parsed),
	}
}
