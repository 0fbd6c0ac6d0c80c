package domain

// RawPlantRecord is one row of the ingested table exactly as read: every
// cell a string, no invariants assumed. Row is the 1-based source row for
// diagnostics.
type RawPlantRecord struct {
	Row   int
	Cells map[string]string
}

// CleanedPlantRecord is an immutable snapshot of one species after the
// cleaning passes. The nine core numeric fields are guaranteed present;
// remaining numeric fields are Number|Null; text fields are never null.
type CleanedPlantRecord struct {
	EcoPortCode    int    `json:"EcoPortCode"`
	ScientificName string `json:"ScientificName"`

	// Optimal and absolute temperature range, °C.
	TOPMN float64 `json:"TOPMN"`
	TOPMX float64 `json:"TOPMX"`
	TMIN  float64 `json:"TMIN"`
	TMAX  float64 `json:"TMAX"`

	// Optimal and absolute annual rainfall range, mm.
	ROPMN float64 `json:"ROPMN"`
	ROPMX float64 `json:"ROPMX"`
	RMIN  float64 `json:"RMIN"`
	RMAX  float64 `json:"RMAX"`

	// Killing temperature, clamped to >= 1 during cleaning.
	KTMP float64 `json:"KTMP"`

	// Growth cycle bounds in days, defaulted to 0 when absent.
	GMIN float64 `json:"GMIN"`
	GMAX float64 `json:"GMAX"`

	LATOPMN *float64 `json:"LATOPMN,omitempty"`
	LATOPMX *float64 `json:"LATOPMX,omitempty"`
	LATMN   *float64 `json:"LATMN,omitempty"`
	LATMX   *float64 `json:"LATMX,omitempty"`

	PHOPMN *float64 `json:"PHOPMN,omitempty"`
	PHOPMX *float64 `json:"PHOPMX,omitempty"`
	PHMIN  *float64 `json:"PHMIN,omitempty"`
	PHMAX  *float64 `json:"PHMAX,omitempty"`

	ALTMX  *float64 `json:"ALTMX,omitempty"`
	KTMPR  *float64 `json:"KTMPR,omitempty"`
	LIOPMN *float64 `json:"LIOPMN,omitempty"`
	LIOPMX *float64 `json:"LIOPMX,omitempty"`
	LIMN   *float64 `json:"LIMN,omitempty"`
	LIMX   *float64 `json:"LIMX,omitempty"`
	DEP    *float64 `json:"DEP,omitempty"`

	// Text holds every free-text and categorical column, normalized to
	// empty strings rather than null markers.
	Text map[string]string `json:"text"`
}

// TextField returns a text column value, empty when absent.
func (r CleanedPlantRecord) TextField(col string) string {
	return r.Text[col]
}

// NumField returns a numeric column by name. Core fields come back as
// non-nil pointers to copies; unknown columns are nil.
func (r CleanedPlantRecord) NumField(col string) *float64 {
	switch col {
	case "TOPMN":
		return &r.TOPMN
	case "TOPMX":
		return &r.TOPMX
	case "TMIN":
		return &r.TMIN
	case "TMAX":
		return &r.TMAX
	case "ROPMN":
		return &r.ROPMN
	case "ROPMX":
		return &r.ROPMX
	case "RMIN":
		return &r.RMIN
	case "RMAX":
		return &r.RMAX
	case "KTMP":
		return &r.KTMP
	case "GMIN":
		return &r.GMIN
	case "GMAX":
		return &r.GMAX
	case "LATOPMN":
		return r.LATOPMN
	case "LATOPMX":
		return r.LATOPMX
	case "LATMN":
		return r.LATMN
	case "LATMX":
		return r.LATMX
	case "PHOPMN":
		return r.PHOPMN
	case "PHOPMX":
		return r.PHOPMX
	case "PHMIN":
		return r.PHMIN
	case "PHMAX":
		return r.PHMAX
	case "ALTMX":
		return r.ALTMX
	case "KTMPR":
		return r.KTMPR
	case "LIOPMN":
		return r.LIOPMN
	case "LIOPMX":
		return r.LIOPMX
	case "LIMN":
		return r.LIMN
	case "LIMX":
		return r.LIMX
	case "DEP":
		return r.DEP
	default:
		return nil
	}
}

// Envelope extracts the temperature and rainfall tolerance bounds used
// by the suitability scorer.
func (r CleanedPlantRecord) Envelope() ToleranceEnvelope {
	return ToleranceEnvelope{
		TempOptMin: r.TOPMN, TempOptMax: r.TOPMX,
		TempAbsMin: r.TMIN, TempAbsMax: r.TMAX,
		PrecipOptMin: r.ROPMN, PrecipOptMax: r.ROPMX,
		PrecipAbsMin: r.RMIN, PrecipAbsMax: r.RMAX,
	}
}

// ParsedFields holds the two derived representations of the categorical
// columns: Tags (normalized, lower-cased, description-stripped) and
// Descriptors (original comma-split segments with parentheses kept).
// Both are recomputed fully from the source text, never mutated.
type ParsedFields struct {
	Tags        map[string][]string `json:"tags"`
	Descriptors map[string][]string `json:"descriptors"`
}

// Adaptability labels in descending order of score.
const (
	LabelHigh     = "High"
	LabelModerate = "Moderate"
	LabelLow      = "Low"
	LabelVeryLow  = "Very Low"
	LabelUnknown  = "Unknown"
)

// Features holds the derived trait flags, range widths, and scores
// computed by Derive.
type Features struct {
	IsDroughtTolerant    bool `json:"is_drought_tolerant"`
	IsDroughtSusceptible bool `json:"is_drought_susceptible"`
	IsFireTolerant       bool `json:"is_fire_tolerant"`
	IsFireSusceptible    bool `json:"is_fire_susceptible"`
	IsSalineTolerant     bool `json:"is_saline_tolerant"`
	IsSalineIntolerant   bool `json:"is_saline_intolerant"`

	IsMultiplePhotoperiods bool `json:"is_multiple_photoperiods"`
	IsShortDay             bool `json:"is_short_day"`
	IsShallowRooted        bool `json:"is_shallow_rooted"`
	HasMultipleCommonNames bool `json:"has_multiple_common_names"`

	SoilTextureFlexibility int  `json:"soil_texture_flexibility_score"`
	IsSoilTextureTolerant  bool `json:"is_soil_texture_tolerant"`

	IsHighTempTolerant bool `json:"is_high_temperature_tolerant"`
	IsLowTempTolerant  bool `json:"is_low_temperature_tolerant"`

	GrowthCycleDays float64 `json:"growth_cycle_days"`
	IsFastCycle     bool    `json:"is_fast_cycle"`

	TempRangeWidth   float64  `json:"temp_range_width"`
	IsTempFlexible   bool     `json:"is_temp_flexible"`
	PrecipRangeWidth float64  `json:"precip_range_width"`
	IsWidePrecip     bool     `json:"is_wide_precip_tolerance"`
	PHRangeWidth     *float64 `json:"ph_range_width,omitempty"`
	IsPHFlexible     bool     `json:"is_ph_flexible"`

	ZoneCount int `json:"climate_zone_count"`

	ClimateAdaptScore float64 `json:"climate_adapt_score"`
	SoilAdaptScore    float64 `json:"soil_adapt_score"`
	WaterAdaptScore   float64 `json:"water_adapt_score"`

	AdaptabilityScore float64 `json:"adaptability_score"`
	AdaptabilityLabel string  `json:"adaptability_label"`
}

// ScoredPlantRecord is the final artifact of the transformation
// pipeline: the cleaned record plus its parsed fields and derived
// features. Computed once per cleaning pass; regenerating it means
// rerunning the whole pipeline.
type ScoredPlantRecord struct {
	CleanedPlantRecord
	Parsed   ParsedFields `json:"parsed"`
	Features Features     `json:"features"`
}

// DocumentChunk is one rendered retrieval document, keyed by the
// species code. Immutable; consumed by an external indexer.
type DocumentChunk struct {
	EcoPortCode    int
	ScientificName string
	Text           string
}

// PlantSummary is the persisted projection of a scored record: identity,
// lookup names, tolerance envelope, adaptability, and the rendered
// document. It is what the plant store serves to the API.
type PlantSummary struct {
	EcoPortCode    int    `json:"eco_port_code"`
	ScientificName string `json:"scientific_name"`
	CommonNames    string `json:"common_names,omitempty"`
	Synonyms       string `json:"synonyms,omitempty"`

	Envelope ToleranceEnvelope `json:"envelope"`

	AdaptabilityScore float64 `json:"adaptability_score"`
	AdaptabilityLabel string  `json:"adaptability_label"`

	Document string `json:"document,omitempty"`
}

// Summary builds the persisted projection of a scored record.
func (r ScoredPlantRecord) Summary(doc DocumentChunk) PlantSummary {
	return PlantSummary{
		EcoPortCode:       r.EcoPortCode,
		ScientificName:    r.ScientificName,
		CommonNames:       r.TextField("COMNAME"),
		Synonyms:          r.TextField("SYNO"),
		Envelope:          r.Envelope(),
		AdaptabilityScore: r.Features.AdaptabilityScore,
		AdaptabilityLabel: r.Features.AdaptabilityLabel,
		Document:          doc.Text,
	}
}
