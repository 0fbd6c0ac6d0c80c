// Package domain models the FAO EcoCrop plant-trait dataset and the
// transformations applied to it.
//
// # Data Source
//
// Records originate from the EcoCrop crop-ecology database: one row per
// species, keyed by EcoPortCode, with numeric tolerance ranges and
// compound free-text categorical columns. The upstream table is exported
// as a spreadsheet; cells use a handful of placeholder tokens ("NA",
// "n/a", "-", ...) for missing values and mix numbers with empty strings.
//
// # Column Conventions
//
// Numeric tolerance columns (all °C, mm/year, or days):
//
//	TOPMN/TOPMX  optimal temperature range
//	TMIN/TMAX    absolute temperature range
//	ROPMN/ROPMX  optimal annual rainfall range
//	RMIN/RMAX    absolute annual rainfall range
//	KTMP         killing temperature (frost death point)
//	GMIN/GMAX    growth cycle length range in days
//	LATOPMN/LATOPMX/LATMN/LATMX  latitude ranges, valid within [-90, 90]
//	PHOPMN/PHOPMX/PHMIN/PHMAX    soil pH ranges
//
// Categorical list columns (COMNAME, CLIZ, ABITOL, ...) hold
// comma-separated labels. Categorical-with-notes columns (PHOTO, TEXT,
// SALR, ...) additionally carry parenthetical detail per segment, e.g.
// "short day (<12 hours), neutral day (12-14 hours)". Some cells contain
// a doubled closing parenthesis from the original data entry
// ("high (>10 dS/m))"); cleaning repairs this before parsing.
//
// # Cleaning Rules
//
// Cleaning is a fixed sequence of passes, summarized in a
// [CleaningReport]:
//
//  1. Placeholder tokens are normalized to null (exact, case-sensitive
//     token match).
//  2. Rows with TOPMN > 40 °C are dropped as implausible.
//  3. Missing KTMP is imputed as TMIN - 5; all KTMP values are then
//     clamped to a floor of 1.
//  4. Latitude values outside [-90, 90] are nulled field-wise.
//  5. Missing GMIN/GMAX default to 0.
//  6. Rows still missing any of the nine core numeric fields are dropped.
//
// Violations never surface as errors: the pipeline always produces a
// best-effort cleaned set.
//
// # Scoring
//
// Derived trait flags and range widths feed three 0-1 sub-scores
// (climate, soil, water) blended 0.40/0.35/0.25 into the adaptability
// score, labeled High (>=0.8), Moderate (>=0.6), Low (>=0.4), or
// Very Low. See [Derive].
//
// The separate suitability scorer compares a species' temperature and
// rainfall envelope against a daily weather series and yields a 0-100
// fit score. See [ScoreSuitability].
package domain
