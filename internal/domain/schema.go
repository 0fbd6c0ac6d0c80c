package domain

// Schema maps logical field categories to concrete EcoCrop column names.
// It is constructed once (usually via DefaultSchema) and passed into each
// pipeline stage rather than read from package state, so alternate column
// sets can be exercised in tests.
type Schema struct {
	// ListColumns are parsed as plain comma-separated tag lists.
	ListColumns []string

	// NotesColumns are parsed twice: into clean category tags and into
	// full descriptors that keep parenthetical detail.
	NotesColumns []string

	// CoreNumericColumns must all be present after cleaning; rows missing
	// any of them are excluded.
	CoreNumericColumns []string

	// LatitudeColumns are sanitized to [-90, 90] field-wise.
	LatitudeColumns []string

	// NumericColumns is the full set of columns parsed as Number|Null,
	// including the core and latitude groups.
	NumericColumns []string

	// TextColumns are free-text columns normalized to empty strings,
	// including every list and notes column.
	TextColumns []string

	// DisplayNames maps column codes to the human-readable labels used
	// by the document renderer.
	DisplayNames map[string]string
}

// DefaultSchema returns the column layout of the EcoCrop export.
func DefaultSchema() Schema {
	listCols := []string{
		"COMNAME", "CAT", "CLIZ", "SYNO", "PLAT", "LISPA", "TEXTR", "FERR",
		"TOXR", "DRAR", "HABI", "LIFO", "PHYS", "PROSY", "INTRI", "ABITOL",
		"ABISUS",
	}
	notesCols := []string{"PHOTO", "TEXT", "DRA", "SALR", "FER", "TOX", "DEPR"}

	textCols := []string{"ScientificName", "AUTH", "FAMNAME", "SAL"}
	textCols = append(textCols, listCols...)
	textCols = append(textCols, notesCols...)

	return Schema{
		ListColumns:  listCols,
		NotesColumns: notesCols,
		CoreNumericColumns: []string{
			"TOPMN", "TOPMX", "TMIN", "TMAX",
			"ROPMN", "ROPMX", "RMIN", "RMAX", "KTMP",
		},
		LatitudeColumns: []string{"LATOPMN", "LATOPMX", "LATMN", "LATMX"},
		NumericColumns: []string{
			"TOPMN", "TOPMX", "TMIN", "TMAX", "ROPMN", "ROPMX", "RMIN", "RMAX",
			"GMIN", "GMAX", "KTMP", "KTMPR",
			"LATOPMN", "LATOPMX", "LATMN", "LATMX", "ALTMX",
			"LIOPMN", "LIOPMX", "LIMN", "LIMX", "DEP",
			"PHOPMN", "PHOPMX", "PHMIN", "PHMAX",
		},
		TextColumns: textCols,
		DisplayNames: map[string]string{
			"COMNAME": "Common names",
			"CAT":     "Use categories",
			"CLIZ":    "Climate zones",
			"SYNO":    "Synonyms",
			"PLAT":    "Plant attributes",
			"LISPA":   "Lifespan",
			"TEXTR":   "Soil texture range",
			"FERR":    "Fertility range",
			"TOXR":    "Toxicity range",
			"DRAR":    "Drainage range",
			"HABI":    "Habitat",
			"LIFO":    "Life form",
			"PHYS":    "Physical structure",
			"PROSY":   "Propagation system",
			"INTRI":   "Intraspecific traits",
			"ABITOL":  "Biotic tolerance",
			"ABISUS":  "Biotic susceptibility",
			"PHOTO":   "Photoperiod",
			"TEXT":    "Soil texture",
			"DRA":     "Drainage",
			"SALR":    "Salinity tolerance",
			"FER":     "Fertility",
			"TOX":     "Toxicity",
			"DEPR":    "Soil depth range",
		},
	}
}

// DisplayName returns the renderer label for a column, falling back to
// the column code itself.
func (s Schema) DisplayName(col string) string {
	if name, ok := s.DisplayNames[col]; ok {
		return name
	}
	return col
}
