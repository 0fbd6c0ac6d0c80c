package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// categoryRe matches the leading clean-category run of a segment: letters,
// spaces, and the /, +, - connectors, stopping at parentheses or digits.
// "well (dry spells)" -> "well", "neutral day (12-14 hours)" -> "neutral day".
var categoryRe = regexp.MustCompile(`^[a-z\s/+-]+`)

// asciiFolder decomposes accented characters and strips combining marks,
// e.g. "Açaí" -> "Acai". Remaining non-ASCII runes are dropped afterwards.
var asciiFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// foldASCII normalizes broken Unicode from spreadsheet exports to the
// closest ASCII representation.
func foldASCII(s string) string {
	folded, _, err := transform.String(asciiFolder, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseList parses a plain comma-separated cell (COMNAME, CAT, CLIZ, ...)
// into a normalized tag list: ASCII-folded, comma-split, trimmed,
// lower-cased, empty segments discarded. Malformed input degrades to an
// empty list, never an error.
func ParseList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	value = foldASCII(value)

	parts := strings.Split(value, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// ParseCategoricalWithNotes extracts the clean category labels from a
// notes-bearing cell, dropping parenthetical detail and anything after
// the first digit:
//
//	"well (dry spells), poorly (saturated)" -> ["well", "poorly"]
//
// Segments with no extractable category are discarded; order is
// preserved and duplicates are kept.
func ParseCategoricalWithNotes(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	var categories []string
	for _, p := range strings.Split(value, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		clean := strings.TrimSpace(categoryRe.FindString(p))
		if clean != "" {
			categories = append(categories, clean)
		}
	}
	return categories
}

// FullDescriptor splits a cell into its original comma-separated
// segments, keeping casing and parenthetical detail intact.
//
//	"well (dry spells), poorly (saturated)" -> ["well (dry spells)", "poorly (saturated)"]
func FullDescriptor(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	var segments []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// ParseFields computes both derived representations for every
// categorical column of a cleaned record. Cleaning has already repaired
// doubled closing parentheses, so the parsers see well-formed notes.
func ParseFields(schema Schema, rec CleanedPlantRecord) ParsedFields {
	parsed := ParsedFields{
		Tags:        make(map[string][]string, len(schema.ListColumns)+len(schema.NotesColumns)),
		Descriptors: make(map[string][]string, len(schema.NotesColumns)),
	}

	for _, col := range schema.ListColumns {
		if tags := ParseList(rec.TextField(col)); tags != nil {
			parsed.Tags[col] = tags
		}
	}

	for _, col := range schema.NotesColumns {
		value := rec.TextField(col)
		if tags := ParseCategoricalWithNotes(value); tags != nil {
			parsed.Tags[col] = tags
		}
		if desc := FullDescriptor(value); desc != nil {
			parsed.Descriptors[col] = desc
		}
	}

	return parsed
}
