package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", nil},
		{"whitespace only", "   ", nil},
		{"single value", "maize", []string{"maize"}},
		{"multiple values", "maize, corn, mealie", []string{"maize", "corn", "mealie"}},
		{"mixed case lowered", "Maize, CORN", []string{"maize", "corn"}},
		{"empty segments discarded", "maize, , corn,", []string{"maize", "corn"}},
		{"diacritics folded", "açaí, café", []string{"acai", "cafe"}},
		{"untrimmed segments", "  maize ,corn  ", []string{"maize", "corn"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseList(tt.input))
		})
	}
}

func TestParseCategoricalWithNotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", nil},
		{"drainage with notes", "well (dry spells), poorly (saturated)", []string{"well", "poorly"}},
		{"photoperiod with hours", "short day (<12 hours), neutral day (12-14 hours)", []string{"short day", "neutral day"}},
		{"slash and plus kept", "light/medium, high+", []string{"light/medium", "high+"}},
		{"leading digit discarded", "12 hours, high", []string{"high"}},
		{"duplicates kept in order", "well, well (sometimes)", []string{"well", "well"}},
		{"parenthesis only segment discarded", "(note), high", []string{"high"}},
		{"case normalized", "Well (Dry Spells)", []string{"well"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCategoricalWithNotes(tt.input))
		})
	}
}

func TestFullDescriptor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", nil},
		{"whitespace only", "  ", nil},
		{"keeps parentheses and case", "well (dry spells), poorly (saturated)",
			[]string{"well (dry spells)", "poorly (saturated)"}},
		{"trims segments", "  high (>10 dS/m) , low ", []string{"high (>10 dS/m)", "low"}},
		{"drops empty segments", "a,,b", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FullDescriptor(tt.input))
		})
	}
}

func TestTagListDerivableFromDescriptors(t *testing.T) {
	// The tag list must always be recoverable from the descriptor list by
	// stripping parenthetical content.
	input := "short day (<12 hours), neutral day (12-14 hours), long day (>14 hours)"

	tags := ParseCategoricalWithNotes(input)
	descriptors := FullDescriptor(input)

	assert.Len(t, descriptors, len(tags))
	for i, d := range descriptors {
		assert.Equal(t, tags[i], ParseCategoricalWithNotes(d)[0])
	}
}

func TestParseFields(t *testing.T) {
	schema := DefaultSchema()
	rec := CleanedPlantRecord{
		Text: map[string]string{
			"CLIZ":   "tropical, subtropical",
			"ABITOL": "drought, fire",
			"PHOTO":  "short day (<12 hours), neutral day (12-14 hours)",
			"SALR":   "high (>10 dS/m)",
			"TEXT":   "",
		},
	}

	parsed := ParseFields(schema, rec)

	assert.Equal(t, []string{"tropical", "subtropical"}, parsed.Tags["CLIZ"])
	assert.Equal(t, []string{"drought", "fire"}, parsed.Tags["ABITOL"])
	assert.Equal(t, []string{"short day", "neutral day"}, parsed.Tags["PHOTO"])
	assert.Equal(t, []string{"short day (<12 hours)", "neutral day (12-14 hours)"}, parsed.Descriptors["PHOTO"])
	assert.Equal(t, []string{"high"}, parsed.Tags["SALR"])

	// Empty cells produce no entry, not an empty list.
	_, ok := parsed.Tags["TEXT"]
	assert.False(t, ok)
	_, ok = parsed.Descriptors["TEXT"]
	assert.False(t, ok)
}
