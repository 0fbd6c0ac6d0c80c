package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maizeEnvelope() ToleranceEnvelope {
	return ToleranceEnvelope{
		TempOptMin: 18, TempOptMax: 33,
		TempAbsMin: 10, TempAbsMax: 33,
		PrecipOptMin: 600, PrecipOptMax: 1200,
		PrecipAbsMin: 400, PrecipAbsMax: 1800,
	}
}

// constantSeries builds n identical days.
func constantSeries(n int, tmin, tmax, tmean, precip float64) WeatherSeries {
	s := WeatherSeries{
		TempMin:  make([]float64, n),
		TempMax:  make([]float64, n),
		TempMean: make([]float64, n),
		Precip:   make([]float64, n),
	}
	for i := range n {
		s.TempMin[i] = tmin
		s.TempMax[i] = tmax
		s.TempMean[i] = tmean
		s.Precip[i] = precip
	}
	return s
}

func TestPiecewiseScore(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		expected float64
	}{
		{"optimal midpoint", 25, 100},
		{"optimal lower bound inclusive", 18, 100},
		{"optimal upper bound inclusive", 33, 100},
		{"lower ramp midpoint", 14, 75},
		{"lower ramp at absolute bound", 10, 50},
		{"below absolute ramps down by deviation", 8, 80},
		{"far below absolute floors at zero", -5, 0},
		{"above shared optimal and absolute max", 33.1, 99},
		{"well above absolute max", 45, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := piecewiseScore(tt.v, 18, 33, 10, 33)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestPiecewiseScore_DegenerateEnvelope(t *testing.T) {
	// All bounds coincide: equality scores 100, everything else is pure
	// deviation from the single bound. No division by zero either way.
	assert.InDelta(t, 100.0, piecewiseScore(20, 20, 20, 20, 20), 1e-9)
	assert.InDelta(t, 90.0, piecewiseScore(21, 20, 20, 20, 20), 1e-9)
	assert.InDelta(t, 90.0, piecewiseScore(19, 20, 20, 20, 20), 1e-9)
}

func TestScoreSuitability_OptimalConditions(t *testing.T) {
	series := constantSeries(15, 20, 30, 25, 2.5) // 2.5 mm/day ~ 912 mm/yr

	res, err := ScoreSuitability(maizeEnvelope(), series)

	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, 15, res.Days)
	assert.Equal(t, 15, res.WindowDays)
	assert.InDelta(t, 100.0, res.PrecipScore, 1e-9)
}

func TestScoreSuitability_MeanAtAbsoluteMax(t *testing.T) {
	// The envelope's optimal and absolute maxima coincide at 33, so a
	// day sitting exactly on the hottest tolerated temperature still
	// scores 100.
	series := constantSeries(10, 33, 33, 33, 2.5)

	res, err := ScoreSuitability(maizeEnvelope(), series)

	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
}

func TestScoreSuitability_JustPastAbsoluteMax(t *testing.T) {
	series := constantSeries(10, 33.5, 33.5, 33.5, 2.5)

	res, err := ScoreSuitability(maizeEnvelope(), series)

	require.NoError(t, err)
	assert.Less(t, res.Score, 100)
}

func TestScoreSuitability_Annualization(t *testing.T) {
	series := constantSeries(30, 25, 25, 25, 100.0/30)

	res, err := ScoreSuitability(maizeEnvelope(), series)

	require.NoError(t, err)
	// 100 mm over 30 days scales to 100 * 365/30 mm per year.
	assert.InDelta(t, 1216.667, res.AnnualizedPrecip, 0.001)
	assert.Equal(t, 30, res.WindowDays)
}

func TestScoreSuitability_Truncation(t *testing.T) {
	// Optimal temperature every day, but annualized precipitation far
	// beyond the absolute maximum: 20 mm/day -> 7300 mm/yr, 5500 past
	// the 1800 mm bound, so the precipitation score floors at 0 and the
	// daily average is exactly 50.
	series := constantSeries(5, 20, 30, 25, 20)

	res, err := ScoreSuitability(maizeEnvelope(), series)

	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.PrecipScore, 1e-9)
	assert.Equal(t, 50, res.Score)
}

func TestScoreSuitability_EmptySeries(t *testing.T) {
	tests := []struct {
		name   string
		series WeatherSeries
	}{
		{"no data at all", WeatherSeries{}},
		{"temperatures without precipitation", WeatherSeries{
			TempMin: []float64{20}, TempMax: []float64{30}, TempMean: []float64{25},
		}},
		{"precipitation without temperatures", WeatherSeries{
			Precip: []float64{3},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScoreSuitability(maizeEnvelope(), tt.series)
			assert.ErrorIs(t, err, ErrEmptySeries)
		})
	}
}

func TestScoreSuitability_RaggedTemperatureSeries(t *testing.T) {
	// Temperature days are limited by the shortest of the three series;
	// the precipitation window is independent.
	series := WeatherSeries{
		TempMin:  []float64{20, 21, 22},
		TempMax:  []float64{30, 31},
		TempMean: []float64{25, 26, 27},
		Precip:   []float64{2.5, 2.5, 2.5, 2.5},
	}

	res, err := ScoreSuitability(maizeEnvelope(), series)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Days)
	assert.Equal(t, 4, res.WindowDays)
}

func TestEnvelopeFromRecord(t *testing.T) {
	rec := cleanedRecord()

	env := rec.Envelope()

	assert.Equal(t, 18.0, env.TempOptMin)
	assert.Equal(t, 33.0, env.TempOptMax)
	assert.Equal(t, 12.0, env.TempAbsMin)
	assert.Equal(t, 38.0, env.TempAbsMax)
	assert.Equal(t, 600.0, env.PrecipOptMin)
	assert.Equal(t, 1800.0, env.PrecipAbsMax)
}
