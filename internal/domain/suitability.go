package domain

import (
	"errors"
	"math"
)

// ToleranceEnvelope holds one species' temperature and rainfall bounds:
// the optimal range nested inside the absolute range for each variable.
type ToleranceEnvelope struct {
	TempOptMin, TempOptMax float64
	TempAbsMin, TempAbsMax float64

	PrecipOptMin, PrecipOptMax float64
	PrecipAbsMin, PrecipAbsMax float64
}

// WeatherSeries is an ordered sequence of daily observations with null
// values already filtered out per variable. It is fetched fresh per
// suitability request and never cached by the core.
type WeatherSeries struct {
	TempMin  []float64
	TempMax  []float64
	TempMean []float64
	Precip   []float64
}

// TempDays returns the number of days with all three temperature
// readings available.
func (s WeatherSeries) TempDays() int {
	n := len(s.TempMin)
	if len(s.TempMax) < n {
		n = len(s.TempMax)
	}
	if len(s.TempMean) < n {
		n = len(s.TempMean)
	}
	return n
}

// ErrEmptySeries is returned when the weather series has no usable
// temperature days or no precipitation values.
var ErrEmptySeries = errors.New("weather series has no usable observations")

// ErrPlantNotFound is returned by plant stores when no species matches
// a lookup.
var ErrPlantNotFound = errors.New("plant not found")

// Location is a geocoded place, the anchor of a suitability request.
type Location struct {
	Name    string  `json:"name"`
	Country string  `json:"country,omitempty"`
	Lat     float64 `json:"latitude"`
	Lon     float64 `json:"longitude"`
}

// SuitabilityResult is the outcome of scoring one series against one
// envelope.
type SuitabilityResult struct {
	// Score is the truncated mean of the daily suitability values, 0-100.
	Score int `json:"score"`

	// Days is the number of temperature days that entered the mean.
	Days int `json:"days"`

	// WindowDays is the precipitation window length used for
	// annualization.
	WindowDays int `json:"window_days"`

	// AnnualizedPrecip is the window total scaled to a full year, mm.
	AnnualizedPrecip float64 `json:"annualized_precipitation_mm"`

	// PrecipScore is the 0-100 precipitation axis score, computed once
	// per request.
	PrecipScore float64 `json:"precipitation_score"`
}

// ScoreSuitability computes the 0-100 fit of a location's recent weather
// for one species.
//
// Precipitation is scored once: the series total is annualized by
// 365/window, where window is the number of daily values actually
// summed, then run through the piecewise formula. Each day's
// temperature score is the mean of the min/max/mean readings scored
// against the temperature envelope; daily suitability averages the
// temperature day-score with the fixed precipitation score.
func ScoreSuitability(env ToleranceEnvelope, series WeatherSeries) (SuitabilityResult, error) {
	days := series.TempDays()
	window := len(series.Precip)
	if days == 0 || window == 0 {
		return SuitabilityResult{}, ErrEmptySeries
	}

	total := 0.0
	for _, p := range series.Precip {
		total += p
	}
	annualized := total * 365 / float64(window)
	precipScore := piecewiseScore(annualized,
		env.PrecipOptMin, env.PrecipOptMax, env.PrecipAbsMin, env.PrecipAbsMax)

	sum := 0.0
	for i := 0; i < days; i++ {
		tempScore := temperatureDayScore(series.TempMin[i], series.TempMax[i], series.TempMean[i], env)
		sum += (tempScore + precipScore) / 2
	}

	return SuitabilityResult{
		Score:            int(sum / float64(days)),
		Days:             days,
		WindowDays:       window,
		AnnualizedPrecip: annualized,
		PrecipScore:      precipScore,
	}, nil
}

// temperatureDayScore averages the piecewise scores of one day's min,
// max, and mean temperature against the temperature envelope.
func temperatureDayScore(tmin, tmax, tmean float64, env ToleranceEnvelope) float64 {
	score := func(v float64) float64 {
		return piecewiseScore(v, env.TempOptMin, env.TempOptMax, env.TempAbsMin, env.TempAbsMax)
	}
	return (score(tmin) + score(tmax) + score(tmean)) / 3
}

// piecewiseScore rates value v against an optimal range nested in an
// absolute range, on a 0-100 scale:
//
//   - inside the optimal range: 100 (bounds inclusive)
//   - inside the absolute range: linear ramp from 50 at the absolute
//     bound to 100 at the optimal bound
//   - outside the absolute range: 100 minus 10 per unit of deviation
//     from the nearest absolute bound, floored at 0
//
// When optimal and absolute bounds coincide the ramp interval is empty
// and its denominator is never evaluated: equality scores 100 via the
// first branch and anything beyond falls through to the deviation
// branch. The explicit denominator guards keep inverted envelopes from
// dividing by zero.
func piecewiseScore(v, optMin, optMax, absMin, absMax float64) float64 {
	switch {
	case optMin <= v && v <= optMax:
		return 100
	case absMin <= v && v < optMin && optMin-absMin > 0:
		return 50 + 50*(v-absMin)/(optMin-absMin)
	case optMax < v && v <= absMax && absMax-optMax > 0:
		return 50 + 50*(absMax-v)/(absMax-optMax)
	default:
		nearest := absMin
		if v > absMax {
			nearest = absMax
		}
		return math.Max(0, 100-10*math.Abs(v-nearest))
	}
}
