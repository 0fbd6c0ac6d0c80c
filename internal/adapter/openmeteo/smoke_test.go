//go:build openmeteo

package openmeteo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florahub/ecocrop-etl/internal/observability"
)

// These tests hit the real Open-Meteo API, which needs no API key.
// Run with: go test -tags=openmeteo ./internal/adapter/openmeteo/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(
		"https://api.open-meteo.com/v1/forecast",
		"https://geocoding-api.open-meteo.com/v1/search",
		10*time.Second,
		testLogger(),
		observability.NewMetricsForTesting(),
	)
}

func TestSmoke_Geocode(t *testing.T) {
	c := smokeClient(t)

	loc, err := c.Geocode(context.Background(), "Nairobi")
	require.NoError(t, err)

	assert.InDelta(t, -1.28, loc.Lat, 0.1, "lat should be near Nairobi")
	assert.InDelta(t, 36.82, loc.Lon, 0.1, "lon should be near Nairobi")
	assert.Equal(t, "Nairobi", loc.Name)
	assert.Equal(t, "Kenya", loc.Country)
}

func TestSmoke_FetchDaily(t *testing.T) {
	c := smokeClient(t)

	series, err := c.FetchDaily(context.Background(), -1.2841, 36.8155, 15)
	require.NoError(t, err)

	assert.Greater(t, series.TempDays(), 0)
	assert.Greater(t, len(series.Precip), 0)
	for _, v := range series.TempMax {
		assert.Greater(t, v, -60.0)
		assert.Less(t, v, 60.0)
	}
}
