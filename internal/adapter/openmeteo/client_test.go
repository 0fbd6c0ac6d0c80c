package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florahub/ecocrop-etl/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(forecastURL, geocodingURL string) *Client {
	c := NewClient(forecastURL, geocodingURL, 2*time.Second, testLogger(), observability.NewMetricsForTesting())
	c.backoff.initialInterval = time.Millisecond
	c.backoff.maxInterval = 5 * time.Millisecond
	return c
}

const forecastBody = `{
	"daily": {
		"temperature_2m_max": [30.1, 31.2, null],
		"temperature_2m_min": [18.0, 19.5, 20.0],
		"temperature_2m_mean": [24.0, 25.0, 26.0],
		"precipitation_sum": [0.0, 5.2, 1.1]
	}
}`

func TestClient_FetchDaily(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Encode())
		w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	series, err := c.FetchDaily(context.Background(), 52.52, 13.405, 15)

	require.NoError(t, err)
	// The null max reading is dropped, leaving a ragged series.
	assert.Equal(t, []float64{30.1, 31.2}, series.TempMax)
	assert.Equal(t, []float64{18.0, 19.5, 20.0}, series.TempMin)
	assert.Equal(t, []float64{0.0, 5.2, 1.1}, series.Precip)
	assert.Equal(t, 2, series.TempDays())

	query := gotQuery.Load().(string)
	assert.Contains(t, query, "latitude=52.520000")
	assert.Contains(t, query, "forecast_days=15")
	assert.Contains(t, query, "temperature_2m_mean")
}

func TestClient_FetchDaily_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	series, err := c.FetchDaily(context.Background(), 0, 0, 7)

	require.NoError(t, err)
	assert.Equal(t, int64(3), calls.Load())
	assert.Equal(t, 2, series.TempDays())
}

func TestClient_FetchDaily_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	_, err := c.FetchDaily(context.Background(), 0, 0, 7)

	require.Error(t, err)
	assert.Equal(t, int64(1), calls.Load())
}

func TestClient_Geocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Nairobi", r.URL.Query().Get("name"))
		w.Write([]byte(`{"results": [{"name": "Nairobi", "country": "Kenya", "latitude": -1.28, "longitude": 36.82}]}`))
	}))
	defer srv.Close()

	c := newTestClient("", srv.URL)
	loc, err := c.Geocode(context.Background(), "Nairobi")

	require.NoError(t, err)
	assert.Equal(t, "Nairobi", loc.Name)
	assert.Equal(t, "Kenya", loc.Country)
	assert.InDelta(t, -1.28, loc.Lat, 1e-9)
	assert.InDelta(t, 36.82, loc.Lon, 1e-9)
}

func TestClient_Geocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient("", srv.URL)
	_, err := c.Geocode(context.Background(), "Atlantis")

	assert.ErrorIs(t, err, ErrNoResults)
}

func TestClient_FetchDaily_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(srv.URL, "")
	_, err := c.FetchDaily(ctx, 0, 0, 7)

	assert.ErrorIs(t, err, context.Canceled)
}
