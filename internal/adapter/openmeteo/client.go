// Package openmeteo fetches daily forecasts and geocoded locations from
// the Open-Meteo APIs. Neither endpoint requires an API key.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/florahub/ecocrop-etl/internal/domain"
	"github.com/florahub/ecocrop-etl/internal/observability"
)

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// ErrNoResults is returned when geocoding finds no matching place.
var ErrNoResults = errors.New("no geocoding results")

// backoff controls the retry schedule for transient API failures.
type backoff struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}

// Client talks to the Open-Meteo forecast and geocoding endpoints. It
// implements suitability.WeatherProvider and suitability.Geocoder.
type Client struct {
	forecastURL  string
	geocodingURL string
	httpClient   *http.Client
	circuit      *gobreaker.CircuitBreaker
	backoff      backoff
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewClient creates an Open-Meteo client with a circuit breaker and
// exponential retry.
func NewClient(forecastURL, geocodingURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		forecastURL:  forecastURL,
		geocodingURL: geocodingURL,
		httpClient:   &http.Client{Timeout: timeout},
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "open-meteo",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		backoff: backoff{
			maxRetries:      3,
			initialInterval: 500 * time.Millisecond,
			maxInterval:     5 * time.Second,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchDaily returns the daily forecast series for the coordinates,
// today included. Null observations are dropped per variable, so the
// series may be ragged.
func (c *Client) FetchDaily(ctx context.Context, lat, lon float64, days int) (domain.WeatherSeries, error) {
	params := url.Values{
		"latitude":      {formatCoord(lat)},
		"longitude":     {formatCoord(lon)},
		"daily":         {"temperature_2m_max,temperature_2m_min,temperature_2m_mean,precipitation_sum"},
		"forecast_days": {strconv.Itoa(days)},
		"timezone":      {"auto"},
	}

	start := time.Now()
	resp, err := c.doRequest(ctx, c.forecastURL+"?"+params.Encode())
	c.metrics.WeatherAPIDuration.WithLabelValues("forecast").Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.WeatherSeries{}, fmt.Errorf("fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Daily struct {
			TempMax  []*float64 `json:"temperature_2m_max"`
			TempMin  []*float64 `json:"temperature_2m_min"`
			TempMean []*float64 `json:"temperature_2m_mean"`
			Precip   []*float64 `json:"precipitation_sum"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.WeatherSeries{}, fmt.Errorf("decode forecast: %w", err)
	}

	series := domain.WeatherSeries{
		TempMin:  dropNulls(payload.Daily.TempMin),
		TempMax:  dropNulls(payload.Daily.TempMax),
		TempMean: dropNulls(payload.Daily.TempMean),
		Precip:   dropNulls(payload.Daily.Precip),
	}
	c.logger.Debug("forecast fetched",
		"lat", lat, "lon", lon,
		"temp_days", series.TempDays(), "precip_days", len(series.Precip),
	)
	return series, nil
}

// Geocode resolves a place name to coordinates using the first match.
func (c *Client) Geocode(ctx context.Context, place string) (domain.Location, error) {
	params := url.Values{
		"name":  {place},
		"count": {"1"},
	}

	start := time.Now()
	resp, err := c.doRequest(ctx, c.geocodingURL+"?"+params.Encode())
	c.metrics.WeatherAPIDuration.WithLabelValues("geocoding").Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.Location{}, fmt.Errorf("geocode %q: %w", place, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Country   string  `json:"country"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Location{}, fmt.Errorf("decode geocoding response: %w", err)
	}
	if len(payload.Results) == 0 {
		return domain.Location{}, fmt.Errorf("geocode %q: %w", place, ErrNoResults)
	}

	r := payload.Results[0]
	return domain.Location{
		Name:    r.Name,
		Country: r.Country,
		Lat:     r.Latitude,
		Lon:     r.Longitude,
	}, nil
}

// doRequest executes a GET with retries, exponential backoff, and the
// circuit breaker. Rate limits and server errors are retried; client
// errors are not.
func (c *Client) doRequest(ctx context.Context, fullURL string) (*http.Response, error) {
	var attempt int
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, err
		}

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := c.httpClient.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				resp.Body.Close()
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				resp.Body.Close()
				return nil, errServerError
			case resp.StatusCode != http.StatusOK:
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
			return resp, nil
		})
		if err == nil {
			return result.(*http.Response), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if !retryable(err) || attempt >= c.backoff.maxRetries {
			return nil, err
		}

		delay := c.backoff.initialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.backoff.maxInterval {
			delay = c.backoff.maxInterval
		}
		c.logger.Warn("open-meteo request failed, retrying",
			"error", err, "attempt", attempt+1, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}

func retryable(err error) bool {
	if errors.Is(err, errRateLimited) || errors.Is(err, errServerError) {
		return true
	}
	// Network errors (timeouts, refused connections) are worth retrying;
	// non-200 client responses are not.
	return !errors.Is(err, errUnexpected)
}

func dropNulls(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
