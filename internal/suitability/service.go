// Package suitability answers "how well would this species do at this
// place right now": it resolves the place to coordinates (geocoding
// unless they were given directly), loads the species envelope from
// the plant store, fetches the daily forecast, and scores the series
// against the envelope.
package suitability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/florahub/ecocrop-etl/internal/domain"
	"github.com/florahub/ecocrop-etl/internal/observability"
)

// Geocoder resolves a place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (domain.Location, error)
}

// WeatherProvider fetches the daily forecast series for coordinates.
type WeatherProvider interface {
	FetchDaily(ctx context.Context, lat, lon float64, days int) (domain.WeatherSeries, error)
}

// PlantStore serves persisted plant summaries.
type PlantStore interface {
	GetByCode(ctx context.Context, code int) (domain.PlantSummary, error)
	GetByScientificName(ctx context.Context, name string) (domain.PlantSummary, error)
}

// Place is where to assess: a free-text name to geocode, or explicit
// coordinates, which skip the geocoder entirely.
type Place struct {
	Name string
	Lat  *float64
	Lon  *float64
}

// Assessment is the complete answer to one suitability request.
type Assessment struct {
	Plant    domain.PlantSummary      `json:"plant"`
	Location domain.Location          `json:"location"`
	Result   domain.SuitabilityResult `json:"result"`
}

// Service runs the geocode, lookup, fetch, score flow.
type Service struct {
	geocoder Geocoder
	weather  WeatherProvider
	store    PlantStore
	days     int
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Service fetching forecast windows of the given length.
func New(geocoder Geocoder, weather WeatherProvider, store PlantStore, days int, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		geocoder: geocoder,
		weather:  weather,
		store:    store,
		days:     days,
		logger:   logger,
		metrics:  metrics,
	}
}

// AssessByCode scores the plant with the given EcoPort code at a place.
func (s *Service) AssessByCode(ctx context.Context, code int, place Place) (Assessment, error) {
	plant, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return Assessment{}, s.lookupErr(err, fmt.Sprintf("code %d", code))
	}
	return s.assess(ctx, plant, place)
}

// AssessByName scores the plant with the given scientific name at a
// place.
func (s *Service) AssessByName(ctx context.Context, name string, place Place) (Assessment, error) {
	plant, err := s.store.GetByScientificName(ctx, name)
	if err != nil {
		return Assessment{}, s.lookupErr(err, fmt.Sprintf("name %q", name))
	}
	return s.assess(ctx, plant, place)
}

func (s *Service) assess(ctx context.Context, plant domain.PlantSummary, place Place) (Assessment, error) {
	loc, err := s.resolve(ctx, place)
	if err != nil {
		s.metrics.SuitabilityRequests.WithLabelValues("error").Inc()
		return Assessment{}, fmt.Errorf("resolve place: %w", err)
	}

	series, err := s.weather.FetchDaily(ctx, loc.Lat, loc.Lon, s.days)
	if err != nil {
		s.metrics.SuitabilityRequests.WithLabelValues("error").Inc()
		return Assessment{}, fmt.Errorf("fetch weather: %w", err)
	}

	result, err := domain.ScoreSuitability(plant.Envelope, series)
	if err != nil {
		s.metrics.SuitabilityRequests.WithLabelValues("error").Inc()
		return Assessment{}, fmt.Errorf("score %s at %s: %w", plant.ScientificName, loc.Name, err)
	}

	s.metrics.SuitabilityRequests.WithLabelValues("success").Inc()
	s.logger.Info("suitability assessed",
		"plant", plant.ScientificName,
		"place", loc.Name,
		"score", result.Score,
		"days", result.Days,
	)
	return Assessment{Plant: plant, Location: loc, Result: result}, nil
}

// resolve turns a Place into coordinates, geocoding only when no
// explicit lat/lon were given.
func (s *Service) resolve(ctx context.Context, place Place) (domain.Location, error) {
	if place.Lat == nil || place.Lon == nil {
		return s.geocoder.Geocode(ctx, place.Name)
	}
	name := place.Name
	if name == "" {
		name = fmt.Sprintf("%.4f, %.4f", *place.Lat, *place.Lon)
	}
	return domain.Location{Name: name, Lat: *place.Lat, Lon: *place.Lon}, nil
}

// lookupErr counts a missing plant separately from store failures so
// the API can map it to 404.
func (s *Service) lookupErr(err error, key string) error {
	if errors.Is(err, domain.ErrPlantNotFound) {
		s.metrics.SuitabilityRequests.WithLabelValues("not_found").Inc()
	} else {
		s.metrics.SuitabilityRequests.WithLabelValues("error").Inc()
	}
	return fmt.Errorf("load plant %s: %w", key, err)
}
