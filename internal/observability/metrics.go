package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// EcoCrop pipeline and the suitability API.
type Metrics struct {
	RowsRead          prometheus.Counter
	RowsCleaned       prometheus.Counter
	RowsDropped       *prometheus.CounterVec // labels: reason={implausible_opt_temp,missing_core,missing_identity}
	ValuesRepaired    *prometheus.CounterVec // labels: rule={placeholder,bracket,killing_temp,latitude,growth_cycle}
	DocumentsRendered prometheus.Counter
	PipelineRunning   prometheus.Gauge

	RunDuration prometheus.Histogram

	// Suitability flow metrics.
	SuitabilityRequests *prometheus.CounterVec   // labels: outcome={success,not_found,error}
	WeatherAPIDuration  *prometheus.HistogramVec // labels: endpoint={forecast,geocoding}
	GeocodeCache        *prometheus.CounterVec   // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecocrop_etl",
			Name:      "rows_read_total",
			Help:      "Total raw rows read from the dataset source.",
		}),
		RowsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecocrop_etl",
			Name:      "rows_cleaned_total",
			Help:      "Total rows surviving cleaning and validation.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecocrop_etl",
			Name:      "rows_dropped_total",
			Help:      "Rows excluded during cleaning, by rule.",
		}, []string{"reason"}),
		ValuesRepaired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecocrop_etl",
			Name:      "values_repaired_total",
			Help:      "Cell values normalized or imputed during cleaning, by rule.",
		}, []string{"rule"}),
		DocumentsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecocrop_etl",
			Name:      "documents_rendered_total",
			Help:      "Total retrieval document chunks rendered.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ecocrop_etl",
			Name:      "pipeline_running",
			Help:      "1 when a pipeline run is active, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ecocrop_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		SuitabilityRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecocrop_etl",
			Name:      "suitability_requests_total",
			Help:      "Suitability score requests by outcome.",
		}, []string{"outcome"}),
		WeatherAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ecocrop_etl",
			Name:      "weather_api_duration_seconds",
			Help:      "Open-Meteo API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecocrop_etl",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.RowsRead,
		m.RowsCleaned,
		m.RowsDropped,
		m.ValuesRepaired,
		m.DocumentsRendered,
		m.PipelineRunning,
		m.RunDuration,
		m.SuitabilityRequests,
		m.WeatherAPIDuration,
		m.GeocodeCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsRead:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecocrop_etl", Name: "rows_read_total"}),
		RowsCleaned:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecocrop_etl", Name: "rows_cleaned_total"}),
		RowsDropped:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ecocrop_etl", Name: "rows_dropped_total"}, []string{"reason"}),
		ValuesRepaired:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ecocrop_etl", Name: "values_repaired_total"}, []string{"rule"}),
		DocumentsRendered:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ecocrop_etl", Name: "documents_rendered_total"}),
		PipelineRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ecocrop_etl", Name: "pipeline_running"}),
		RunDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ecocrop_etl", Name: "run_duration_seconds"}),
		SuitabilityRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ecocrop_etl", Name: "suitability_requests_total"}, []string{"outcome"}),
		WeatherAPIDuration:  prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "ecocrop_etl", Name: "weather_api_duration_seconds"}, []string{"endpoint"}),
		GeocodeCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ecocrop_etl", Name: "geocode_cache_total"}, []string{"result"}),
	}
}
