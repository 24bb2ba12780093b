package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registry *prometheus.Registry

	// Forecast provider call count by outcome. Watch for: error vs success ratio.
	ForecastAPICallsTotal *prometheus.CounterVec

	// Forecast provider latency per call. Watch for: calls approaching the 15s client timeout.
	ForecastAPIDuration *prometheus.HistogramVec

	// Forecast provider failures by ErrorCategory (timeout, invalid_api_key, parsing, ...).
	ForecastAPIErrorsTotal *prometheus.CounterVec

	// Cache controller decisions by reason: fresh (reused), missing, age, location, forced.
	CacheDecisionsTotal *prometheus.CounterVec

	// Cache file load/save latency.
	CacheOperationDurationSeconds *prometheus.HistogramVec

	// Geocoder lookups by result: found, not_found, error.
	GeocodeLookupsTotal *prometheus.CounterVec

	// Interactive API key prompts, including rejected entries.
	CredentialPromptsTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	ForecastAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastApiCallsTotal",
			Help: "Total number of forecast provider calls",
		},
		[]string{"status"},
	)
	ForecastAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecastApiDurationSeconds",
			Help:    "Forecast provider latency in seconds (per call)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"status"},
	)
	ForecastAPIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastApiErrorsTotal",
			Help: "Forecast provider failures by error category",
		},
		[]string{"category"},
	)
	CacheDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastCacheDecisionsTotal",
			Help: "Cache freshness decisions by reason (fresh means the cached document was reused)",
		},
		[]string{"reason"},
	)
	CacheOperationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecastCacheOperationDurationSeconds",
			Help:    "Cache file operation latency in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
		[]string{"operation", "result"},
	)
	GeocodeLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocodeLookupsTotal",
			Help: "Geocoder lookups by result",
		},
		[]string{"result"},
	)
	CredentialPromptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "credentialPromptsTotal",
			Help: "Total number of interactive API key prompts",
		},
	)

	registry.MustRegister(
		ForecastAPICallsTotal, ForecastAPIDuration, ForecastAPIErrorsTotal,
		CacheDecisionsTotal, CacheOperationDurationSeconds,
		GeocodeLookupsTotal,
		CredentialPromptsTotal,
	)
}

// Gatherer exposes the private registry, e.g. for tests or a textfile export.
func Gatherer() prometheus.Gatherer {
	return registry
}

// WriteTextfile writes all metrics to path in the text exposition format, for
// pickup by the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, registry)
}
