// Package metrics provides Prometheus metrics for the nonesafe HTTP server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the server.
type Collector struct {
	// Fill metrics
	FillsTotal   *prometheus.CounterVec
	FillDuration *prometheus.HistogramVec
	FillBytes    *prometheus.CounterVec

	// Schema metrics
	SchemaReloads      prometheus.Counter
	SchemaReloadErrors prometheus.Counter
	SchemaTypes        prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates a collector registered on a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry creates a collector registered on reg and served from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		FillsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nonesafe",
				Name:      "fills_total",
				Help:      "Total number of fill requests",
			},
			[]string{"type", "mode", "status"},
		),
		FillDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "nonesafe",
				Name:      "fill_duration_seconds",
				Help:      "Fill request duration in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"type"},
		),
		FillBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nonesafe",
				Name:      "fill_response_bytes_total",
				Help:      "Total bytes written by fill responses",
			},
			[]string{"type"},
		),

		SchemaReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "nonesafe",
				Name:      "schema_reloads_total",
				Help:      "Total number of successful schema reloads",
			},
		),
		SchemaReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "nonesafe",
				Name:      "schema_reload_errors_total",
				Help:      "Total number of failed schema reloads",
			},
		),
		SchemaTypes: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "nonesafe",
				Name:      "schema_types",
				Help:      "Number of record types currently declared",
			},
		),
		gatherer: g,
	}
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Status buckets an HTTP status code into 2xx, 4xx or 5xx.
func Status(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
