// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the layout engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Layout run outcomes
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeTimeout  = "timeout"
	OutcomeCanceled = "canceled"
	OutcomeError    = "error"
)

// Registry holds all collectors on a private Prometheus registry
type Registry struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	LayoutRunsTotal    *prometheus.CounterVec
	LayoutDuration     *prometheus.HistogramVec
	LayoutIterations   *prometheus.HistogramVec
	LayoutNodes        *prometheus.HistogramVec
	LayoutRunsInFlight prometheus.Gauge
	EventSubscribers   prometheus.Gauge
}

// NewRegistry creates a registry with every metric initialized
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.initHTTPMetrics()
	r.initLayoutMetrics()

	return r
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atelier_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atelier_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "atelier_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)

	r.EventSubscribers = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "atelier_event_subscribers",
			Help: "Connected server-sent event clients",
		},
	)
}

func (r *Registry) initLayoutMetrics() {
	r.LayoutRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "atelier_layout_runs_total",
			Help: "Total number of layout runs by scope and outcome",
		},
		[]string{"scope", "outcome"},
	)

	r.LayoutDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atelier_layout_duration_seconds",
			Help:    "Wall time of a layout run in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"scope"},
	)

	r.LayoutIterations = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atelier_layout_iterations",
			Help:    "Iterations executed before the simulation stopped",
			Buckets: []float64{10, 25, 50, 100, 150, 200, 300, 500},
		},
		[]string{"scope"},
	)

	r.LayoutNodes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atelier_layout_nodes",
			Help:    "Blocks positioned per layout run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"scope"},
	)

	r.LayoutRunsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "atelier_layout_runs_in_flight",
			Help: "Layout runs currently executing",
		},
	)
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordLayout records a finished layout run. Iterations and nodes are only
// observed for runs that produced a result.
func (r *Registry) RecordLayout(scope, outcome string, duration time.Duration, iterations, nodes int) {
	r.LayoutRunsTotal.WithLabelValues(scope, outcome).Inc()
	r.LayoutDuration.WithLabelValues(scope).Observe(duration.Seconds())

	if outcome == OutcomeOK {
		r.LayoutIterations.WithLabelValues(scope).Observe(float64(iterations))
		r.LayoutNodes.WithLabelValues(scope).Observe(float64(nodes))
	}
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
