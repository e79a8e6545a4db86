// Package metrics exposes Prometheus metrics for planning runs and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	planRuns            *prometheus.CounterVec
	planRunDuration     *prometheus.HistogramVec
	planEdges           prometheus.Histogram
}

// New creates a fresh registry with HTTP and planning metrics registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridplan",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests processed by the planning API",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gridplan",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served by the planning API",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	planRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridplan",
		Name:      "plan_runs_total",
		Help:      "Total number of planning runs by strategy and outcome",
	}, []string{"strategy", "outcome"})

	planRunDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gridplan",
		Name:      "plan_run_duration_seconds",
		Help:      "Duration of planning runs from validation to filtered output",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"strategy"})

	planEdges := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gridplan",
		Name:      "plan_edges",
		Help:      "Number of edges in the final network of each run",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		planRuns,
		planRunDuration,
		planEdges,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		planRuns:            planRuns,
		planRunDuration:     planRunDuration,
		planEdges:           planEdges,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// ObservePlanRun records a finished run. outcome is "ok" or an error class.
func (m *Metrics) ObservePlanRun(strategy, outcome string, duration time.Duration, edges int) {
	if m == nil {
		return
	}
	m.planRuns.WithLabelValues(strategy, outcome).Inc()
	m.planRunDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if outcome == "ok" {
		m.planEdges.Observe(float64(edges))
	}
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
