package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors the service reports into. Each
// instance carries its own registry so repeated construction in tests never
// trips duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	accessDeniedTotal   *prometheus.CounterVec
	statsCacheTotal     *prometheus.CounterVec
}

// NewMetrics initializes the collectors under the given namespace.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests served, by route pattern and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency, by route pattern.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		httpErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_errors_total",
				Help:      "Requests answered with an error envelope, by error code.",
			},
			[]string{"method", "path", "code"},
		),
		accessDeniedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "access_denied_total",
				Help:      "Requests rejected by the access policy, by operation.",
			},
			[]string{"operation"},
		),
		statsCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stats_cache_requests_total",
				Help:      "Statistics overview cache lookups, by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// RecordRequest tracks one served HTTP request. path should be the routed
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError tracks a request answered with a domain error code.
func (m *Metrics) RecordError(method, path, code string) {
	if m == nil {
		return
	}
	m.httpErrorsTotal.WithLabelValues(method, path, code).Inc()
}

// RecordAccessDenied tracks a policy denial for the named operation.
func (m *Metrics) RecordAccessDenied(operation string) {
	if m == nil {
		return
	}
	m.accessDeniedTotal.WithLabelValues(operation).Inc()
}

// RecordStatsCache tracks an overview cache lookup outcome (hit, miss or
// bypass).
func (m *Metrics) RecordStatsCache(outcome string) {
	if m == nil {
		return
	}
	m.statsCacheTotal.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry for the operational listener.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
