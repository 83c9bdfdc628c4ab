package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the service. Each instance
// carries its own registry so handlers and tests stay isolated.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec

	commentFetchesTotal *prometheus.CounterVec
	cacheRefreshesTotal *prometheus.CounterVec
	cacheAgeSeconds     prometheus.Gauge
}

// NewMetrics initializes and registers all collectors.
func NewMetrics(serviceName string) *Metrics {
	name := strings.ReplaceAll(serviceName, "-", "_")

	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name + "_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	m.httpErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name + "_http_errors_total",
			Help: "Total number of failed HTTP requests by error code",
		},
		[]string{"method", "path", "code"},
	)
	m.commentFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name + "_comment_fetches_total",
			Help: "Comment history fetches issued by the response-time sampler",
		},
		[]string{"outcome"},
	)
	m.cacheRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name + "_cache_refreshes_total",
			Help: "Background response-time cache refreshes",
		},
		[]string{"outcome"},
	)
	m.cacheAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: name + "_cache_age_seconds",
			Help: "Age of the response-time cache entry at last read",
		},
	)

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpErrorsTotal,
		m.commentFetchesTotal,
		m.cacheRefreshesTotal,
		m.cacheAgeSeconds,
	)
	return m
}

// Handler exposes the registry for a /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest observes a completed HTTP request.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError counts a request that ended in a mapped domain error.
func (m *Metrics) RecordError(method, path, code string) {
	if m == nil {
		return
	}
	m.httpErrorsTotal.WithLabelValues(method, path, code).Inc()
}

// RecordCommentFetch counts one sampler comment fetch.
func (m *Metrics) RecordCommentFetch(ok bool) {
	if m == nil {
		return
	}
	m.commentFetchesTotal.WithLabelValues(outcome(ok)).Inc()
}

// RecordCacheRefresh counts one background cache refresh.
func (m *Metrics) RecordCacheRefresh(ok bool) {
	if m == nil {
		return
	}
	m.cacheRefreshesTotal.WithLabelValues(outcome(ok)).Inc()
}

// SetCacheAge records the cache entry age observed at read time.
func (m *Metrics) SetCacheAge(age time.Duration) {
	if m == nil {
		return
	}
	m.cacheAgeSeconds.Set(age.Seconds())
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
