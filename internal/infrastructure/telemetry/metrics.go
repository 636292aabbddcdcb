package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric namespace shared by every storefront series.
const MetricsNamespace = "storefront"

// Checkout outcomes
const (
	CheckoutOutcomeSuccess  = "success"
	CheckoutOutcomeFailed   = "failed"
	CheckoutOutcomeRejected = "rejected"
)

// Metrics holds the storefront's Prometheus collectors on a private registry.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	backendRequestsTotal  *prometheus.CounterVec
	backendRequestSeconds *prometheus.HistogramVec
	checkoutsTotal        *prometheus.CounterVec
	postActionFailures    *prometheus.CounterVec
	cacheLookups          *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total number of inbound HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	m.backendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "backend_requests_total",
			Help:      "Total number of requests made to the retail backend.",
		},
		[]string{"client", "method", "status"},
	)
	m.backendRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Duration of retail backend requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"client"},
	)
	m.checkoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome.",
		},
		[]string{"outcome"},
	)
	m.postActionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "post_action_failures_total",
			Help:      "Failed best-effort follow-up actions.",
		},
		[]string{"action"},
	)
	m.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "cache_lookups_total",
			Help:      "Collection cache lookups by result.",
		},
		[]string{"result"},
	)

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.backendRequestsTotal,
		m.backendRequestSeconds,
		m.checkoutsTotal,
		m.postActionFailures,
		m.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveBackendRequest records one call to the retail backend. A status of 0
// means the request never produced a response.
func (m *Metrics) ObserveBackendRequest(client, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.backendRequestsTotal.WithLabelValues(client, method, label).Inc()
	m.backendRequestSeconds.WithLabelValues(client).Observe(elapsed.Seconds())
}

// ObserveCheckout counts a checkout attempt by outcome.
func (m *Metrics) ObserveCheckout(outcome string) {
	if m == nil {
		return
	}
	m.checkoutsTotal.WithLabelValues(outcome).Inc()
}

// ObservePostActionFailure counts a failed best-effort action.
func (m *Metrics) ObservePostActionFailure(action string) {
	if m == nil {
		return
	}
	m.postActionFailures.WithLabelValues(action).Inc()
}

// ObserveCacheLookup counts a cache lookup as a hit or a miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// GinMiddleware records inbound request counts and latency per route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
