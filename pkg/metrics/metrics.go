package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors of the query gateway
type Metrics struct {
	// QueriesTotal counts Loki queries. Labels: direction, status
	// (ok or an error kind).
	QueriesTotal *prometheus.CounterVec

	// QueryDuration is the Loki round trip in seconds. Labels: direction
	QueryDuration *prometheus.HistogramVec

	// RecordsReturned is the number of records per page
	RecordsReturned prometheus.Histogram

	// CacheLookups counts outcome cache lookups. Labels: level (memory,
	// redis), result (hit, miss)
	CacheLookups *prometheus.CounterVec

	// PushesTotal counts push deliveries. Labels: status
	PushesTotal *prometheus.CounterVec

	// HTTPRequests counts gateway requests. Labels: method, route, status
	HTTPRequests *prometheus.CounterVec

	registry *prometheus.Registry
}

// New registers every collector on reg
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lokiquery",
			Name:      "queries_total",
			Help:      "Loki query_range calls by direction and outcome.",
		}, []string{"direction", "status"}),
		QueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lokiquery",
			Name:      "query_duration_seconds",
			Help:      "Loki query_range latency.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"direction"}),
		RecordsReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lokiquery",
			Name:      "records_returned",
			Help:      "Records per returned page.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lokiquery",
			Name:      "cache_lookups_total",
			Help:      "Query outcome cache lookups.",
		}, []string{"level", "result"}),
		PushesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lokiquery",
			Name:      "pushes_total",
			Help:      "Log push deliveries to Loki.",
		}, []string{"status"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lokiquery",
			Name:      "http_requests_total",
			Help:      "Gateway HTTP requests.",
		}, []string{"method", "route", "status"}),
	}
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Default returns the process wide metrics, registered on their own registry
// together with the Go and process collectors.
func Default() *Metrics {
	once.Do(func() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		defaultMetrics = New(reg)
	})
	return defaultMetrics
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveQuery records one executed query
func (m *Metrics) ObserveQuery(direction, status string, elapsed time.Duration, records int) {
	m.QueriesTotal.WithLabelValues(direction, status).Inc()
	m.QueryDuration.WithLabelValues(direction).Observe(elapsed.Seconds())
	m.RecordsReturned.Observe(float64(records))
}

// ObserveCache records one cache lookup
func (m *Metrics) ObserveCache(level string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(level, result).Inc()
}

// ObserveHTTP records one gateway request
func (m *Metrics) ObserveHTTP(method, route string, status int) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
