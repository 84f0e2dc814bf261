// Package metrics provides the Prometheus instrumentation for xstream. A
// Metrics value implements store.MetricsHook and also carries the HTTP
// request collectors used by the server middleware.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "xstream"

// Metrics groups every collector exported by the process.
type Metrics struct {
	registry *prometheus.Registry

	// EntriesAppended counts successful xadd calls.
	EntriesAppended prometheus.Counter
	// AppendDuration observes xadd latency in seconds.
	AppendDuration prometheus.Histogram
	// Queries counts range/read queries by op (xrange, xread).
	Queries *prometheus.CounterVec
	// QueryDuration observes query latency by op.
	QueryDuration *prometheus.HistogramVec
	// EntriesReturned counts entries returned by queries, by op.
	EntriesReturned *prometheus.CounterVec
	// Rejected counts requests refused as invalid input, by op.
	Rejected *prometheus.CounterVec
	// Streams is the number of streams currently held.
	Streams prometheus.Gauge

	// HTTPRequests counts served requests by route pattern, method and status.
	HTTPRequests *prometheus.CounterVec
	// HTTPDuration observes request latency by route pattern and method.
	HTTPDuration *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	latency := []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5}

	return &Metrics{
		registry: reg,
		EntriesAppended: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_appended_total",
			Help:      "Total number of entries appended across all streams.",
		}),
		AppendDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "append_duration_seconds",
			Help:      "Latency of xadd in the store.",
			Buckets:   latency,
		}),
		Queries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of queries served, labelled by op.",
		}, []string{"op"}),
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Latency of queries in the store, labelled by op.",
			Buckets:   latency,
		}, []string{"op"}),
		EntriesReturned: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_returned_total",
			Help:      "Total number of entries returned by queries, labelled by op.",
		}, []string{"op"}),
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_total",
			Help:      "Total number of requests rejected as invalid input, labelled by op.",
		}, []string{"op"}),
		Streams: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "streams",
			Help:      "Number of streams currently held in memory.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests, labelled by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, labelled by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveAppend(stream string, elapsed time.Duration) {
	m.EntriesAppended.Inc()
	m.AppendDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveQuery(op string, elapsed time.Duration, entries int) {
	m.Queries.WithLabelValues(op).Inc()
	m.QueryDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	m.EntriesReturned.WithLabelValues(op).Add(float64(entries))
}

func (m *Metrics) ObserveRejected(op string) {
	m.Rejected.WithLabelValues(op).Inc()
}

func (m *Metrics) SetStreams(n int) {
	m.Streams.Set(float64(n))
}

// ObserveHTTP records one served request. route should be the router
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
