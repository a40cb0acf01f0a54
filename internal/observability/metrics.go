package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several servers can coexist in one
// process, as they do in tests.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	recomputeDuration *prometheus.HistogramVec
	recomputeRows     *prometheus.HistogramVec
	datasetRecords    prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		recomputeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_recompute_duration_seconds",
			Help:    "Time spent in each recomputation rule.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"rule"}),
		recomputeRows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_recompute_rows",
			Help:    "Number of rows or points produced by each recomputation rule.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"rule"}),
		datasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_dataset_records",
			Help: "Visit records held in memory.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.recomputeDuration,
		m.recomputeRows,
		m.datasetRecords,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) ObserveRecompute(rule string, duration time.Duration, rows int) {
	if m == nil {
		return
	}
	m.recomputeDuration.WithLabelValues(rule).Observe(duration.Seconds())
	m.recomputeRows.WithLabelValues(rule).Observe(float64(rows))
}

func (m *Metrics) SetDatasetRecords(n int) {
	if m == nil {
		return
	}
	m.datasetRecords.Set(float64(n))
}
