package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the global metrics container for the matrix engine.
type Metrics struct {
	// HTTP transport metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Matrix query metrics (spec §10.4)
	MatrixQueriesTotal      *prometheus.CounterVec
	MatrixQueryDuration     *prometheus.HistogramVec
	MatrixPairsSettled      prometheus.Counter
	MatrixEdgesExpanded     *prometheus.CounterVec
	MatrixLabelBufferHWM    *prometheus.GaugeVec
	MatrixCacheHitsTotal    prometheus.Counter
	MatrixCacheMissesTotal  prometheus.Counter

	// System metrics
	MemoryUsage *prometheus.GaugeVec
	Goroutines  prometheus.Gauge

	// Service info
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics initializes the metrics container under the given namespace/subsystem.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"route"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		MatrixQueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_queries_total",
				Help:      "Total number of matrix queries by outcome",
			},
			[]string{"status"}, // ok, no_path, cancelled, fatal
		),

		MatrixQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_query_duration_seconds",
				Help:      "Duration of SourceToTarget calls",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"status"},
		),

		MatrixPairsSettled: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_pairs_settled_total",
				Help:      "Total number of source/target pairs settled across all queries",
			},
		),

		MatrixEdgesExpanded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_edges_expanded_total",
				Help:      "Total number of directed edges expanded, by search direction",
			},
			[]string{"direction"}, // forward, backward
		),

		MatrixLabelBufferHWM: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_label_buffer_high_water",
				Help:      "High-water mark of the per-query label buffer",
			},
			[]string{"direction"},
		),

		MatrixCacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_cache_hits_total",
				Help:      "Total number of matrix query cache hits",
			},
		),

		MatrixCacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "matrix_cache_misses_total",
				Help:      "Total number of matrix query cache misses",
			},
		),

		MemoryUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage",
			},
			[]string{"type"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service build information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the global metrics container, initializing it with defaults
// if it has not yet been set up.
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("matrix", "")
	}
	return defaultMetrics
}

// RecordHTTPRequest records an HTTP request's outcome and duration.
func (m *Metrics) RecordHTTPRequest(route string, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordMatrixQuery records a completed SourceToTarget call: its termination
// status (ok, no_path, cancelled, fatal) and wall-clock duration.
func (m *Metrics) RecordMatrixQuery(status string, duration time.Duration) {
	m.MatrixQueriesTotal.WithLabelValues(status).Inc()
	m.MatrixQueryDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordPairsSettled adds to the running total of settled source/target pairs.
func (m *Metrics) RecordPairsSettled(count int) {
	m.MatrixPairsSettled.Add(float64(count))
}

// RecordEdgesExpanded adds to the running total of edges expanded in the
// given search direction ("forward" or "backward").
func (m *Metrics) RecordEdgesExpanded(direction string, count int) {
	m.MatrixEdgesExpanded.WithLabelValues(direction).Add(float64(count))
}

// RecordLabelBufferHighWater sets the label-buffer high-water gauge for a
// search direction.
func (m *Metrics) RecordLabelBufferHighWater(direction string, count int) {
	m.MatrixLabelBufferHWM.WithLabelValues(direction).Set(float64(count))
}

// RecordCacheHit increments the matrix query cache hit counter.
func (m *Metrics) RecordCacheHit() {
	m.MatrixCacheHitsTotal.Inc()
}

// RecordCacheMiss increments the matrix query cache miss counter.
func (m *Metrics) RecordCacheMiss() {
	m.MatrixCacheMissesTotal.Inc()
}

// SetServiceInfo sets the service build-info gauge.
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler returns the HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer starts a dedicated HTTP server exposing /metrics and /health.
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, write error not actionable
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
