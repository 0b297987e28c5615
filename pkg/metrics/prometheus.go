// Package metrics provides Prometheus metrics for the analytics core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the analytics service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Compute path metrics
	computeLatency *prometheus.HistogramVec
	computeErrors  *prometheus.CounterVec

	// Cache metrics
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	cacheEntries prometheus.Gauge

	// SQL engine metrics
	sqlQueryLatency *prometheus.HistogramVec
	sqlQueryErrors  prometheus.Counter

	// Dataset metrics
	datasetRows     prometheus.Gauge
	datasetLoadTime prometheus.Gauge

	// Input validation
	validationErrors prometheus.Counter
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ironstats",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics. A disabled
// manager registers its instruments on a private registry, so recording
// still works but nothing reaches the exposed endpoint.
func (m *Manager) initializeMetrics() {
	reg := m.registry
	if !m.enabled {
		reg = prometheus.NewRegistry()
	}
	auto := promauto.With(reg)
	labels := prometheus.Labels(m.customLabels)

	m.computeLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.metricPrefix + "compute_latency_milliseconds",
			Help:        "Latency of compute operations in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"operation"},
	)

	m.computeErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.metricPrefix + "compute_errors_total",
			Help:        "Total compute failures by operation",
			ConstLabels: labels,
		},
		[]string{"operation"},
	)

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "cache_hits_total",
		Help:        "Total result cache hits",
		ConstLabels: labels,
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "cache_misses_total",
		Help:        "Total result cache misses",
		ConstLabels: labels,
	})

	m.cacheEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "cache_entries",
		Help:        "Current number of cached results",
		ConstLabels: labels,
	})

	m.sqlQueryLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.metricPrefix + "sql_query_latency_milliseconds",
			Help:        "Latency of embedded SQL queries in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"query"},
	)

	m.sqlQueryErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "sql_query_errors_total",
		Help:        "Total embedded SQL query failures",
		ConstLabels: labels,
	})

	m.datasetRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "dataset_rows",
		Help:        "Rows in the in-memory dataset sample",
		ConstLabels: labels,
	})

	m.datasetLoadTime = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "dataset_load_seconds",
		Help:        "Wall time spent loading the dataset at startup",
		ConstLabels: labels,
	})

	m.validationErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + "validation_errors_total",
		Help:        "Requests rejected before any engine work",
		ConstLabels: labels,
	})
}

// RecordComputeLatency records one compute operation's latency in milliseconds.
func RecordComputeLatency(operation string, latencyMs float64) {
	globalManager.computeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordComputeError increments the error counter for an operation.
func RecordComputeError(operation string) {
	globalManager.computeErrors.WithLabelValues(operation).Inc()
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// UpdateCacheEntries sets the current cached entry count.
func UpdateCacheEntries(count int) {
	globalManager.cacheEntries.Set(float64(count))
}

// RecordSQLQueryLatency records one SQL query's latency in milliseconds.
func RecordSQLQueryLatency(query string, latencyMs float64) {
	globalManager.sqlQueryLatency.WithLabelValues(query).Observe(latencyMs)
}

// RecordSQLQueryError increments the SQL query error counter.
func RecordSQLQueryError() {
	globalManager.sqlQueryErrors.Inc()
}

// UpdateDatasetRows sets the in-memory dataset row count.
func UpdateDatasetRows(count int) {
	globalManager.datasetRows.Set(float64(count))
}

// UpdateDatasetLoadTime sets the dataset load wall time in seconds.
func UpdateDatasetLoadTime(seconds float64) {
	globalManager.datasetLoadTime.Set(seconds)
}

// RecordValidationError increments the input-validation rejection counter.
func RecordValidationError() {
	globalManager.validationErrors.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
