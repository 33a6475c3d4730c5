// Package metrics provides Prometheus metrics for the podium results service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the podium service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  atomic.Int64 // time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ledger Metrics - placements recorded and removed
	resultsRecorded *prometheus.CounterVec
	resultsDeleted  *prometheus.CounterVec
	ledgerSize      prometheus.Gauge
	catalogGames    prometheus.Gauge

	// Snapshot Metrics - persistence gateway timings
	snapshotSaveLatency prometheus.Histogram
	snapshotSaveErrors  prometheus.Counter
	snapshotLoads       *prometheus.CounterVec
	snapshotLastUnix    prometheus.Gauge

	// Session Metrics
	logins             *prometheus.CounterVec
	tokenVerifyFailure prometheus.Counter

	// Mutation Queue Metrics
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueRejected   prometheus.Counter
	mutationLatency prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "ledger",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	m.refreshInterval.Store(int64(defaultRefreshInterval))

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.resultsRecorded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("results_recorded_total"),
		Help:        "Total number of placements recorded, split by whether an existing placement was replaced",
		ConstLabels: labels,
	}, []string{"replaced"})

	m.resultsDeleted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("results_deleted_total"),
		Help:        "Total number of delete requests, split by whether a placement was removed",
		ConstLabels: labels,
	}, []string{"removed"})

	m.ledgerSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("results"),
		Help:        "Current number of placements held in the ledger",
		ConstLabels: labels,
	})

	m.catalogGames = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("catalog_games"),
		Help:        "Number of games in the loaded catalog",
		ConstLabels: labels,
	})

	m.snapshotSaveLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("snapshot_save_latency_milliseconds"),
		Help:        "Snapshot save latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.snapshotSaveErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("snapshot_save_errors_total"),
		Help:        "Total number of failed snapshot saves",
		ConstLabels: labels,
	})

	m.snapshotLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("snapshot_loads_total"),
		Help:        "Snapshot loads by outcome (loaded or defaulted)",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("snapshot_last_unix"),
		Help:        "Unix timestamp of the last successful snapshot save",
		ConstLabels: labels,
	})

	m.logins = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("logins_total"),
		Help:        "Login attempts by outcome",
		ConstLabels: labels,
	}, []string{"outcome"})

	m.tokenVerifyFailure = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("token_verify_failures_total"),
		Help:        "Bearer tokens rejected by the session authority",
		ConstLabels: labels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("mutation_queue_size"),
		Help:        "Current number of pending ledger mutations",
		ConstLabels: labels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("mutation_queue_capacity"),
		Help:        "Maximum number of pending ledger mutations",
		ConstLabels: labels,
	})

	m.queueRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("mutation_queue_rejected_total"),
		Help:        "Mutations rejected because the queue was full or closed",
		ConstLabels: labels,
	})

	m.mutationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("mutation_latency_milliseconds"),
		Help:        "Time from dequeue to committed mutation, including the snapshot save",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_component_total"),
			Help:        "Total number of errors by component",
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Ledger Metrics Functions.

// RecordResultRecorded counts a committed upsert.
func RecordResultRecorded(replaced bool) {
	if !globalManager.enabled {
		return
	}
	globalManager.resultsRecorded.WithLabelValues(boolLabel(replaced)).Inc()
}

// RecordResultDeleted counts a committed delete.
func RecordResultDeleted(removed bool) {
	if !globalManager.enabled {
		return
	}
	globalManager.resultsDeleted.WithLabelValues(boolLabel(removed)).Inc()
}

// UpdateLedgerSize sets the current number of placements.
func UpdateLedgerSize(count int) {
	globalManager.ledgerSize.Set(float64(count))
}

// UpdateCatalogGames sets the number of catalog games.
func UpdateCatalogGames(count int) {
	globalManager.catalogGames.Set(float64(count))
}

// Snapshot Metrics Functions.

// RecordSnapshotSave records a successful snapshot save and its latency.
func RecordSnapshotSave(latencyMs float64) {
	globalManager.snapshotSaveLatency.Observe(latencyMs)
	globalManager.snapshotLastUnix.Set(float64(time.Now().Unix()))
}

// RecordSnapshotSaveError increments the failed snapshot save counter.
func RecordSnapshotSaveError() {
	globalManager.snapshotSaveErrors.Inc()
}

// RecordSnapshotLoad records how the startup state was obtained.
func RecordSnapshotLoad(outcome string) {
	globalManager.snapshotLoads.WithLabelValues(outcome).Inc()
}

// Session Metrics Functions.

// RecordLogin records a login attempt by outcome ("success" or "rejected").
func RecordLogin(outcome string) {
	globalManager.logins.WithLabelValues(outcome).Inc()
}

// RecordTokenVerifyFailure increments the rejected token counter.
func RecordTokenVerifyFailure() {
	globalManager.tokenVerifyFailure.Inc()
}

// Mutation Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejected increments the rejected mutation counter.
func RecordQueueRejected() {
	globalManager.queueRejected.Inc()
}

// RecordMutationLatency records how long a mutation took to commit.
func RecordMutationLatency(latencyMs float64) {
	globalManager.mutationLatency.Observe(latencyMs)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// RefreshInterval returns how often sampled gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration {
	return time.Duration(m.refreshInterval.Load())
}

// RefreshInterval returns the global manager's refresh interval.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

// SetRefreshInterval changes the global manager's refresh interval.
// Non-positive values are ignored.
func SetRefreshInterval(d time.Duration) {
	if d > 0 {
		globalManager.refreshInterval.Store(int64(d))
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
