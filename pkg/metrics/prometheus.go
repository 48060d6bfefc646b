// Package metrics provides Prometheus metrics for the etude scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ratioBuckets cover the weighted achieved/max ratio, aligned with the level cut points.
var ratioBuckets = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0} //nolint:gochecknoglobals // constant bucket layout

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    prometheus.Labels
	registry       prometheus.Registerer

	// Scoring
	scoresComputed     *prometheus.CounterVec
	scoresInapplicable *prometheus.CounterVec
	metricsOmitted     *prometheus.CounterVec
	difficultyRatio    prometheus.Histogram
	scoringLatency     prometheus.Histogram

	// Submissions
	submissionsAccepted  prometheus.Counter
	submissionsDuplicate prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Repository
	repositoryRecords        prometheus.Gauge
	repositoryRanked         prometheus.Gauge
	repositoryUpdateLatency  prometheus.Histogram
	repositoryQueryLatency   prometheus.Histogram
	repositorySnapshotTiming prometheus.Histogram
	repositorySnapshots      prometheus.Counter
	repositorySnapshotLast   prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "etude",
		subsystem:      "difficulty",
		latencyBuckets: prometheus.DefBuckets,
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.scoresComputed = m.counterVec("scores_computed_total",
		"Difficulty results computed for applicable records", "instrument", "label")
	m.scoresInapplicable = m.counterVec("scores_inapplicable_total",
		"Records rejected by the solo gate", "reason")
	m.metricsOmitted = m.counterVec("metrics_omitted_total",
		"Weighted metrics omitted for lack of source data", "metric")
	m.difficultyRatio = m.histogram("ratio",
		"Distribution of weighted achieved/max ratios", ratioBuckets)
	m.scoringLatency = m.histogram("scoring_latency_milliseconds",
		"Time spent grading one record in milliseconds", m.latencyBuckets)

	m.submissionsAccepted = m.counter("submissions_accepted_total", "Submissions accepted for asynchronous scoring")
	m.submissionsDuplicate = m.counter("submissions_duplicate_total", "Submissions ignored as duplicates")

	m.queueSize = m.gauge("queue_size", "Current number of queued submissions")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued submissions")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Submissions enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Submissions dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Submissions rejected by the queue")

	m.workerCount = m.gauge("worker_count", "Number of scoring workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time from dequeue to stored result in milliseconds", m.latencyBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Submissions that failed in a worker")

	m.repositoryRecords = m.gauge("repository_records", "Records with a stored result")
	m.repositoryRanked = m.gauge("repository_ranked_records", "Applicable records in the ranking")
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds",
		"Store write latency in milliseconds", m.latencyBuckets)
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds",
		"Store read latency in milliseconds", m.latencyBuckets)
	m.repositorySnapshotTiming = m.histogram("repository_snapshot_rebuild_milliseconds",
		"Ranking snapshot rebuild time in milliseconds", m.latencyBuckets)
	m.repositorySnapshots = m.counter("repository_snapshots_total", "Ranking snapshots published")
	m.repositorySnapshotLast = m.gauge("repository_snapshot_last_unix", "Unix time of the last published snapshot")

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds", m.latencyBuckets)
}

// RecordScore records one applicable result.
func RecordScore(instrument, label string, ratio float64) {
	globalManager.scoresComputed.WithLabelValues(instrument, label).Inc()
	globalManager.difficultyRatio.Observe(ratio)
}

// RecordInapplicable records a record rejected by the solo gate.
func RecordInapplicable(reason string) {
	globalManager.scoresInapplicable.WithLabelValues(reason).Inc()
}

// RecordOmittedMetric records a weighted metric skipped for missing data.
func RecordOmittedMetric(metric string) {
	globalManager.metricsOmitted.WithLabelValues(metric).Inc()
}

// RecordScoringLatency records grading latency.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordSubmissionAccepted increments accepted submissions.
func RecordSubmissionAccepted() {
	globalManager.submissionsAccepted.Inc()
}

// RecordSubmissionDuplicate increments duplicate submissions.
func RecordSubmissionDuplicate() {
	globalManager.submissionsDuplicate.Inc()
}

// UpdateQueueSize sets the queue size and utilization.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments enqueued submissions.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments dequeued submissions.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments rejected enqueues.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records one submission's processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments worker failures.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateRepositoryRecords sets the stored and ranked record counts.
func UpdateRepositoryRecords(total, ranked int) {
	globalManager.repositoryRecords.Set(float64(total))
	globalManager.repositoryRanked.Set(float64(ranked))
}

// RecordRepositoryUpdateLatency records a store write.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records a store read.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordRepositorySnapshot records a published snapshot.
func RecordRepositorySnapshot(durationMs, unix float64) {
	globalManager.repositorySnapshotTiming.Observe(durationMs)
	globalManager.repositorySnapshots.Inc()
	globalManager.repositorySnapshotLast.Set(unix)
}

// RecordHTTPRequest records one request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordError records an error by component and type.
func RecordError(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
