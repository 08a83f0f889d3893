// Package metrics provides Prometheus metrics for the skin analysis service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the analysis service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Pipeline metrics - the core business signals.
	analysesTotal       *prometheus.CounterVec
	detectionsTotal     *prometheus.CounterVec
	detectionConfidence prometheus.Histogram
	stageLatency        *prometheus.HistogramVec
	conditionsDetected  *prometheus.CounterVec
	healthScore         prometheus.Histogram
	recommendations     *prometheus.CounterVec
	similarityDegraded  prometheus.Counter

	// Pool metrics - bounded analysis pool health.
	poolWorkers     prometheus.Gauge
	poolQueueDepth  prometheus.Gauge
	poolRejections  prometheus.Counter
	poolJobDuration prometheus.Histogram

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics.
	errorsByComponent *prometheus.CounterVec

	// System metrics.
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "skinsight",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.analysesTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "analyses_total",
			Help:      "Total number of full analyses by outcome",
		},
		[]string{"outcome"},
	)

	m.detectionsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "face_detections_total",
			Help:      "Total number of face detection calls by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	m.detectionConfidence = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "detection_confidence",
		Help:      "Histogram of face detection confidence scores",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})

	m.stageLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_latency_milliseconds",
			Help:      "Per-stage pipeline latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"stage"},
	)

	m.conditionsDetected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "conditions_detected_total",
			Help:      "Total number of detected skin conditions by name and severity",
		},
		[]string{"condition", "severity"},
	)

	m.healthScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "health_score",
		Help:      "Histogram of composite health scores",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})

	m.recommendations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "recommendations_total",
			Help:      "Total number of recommended products by category",
		},
		[]string{"category"},
	)

	m.similarityDegraded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "similarity_degraded_total",
		Help:      "Total number of analyses completed without similarity grounding",
	})

	m.poolWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_workers",
		Help:      "Number of analysis pool workers",
	})

	m.poolQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_queue_depth",
		Help:      "Current number of queued analysis jobs",
	})

	m.poolRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_rejections_total",
		Help:      "Total number of jobs rejected due to backpressure",
	})

	m.poolJobDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_job_duration_milliseconds",
		Help:      "End-to-end analysis job duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and kind",
		},
		[]string{"component", "kind"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// GetRegistry returns the custom Prometheus registry used for exposition.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers operating on the global manager.

// RecordAnalysis records a completed analysis with its outcome label.
func RecordAnalysis(outcome string) {
	globalManager.analysesTotal.WithLabelValues(outcome).Inc()
}

// RecordDetection records a face detection call.
func RecordDetection(mode, outcome string) {
	globalManager.detectionsTotal.WithLabelValues(mode, outcome).Inc()
}

// RecordDetectionConfidence records a detection confidence sample.
func RecordDetectionConfidence(confidence float64) {
	globalManager.detectionConfidence.Observe(confidence)
}

// RecordStageLatency records the latency of one pipeline stage.
func RecordStageLatency(stage string, ms float64) {
	globalManager.stageLatency.WithLabelValues(stage).Observe(ms)
}

// RecordConditionDetected records one detected condition.
func RecordConditionDetected(condition, severity string) {
	globalManager.conditionsDetected.WithLabelValues(condition, severity).Inc()
}

// RecordHealthScore records a composite health score sample.
func RecordHealthScore(score float64) {
	globalManager.healthScore.Observe(score)
}

// RecordRecommendation records one recommended product.
func RecordRecommendation(category string) {
	globalManager.recommendations.WithLabelValues(category).Inc()
}

// RecordSimilarityDegraded records an analysis that ran without grounding.
func RecordSimilarityDegraded() {
	globalManager.similarityDegraded.Inc()
}

// UpdatePoolWorkers sets the pool worker gauge.
func UpdatePoolWorkers(n int) {
	globalManager.poolWorkers.Set(float64(n))
}

// UpdatePoolQueueDepth sets the pool queue depth gauge.
func UpdatePoolQueueDepth(n int) {
	globalManager.poolQueueDepth.Set(float64(n))
}

// RecordPoolRejection records one backpressure rejection.
func RecordPoolRejection() {
	globalManager.poolRejections.Inc()
}

// RecordPoolJobDuration records the duration of one analysis job.
func RecordPoolJobDuration(ms float64) {
	globalManager.poolJobDuration.Observe(ms)
}

// RecordHTTPRequest records one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// RecordErrorByComponent records an error for a component.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// UpdateSystemMemoryUsage sets the allocated-memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}
