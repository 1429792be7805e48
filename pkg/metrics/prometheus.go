// Package metrics provides Prometheus metrics for the hireflow service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for transitions and remote calls.
const (
	OutcomeCommitted         = "committed"
	OutcomeNoop              = "noop"
	OutcomeInvalid           = "invalid_transition"
	OutcomeMissingIdentifier = "missing_identifier"
	OutcomeRemoteFailure     = "remote_failure"
	OutcomeSuccess           = "success"
	OutcomeFailure           = "failure"
)

// Manager manages all Prometheus metrics for the hireflow service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Pipeline metrics
	transitions *prometheus.CounterVec

	// HR service metrics
	remoteCalls        *prometheus.CounterVec
	remoteCallDuration *prometheus.HistogramVec

	// Scoring metrics
	scoreComputations *prometheus.CounterVec
	scoreDrift        prometheus.Counter
	partialData       *prometheus.CounterVec

	// Session metrics
	sessionCandidates prometheus.Gauge
	inflightActions   prometheus.Gauge
	streamClients     prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

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
		namespace:        "hireflow",
		subsystem:        "pipeline",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.transitions = m.counterVec("transitions_total",
		"Stage transition requests by event and outcome", "event", "outcome")

	m.remoteCalls = m.counterVec("remote_calls_total",
		"Calls to the HR service by operation and outcome", "operation", "outcome")

	m.remoteCallDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "remote_call_duration_milliseconds",
		Help:        "HR service call latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.scoreComputations = m.counterVec("score_computations_total",
		"Application score computations by performance tier", "tier")

	m.scoreDrift = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "score_drift_total",
		Help:        "Applications whose derived score diverged from the backend score",
		ConstLabels: m.constLabels,
	})

	m.partialData = m.counterVec("partial_data_total",
		"Fan-out reads that completed with a source unavailable", "source")

	m.sessionCandidates = m.gauge("session_candidates", "Candidates held in the session store")
	m.inflightActions = m.gauge("inflight_actions", "Dispatcher actions currently awaiting the HR service")
	m.streamClients = m.gauge("stream_clients", "Connected transition stream clients")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"HTTP errors by endpoint, method and error type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// RecordTransition counts a transition request outcome.
func RecordTransition(event, outcome string) {
	globalManager.transitions.WithLabelValues(event, outcome).Inc()
}

// RecordRemoteCall counts an HR service call and observes its latency.
func RecordRemoteCall(operation, outcome string, latencyMs float64) {
	globalManager.remoteCalls.WithLabelValues(operation, outcome).Inc()
	globalManager.remoteCallDuration.WithLabelValues(operation).Observe(latencyMs)
}

// RecordScoreComputation counts a score computation for tier ("unavailable"
// when the backend score was missing).
func RecordScoreComputation(tier string) {
	globalManager.scoreComputations.WithLabelValues(tier).Inc()
}

// RecordScoreDrift counts a derived/backend score divergence.
func RecordScoreDrift() {
	globalManager.scoreDrift.Inc()
}

// RecordPartialData counts a fan-out read that lost source.
func RecordPartialData(source string) {
	globalManager.partialData.WithLabelValues(source).Inc()
}

// UpdateSessionCandidates sets the number of candidates in the session store.
func UpdateSessionCandidates(count int) {
	globalManager.sessionCandidates.Set(float64(count))
}

// UpdateInflightActions sets the number of in-flight dispatcher actions.
func UpdateInflightActions(count int) {
	globalManager.inflightActions.Set(float64(count))
}

// UpdateStreamClients sets the number of connected stream clients.
func UpdateStreamClients(count int) {
	globalManager.streamClients.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

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

// Register adds collectors to the custom registry served on /healthz.
func Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := customRegistry.Register(c); err != nil {
			return fmt.Errorf("%w: %w", ErrRegisterFailed, err)
		}
	}
	return nil
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
