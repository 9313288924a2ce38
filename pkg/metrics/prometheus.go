// Package metrics provides Prometheus metrics for the lojista screen client and
// its stub backend.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace = "lojista"
	defaultSubsystem = "screen"
)

// Outcome labels shared by the client-side recorders.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
	OutcomeDenied  = "denied"
)

// Manager owns every collector registered by this module.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Client side
	fetchRequests     *prometheus.CounterVec
	fetchLatency      *prometheus.HistogramVec
	locationAcquired  *prometheus.CounterVec
	staleDiscarded    *prometheus.CounterVec
	ratingSubmissions *prometheus.CounterVec
	screenOpens       prometheus.Counter
	pendingCommands   prometheus.Gauge
	mailboxDepth      prometheus.Gauge

	// Stub backend
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	duplicateRatings    prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Without WithPrometheusRegistry the
// collectors land on prometheus.DefaultRegisterer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.fetchRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_requests_total",
		Help:        "Remote fetches issued by the screen, by endpoint and outcome",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "outcome"})

	m.fetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_latency_milliseconds",
		Help:        "Latency of remote fetches in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint"})

	m.locationAcquired = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "location_acquisitions_total",
		Help:        "Coordinate fix attempts by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.staleDiscarded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stale_responses_discarded_total",
		Help:        "Completions dropped because the screen moved to a newer merchant",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.ratingSubmissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rating_submissions_total",
		Help:        "Rating submissions by submitter and outcome",
		ConstLabels: m.constLabels,
	}, []string{"submitter", "outcome"})

	m.screenOpens = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "opens_total",
		Help:        "Number of times the screen was opened for a merchant",
		ConstLabels: m.constLabels,
	})

	m.pendingCommands = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pending_commands",
		Help:        "Commands handed to the runner and not yet completed",
		ConstLabels: m.constLabels,
	})

	m.mailboxDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "mailbox_depth",
		Help:        "Messages waiting to be applied by the event loop",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "stub",
		Name:        "http_requests_total",
		Help:        "Requests served by the stub backend by endpoint, method and status",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "stub",
		Name:        "http_request_duration_milliseconds",
		Help:        "Stub backend request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.duplicateRatings = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "stub",
		Name:        "duplicate_ratings_total",
		Help:        "Rating submissions replayed with an already seen idempotency key",
		ConstLabels: m.constLabels,
	})
}

// RecordFetch records one remote fetch.
func (m *Manager) RecordFetch(endpoint, outcome string, took time.Duration) {
	m.fetchRequests.WithLabelValues(endpoint, outcome).Inc()
	m.fetchLatency.WithLabelValues(endpoint).Observe(float64(took.Milliseconds()))
}

// RecordLocation records one coordinate fix attempt.
func (m *Manager) RecordLocation(outcome string) {
	m.locationAcquired.WithLabelValues(outcome).Inc()
}

// RecordStaleDiscard records a completion dropped by generation check.
func (m *Manager) RecordStaleDiscard(kind string) {
	m.staleDiscarded.WithLabelValues(kind).Inc()
}

// RecordRatingSubmission records one submission attempt.
func (m *Manager) RecordRatingSubmission(submitter, outcome string) {
	m.ratingSubmissions.WithLabelValues(submitter, outcome).Inc()
}

// RecordScreenOpen counts a screen open.
func (m *Manager) RecordScreenOpen() { m.screenOpens.Inc() }

// AddPendingCommands moves the pending command gauge by delta.
func (m *Manager) AddPendingCommands(delta int) { m.pendingCommands.Add(float64(delta)) }

// UpdateMailboxDepth sets the mailbox depth gauge.
func (m *Manager) UpdateMailboxDepth(n int) { m.mailboxDepth.Set(float64(n)) }

// RecordHTTPRequest records a stub backend request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordDuplicateRating counts a replayed rating submission.
func (m *Manager) RecordDuplicateRating() { m.duplicateRatings.Inc() }

// Package-level recorders backed by the global manager.

func RecordFetch(endpoint, outcome string, took time.Duration) {
	globalManager.RecordFetch(endpoint, outcome, took)
}
func RecordLocation(outcome string)      { globalManager.RecordLocation(outcome) }
func RecordStaleDiscard(kind string)     { globalManager.RecordStaleDiscard(kind) }
func RecordScreenOpen()                  { globalManager.RecordScreenOpen() }
func AddPendingCommands(delta int)       { globalManager.AddPendingCommands(delta) }
func UpdateMailboxDepth(n int)           { globalManager.UpdateMailboxDepth(n) }
func RecordDuplicateRating()             { globalManager.RecordDuplicateRating() }
func RecordRatingSubmission(submitter, outcome string) {
	globalManager.RecordRatingSubmission(submitter, outcome)
}
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
