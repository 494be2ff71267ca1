package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by synthpad.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	httpBuckets    []float64
	registry       prometheus.Registerer

	// Engine
	eventsSubmitted  *prometheus.CounterVec
	eventsDropped    *prometheus.CounterVec
	framesEmitted    *prometheus.CounterVec
	framesSuppressed *prometheus.CounterVec
	reconcileLatency *prometheus.HistogramVec
	windowEvents     *prometheus.HistogramVec
	heldTriggers     *prometheus.GaugeVec
	numericAnomalies *prometheus.CounterVec
	consumerErrors   *prometheus.CounterVec
	engineResets     *prometheus.CounterVec
	windowersRunning prometheus.Gauge

	// Queue
	queueSize        *prometheus.GaugeVec
	queueCapacity    *prometheus.GaugeVec
	queueUtilization *prometheus.GaugeVec

	// Capture
	captureDropped    *prometheus.CounterVec
	activeListeners   prometheus.Gauge
	windowListeners   prometheus.Gauge
	registrationUsers *prometheus.GaugeVec

	// Output
	midiMessages *prometheus.CounterVec

	// Admin HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "synthpad",
		subsystem:      "engine",
		latencyBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		httpBuckets:    prometheus.DefBuckets,
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.eventsSubmitted = m.counterVec("events_submitted_total",
		"Trigger events accepted into the window buffer", "surface")
	m.eventsDropped = m.counterVec("events_dropped_total",
		"Trigger events rejected because the window buffer was full or closed", "surface")
	m.framesEmitted = m.counterVec("frames_emitted_total",
		"Trigger frames delivered to consumers", "surface")
	m.framesSuppressed = m.counterVec("frames_suppressed_total",
		"Frames identical to the previous emission and therefore skipped", "surface")
	m.numericAnomalies = m.counterVec("numeric_anomalies_total",
		"Events carrying NaN or infinite frequency or velocity", "surface")
	m.consumerErrors = m.counterVec("consumer_errors_total",
		"Errors returned by frame consumers", "surface")
	m.engineResets = m.counterVec("resets_total",
		"Engine teardowns and re-layouts", "surface")

	m.reconcileLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_latency_microseconds",
		Help:      "Time spent reconciling one window",
		Buckets:   m.latencyBuckets,
	}, []string{"surface"})

	m.windowEvents = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "window_events",
		Help:      "Number of events reconciled per window",
		Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
	}, []string{"surface"})

	m.heldTriggers = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "held_triggers",
		Help:      "Triggers currently held down",
	}, []string{"surface"})

	m.windowersRunning = m.gauge("windowers_running", "Window loops currently running")

	m.queueSize = m.gaugeVec("queue_size", "Current size of the event buffer", "queue")
	m.queueCapacity = m.gaugeVec("queue_capacity", "Maximum event buffer capacity", "queue")
	m.queueUtilization = m.gaugeVec("queue_utilization_ratio",
		"Event buffer utilization ratio (size / capacity)", "queue")

	m.captureDropped = m.counterVec("capture_dropped_total",
		"Native pointer events dropped by the capture filter", "kind")
	m.activeListeners = m.gauge("capture_listeners", "Pointer listeners currently attached")
	m.windowListeners = m.gauge("capture_window_listeners",
		"Window-level native mouse listeners currently registered")
	m.registrationUsers = m.gaugeVec("capture_registration_users",
		"Listeners sharing one native registration", "registration")

	m.midiMessages = m.counterVec("midi_messages_total",
		"MIDI messages written to the output port", "type")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of admin HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Admin HTTP request duration in milliseconds",
		Buckets:   m.httpBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// Engine metrics.

// RecordEventSubmitted increments the accepted events counter.
func RecordEventSubmitted(surface string) {
	globalManager.eventsSubmitted.WithLabelValues(surface).Inc()
}

// RecordEventDropped increments the rejected events counter.
func RecordEventDropped(surface string) {
	globalManager.eventsDropped.WithLabelValues(surface).Inc()
}

// RecordFrameEmitted increments the emitted frames counter.
func RecordFrameEmitted(surface string) {
	globalManager.framesEmitted.WithLabelValues(surface).Inc()
}

// RecordFrameSuppressed increments the suppressed frames counter.
func RecordFrameSuppressed(surface string) {
	globalManager.framesSuppressed.WithLabelValues(surface).Inc()
}

// RecordReconcileLatency records how long one window took to reconcile.
func RecordReconcileLatency(surface string, latencyUs float64) {
	globalManager.reconcileLatency.WithLabelValues(surface).Observe(latencyUs)
}

// RecordWindowEvents records how many events one window reconciled.
func RecordWindowEvents(surface string, n int) {
	globalManager.windowEvents.WithLabelValues(surface).Observe(float64(n))
}

// UpdateHeldTriggers sets the number of held triggers for a surface.
func UpdateHeldTriggers(surface string, n int) {
	globalManager.heldTriggers.WithLabelValues(surface).Set(float64(n))
}

// RecordNumericAnomaly increments the NaN/Inf counter.
func RecordNumericAnomaly(surface string) {
	globalManager.numericAnomalies.WithLabelValues(surface).Inc()
}

// RecordConsumerError increments the consumer error counter.
func RecordConsumerError(surface string) {
	globalManager.consumerErrors.WithLabelValues(surface).Inc()
}

// RecordReset increments the engine reset counter.
func RecordReset(surface string) {
	globalManager.engineResets.WithLabelValues(surface).Inc()
}

// UpdateWindowersRunning sets the number of running window loops.
func UpdateWindowersRunning(n int) {
	globalManager.windowersRunning.Set(float64(n))
}

// Queue metrics.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(queue string, size int) {
	globalManager.queueSize.WithLabelValues(queue).Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(queue string, capacity int) {
	globalManager.queueCapacity.WithLabelValues(queue).Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(queue string, utilization float64) {
	globalManager.queueUtilization.WithLabelValues(queue).Set(utilization)
}

// Capture metrics.

// RecordCaptureDropped increments the dropped native events counter.
func RecordCaptureDropped(kind string) {
	globalManager.captureDropped.WithLabelValues(kind).Inc()
}

// AddActiveListeners adjusts the attached listener gauge by delta.
func AddActiveListeners(delta int) {
	globalManager.activeListeners.Add(float64(delta))
}

// UpdateWindowListeners sets the number of registered window-level listeners.
func UpdateWindowListeners(n int) {
	globalManager.windowListeners.Set(float64(n))
}

// UpdateRegistrationUsers sets the number of listeners sharing a native
// registration. A count of zero removes the series.
func UpdateRegistrationUsers(registration string, users int) {
	if users <= 0 {
		globalManager.registrationUsers.DeleteLabelValues(registration)
		return
	}
	globalManager.registrationUsers.WithLabelValues(registration).Set(float64(users))
}

// Output metrics.

// RecordMIDIMessage increments the MIDI message counter for a message type.
func RecordMIDIMessage(kind string) {
	globalManager.midiMessages.WithLabelValues(kind).Inc()
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
