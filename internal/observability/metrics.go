package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	errors            *prometheus.CounterVec
	transitions       *prometheus.CounterVec
	partialFailures   *prometheus.CounterVec
	webhookDeliveries *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Error responses by route and error code",
		}, []string{"route", "method", "code"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_transitions_total",
			Help: "Verification request transitions by type and outcome status",
		}, []string{"type", "status"}),
		partialFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_partial_failures_total",
			Help: "Multi-store writes where at least one store failed",
		}, []string{"operation"}),
		webhookDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "provider_webhook_deliveries_total",
			Help: "Provider notifications by event and result",
		}, []string{"event", "result"}),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest counts a served request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordTransition counts a request reaching status.
func (m *Metrics) RecordTransition(verificationType, status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(verificationType, status).Inc()
}

// RecordPartialFailure counts a multi-store operation that only partly applied.
func (m *Metrics) RecordPartialFailure(operation string) {
	if m == nil {
		return
	}
	m.partialFailures.WithLabelValues(operation).Inc()
}

// RecordWebhook counts a provider notification.
func (m *Metrics) RecordWebhook(event, result string) {
	if m == nil {
		return
	}
	m.webhookDeliveries.WithLabelValues(event, result).Inc()
}
