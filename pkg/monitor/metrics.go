package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a Prometheus-backed implementation of graph.Timer, plus a
// handful of gauges/counters covering the other hot paths of a running
// core: node durations, session activity, LLM calls and tool calls.
// Grounded on haasonsaas-nexus's internal/observability.Metrics.
type Metrics struct {
	// NodeDuration measures per-node wall-clock time in the executor.
	// Labels: node
	NodeDuration *prometheus.HistogramVec

	// LLMRequestDuration measures decision-node LLM call latency.
	// Labels: provider, model
	LLMRequestDuration *prometheus.HistogramVec

	// LLMRequestCounter counts decision-node LLM calls.
	// Labels: provider, model, status (success|error)
	LLMRequestCounter *prometheus.CounterVec

	// ToolExecutionCounter counts tool node invocations.
	// Labels: tool, status (success|error)
	ToolExecutionCounter *prometheus.CounterVec

	// ActiveSessions is a gauge of sessions currently holding an armed
	// or active timer in pkg/session.
	ActiveSessions prometheus.Gauge

	// RemindersSent counts inactivity reminders actually pushed.
	RemindersSent prometheus.Counter
}

// NewMetrics creates and registers every metric against the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		NodeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "core_node_duration_seconds",
				Help:    "Wall-clock duration of a single node handler invocation.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"node"},
		),
		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "core_llm_request_duration_seconds",
				Help:    "Latency of an LLM call made by the decision node.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider", "model"},
		),
		LLMRequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "core_llm_requests_total",
				Help: "Total LLM calls made by the decision node.",
			},
			[]string{"provider", "model", "status"},
		),
		ToolExecutionCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "core_tool_executions_total",
				Help: "Total tool node invocations.",
			},
			[]string{"tool", "status"},
		),
		ActiveSessions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "core_active_sessions",
				Help: "Sessions currently holding an armed or active inactivity timer.",
			},
		),
		RemindersSent: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "core_inactivity_reminders_total",
				Help: "Total inactivity reminders pushed to a session.",
			},
		),
	}
}

// ObserveNodeDuration implements graph.Timer.
func (m *Metrics) ObserveNodeDuration(node string, d time.Duration) {
	m.NodeDuration.WithLabelValues(node).Observe(d.Seconds())
}

// RecordLLMRequest records one decision-node LLM call.
func (m *Metrics) RecordLLMRequest(provider, model, status string, durationSeconds float64) {
	m.LLMRequestCounter.WithLabelValues(provider, model, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider, model).Observe(durationSeconds)
}

// RecordToolExecution records one tool node invocation.
func (m *Metrics) RecordToolExecution(tool, status string) {
	m.ToolExecutionCounter.WithLabelValues(tool, status).Inc()
}

// SetActiveSessions sets the current count of sessions with a live timer.
func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

// RecordReminderSent increments the inactivity reminder counter.
func (m *Metrics) RecordReminderSent() {
	m.RemindersSent.Inc()
}
