package driver

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/linkurious/gremlin-go/metric"
	"github.com/linkurious/gremlin-go/protocol"
)

// clientMetrics holds Prometheus metrics for one client instance
type clientMetrics struct {
	commandsSubmitted prometheus.Counter
	commandsQueued    prometheus.Counter
	pendingCommands   prometheus.Gauge
	framesReceived    *prometheus.CounterVec
	framesDiscarded   prometheus.Counter
	transportErrors   prometheus.Counter
	connectionStatus  prometheus.Gauge
}

// newClientMetrics creates and registers client metrics.
// Returns nil if no registry provided (nil input = nil feature pattern).
func newClientMetrics(registry *metric.MetricsRegistry) *clientMetrics {
	if registry == nil {
		return nil
	}

	metrics := &clientMetrics{
		commandsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "client",
			Name:      "commands_submitted_total",
			Help:      "Total commands submitted for execution",
		}),

		commandsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "client",
			Name:      "commands_queued_total",
			Help:      "Commands queued while disconnected",
		}),

		pendingCommands: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metric.Namespace,
			Subsystem: "client",
			Name:      "pending_commands",
			Help:      "Commands awaiting a terminal response",
		}),

		framesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "client",
			Name:      "frames_received_total",
			Help:      "Response frames received by status class",
		}, []string{"class"}),

		framesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "client",
			Name:      "frames_discarded_total",
			Help:      "Frames dropped: malformed or unknown correlation token",
		}),

		transportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "client",
			Name:      "transport_errors_total",
			Help:      "Socket-level errors reported by the transport",
		}),

		connectionStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metric.Namespace,
			Subsystem: "client",
			Name:      "connection_status",
			Help:      "Connection status (1 = connected, 0 = not connected)",
		}),
	}

	registry.MustRegister(
		metrics.commandsSubmitted,
		metrics.commandsQueued,
		metrics.pendingCommands,
		metrics.framesReceived,
		metrics.framesDiscarded,
		metrics.transportErrors,
		metrics.connectionStatus,
	)

	return metrics
}

// statusClass maps a response status code to a metric label
func statusClass(code int) string {
	switch code {
	case protocol.StatusSuccess:
		return "success"
	case protocol.StatusNoContent:
		return "no_content"
	case protocol.StatusPartialContent:
		return "partial"
	default:
		return "error"
	}
}
