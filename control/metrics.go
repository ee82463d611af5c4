// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for the socket server. A nil *Metrics is valid and
// records nothing, so the server can run without a registry.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hioload_tcp"

// Metrics holds the server collectors.
type Metrics struct {
	accepted  prometheus.Counter
	rejected  prometheus.Counter
	removed   prometheus.Counter
	active    prometheus.Gauge
	bytesRead prometheus.Counter
	frames    *prometheus.CounterVec
	polls     *prometheus.CounterVec
	errors    *prometheus.CounterVec
}

// NewMetrics registers the server collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		accepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Client connections accepted into the registry",
		}),
		rejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_rejected_total",
			Help:      "Client connections closed immediately because the client limit was reached",
		}),
		removed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_removed_total",
			Help:      "Client connections removed from the registry",
		}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Client connections currently in the registry",
		}),
		bytesRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read_total",
			Help:      "Bytes read from client sockets",
		}),
		frames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_decoded_total",
			Help:      "Application messages decoded from client streams",
		}, []string{"framing"}),
		polls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Readiness polls by target and outcome",
		}, []string{"target", "status"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed socket and framing operations",
		}, []string{"op"}),
	}
}

func (m *Metrics) ConnAccepted() {
	if m != nil {
		m.accepted.Inc()
	}
}

func (m *Metrics) ConnRejected() {
	if m != nil {
		m.rejected.Inc()
	}
}

func (m *Metrics) ConnRemoved() {
	if m != nil {
		m.removed.Inc()
	}
}

func (m *Metrics) SetActive(n int) {
	if m != nil {
		m.active.Set(float64(n))
	}
}

func (m *Metrics) BytesRead(n int) {
	if m != nil && n > 0 {
		m.bytesRead.Add(float64(n))
	}
}

func (m *Metrics) FramesDecoded(framing string, n int) {
	if m != nil && n > 0 {
		m.frames.WithLabelValues(framing).Add(float64(n))
	}
}

func (m *Metrics) Poll(target, status string) {
	if m != nil {
		m.polls.WithLabelValues(target, status).Inc()
	}
}

func (m *Metrics) Error(op string) {
	if m != nil {
		m.errors.WithLabelValues(op).Inc()
	}
}
