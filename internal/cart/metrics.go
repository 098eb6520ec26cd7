package cart

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelOp     = "op"
	labelStatus = "status"
	labelReason = "reason"

	opAdd    = "add"
	opRemove = "remove"
	opUpdate = "update"
)

type Metrics struct {
	Operations *prometheus.CounterVec
	Latency    *prometheus.HistogramVec
}

// NewMetrics registers the cart collectors on reg. One Metrics value is
// meant to be shared by every Store in the process.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cart_operations_total",
				Help: "Cart operations by outcome",
			},
			[]string{labelOp, labelStatus, labelReason},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "cart_operation_duration_seconds",
				Help: "Cart operation latency, including inventory lookups",
			},
			[]string{labelOp},
		),
	}

	reg.MustRegister(m.Operations, m.Latency)
	return m
}

func (m *Metrics) observe(op string, res Result, start time.Time) {
	if m == nil {
		return
	}
	m.Latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.Operations.WithLabelValues(op, string(res.Status), string(res.Reason)).Inc()
}
