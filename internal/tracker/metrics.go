package tracker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts tracker requests by operation and outcome.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewMetrics registers the tracker collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadsync",
			Subsystem: "tracker",
			Name:      "requests_total",
			Help:      "Total number of tracker API requests.",
		}, []string{"operation", "kind", "result"}),
		requestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadsync",
			Subsystem: "tracker",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for tracker API requests.",
			Buckets: []float64{
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10, 30,
			},
		}, []string{"operation", "kind"}),
	}
}

func (m *Metrics) observe(op operation, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.requestTotal.WithLabelValues(op.Name, string(op.Kind), result).Inc()
	m.requestLatency.WithLabelValues(op.Name, string(op.Kind)).Observe(elapsed.Seconds())
}
