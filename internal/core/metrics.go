package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RunMetrics records sync run outcomes. A nil *RunMetrics records nothing.
type RunMetrics struct {
	runsTotal     *prometheus.CounterVec
	entitiesTotal *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
}

// NewRunMetrics registers the run collectors on reg.
func NewRunMetrics(reg prometheus.Registerer) *RunMetrics {
	factory := promauto.With(reg)
	return &RunMetrics{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadsync",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Total number of sync runs by final state.",
		}, []string{"mode", "state", "dry_run"}),
		entitiesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadsync",
			Subsystem: "sync",
			Name:      "entities_total",
			Help:      "Companies and individuals handled by sync runs.",
		}, []string{"level", "action"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadsync",
			Subsystem: "sync",
			Name:      "run_duration_seconds",
			Help:      "Duration of sync runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"mode"}),
	}
}

func (m *RunMetrics) observe(res *RunResult) {
	if m == nil || res == nil {
		return
	}
	dryRun := "false"
	if res.DryRun {
		dryRun = "true"
	}
	m.runsTotal.WithLabelValues(string(res.Mode), string(res.State), dryRun).Inc()
	m.runDuration.WithLabelValues(string(res.Mode)).Observe(res.Duration.Seconds())

	for level, stats := range map[string]LevelStats{
		"company":    res.Stats.Companies,
		"individual": res.Stats.Individuals,
	} {
		m.entitiesTotal.WithLabelValues(level, "processed").Add(float64(stats.Processed))
		m.entitiesTotal.WithLabelValues(level, "created").Add(float64(stats.Created))
		m.entitiesTotal.WithLabelValues(level, "existing").Add(float64(stats.Existing))
	}
}
