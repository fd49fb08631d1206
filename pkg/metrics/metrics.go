// Package metrics exposes Prometheus instrumentation for the scoring
// task. The batch container serves these on a side port for the
// duration of the run so the cluster's scraper can pick them up.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TaskMetrics holds the scoring task's Prometheus collectors. A nil
// *TaskMetrics is valid and records nothing, so components can take
// metrics optionally.
type TaskMetrics struct {
	runsTotal      *prometheus.CounterVec
	callbacksTotal *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	sheetsTotal    prometheus.Counter
	packageScore   prometheus.Gauge
}

// New registers the task collectors with reg
func New(reg prometheus.Registerer) *TaskMetrics {
	factory := promauto.With(reg)

	return &TaskMetrics{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scope_scoring_runs_total",
			Help: "Scoring runs by terminal outcome",
		}, []string{"outcome"}),
		callbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scope_scoring_callbacks_total",
			Help: "Terminal callback deliveries by signal and status",
		}, []string{"signal", "status"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scope_scoring_stage_duration_seconds",
			Help:    "Duration of each work unit stage",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"stage"}),
		sheetsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "scope_scoring_sheets_processed_total",
			Help: "Drawing sheets read from input spreadsheets",
		}),
		packageScore: factory.NewGauge(prometheus.GaugeOpts{
			Name: "scope_scoring_package_score",
			Help: "Package score of the most recent scoring run",
		}),
	}
}

// RecordRun counts a run with the given terminal outcome
func (m *TaskMetrics) RecordRun(outcome string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
}

// RecordCallback counts one callback delivery attempt
func (m *TaskMetrics) RecordCallback(signal string, delivered bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !delivered {
		status = "error"
	}
	m.callbacksTotal.WithLabelValues(signal, status).Inc()
}

// ObserveStage records the duration of one work unit stage
func (m *TaskMetrics) ObserveStage(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// AddSheets counts processed sheets
func (m *TaskMetrics) AddSheets(n int) {
	if m == nil {
		return
	}
	m.sheetsTotal.Add(float64(n))
}

// SetPackageScore publishes the run's package score
func (m *TaskMetrics) SetPackageScore(score int) {
	if m == nil {
		return
	}
	m.packageScore.Set(float64(score))
}
