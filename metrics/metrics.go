// Package metrics exposes Prometheus instruments for questions, pipeline
// stages and the HTTP surface. Instruments register with the default
// registry; /metrics serves them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asksql_questions_total",
			Help: "Total number of questions by outcome.",
		},
		[]string{"outcome"},
	)
	stageFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asksql_stage_failures_total",
			Help: "Total number of failed questions by pipeline stage.",
		},
		[]string{"stage"},
	)
	stageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "asksql_stage_duration_seconds",
			Help:    "Pipeline stage latency.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)
	seedRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asksql_seed_rows_total",
			Help: "Total number of rows loaded by the seeder.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		questionsTotal,
		stageFailuresTotal,
		stageDurationSeconds,
		seedRowsTotal,
		httpRequestsTotal,
		httpRequestDurationSeconds,
	)
}

// ObserveStage records how long one pipeline stage took.
func ObserveStage(stage string, elapsed time.Duration) {
	stageDurationSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveQuestion counts a finished question. failedStage is empty when
// the question was answered.
func ObserveQuestion(failedStage string) {
	if failedStage == "" {
		questionsTotal.WithLabelValues("answered").Inc()
		return
	}
	questionsTotal.WithLabelValues("failed").Inc()
	stageFailuresTotal.WithLabelValues(failedStage).Inc()
}

// AddSeedRows counts rows written by the seeder.
func AddSeedRows(n int64) {
	if n > 0 {
		seedRowsTotal.Add(float64(n))
	}
}
