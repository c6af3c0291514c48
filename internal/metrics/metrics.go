package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssignmentsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assignments_created_total",
			Help: "Total number of assignments created",
		},
	)

	ResponsesSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "responses_submitted_total",
			Help: "Total number of responses submitted or updated",
		},
	)

	EvaluationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evaluations_total",
			Help: "Total number of assignments evaluated and closed",
		},
	)

	ScoreHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_score",
			Help:    "Distribution of evaluation scores",
			Buckets: prometheus.LinearBuckets(0, 5, 7),
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
