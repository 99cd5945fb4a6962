package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchTransitions counts batch lifecycle operations by name.
	BatchTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shroomtrack",
		Subsystem: "processing",
		Name:      "batch_transitions_total",
		Help:      "Batch lifecycle operations applied, by operation.",
	}, []string{"operation"})

	// WastageKg accumulates the wastage recorded at QC finalization.
	WastageKg = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shroomtrack",
		Subsystem: "processing",
		Name:      "wastage_kg_total",
		Help:      "Kilograms of wastage recorded at finalization.",
	})

	// SyncRows counts rows written by the tabular synchronizer.
	SyncRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shroomtrack",
		Subsystem: "sync",
		Name:      "rows_total",
		Help:      "Rows written to the tabular store, by sheet and mode (update/append).",
	}, []string{"sheet", "mode"})

	// SyncRequests counts legacy sync endpoint calls by action and outcome.
	SyncRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shroomtrack",
		Subsystem: "sync",
		Name:      "requests_total",
		Help:      "Legacy sync requests, by action and outcome.",
	}, []string{"action", "outcome"})

	// JobRuns counts scheduled job executions by job and outcome.
	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shroomtrack",
		Subsystem: "scheduler",
		Name:      "job_runs_total",
		Help:      "Scheduled job executions, by job and outcome.",
	}, []string{"job", "outcome"})

	// HTTPDuration observes API latency by route and status.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shroomtrack",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency, by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
