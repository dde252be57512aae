package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	StepsAdvanced      prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	FeeComputations    *prometheus.CounterVec
	FeeResultsDropped  prometheus.Counter
	AutosaveRuns       *prometheus.CounterVec
	AutosaveDuration   prometheus.Histogram
	Submissions        *prometheus.CounterVec
	DraftsRestored     prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		StepsAdvanced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "permitdesk_steps_advanced_total",
			Help: "Total number of successful forward step transitions",
		}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "permitdesk_validation_failures_total",
			Help: "Total number of step validations that failed, labeled by step",
		}, []string{"step"}),
		FeeComputations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "permitdesk_fee_computations_total",
			Help: "Total number of fee computations, labeled by result",
		}, []string{"result"}),
		FeeResultsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "permitdesk_fee_results_dropped_total",
			Help: "Total number of fee computation results discarded as superseded",
		}),
		AutosaveRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "permitdesk_autosave_runs_total",
			Help: "Total number of autosave runs, labeled by status",
		}, []string{"status"}),
		AutosaveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "permitdesk_autosave_duration_seconds",
			Help:    "Duration of autosave runs in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "permitdesk_submissions_total",
			Help: "Total number of submission attempts, labeled by status",
		}, []string{"status"}),
		DraftsRestored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "permitdesk_drafts_restored_total",
			Help: "Total number of drafts restored on startup",
		}),
	}
}
