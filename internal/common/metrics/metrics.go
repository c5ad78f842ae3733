// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// SourceFetches counts fetch attempts per signal source, labelled by outcome
	// ("ok", "degraded").
	SourceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendmine_source_fetches_total",
			Help: "Signal source fetches by outcome",
		},
		[]string{"source", "outcome"},
	)

	SignalsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendmine_signals_collected_total",
			Help: "Trend signals collected per platform",
		},
		[]string{"platform"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trendmine_pipeline_duration_seconds",
			Help:    "Duration of the aggregation and generation pipelines",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pipeline"},
	)

	IdeasGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trendmine_ideas_generated_total",
			Help: "Business ideas returned by the generator",
		},
	)

	GenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendmine_generation_failures_total",
			Help: "Idea generation failures by error code",
		},
		[]string{"error_code"},
	)
)
