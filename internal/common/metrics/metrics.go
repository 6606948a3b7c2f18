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
)

var (
	RecommendationGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_generations_total",
			Help: "Recommendation generation runs by result",
		},
		[]string{"result"},
	)

	RecommendationGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_generation_duration_seconds",
			Help:    "Time spent scoring a full catalog for one user",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendationCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_lookups_total",
			Help: "Recommendation cache lookups by result (hit, miss, stale, error)",
		},
		[]string{"result"},
	)

	RecommendationsPerRun = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_list_size",
			Help:    "Number of colleges scored per generation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)
