package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perception_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "perception_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "perception_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Feed metrics
	FeedPageFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perception_feed_page_fetches_total",
			Help: "Total number of feed page requests",
		},
		[]string{"status"}, // status: success|error
	)

	FeedPageLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "perception_feed_page_latency_seconds",
			Help:    "Feed page request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	FeedRecordsFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "perception_feed_records_fetched_total",
			Help: "Total number of feed records fetched across all loads",
		},
	)

	// Leaderboard pipeline metrics
	PipelineBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perception_leaderboard_builds_total",
			Help: "Total number of leaderboard pipeline runs",
		},
		[]string{"status"}, // status: success|error
	)

	PipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "perception_leaderboard_build_duration_seconds",
			Help:    "Leaderboard pipeline duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	RecordsDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perception_records_discarded_total",
			Help: "Feed records dropped during aggregation",
		},
		[]string{"reason"}, // reason: outlet|no_handle
	)

	AccountsRanked = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "perception_accounts_ranked",
			Help: "Accounts in the latest board per side",
		},
		[]string{"side"}, // side: bulls|bears
	)

	SnapshotBuiltAt = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "perception_snapshot_built_timestamp",
			Help: "Unix timestamp of the latest leaderboard snapshot",
		},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	prometheus.MustRegister(FeedPageFetches)
	prometheus.MustRegister(FeedPageLatency)
	prometheus.MustRegister(FeedRecordsFetched)

	prometheus.MustRegister(PipelineBuilds)
	prometheus.MustRegister(PipelineDuration)
	prometheus.MustRegister(RecordsDiscarded)
	prometheus.MustRegister(AccountsRanked)
	prometheus.MustRegister(SnapshotBuiltAt)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordFeedPage records one feed page request
func RecordFeedPage(latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	FeedPageFetches.WithLabelValues(status).Inc()
	FeedPageLatency.Observe(latency.Seconds())
}

// RecordPipelineBuild records one leaderboard pipeline run
func RecordPipelineBuild(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	PipelineBuilds.WithLabelValues(status).Inc()
	if err == nil {
		PipelineDuration.Observe(duration.Seconds())
		SnapshotBuiltAt.SetToCurrentTime()
	}
}
