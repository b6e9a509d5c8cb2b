package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "barbershop"

var (
	once sync.Once

	squareRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "square_requests_total",
			Help:      "Count of Square API calls by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	squareLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "square_request_duration_seconds",
			Help:      "Latency of Square API calls, retries included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	summaryCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_total",
			Help:      "Daily summary cache lookups by result.",
		},
		[]string{"result"},
	)

	unavailableWindows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_unavailable_windows_total",
			Help:      "Report windows returned as unavailable because their fetch failed.",
		},
		[]string{"report"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_job_runs_total",
			Help:      "Scheduled job executions by job and outcome.",
		},
		[]string{"job", "outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(squareRequests, squareLatency, summaryCache, unavailableWindows, jobRuns)
	})
}

func ObserveSquareRequest(endpoint, outcome string, elapsed time.Duration) {
	squareRequests.WithLabelValues(endpoint, outcome).Inc()
	squareLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func IncCacheResult(result string) {
	summaryCache.WithLabelValues(result).Inc()
}

func IncUnavailableWindow(report string) {
	unavailableWindows.WithLabelValues(report).Inc()
}

func IncJobRun(job, outcome string) {
	jobRuns.WithLabelValues(job, outcome).Inc()
}
