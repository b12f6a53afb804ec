package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of summarization pipeline invocations (count)",
		},
		[]string{"status"},
	)

	PipelineRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_run_duration_ms",
			Help:    "End-to-end pipeline duration in milliseconds",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		},
		[]string{"criteria"},
	)

	MessagesFetchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailbox_messages_fetched_total",
			Help: "Total number of mailbox messages fetched (count)",
		},
		[]string{"status"},
	)

	MessagesSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_messages_skipped_total",
			Help: "Messages dropped from a batch before grouping (count)",
		},
		[]string{"reason"},
	)

	SummariesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summaries_total",
			Help: "Summary records produced per completion outcome (count)",
		},
		[]string{"status"},
	)

	SummarizeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summarize_group_duration_ms",
			Help:    "Completion-service call duration per group in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
	)

	TokenRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_refresh_total",
			Help: "Access-token refresh attempts (count)",
		},
		[]string{"status"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"operation"},
	)

	SchedulerRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_runs_total",
			Help: "Scheduled digest executions (count)",
		},
		[]string{"status"},
	)

	SchedulerDueGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_due_schedules",
			Help: "Schedules found due in the last sweep (count)",
		},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures recorded by circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by the per-client rate limiter (count)",
		},
		[]string{"client"},
	)
)

func RegisterPipelineMetrics() {
	prometheus.MustRegister(
		PipelineRunsTotal,
		PipelineRunDuration,
		MessagesFetchedTotal,
		MessagesSkippedTotal,
		SummariesTotal,
		SummarizeDuration,
		TokenRefreshTotal,
		RetryAttemptsTotal,
	)
}

func RegisterSchedulerMetrics() {
	prometheus.MustRegister(
		SchedulerRunsTotal,
		SchedulerDueGauge,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}

func RegisterRateLimitMetrics() {
	prometheus.MustRegister(RateLimitRejectionsTotal)
}

func ObservePipelineDuration(d time.Duration, criteria string) {
	PipelineRunDuration.WithLabelValues(criteria).Observe(float64(d.Milliseconds()))
}

func ObserveSummarizeDuration(d time.Duration) {
	SummarizeDuration.Observe(float64(d.Milliseconds()))
}
