package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobPollsTotal, jobPollAttempts) }

var jobPollsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "job_polls_total",
		Help: "Single-job polls finished, labeled by outcome (completed/failed/timeout/cancelled).",
	},
	[]string{"outcome"},
)

var jobPollAttempts = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "job_poll_attempts",
		Help:    "Status-endpoint calls made before a poll finished.",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 120},
	},
)

func IncJobPoll(outcome string, attempts int) {
	jobPollsTotal.WithLabelValues(norm(outcome)).Inc()
	jobPollAttempts.Observe(float64(attempts))
}
