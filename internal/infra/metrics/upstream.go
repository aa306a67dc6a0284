package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(upstreamRequestsTotal, upstreamLatencyMs) }

var upstreamRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Requests to the platform API by method and status code (0 = transport failure).",
	},
	[]string{"method", "code"},
)

var upstreamLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "upstream_latency_ms",
		Help:    "Platform API round-trip latency in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
	},
	[]string{"method"},
)

func ObserveUpstream(method string, code int, d time.Duration) {
	upstreamRequestsTotal.WithLabelValues(norm(method), strconv.Itoa(code)).Inc()
	upstreamLatencyMs.WithLabelValues(norm(method)).Observe(float64(d.Milliseconds()))
}
