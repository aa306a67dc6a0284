package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(draftTokensIn, draftTokensOut, draftCostMicro, draftLatencyMs, draftPrecheckBlocks) }

var draftTokensIn = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "draft_tokens_in",
		Help: "Sum of prompt tokens per model.",
	},
	[]string{"model"},
)

var draftTokensOut = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "draft_tokens_out",
		Help: "Sum of completion tokens per model.",
	},
	[]string{"model"},
)

var draftCostMicro = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "draft_cost_micro",
		Help: "Total micro-credits spent on drafting per model.",
	},
	[]string{"model"},
)

var draftLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "draft_latency_ms",
		Help:    "Drafting call latency distribution in milliseconds.",
		Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000},
	},
	[]string{"model", "success"},
)

var draftPrecheckBlocks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "draft_precheck_blocks",
		Help: "Count of drafts blocked by the credits precheck per model.",
	},
	[]string{"model"},
)

func ObserveDraft(model string, promptTokens, completionTokens int, costMicro int64, latencyMs int, success bool) {
	m := norm(model)
	draftTokensIn.WithLabelValues(m).Add(float64(promptTokens))
	draftTokensOut.WithLabelValues(m).Add(float64(completionTokens))
	if costMicro > 0 {
		draftCostMicro.WithLabelValues(m).Add(float64(costMicro))
	}
	s := "false"
	if success {
		s = "true"
	}
	draftLatencyMs.WithLabelValues(m, s).Observe(float64(latencyMs))
}

func IncDraftPrecheckBlock(model string) {
	draftPrecheckBlocks.WithLabelValues(norm(model)).Inc()
}
