package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(inboxActionsTotal, inboxRefreshTotal, inboxSize) }

var inboxActionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inbox_actions_total",
		Help: "User-initiated inbox transitions by action and result (ok/rolled_back/rejected).",
	},
	[]string{"action", "result"},
)

var inboxRefreshTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inbox_refresh_total",
		Help: "Inbox list refreshes by result (ok/error).",
	},
	[]string{"result"},
)

var inboxSize = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "inbox_size",
		Help: "Proposals currently held in the local inbox copy.",
	},
)

func IncInboxAction(action, result string) {
	inboxActionsTotal.WithLabelValues(norm(action), norm(result)).Inc()
}

func IncInboxRefresh(result string) {
	inboxRefreshTotal.WithLabelValues(norm(result)).Inc()
}

func SetInboxSize(n int) {
	inboxSize.Set(float64(n))
}
