package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Completion outcomes used as the "outcome" label.
const (
	OutcomeOK        = "ok"
	OutcomeTransport = "transport"
	OutcomeProtocol  = "protocol"
	OutcomeUpstream  = "upstream"
)

var (
	// CompletionRequests counts completion API round-trips by outcome.
	CompletionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_requests_total",
			Help: "Total number of chat-completion API calls by outcome.",
		},
		[]string{"outcome"},
	)

	// CompletionLatency records completion round-trip time in seconds.
	// Buckets stretch to a minute since large models can be slow to answer.
	CompletionLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "completion_request_duration_seconds",
			Help:    "Duration of chat-completion API calls in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
	)

	// ChatSessionsActive gauges sessions currently held in memory.
	ChatSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Number of chat sessions held in memory.",
		},
	)

	// OrdersSubmitted counts ledger appends by result ("ok" or "error").
	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_submitted_total",
			Help: "Total number of order submissions by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(CompletionRequests, CompletionLatency, ChatSessionsActive, OrdersSubmitted)
}
