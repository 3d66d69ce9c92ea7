package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JoinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tableq_joins_total",
			Help: "Total number of queue joins",
		},
		[]string{"restaurant"},
	)

	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tableq_status_transitions_total",
			Help: "Total number of queue entry status transitions",
		},
		[]string{"to"},
	)

	WaitingDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tableq_waiting_depth",
			Help: "Current number of Waiting entries per restaurant",
		},
		[]string{"restaurant"},
	)

	RecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tableq_recompute_seconds",
			Help:    "Duration of position recomputation passes",
			Buckets: prometheus.DefBuckets,
		},
	)

	NotifyFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tableq_notify_failures_total",
			Help: "Total notification intents that failed to publish",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tableq_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
