// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat requests by outcome",
		},
		[]string{"outcome"},
	)

	ChatActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_actions_total",
			Help: "Resolved actions by tool and the stage that produced them",
		},
		[]string{"tool", "source"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of language model calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"status"},
	)

	PatternCacheRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pattern_cache_rebuilds_total",
			Help: "Number of product pattern derivations from the catalog",
		},
		[]string{"backend"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
)
