package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	MediaDeleteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_media_delete_failures_total",
			Help: "Total number of best-effort media deletions that failed",
		},
	)

	MarketDaysRolled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_market_days_rolled_total",
			Help: "Total number of markets whose stored dates were moved forward",
		},
	)
)
