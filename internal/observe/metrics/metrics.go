package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackendRequestsTotal tracks outbound backend attempts by method and outcome.
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refgate_backend_requests_total",
			Help: "Total number of outbound backend attempts",
		},
		[]string{"method", "outcome"},
	)

	// BackendRetriesTotal tracks scheduled retries by classified reason.
	BackendRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refgate_backend_retries_total",
			Help: "Total number of backend retries",
		},
		[]string{"reason"},
	)

	// BackendLatency tracks per-attempt backend latency.
	BackendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "refgate_backend_latency_seconds",
			Help:    "Backend attempt latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// ProxyRequestsTotal tracks inbound proxy requests by route and response status.
	ProxyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refgate_proxy_requests_total",
			Help: "Total number of proxied requests",
		},
		[]string{"route", "status"},
	)

	// RateLimitedTotal counts requests rejected by the proxy rate limiter.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refgate_rate_limited_total",
			Help: "Total number of rate-limited proxy requests",
		},
	)
)
