// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderec_api_requests_total",
			Help: "Total number of backend API requests by operation and status",
		},
		[]string{"operation", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "tenderec_api_request_duration_seconds",
			Help: "Duration of backend API requests in seconds",
		},
		[]string{"operation"},
	)

	QueryCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderec_query_cache_hits_total",
			Help: "Total number of fresh query cache hits",
		},
		[]string{"query"},
	)

	QueryCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderec_query_cache_misses_total",
			Help: "Total number of query cache misses or stale entries",
		},
		[]string{"query"},
	)

	QueryRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderec_query_retries_total",
			Help: "Total number of query retries after a transient failure",
		},
		[]string{"query"},
	)

	ProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenderec_proxy_requests_total",
			Help: "Total number of requests forwarded to the backend",
		},
		[]string{"method", "status"},
	)
)
