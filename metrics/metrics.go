package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Resolutions counts the routing decisions taken for incoming requests
	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pages_fallback_resolutions_total",
			Help: "The number of request paths resolved, partitioned by result",
		},
		[]string{"result"},
	)

	// ServedFileSize is the size of the static files served
	ServedFileSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pages_fallback_served_file_size_bytes",
		Help:    "The size in bytes of the static files that have been served",
		Buckets: prometheus.ExponentialBuckets(1.0, 10.0, 9),
	})

	// FallbackRequests counts the requests delegated to the fallback handler
	FallbackRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pages_fallback_fallback_requests_total",
			Help: "The number of requests handed to the fallback handler, partitioned by handler type and status code",
		},
		[]string{"type", "status"},
	)

	// FallbackUpstreamLatency records the round trip to the fallback upstream
	FallbackUpstreamLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "pages_fallback_upstream_latency_seconds",
		Help: "Round trip duration of requests proxied to the fallback upstream",
	})

	// LimitListenerMaxConns is the maximum number of connections allowed
	LimitListenerMaxConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pages_fallback_limit_listener_max_conns",
		Help: "The maximum amount of concurrent connections allowed to the listeners",
	})

	// LimitListenerConcurrentConns is the number of connections currently open
	LimitListenerConcurrentConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pages_fallback_limit_listener_concurrent_conns",
		Help: "The number of concurrent connections accepted by the listeners",
	})

	// LimitListenerWaitingConns is the number of connections waiting for a free slot
	LimitListenerWaitingConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pages_fallback_limit_listener_waiting_conns",
		Help: "The number of connections waiting to be accepted by the listeners",
	})

	// ResolveCachedEntries is the number of entries in the resolution cache
	ResolveCachedEntries = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pages_fallback_resolve_cache_cached_entries",
		Help: "The number of entries in the resolution cache",
	}, []string{"op"})

	// ResolveCacheRequests is the number of lookups against the resolution cache
	ResolveCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pages_fallback_resolve_cache_requests",
		Help: "The number of resolution cache lookups, partitioned by cache hit, miss or error",
	}, []string{"op", "cache"})
)

var (
	// RateLimitSourceIPBlockedCount is the number of requests rejected by the
	// source IP rate limiter
	RateLimitSourceIPBlockedCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pages_fallback_rate_limit_source_ip_blocked_total",
		Help: "The number of requests rejected because their source IP exceeded the rate limit",
	})

	// RateLimitSourceIPCachedEntries is the number of source IPs tracked by the rate limiter
	RateLimitSourceIPCachedEntries = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pages_fallback_rate_limit_source_ip_cached_entries",
		Help: "The number of source IPs tracked by the rate limiter",
	}, []string{"op"})

	// RateLimitSourceIPCacheRequests is the number of lookups against the rate limiter cache
	RateLimitSourceIPCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pages_fallback_rate_limit_source_ip_cache_requests",
		Help: "The number of rate limiter cache lookups, partitioned by cache hit or miss",
	}, []string{"op", "cache"})
)

// MustRegister collectors with the Prometheus client
func MustRegister() {
	prometheus.MustRegister(
		Resolutions,
		ServedFileSize,
		FallbackRequests,
		FallbackUpstreamLatency,
		LimitListenerMaxConns,
		LimitListenerConcurrentConns,
		LimitListenerWaitingConns,
		ResolveCachedEntries,
		RateLimitSourceIPBlockedCount,
		RateLimitSourceIPCachedEntries,
		RateLimitSourceIPCacheRequests,
		ResolveCacheRequests,
	)
}
