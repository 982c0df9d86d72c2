// Package ratelimiter limits the request rate of every client with a token
// bucket per source IP.
package ratelimiter

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"gitlab.com/gitlab-org/pages-fallback/internal/httperrors"
	"gitlab.com/gitlab-org/pages-fallback/internal/logging"
	"gitlab.com/gitlab-org/pages-fallback/internal/lru"
	"gitlab.com/gitlab-org/pages-fallback/internal/request"
	"gitlab.com/gitlab-org/pages-fallback/metrics"
)

const (
	sourceIPCacheOp = "source_ip"

	// buckets of clients idle for longer are dropped and start full again
	defaultSourceIPItems              = 5000
	defaultSourceIPExpirationInterval = time.Minute
)

// Option configures a RateLimiter
type Option func(*RateLimiter)

// RateLimiter keeps a rate.Limiter per source IP in an LRU cache
type RateLimiter struct {
	now            func() time.Time
	limitPerSecond float64
	burst          int
	blockedCount   prometheus.Counter
	cache          *lru.Cache
}

// New creates a RateLimiter refilling limitPerSecond tokens per second up to
// burst for every source IP
func New(limitPerSecond float64, burst int, opts ...Option) *RateLimiter {
	rl := &RateLimiter{
		now:            time.Now,
		limitPerSecond: limitPerSecond,
		burst:          burst,
		blockedCount:   metrics.RateLimitSourceIPBlockedCount,
	}

	for _, opt := range opts {
		opt(rl)
	}

	if rl.cache == nil {
		rl.cache = lru.New(
			sourceIPCacheOp,
			defaultSourceIPItems,
			defaultSourceIPExpirationInterval,
			metrics.RateLimitSourceIPCachedEntries,
			metrics.RateLimitSourceIPCacheRequests,
		)
	}

	return rl
}

// WithNow replaces the clock of the buckets
func WithNow(now func() time.Time) Option {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// WithCache keeps the buckets in c
func WithCache(c *lru.Cache) Option {
	return func(rl *RateLimiter) {
		rl.cache = c
	}
}

// WithBlockedCount counts rejected requests in counter
func WithBlockedCount(counter prometheus.Counter) Option {
	return func(rl *RateLimiter) {
		rl.blockedCount = counter
	}
}

// SourceIPAllowed takes a token from the bucket of sourceIP
func (rl *RateLimiter) SourceIPAllowed(sourceIP string) bool {
	limiter := rl.cache.FindOrFetch(sourceIP, func() interface{} {
		return rate.NewLimiter(rate.Limit(rl.limitPerSecond), rl.burst)
	}).(*rate.Limiter)

	return limiter.AllowN(rl.now(), 1)
}

// Middleware answers requests of a client that ran out of tokens with 429
func (rl *RateLimiter) Middleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sourceIP := request.GetRemoteAddrWithoutPort(r)

		if !rl.SourceIPAllowed(sourceIP) {
			logging.LogRequest(r).WithFields(logrus.Fields{
				"source_ip":                     sourceIP,
				"rate_limiter_limit_per_second": rl.limitPerSecond,
				"rate_limiter_burst_size":       rl.burst,
			}).Debug("source IP hit rate limit")

			rl.blockedCount.Inc()
			httperrors.Serve429(w)
			return
		}

		handler.ServeHTTP(w, r)
	})
}

// Stop the background worker of the bucket cache
func (rl *RateLimiter) Stop() {
	rl.cache.Stop()
}
