package ratelimiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"gitlab.com/gitlab-org/pages-fallback/internal/lru"
	"gitlab.com/gitlab-org/pages-fallback/internal/testhelpers"
)

var now = time.Date(2021, time.October, 1, 12, 0, 0, 0, time.UTC)

func newTestRateLimiter(t *testing.T, limit float64, burst int) (*RateLimiter, prometheus.Counter, *func() time.Time) {
	t.Helper()

	cache := lru.New(
		sourceIPCacheOp,
		100,
		time.Hour,
		prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "entries"}, []string{"op"}),
		prometheus.NewCounterVec(prometheus.CounterOpts{Name: "requests"}, []string{"op", "cache"}),
	)
	blocked := prometheus.NewCounter(prometheus.CounterOpts{Name: "blocked"})

	clock := func() time.Time { return now }
	rl := New(limit, burst,
		WithCache(cache),
		WithBlockedCount(blocked),
		WithNow(func() time.Time { return clock() }),
	)
	t.Cleanup(rl.Stop)

	return rl, blocked, &clock
}

func TestSourceIPAllowed(t *testing.T) {
	tests := map[string]struct {
		limit           float64
		burst           int
		requests        int
		expectedAllowed int
	}{
		"below the burst": {
			limit:           1,
			burst:           5,
			requests:        3,
			expectedAllowed: 3,
		},
		"up to the burst": {
			limit:           1,
			burst:           5,
			requests:        8,
			expectedAllowed: 5,
		},
		"burst of one": {
			limit:           100,
			burst:           1,
			requests:        4,
			expectedAllowed: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rl, _, _ := newTestRateLimiter(t, tt.limit, tt.burst)

			allowed := 0
			for i := 0; i < tt.requests; i++ {
				if rl.SourceIPAllowed("172.16.123.1") {
					allowed++
				}
			}

			require.Equal(t, tt.expectedAllowed, allowed)
		})
	}
}

func TestSourceIPAllowedRefills(t *testing.T) {
	rl, _, clock := newTestRateLimiter(t, 2, 1)

	require.True(t, rl.SourceIPAllowed("172.16.123.1"))
	require.False(t, rl.SourceIPAllowed("172.16.123.1"))

	// every IP has a bucket of its own
	require.True(t, rl.SourceIPAllowed("172.16.123.2"))

	*clock = func() time.Time { return now.Add(500 * time.Millisecond) }
	require.True(t, rl.SourceIPAllowed("172.16.123.1"))
	require.False(t, rl.SourceIPAllowed("172.16.123.1"))
}

func TestMiddleware(t *testing.T) {
	hook := testhelpers.LogHook(t, logrus.DebugLevel)
	rl, blocked, _ := newTestRateLimiter(t, 1, 2)

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(remoteAddr string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/app.js", nil)
		r.RemoteAddr = remoteAddr
		handler.ServeHTTP(w, r)

		return w
	}

	// the port differs for every connection of the same client
	require.Equal(t, http.StatusNoContent, serve("192.168.1.1:5001").Code)
	require.Equal(t, http.StatusNoContent, serve("192.168.1.1:5002").Code)

	w := serve("192.168.1.1:5003")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Contains(t, w.Body.String(), "Too many requests.")
	require.Equal(t, float64(1), testutil.ToFloat64(blocked))

	testhelpers.AssertLogContains(t, hook, "source IP hit rate limit")
	require.Equal(t, "192.168.1.1", hook.LastEntry().Data["source_ip"])

	require.Equal(t, http.StatusNoContent, serve("192.168.1.2:5001").Code)
}
