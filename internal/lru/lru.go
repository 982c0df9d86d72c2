package lru

import (
	"time"

	"github.com/karlseguin/ccache/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// getsPerPromote is the number of gets after which an item is moved to the
// front of the LRU list
const getsPerPromote = 64

// itemsToPruneDiv prunes 1/16 of the items when the cache is full
const itemsToPruneDiv = 16

// Cache wraps a ccache and allows setting custom metrics for hits/misses.
type Cache struct {
	op                  string
	duration            time.Duration
	cache               *ccache.Cache
	metricCachedEntries *prometheus.GaugeVec
	metricCacheRequests *prometheus.CounterVec
}

// New creates an LRU cache holding at most maxEntries items for duration each
func New(op string, maxEntries int64, duration time.Duration, cachedEntriesMetric *prometheus.GaugeVec, cacheRequestsMetric *prometheus.CounterVec) *Cache {
	prune := uint32(maxEntries) / itemsToPruneDiv
	if prune == 0 {
		prune = 1
	}

	configuration := ccache.Configure()
	configuration.MaxSize(maxEntries)
	configuration.ItemsToPrune(prune)
	configuration.GetsPerPromote(getsPerPromote)

	c := &Cache{
		op:                  op,
		duration:            duration,
		metricCachedEntries: cachedEntriesMetric,
		metricCacheRequests: cacheRequestsMetric,
	}

	configuration.OnDelete(func(*ccache.Item) {
		c.updateEntries()
	})
	c.cache = ccache.New(configuration)

	return c
}

// FindOrFetch returns the cached value for key if it exists and is not
// expired. Otherwise fetchFn is called and its result is cached.
func (c *Cache) FindOrFetch(key string, fetchFn func() interface{}) interface{} {
	item := c.cache.Get(key)

	if item != nil && !item.Expired() {
		c.metricCacheRequests.WithLabelValues(c.op, "hit").Inc()
		return item.Value()
	}

	c.metricCacheRequests.WithLabelValues(c.op, "miss").Inc()

	value := fetchFn()
	c.cache.Set(key, value, c.duration)
	c.updateEntries()

	return value
}

// Clear removes every item from the cache
func (c *Cache) Clear() {
	c.cache.Clear()
	c.updateEntries()
}

// Stop the background worker of the cache
func (c *Cache) Stop() {
	c.cache.Stop()
}

func (c *Cache) updateEntries() {
	c.metricCachedEntries.WithLabelValues(c.op).Set(float64(c.cache.ItemCount()))
}
