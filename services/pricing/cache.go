package pricing

import (
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

var (
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "pricing_rate_cache_hits_total"})
	cacheMiss = prometheus.NewCounter(prometheus.CounterOpts{Name: "pricing_rate_cache_miss_total"})
)

func init() {
	prometheus.MustRegister(cacheHits, cacheMiss)
}

type compiledRate struct {
	Rate
	program cel.Program
}

type rateTable struct {
	rates    map[string]*compiledRate
	loadedAt time.Time
}

// rateCache holds one compiled rate table. Concurrent misses share a
// single load.
type rateCache struct {
	mu    sync.RWMutex
	table *rateTable
	ttl   time.Duration
	group singleflight.Group
	now   func() time.Time
}

func newRateCache(ttl time.Duration) *rateCache {
	return &rateCache{ttl: ttl, now: time.Now}
}

func (c *rateCache) get() (*rateTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t := c.table
	if t == nil || (c.ttl > 0 && c.now().Sub(t.loadedAt) > c.ttl) {
		cacheMiss.Inc()
		return nil, false
	}
	cacheHits.Inc()
	return t, true
}

func (c *rateCache) set(t *rateTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = t
}

func (c *rateCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = nil
}
