package pricing

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CacheStats is a snapshot of the result cache.
type CacheStats struct {
	Enabled bool          `json:"enabled"`
	Size    int           `json:"size"`
	MaxSize int           `json:"maxSize"`
	TTL     time.Duration `json:"ttl"`
	Hits    uint64        `json:"hits"`
	Misses  uint64        `json:"misses"`
}

// resultCache is a bounded, expiring LRU of price results. Stored results
// are never handed out directly; callers receive clones.
type resultCache struct {
	lru     *expirable.LRU[string, *PriceResult]
	maxSize int
	ttl     time.Duration
	hits    atomic.Uint64
	misses  atomic.Uint64
}

func newResultCache(size int, ttl time.Duration) *resultCache {
	if size <= 0 {
		return nil
	}
	return &resultCache{
		lru:     expirable.NewLRU[string, *PriceResult](size, nil, ttl),
		maxSize: size,
		ttl:     ttl,
	}
}

func (c *resultCache) get(key string) (*PriceResult, bool) {
	if c == nil {
		return nil, false
	}
	r, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return r.Clone(), true
}

func (c *resultCache) put(key string, r *PriceResult) {
	if c == nil {
		return
	}
	c.lru.Add(key, r.Clone())
}

func (c *resultCache) purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func (c *resultCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func (c *resultCache) stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	return CacheStats{
		Enabled: true,
		Size:    c.lru.Len(),
		MaxSize: c.maxSize,
		TTL:     c.ttl,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
