package cache

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"go-resume-matcher/internal/domain"
	"go-resume-matcher/pkg/atsscore"
	"go-resume-matcher/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ats:analysis:"

// analysisCache keeps results in memory (L1) and, when a client is given, in Redis (L2).
// L1 is lost on restart; L2 is shared between instances.
type analysisCache struct {
	l1         sync.Map      // key → *cacheEntry
	rdb        *redis.Client // nil disables L2
	ttl        time.Duration
	maxEntries int

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// Stats reports hit and miss counters
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// AnalysisCache is domain.AnalysisCache plus maintenance hooks
type AnalysisCache interface {
	domain.AnalysisCache
	Stats() Stats
	Run(ctx context.Context, interval time.Duration)
}

// NewAnalysisCache creates the tiered cache. rdb may be nil.
func NewAnalysisCache(rdb *redis.Client, ttl time.Duration, maxEntries int) AnalysisCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &analysisCache{rdb: rdb, ttl: ttl, maxEntries: maxEntries}
}

// Get tries L1, then L2. An L2 hit is copied into L1.
func (c *analysisCache) Get(ctx context.Context, key string) (*atsscore.Result, bool) {
	key = keyPrefix + key

	if val, ok := c.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			if res, ok := decode(entry.data); ok {
				c.hits.Add(1)
				return res, true
			}
		}
		c.l1.Delete(key) // expired or corrupt
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			if res, ok := decode(data); ok {
				c.store(key, data)
				c.hits.Add(1)
				return res, true
			}
		} else if err != redis.Nil {
			logger.Log.Debug("cache: L2 get failed", "error", err)
		}
	}

	c.misses.Add(1)
	return nil, false
}

// Set stores result in both tiers. Only the L2 write can fail.
func (c *analysisCache) Set(ctx context.Context, key string, result atsscore.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	key = keyPrefix + key
	c.store(key, data)

	if c.rdb != nil {
		return c.rdb.Set(ctx, key, data, c.ttl).Err()
	}
	return nil
}

func (c *analysisCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Run removes expired L1 entries every interval until ctx is done
func (c *analysisCache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.l1.Range(func(key, val any) bool {
				if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
					c.l1.Delete(key)
				}
				return true
			})
		}
	}
}

func (c *analysisCache) store(key string, data []byte) {
	c.evictIfNeeded()
	c.l1.Store(key, &cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)})
}

// evictIfNeeded drops expired entries, then the oldest, until below maxEntries
func (c *analysisCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	for count >= c.maxEntries {
		var oldestKey any
		var oldestAt time.Time
		c.l1.Range(func(key, val any) bool {
			entry := val.(*cacheEntry)
			// expiry = insert time + ttl, so the earliest expiry is the oldest entry
			if oldestKey == nil || entry.expiresAt.Before(oldestAt) {
				oldestKey, oldestAt = key, entry.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			return
		}
		c.l1.Delete(oldestKey)
		count--
	}
}

func decode(data []byte) (*atsscore.Result, bool) {
	var res atsscore.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false
	}
	return &res, true
}
