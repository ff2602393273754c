package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/studyflow/accounthub/internal/domain/user"
)

const statsKey = "accounthub:admin:stats"

// StatsCache keeps the admin dashboard counts warm for a short TTL.
// With redis configured the snapshot is shared across replicas; without
// it the cache degrades to per-process memory. A cache failure is never
// surfaced: callers just recompute from the store.
type StatsCache struct {
	redis *redis.Client // nil = memory only
	ttl   time.Duration

	mu  sync.RWMutex
	val user.Stats
	exp time.Time
	set bool
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &StatsCache{redis: client, ttl: ttl}
}

func (c *StatsCache) Get(ctx context.Context) (user.Stats, bool) {
	if c.redis != nil {
		raw, err := c.redis.Get(ctx, statsKey).Bytes()

		if err == nil {
			var s user.Stats

			if json.Unmarshal(raw, &s) == nil {
				return s, true
			}
		}

		// redis down or key missing: fall through to memory
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.set || time.Now().After(c.exp) {
		return user.Stats{}, false
	}

	return c.val, true
}

func (c *StatsCache) Set(ctx context.Context, s user.Stats) {
	if c.redis != nil {
		raw, err := json.Marshal(s)

		if err == nil {
			// best effort; the memory copy below is the fallback
			_ = c.redis.Set(ctx, statsKey, raw, c.ttl).Err()
		}
	}

	c.mu.Lock()
	c.val = s
	c.exp = time.Now().Add(c.ttl)
	c.set = true
	c.mu.Unlock()
}

// Invalidate drops the snapshot after a mutation (role change, delete)
// so admins do not read counts a full TTL stale.
func (c *StatsCache) Invalidate(ctx context.Context) {
	if c.redis != nil {
		_ = c.redis.Del(ctx, statsKey).Err()
	}

	c.mu.Lock()
	c.set = false
	c.mu.Unlock()
}
