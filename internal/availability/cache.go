package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"velocar/internal/intervals"
	"velocar/pkg/logger"
)

// Cache holds short-lived availability snapshots in Redis. Results are
// stale-tolerant by design; the booking path re-checks before committing.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewCache creates an availability cache. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		log:    logger.GetDefault(),
	}
}

// GetWindows returns a cached result for the pool and horizon, or nil.
func (c *Cache) GetWindows(ctx context.Context, pool []uuid.UUID, horizon intervals.Interval) *Availability {
	if c == nil || c.client == nil {
		return nil
	}

	raw, err := c.client.Get(ctx, windowsKey(pool, horizon)).Bytes()
	if err != nil {
		// Cache miss or Redis unavailable; recompute either way
		return nil
	}

	var result Availability
	if err := json.Unmarshal(raw, &result); err != nil {
		c.log.Warn("dropping undecodable availability cache entry", "error", err)
		return nil
	}
	return &result
}

// SetWindows stores a computed result. Failures are logged and swallowed;
// the caller already has the answer.
func (c *Cache) SetWindows(ctx context.Context, pool []uuid.UUID, horizon intervals.Interval, result *Availability) {
	if c == nil || c.client == nil || result == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, windowsKey(pool, horizon), raw, c.ttl).Err(); err != nil {
		c.log.Warn("failed to cache availability snapshot", "error", err)
	}
}

// windowsKey is stable under pool ordering so equivalent queries share one
// entry.
func windowsKey(pool []uuid.UUID, horizon intervals.Interval) string {
	ids := make([]string, len(pool))
	for i, id := range pool {
		ids[i] = id.String()
	}
	sort.Strings(ids)

	return fmt.Sprintf("velocar:availability:windows:%s:%d:%d",
		strings.Join(ids, ","), horizon.Start.Unix(), horizon.End.Unix())
}
