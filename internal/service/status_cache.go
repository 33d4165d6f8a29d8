package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const statusCacheKeyPrefix = "status:v1:"

// StatusCache caches public status-lookup views keyed by ticket. Mutating
// transitions invalidate the ticket's entry so lookups never serve a stale
// ledger.
type StatusCache interface {
	Get(ctx context.Context, ticketID string) (*StatusView, bool)
	Set(ctx context.Context, ticketID string, view *StatusView)
	Invalidate(ctx context.Context, ticketID string)
}

// RedisStatusCache backs StatusCache with Redis. All operations are best
// effort: a missing or unreachable Redis degrades to direct reads.
type RedisStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusCache builds a cache. A nil client or non-positive TTL disables it.
func NewStatusCache(client *redis.Client, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{client: client, ttl: ttl}
}

func (c *RedisStatusCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns the cached view for a ticket, or (nil, false) on miss.
func (c *RedisStatusCache) Get(ctx context.Context, ticketID string) (*StatusView, bool) {
	if !c.enabled() {
		return nil, false
	}
	raw, err := c.client.Get(ctx, statusCacheKeyPrefix+ticketID).Bytes()
	if err != nil {
		return nil, false
	}
	var view StatusView
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, false
	}
	return &view, true
}

// Set stores the view under the ticket key.
func (c *RedisStatusCache) Set(ctx context.Context, ticketID string, view *StatusView) {
	if !c.enabled() || view == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, statusCacheKeyPrefix+ticketID, raw, c.ttl).Err()
}

// Invalidate drops the cached view after a mutating transition.
func (c *RedisStatusCache) Invalidate(ctx context.Context, ticketID string) {
	if !c.enabled() {
		return
	}
	_ = c.client.Del(ctx, statusCacheKeyPrefix+ticketID).Err()
}
