package redis

import (
	"context"
	"time"
)

const tipKey = "tip_of_the_day"

// TipCache holds the dashboard's tip of the day for one TTL window
// (24 hours by default). Losing it is harmless; it re-fetches.
type TipCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewTipCache(client RedisClient, ttl time.Duration) *TipCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TipCache{client: client, ttl: ttl}
}

func (t *TipCache) Get(ctx context.Context) (string, error) {
	return t.client.Get(ctx, tipKey)
}

func (t *TipCache) Set(ctx context.Context, tip string) error {
	return t.client.Set(ctx, tipKey, tip, t.ttl)
}
