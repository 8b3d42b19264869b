// Package cache provides an optional Redis-backed page cache. It sits in
// front of the wiki scrapers so menu spamming does not hammer the source;
// live-tracker chat state is never stored here.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// PageCache caches raw page bodies with a TTL. A nil *PageCache is valid and
// behaves as a cache that never hits.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(redisURL string, ttl time.Duration) (*PageCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &PageCache{client: client, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (c *PageCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// HealthCheck pings Redis to verify the connection.
func (c *PageCache) HealthCheck(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Get returns the cached body for key, or (nil, false) on a miss or when the
// cache is disabled. Redis failures degrade to a miss.
func (c *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	body, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

// Put stores a body under key with the configured TTL. Failures are ignored;
// a broken cache must never break a fetch.
func (c *PageCache) Put(ctx context.Context, key string, body []byte) {
	if c == nil {
		return
	}
	_ = c.client.Set(ctx, key, body, c.ttl).Err()
}
