package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const seenKeyPrefix = "jobfeed:seen:"

// SeenCache remembers which job URLs earlier runs already delivered, so a
// repeat harvest can skip listings the user has seen. TTL keeps the set
// from growing without bound.
type SeenCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSeenCache parses redisURL, verifies connectivity and returns the
// cache. ttl <= 0 defaults to 30 days.
func NewSeenCache(ctx context.Context, redisURL string, ttl time.Duration) (*SeenCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &SeenCache{rdb: client, ttl: ttl}, nil
}

// Close releases the client.
func (c *SeenCache) Close() error { return c.rdb.Close() }

// MarkSeen records the URLs of a delivered result set.
func (c *SeenCache) MarkSeen(ctx context.Context, urls []string) error {
	pipe := c.rdb.Pipeline()
	for _, u := range urls {
		pipe.Set(ctx, seenKeyPrefix+u, "1", c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// FilterUnseen returns the subset of urls no earlier run delivered.
func (c *SeenCache) FilterUnseen(ctx context.Context, urls []string) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	keys := make([]string, len(urls))
	for i, u := range urls {
		keys[i] = seenKeyPrefix + u
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	var unseen []string
	for i, v := range vals {
		if v == nil {
			unseen = append(unseen, urls[i])
		}
	}
	return unseen, nil
}
