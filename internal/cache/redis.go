package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stecc88/roommatch/internal/config"
)

type RedisCache struct {
	Client *redis.Client
	ttl    time.Duration
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}

	ttl := cfg.Cache.LikeCountTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{Client: redis.NewClient(opts), ttl: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// Set, Get and Del are the raw key helpers the counters are built on.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForIncomingLikeCount generates Redis key for a user's incoming like count
func (c *RedisCache) KeyForIncomingLikeCount(userID uint64) string {
	return fmt.Sprintf("likes:incoming:count:%d", userID)
}

// SetIncomingLikeCount stores the count and refreshes its TTL.
func (c *RedisCache) SetIncomingLikeCount(ctx context.Context, userID uint64, count int64) error {
	return c.Set(ctx, c.KeyForIncomingLikeCount(userID), count, c.ttl)
}

// GetIncomingLikeCount returns the cached count. ok is false on a cache miss.
func (c *RedisCache) GetIncomingLikeCount(ctx context.Context, userID uint64) (count int64, ok bool, err error) {
	key := c.KeyForIncomingLikeCount(userID)
	val, err := c.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// corrupt entry, treat as a miss so the caller recomputes it
		_ = c.Del(ctx, key)
		return 0, false, nil
	}

	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, c.ttl).Err()
	return n, true, nil
}

// InvalidateIncomingLikeCount drops the cached counters of the given users.
func (c *RedisCache) InvalidateIncomingLikeCount(ctx context.Context, userIDs ...uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.KeyForIncomingLikeCount(id))
	}
	return c.Del(ctx, keys...)
}

// Publish sends a raw message to a pub/sub channel.
func (c *RedisCache) Publish(ctx context.Context, channel string, message []byte) error {
	return c.Client.Publish(ctx, channel, message).Err()
}

// Subscribe opens a subscription and waits for Redis to confirm it, so that
// messages published after Subscribe returns are not lost.
func (c *RedisCache) Subscribe(ctx context.Context, channel string) (*redis.PubSub, error) {
	ps := c.Client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	return ps, nil
}
