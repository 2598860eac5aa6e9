package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"planner/internal/config"
	"planner/pkg/logger"
)

const itemsKeyPrefix = "items:user:"

var (
	client *redis.Client
	once   sync.Once
)

// Client returns the global Redis client (initialized on first use). It is nil
// when REDIS_URL is unset or the server did not answer the first ping.
func Client(ctx context.Context) *redis.Client {
	once.Do(func() {
		cfg := config.Get()
		if cfg.RedisURL == "" {
			logger.Info(ctx, "Redis cache disabled (no REDIS_URL)")
			return
		}
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error(ctx, "Invalid REDIS_URL", "error", err)
			return
		}
		opts.PoolSize = cfg.RedisPoolSize
		c := redis.NewClient(opts)
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Error(ctx, "Redis ping failed", "error", err)
			_ = c.Close()
			return
		}
		client = c
		logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	})
	return client
}

// Items caches each user's full item list as the JSON the list endpoint
// serves. A nil *Items is a valid, always-missing cache.
type Items struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewItems wraps rdb. A nil client yields nil.
func NewItems(rdb *redis.Client, ttl time.Duration) *Items {
	if rdb == nil {
		return nil
	}
	return &Items{rdb: rdb, ttl: ttl}
}

// Default builds the item cache from the global client and configured TTL.
func Default(ctx context.Context) *Items {
	return NewItems(Client(ctx), time.Duration(config.Get().CacheTTL)*time.Second)
}

// Key returns the cache key holding userID's item list.
func Key(userID string) string {
	return itemsKeyPrefix + userID
}

// GetRaw returns the cached list bytes for userID. Returns (nil, false) on miss or error.
func (c *Items) GetRaw(ctx context.Context, userID string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get items failed", "error", err, "user_id", userID)
		return nil, false
	}
	return b, true
}

// SetRaw stores the list bytes for userID with the configured TTL.
func (c *Items) SetRaw(ctx context.Context, userID string, b []byte) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, Key(userID), b, c.ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set items failed", "error", err, "user_id", userID)
	}
}

// SetRawAsync stores the list in the background so the response is not held up.
func (c *Items) SetRawAsync(userID string, b []byte) {
	if c == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		c.SetRaw(ctx, userID, b)
	}()
}

// Invalidate deletes userID's list so the next read goes to the database.
func (c *Items) Invalidate(ctx context.Context, userID string) error {
	if c == nil || userID == "" {
		return nil
	}
	if err := c.rdb.Del(ctx, Key(userID)).Err(); err != nil {
		logger.Debug(ctx, "Redis invalidate items failed", "error", err, "user_id", userID)
		return err
	}
	return nil
}

// Ping reports whether Redis answers.
func (c *Items) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("redis cache disabled")
	}
	return c.rdb.Ping(ctx).Err()
}
