package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/ssmlcast/internal/platform/logger"
)

// Cache is a small string cache on top of a redis client.
type Cache struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

// NewCache dials addr and pings it before returning.
func NewCache(ctx context.Context, addr string, log *logger.Logger) (*Cache, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewCacheFromClient(rdb, log), nil
}

// NewCacheFromClient wraps an existing client.
func NewCacheFromClient(rdb goredis.UniversalClient, log *logger.Logger) *Cache {
	c := &Cache{rdb: rdb, prefix: "ssmlcast:"}
	if log != nil {
		c.log = log.With("service", "RedisCache")
	}
	return c
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

// Set stores value; a non-positive ttl keeps it until evicted.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.rdb.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}
