package health

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/avatarctic/spotify-screensaver/internal/core/ports"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/cache"
)

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client redis.Cmdable }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client redis.Cmdable) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// cacheHealthChecker reports unhealthy when in-flight fetches pile up,
// which means the upstream has stopped answering.
type cacheHealthChecker struct {
	cache      *cache.Cache
	maxPending int
}

func (c *cacheHealthChecker) Name() string { return "request_cache" }

func (c *cacheHealthChecker) Check(ctx context.Context) error {
	if pending := c.cache.Stats().PendingRequests; pending > c.maxPending {
		return fmt.Errorf("%d pending upstream requests (max %d)", pending, c.maxPending)
	}
	return nil
}

// NewCacheHealthChecker creates a health checker for the request cache.
func NewCacheHealthChecker(c *cache.Cache, maxPending int) ports.HealthChecker {
	return &cacheHealthChecker{cache: c, maxPending: maxPending}
}
