package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateLimitRedisRepository stores fixed-window request counters in Redis so
// several screensaver instances share one budget per client.
type RateLimitRedisRepository struct {
	r   redis.Cmdable
	now func() time.Time
}

func NewRateLimitRedisRepository(r redis.Cmdable) *RateLimitRedisRepository {
	return &RateLimitRedisRepository{r: r, now: time.Now}
}

// WindowKey is the counter key for clientKey in the window starting at windowStart.
func WindowKey(keyPrefix, clientKey string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", keyPrefix, clientKey, windowStart.Unix())
}

// IncrementWindow increments the client's counter for the current window.
func (repo *RateLimitRedisRepository) IncrementWindow(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	windowStart := repo.now().Truncate(window)
	key := WindowKey(keyPrefix, clientKey, windowStart)
	pipe := repo.r.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, windowStart, fmt.Errorf("increment %s: %w", key, err)
	}
	return int(incr.Val()), windowStart, nil
}
