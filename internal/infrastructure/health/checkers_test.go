package health

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/cache"
)

func TestCacheHealthChecker(t *testing.T) {
	c := cache.New()
	checker := NewCacheHealthChecker(c, 1)
	require.Equal(t, "request_cache", checker.Name())
	require.NoError(t, checker.Check(context.Background()))

	gate := make(chan struct{})
	defer close(gate)
	for _, key := range []string{"canvas:a", "canvas:b"} {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _ = cache.Execute(ctx, c, key, func(context.Context) (int, error) {
			<-gate
			return 1, nil
		}, time.Minute)
	}
	require.Error(t, checker.Check(context.Background()))
}

func TestRedisHealthChecker_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	checker := NewRedisHealthChecker(client)
	require.Equal(t, "redis", checker.Name())
	require.Error(t, checker.Check(context.Background()))
}
