package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/spotify-screensaver/internal/application/services"
	tmocks "github.com/avatarctic/spotify-screensaver/test/mocks"
)

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	var gotKey, gotPrefix string
	repo := &tmocks.RateLimitRepositoryMock{IncrementWindowFn: func(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
		gotKey, gotPrefix = clientKey, keyPrefix
		require.Equal(t, 2*window, ttl)
		return 10, time.Unix(600, 0), nil
	}}
	svc := impl.NewRateLimiterService(repo, &impl.RateLimiterConfig{RequestsPerMinute: 10, BurstMultiplier: 2, Window: time.Minute, KeyPrefix: "rl"}, nil)

	d, err := svc.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 10, d.Remaining)
	require.Equal(t, 20, d.Limit, "the advertised limit is the enforced burst")
	require.Equal(t, time.Unix(660, 0), d.Reset)
	require.Equal(t, "10.0.0.1", gotKey)
	require.Equal(t, "rl", gotPrefix)
}

func TestRateLimiter_DeniesOverBurst(t *testing.T) {
	repo := &tmocks.RateLimitRepositoryMock{IncrementWindowFn: func(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
		return 21, time.Now(), nil
	}}
	svc := impl.NewRateLimiterService(repo, &impl.RateLimiterConfig{RequestsPerMinute: 10, BurstMultiplier: 2}, nil)

	d, err := svc.Allow(context.Background(), "c")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 0, d.Remaining)
	require.Equal(t, 20, d.Limit)
}

func TestRateLimiter_DefaultsApplied(t *testing.T) {
	var gotWindow time.Duration
	var gotPrefix string
	repo := &tmocks.RateLimitRepositoryMock{IncrementWindowFn: func(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
		gotWindow, gotPrefix = window, keyPrefix
		return 360, time.Now(), nil
	}}
	svc := impl.NewRateLimiterService(repo, nil, nil)

	d, err := svc.Allow(context.Background(), "c")
	require.NoError(t, err)
	require.True(t, d.Allowed, "240 rpm with a 1.5 burst admits 360 requests")
	require.Equal(t, 360, d.Limit)
	require.Zero(t, d.Remaining)
	require.Equal(t, time.Minute, gotWindow)
	require.Equal(t, "ratelimit:client", gotPrefix)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	repo := &tmocks.RateLimitRepositoryMock{IncrementWindowFn: func(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
		return 0, time.Now(), errors.New("redis down")
	}}
	svc := impl.NewRateLimiterService(repo, nil, nil)

	d, err := svc.Allow(context.Background(), "c")
	require.Error(t, err)
	require.True(t, d.Allowed)
}
