package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SPOTIFY_SP_DC", "cookie")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	require.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	require.Equal(t, "cookie", cfg.Spotify.SPDC)
	require.Equal(t, "from_token", cfg.Spotify.Market)
	require.Equal(t, 30*time.Second, cfg.Cache.PendingTTL)
	require.False(t, cfg.Redis.Enabled)
	require.Equal(t, 240, cfg.RateLimit.RequestsPerMinute)
	require.Empty(t, cfg.Admin.JWTSecret)
	require.Equal(t, "spotify-screensaver", cfg.Telemetry.ServiceName)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SPOTIFY_SP_DC", "cookie")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("CACHE_SWEEP_INTERVAL", "15s")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("ADMIN_JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	require.Equal(t, 15*time.Second, cfg.Cache.SweepInterval)
	require.True(t, cfg.Redis.Enabled)
	require.Equal(t, "s3cret", cfg.Admin.JWTSecret)
}

func TestLoad_RequiresCookie(t *testing.T) {
	t.Setenv("SPOTIFY_SP_DC", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsNonPositivePendingTTL(t *testing.T) {
	t.Setenv("SPOTIFY_SP_DC", "cookie")
	t.Setenv("CACHE_PENDING_TTL", "0s")

	_, err := Load()
	require.Error(t, err)
}
