package configs

import (
	"fmt"
	"net"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Spotify   SpotifyConfig   `envPrefix:"SPOTIFY_"`
	Cache     CacheConfig     `envPrefix:"CACHE_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Admin     AdminConfig     `envPrefix:"ADMIN_"`
	Telemetry TelemetryConfig `envPrefix:"OTEL_"`
}

type ServerConfig struct {
	Host           string        `env:"HOST" envDefault:"0.0.0.0"`
	Port           string        `env:"PORT" envDefault:"8080"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	TLSCertFile    string        `env:"TLS_CERT_FILE"`
	TLSKeyFile     string        `env:"TLS_KEY_FILE"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	Environment    string        `env:"ENVIRONMENT" envDefault:"development"`
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

type SpotifyConfig struct {
	SPDC              string        `env:"SP_DC,required,notEmpty"`
	Market            string        `env:"MARKET" envDefault:"from_token"`
	Timeout           time.Duration `env:"TIMEOUT" envDefault:"10s"`
	RequestsPerSecond float64       `env:"RPS" envDefault:"5"`
	Burst             int           `env:"BURST" envDefault:"10"`
}

type CacheConfig struct {
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	PendingTTL    time.Duration `env:"PENDING_TTL" envDefault:"30s"`
}

// RedisConfig is optional; Redis is only dialled when Enabled is set and
// only backs the HTTP rate limiter.
type RedisConfig struct {
	Enabled  bool   `env:"ENABLED" envDefault:"false"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	// Pool and timeout settings
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
	PoolTimeout  time.Duration `env:"POOL_TIMEOUT" envDefault:"4s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"5m"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"` // json or text
}

type RateLimitConfig struct {
	RequestsPerMinute int           `env:"RPM" envDefault:"240"`
	BurstMultiplier   float64       `env:"BURST" envDefault:"1.5"`
	Window            time.Duration `env:"WINDOW" envDefault:"1m"`
	KeyPrefix         string        `env:"KEY_PREFIX" envDefault:"ratelimit:client"`
}

// AdminConfig guards the cache administration routes. They are not mounted
// when JWTSecret is empty.
type AdminConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type TelemetryConfig struct {
	Endpoint    string `env:"EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"spotify-screensaver"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Spotify.Burst <= 0 {
		return nil, fmt.Errorf("SPOTIFY_BURST must be positive, got %d", cfg.Spotify.Burst)
	}
	if cfg.Cache.PendingTTL <= 0 {
		return nil, fmt.Errorf("CACHE_PENDING_TTL must be positive, got %s", cfg.Cache.PendingTTL)
	}
	return cfg, nil
}
