package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/spotify-screensaver/configs"
	"github.com/avatarctic/spotify-screensaver/internal/application/services"
	"github.com/avatarctic/spotify-screensaver/internal/core/ports"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/cache"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/health"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/httpserver"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/metrics"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/redis"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/repositories"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/spotify"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/telemetry"
)

// maxPendingFetches is the in-flight count above which /health degrades.
const maxPendingFetches = 64

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}
	return logger
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := newLogger(cfg.Log)
	logger.WithField("environment", cfg.Server.Environment).Info("Starting spotify screensaver backend...")
	if cfg.Server.Environment == "production" && (cfg.Server.TLSCertFile == "" || cfg.Server.TLSKeyFile == "") {
		logger.Warn("Running in HTTP mode - TLS certificates not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.WithError(err).Warn("Tracing disabled")
	}

	// Request cache
	requestCache := cache.New(
		cache.WithPendingTTL(cfg.Cache.PendingTTL),
		cache.WithMetrics(metrics.NewCacheMetrics(prometheus.DefaultRegisterer)),
		cache.WithLogger(logger),
	)
	metrics.RegisterCacheGauges(prometheus.DefaultRegisterer, requestCache)
	sweeperDone := requestCache.StartSweeper(ctx, cfg.Cache.SweepInterval)

	// Upstream client and services
	spotifyClient := spotify.NewClient(&spotify.Config{
		SPDC:              cfg.Spotify.SPDC,
		Market:            cfg.Spotify.Market,
		Timeout:           cfg.Spotify.Timeout,
		RequestsPerSecond: cfg.Spotify.RequestsPerSecond,
		Burst:             cfg.Spotify.Burst,
	}, logger)
	tokenService := services.NewTokenService(spotifyClient, requestCache, logger)
	playbackService := services.NewPlaybackService(spotifyClient, tokenService, requestCache, logger)
	cacheAdminService := services.NewCacheAdminService(requestCache, logger)

	hcSlice := []ports.HealthChecker{health.NewCacheHealthChecker(requestCache, maxPendingFetches)}

	// Redis only backs the shared rate limiter; the request cache is process-local.
	var rateLimiterService ports.RateLimiterService
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()
		logger.Info("Connected to Redis successfully")

		rateLimiterService = services.NewRateLimiterService(
			repositories.NewRateLimitRedisRepository(redisClient),
			&services.RateLimiterConfig{
				RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
				BurstMultiplier:   cfg.RateLimit.BurstMultiplier,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         cfg.RateLimit.KeyPrefix,
			},
			logger,
		)
		hcSlice = append(hcSlice, health.NewRedisHealthChecker(redisClient))
	}

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	deps := httpserver.ServerDeps{
		PlaybackService:    playbackService,
		CacheAdminService:  cacheAdminService,
		RateLimiterService: rateLimiterService,
		HealthCheckers:     hcSlice,
	}
	if cfg.Admin.JWTSecret == "" {
		logger.Info("ADMIN_JWT_SECRET not set; cache admin routes disabled")
	}

	server := httpserver.NewServer(serverConfig, cfg.Admin.JWTSecret, logger, deps)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()


	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	<-sweeperDone
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Failed to flush traces")
	}

	logger.Info("Server exited")
}
