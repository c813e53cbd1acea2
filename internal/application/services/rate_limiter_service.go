package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/spotify-screensaver/internal/core/ports"
)

const (
	defaultRequestsPerMinute = 240
	defaultBurstMultiplier   = 1.5
	defaultRateWindow        = time.Minute
	defaultRateKeyPrefix     = "ratelimit:client"
)

// RateLimiterConfig groups configuration parameters for the rate limiter.
// Zero fields fall back to the defaults above.
type RateLimiterConfig struct {
	RequestsPerMinute int
	BurstMultiplier   float64
	Window            time.Duration
	KeyPrefix         string
}

// RateLimiterService is a fixed-window limiter keyed by client address. A
// client may spend RequestsPerMinute*BurstMultiplier requests per window and
// that product is the limit it is told about.
type RateLimiterService struct {
	repo   ports.RateLimitRepository
	cfg    RateLimiterConfig
	logger *logrus.Logger
}

func NewRateLimiterService(repo ports.RateLimitRepository, cfg *RateLimiterConfig, logger *logrus.Logger) *RateLimiterService {
	c := RateLimiterConfig{}
	if cfg != nil {
		c = *cfg
	}
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = defaultRequestsPerMinute
	}
	if c.BurstMultiplier <= 0 {
		c.BurstMultiplier = defaultBurstMultiplier
	}
	if c.Window <= 0 {
		c.Window = defaultRateWindow
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = defaultRateKeyPrefix
	}
	return &RateLimiterService{repo: repo, cfg: c, logger: logger}
}

func (s *RateLimiterService) burst() int {
	return int(float64(s.cfg.RequestsPerMinute) * s.cfg.BurstMultiplier)
}

// Allow fails open: a counter that cannot be incremented never blocks a
// screensaver from polling.
func (s *RateLimiterService) Allow(ctx context.Context, clientKey string) (ports.RateLimitDecision, error) {
	// Keys outlive their window so a late increment still lands on a live counter.
	count, windowStart, err := s.repo.IncrementWindow(ctx, clientKey, s.cfg.Window, s.cfg.KeyPrefix, 2*s.cfg.Window)
	burst := s.burst()
	d := ports.RateLimitDecision{
		Allowed:   true,
		Remaining: burst,
		Limit:     burst,
		Reset:     windowStart.Add(s.cfg.Window),
	}
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("client", clientKey).WithError(err).Error("rate limiter: failed to increment window")
		}
		return d, err
	}

	if count > burst {
		d.Allowed, d.Remaining = false, 0
	} else {
		d.Remaining = burst - count
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"client": clientKey, "count": count, "burst": burst, "allowed": d.Allowed}).Debug("rate limiter window state")
	}
	return d, nil
}
