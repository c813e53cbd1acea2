package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/spotify-screensaver/internal/core/domain/playback"
	"github.com/avatarctic/spotify-screensaver/internal/core/ports"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/cache"
)

var errTokenExpired = errors.New("upstream issued an already expiring token")

// TokenService caches the web-player credentials under playback.TokenKey.
type TokenService struct {
	client ports.SpotifyClient
	cache  *cache.Cache
	now    func() time.Time
	logger *logrus.Logger
}

func NewTokenService(client ports.SpotifyClient, c *cache.Cache, logger *logrus.Logger) *TokenService {
	return &TokenService{client: client, cache: c, now: time.Now, logger: logger}
}

// Token returns cached credentials, fetching them when absent. Credentials
// within TokenExpirySkew of expiring are dropped and fetched again once.
func (s *TokenService) Token(ctx context.Context) (playback.Token, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := cache.Execute(ctx, s.cache, playback.TokenKey, s.client.FetchToken, playback.TokenTTL)
		if err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Warn("failed to obtain spotify token")
			}
			return playback.Token{}, err
		}
		if token.CacheTTL(s.now()) > 0 {
			return token, nil
		}
		s.cache.Clear(playback.TokenKey)
	}
	return playback.Token{}, errTokenExpired
}

// Invalidate drops the cached credentials, e.g. after an upstream 401.
func (s *TokenService) Invalidate(ctx context.Context) {
	s.cache.Clear(playback.TokenKey)
	if s.logger != nil {
		s.logger.Info("spotify token invalidated")
	}
}
