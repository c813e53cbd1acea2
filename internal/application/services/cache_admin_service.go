package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/cache"
)

type CacheAdminService struct {
	cache  *cache.Cache
	logger *logrus.Logger
}

func NewCacheAdminService(c *cache.Cache, logger *logrus.Logger) *CacheAdminService {
	return &CacheAdminService{cache: c, logger: logger}
}

func (s *CacheAdminService) Stats(ctx context.Context) cache.Stats {
	return s.cache.Stats()
}

// Clear removes key, or everything when key is empty.
func (s *CacheAdminService) Clear(ctx context.Context, key string) {
	if key == "" {
		s.cache.Clear()
	} else {
		s.cache.Clear(key)
	}
	if s.logger != nil {
		scope := key
		if scope == "" {
			scope = "*"
		}
		s.logger.WithFields(logrus.Fields{"key": scope}).Info("request cache cleared")
	}
}
