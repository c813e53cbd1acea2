package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/cache"
)

const (
	serviceName        = "spotify-screensaver"
	healthProbeTimeout = 2 * time.Second

	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

type healthReport struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Timestamp    string            `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies"`
	Cache        *cache.Stats      `json:"cache,omitempty"`
}

// probeDependencies runs every checker concurrently and returns one status
// per checker name.
func (s *Server) probeDependencies(ctx context.Context) map[string]string {
	results := make([]string, len(s.healthCheckers))
	var g errgroup.Group
	for i, hc := range s.healthCheckers {
		if hc == nil {
			continue
		}
		g.Go(func() error {
			results[i] = statusHealthy
			if err := hc.Check(ctx); err != nil {
				results[i] = statusUnhealthy
				if s.logger != nil {
					s.logger.WithError(err).WithField("dependency", hc.Name()).Warn("health check failed")
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	deps := make(map[string]string, len(results))
	for i, hc := range s.healthCheckers {
		if hc != nil {
			deps[hc.Name()] = results[i]
		}
	}
	return deps
}

// healthCheck reports 503 when any dependency is down. The cache keeps
// serving while Redis is unavailable, so the state is degraded, not down.
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthProbeTimeout)
	defer cancel()

	report := healthReport{
		Status:       statusHealthy,
		Service:      serviceName,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Dependencies: s.probeDependencies(ctx),
	}
	for _, status := range report.Dependencies {
		if status != statusHealthy {
			report.Status = statusDegraded
		}
	}
	if s.cacheAdmin != nil {
		stats := s.cacheAdmin.Stats(ctx)
		report.Cache = &stats
	}

	if report.Status != statusHealthy {
		return c.JSON(http.StatusServiceUnavailable, report)
	}
	return c.JSON(http.StatusOK, report)
}
