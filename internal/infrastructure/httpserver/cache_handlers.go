package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type clearCacheRequest struct {
	Key string `json:"key"`
}

func (s *Server) getCacheStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.cacheAdmin.Stats(c.Request().Context()))
}

// clearCache drops one key, or the whole cache when no key is given.
func (s *Server) clearCache(c echo.Context) error {
	var req clearCacheRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	s.cacheAdmin.Clear(c.Request().Context(), req.Key)

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"key": req.Key, "admin": c.Get("admin_subject")}).Info("cache cleared via admin api")
	}
	cleared := req.Key
	if cleared == "" {
		cleared = "*"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"cleared": cleared,
		"stats":   s.cacheAdmin.Stats(c.Request().Context()),
	})
}
