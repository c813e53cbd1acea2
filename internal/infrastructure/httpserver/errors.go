package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/spotify-screensaver/internal/core/domain/playback"
)

// respondError maps service errors onto HTTP responses.
func (s *Server) respondError(c echo.Context, op string, err error) error {
	var upErr *playback.UpstreamError
	switch {
	case errors.Is(err, playback.ErrInvalidTrackID):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, playback.ErrNothingPlaying):
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, playback.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, playback.ErrUnauthorized), errors.As(err, &upErr):
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"op": op, "path": c.Request().URL.Path}).WithError(err).Warn("upstream request failed")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "upstream request failed")
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"op": op, "path": c.Request().URL.Path}).WithError(err).Error("request failed")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
