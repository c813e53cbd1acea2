package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) getCanvas(c echo.Context) error {
	canvas, err := s.playback.Canvas(c.Request().Context(), c.Param("trackId"))
	if err != nil {
		return s.respondError(c, "canvas", err)
	}
	contentType := canvas.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, contentType, canvas.Body)
}

func (s *Server) getLyrics(c echo.Context) error {
	doc, err := s.playback.Lyrics(c.Request().Context(), c.Param("trackId"))
	if err != nil {
		return s.respondError(c, "lyrics", err)
	}
	return c.JSONBlob(http.StatusOK, doc)
}

func (s *Server) getPlayerState(c echo.Context) error {
	doc, err := s.playback.PlayerState(c.Request().Context())
	if err != nil {
		return s.respondError(c, "player", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSONBlob(http.StatusOK, doc)
}

func (s *Server) getCurrentTrack(c echo.Context) error {
	track, err := s.playback.CurrentTrack(c.Request().Context())
	if err != nil {
		return s.respondError(c, "track", err)
	}
	return c.JSON(http.StatusOK, track)
}
