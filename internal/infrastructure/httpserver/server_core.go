package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/spotify-screensaver/internal/core/ports"
	customMiddleware "github.com/avatarctic/spotify-screensaver/internal/infrastructure/httpserver/middleware"
)

// ServerConfig is the transport slice of the service configuration.
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string

	// AllowedOrigins feeds the CORS middleware; the screensaver page is
	// usually served from a different origin than this API.
	AllowedOrigins []string
}

func (c *ServerConfig) tlsEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

type ServerDeps struct {
	PlaybackService    ports.PlaybackService
	CacheAdminService  ports.CacheAdminService
	RateLimiterService ports.RateLimiterService
	HealthCheckers     []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	playback       ports.PlaybackService
	cacheAdmin     ports.CacheAdminService
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

// NewServer wires handlers and middleware. The admin routes are only mounted
// when adminJWTSecret is non-empty.
func NewServer(serverConfig *ServerConfig, adminJWTSecret string, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		playback:       deps.PlaybackService,
		cacheAdmin:     deps.CacheAdminService,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.RateLimiterService,
			logger,
			adminJWTSecret,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
