package httpserver

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Start blocks serving HTTP, or HTTPS when both a certificate and key are
// configured. The configured timeouts apply in either mode.
func (s *Server) Start() error {
	s.LogMetricsInitialization()

	srv := &http.Server{
		Addr:         net.JoinHostPort(s.config.Host, s.config.Port),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	if s.config.tlsEnabled() {
		cert, err := tls.LoadX509KeyPair(s.config.TLSCertFile, s.config.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("load tls key pair: %w", err)
		}
		srv.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	}

	if s.logger != nil {
		s.logger.WithField("addr", srv.Addr).WithField("tls", srv.TLSConfig != nil).Info("screensaver backend listening")
	}
	return s.echo.StartServer(srv)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for in-process tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
