package spotify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/avatarctic/spotify-screensaver/internal/core/domain/playback"
)

const (
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultClientVersion = "1.2.52.404.gcb99a997"
	maxResponseBytes     = 8 << 20
)

// Endpoints holds the upstream base URLs. Tests point them at httptest
// servers.
type Endpoints struct {
	Web         string
	ClientToken string
	SPClient    string
	API         string
}

// DefaultEndpoints are the production hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Web:         "https://open.spotify.com",
		ClientToken: "https://clienttoken.spotify.com",
		SPClient:    "https://spclient.wg.spotify.com",
		API:         "https://api.spotify.com",
	}
}

// Config configures Client.
type Config struct {
	SPDC              string
	Market            string
	UserAgent         string
	ClientVersion     string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Endpoints         Endpoints
}

// Client implements ports.SpotifyClient against the web-player endpoints.
type Client struct {
	http    *http.Client
	cfg     Config
	limiter *rate.Limiter
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewClient(cfg *Config, logger *logrus.Logger) *Client {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.ClientVersion == "" {
		c.ClientVersion = defaultClientVersion
	}
	if c.Market == "" {
		c.Market = "from_token"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Endpoints == (Endpoints{}) {
		c.Endpoints = DefaultEndpoints()
	}
	limit := rate.Inf
	if c.RequestsPerSecond > 0 {
		limit = rate.Limit(c.RequestsPerSecond)
	}
	burst := c.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		http:    &http.Client{Timeout: c.Timeout},
		cfg:     c,
		limiter: rate.NewLimiter(limit, burst),
		tracer:  otel.Tracer("github.com/avatarctic/spotify-screensaver/internal/infrastructure/spotify"),
		logger:  logger,
	}
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept-Language", "en")
	req.Header.Set("Origin", "https://open.spotify.com")
	req.Header.Set("Referer", "https://open.spotify.com/")
}

func (c *Client) setAuthHeaders(req *http.Request, token playback.Token) {
	c.setCommonHeaders(req)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("app-platform", "WebPlayer")
	req.Header.Set("spotify-app-version", c.cfg.ClientVersion)
	if token.ClientToken != "" {
		req.Header.Set("client-token", token.ClientToken)
	}
}

// do sends req and returns the body of a 2xx response. Non-2xx responses
// become *playback.UpstreamError, wrapping ErrUnauthorized for 401/403 and
// ErrNotFound for 404.
func (c *Client) do(ctx context.Context, op string, req *http.Request) ([]byte, int, error) {
	ctx, span := c.tracer.Start(ctx, "spotify."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.method", req.Method), attribute.String("http.url", req.URL.Redacted()))

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "throttled")
		return nil, 0, fmt.Errorf("%s: wait for upstream slot: %w", op, err)
	}

	start := time.Now()
	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		return nil, resp.StatusCode, fmt.Errorf("%s: read body: %w", op, err)
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"op":          op,
			"status":      resp.StatusCode,
			"size":        humanize.Bytes(uint64(len(body))),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("spotify upstream call")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, resp.StatusCode, nil
	}

	upErr := &playback.UpstreamError{Op: op, StatusCode: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		upErr.Err = playback.ErrUnauthorized
	case http.StatusNotFound:
		upErr.Err = playback.ErrNotFound
	}
	span.SetStatus(codes.Error, upErr.Error())
	return nil, resp.StatusCode, upErr
}
