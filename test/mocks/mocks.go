package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/avatarctic/spotify-screensaver/internal/core/domain/playback"
	"github.com/avatarctic/spotify-screensaver/internal/core/ports"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/cache"
)

// SpotifyClientMock is a lightweight mock for SpotifyClient. Call counters
// are safe for concurrent use.
type SpotifyClientMock struct {
	FetchTokenFn       func(ctx context.Context) (playback.Token, error)
	FetchCanvasFn      func(ctx context.Context, token playback.Token, trackID string) (playback.Canvas, error)
	FetchLyricsFn      func(ctx context.Context, token playback.Token, trackID string) (json.RawMessage, error)
	FetchPlayerStateFn func(ctx context.Context, token playback.Token) (json.RawMessage, error)

	TokenCalls  atomic.Int32
	CanvasCalls atomic.Int32
	LyricsCalls atomic.Int32
	PlayerCalls atomic.Int32
}

func (m *SpotifyClientMock) FetchToken(ctx context.Context) (playback.Token, error) {
	m.TokenCalls.Add(1)
	if m.FetchTokenFn != nil {
		return m.FetchTokenFn(ctx)
	}
	return playback.Token{AccessToken: "access", ClientToken: "client", ExpiresAt: time.Now().Add(time.Hour)}, nil
}
func (m *SpotifyClientMock) FetchCanvas(ctx context.Context, token playback.Token, trackID string) (playback.Canvas, error) {
	m.CanvasCalls.Add(1)
	if m.FetchCanvasFn != nil {
		return m.FetchCanvasFn(ctx, token, trackID)
	}
	return playback.Canvas{TrackID: trackID, ContentType: "application/x-protobuf", Body: []byte(trackID)}, nil
}
func (m *SpotifyClientMock) FetchLyrics(ctx context.Context, token playback.Token, trackID string) (json.RawMessage, error) {
	m.LyricsCalls.Add(1)
	if m.FetchLyricsFn != nil {
		return m.FetchLyricsFn(ctx, token, trackID)
	}
	return nil, fmt.Errorf("not found")
}
func (m *SpotifyClientMock) FetchPlayerState(ctx context.Context, token playback.Token) (json.RawMessage, error) {
	m.PlayerCalls.Add(1)
	if m.FetchPlayerStateFn != nil {
		return m.FetchPlayerStateFn(ctx, token)
	}
	return nil, playback.ErrNothingPlaying
}

// TokenServiceMock is a lightweight mock for TokenService
type TokenServiceMock struct {
	TokenFn      func(ctx context.Context) (playback.Token, error)
	InvalidateFn func(ctx context.Context)
}

func (m *TokenServiceMock) Token(ctx context.Context) (playback.Token, error) {
	if m.TokenFn != nil {
		return m.TokenFn(ctx)
	}
	return playback.Token{AccessToken: "access"}, nil
}
func (m *TokenServiceMock) Invalidate(ctx context.Context) {
	if m.InvalidateFn != nil {
		m.InvalidateFn(ctx)
	}
}

// PlaybackServiceMock is a lightweight mock for PlaybackService
type PlaybackServiceMock struct {
	CanvasFn       func(ctx context.Context, trackID string) (playback.Canvas, error)
	LyricsFn       func(ctx context.Context, trackID string) (json.RawMessage, error)
	PlayerStateFn  func(ctx context.Context) (json.RawMessage, error)
	CurrentTrackFn func(ctx context.Context) (*playback.Track, error)
}

func (m *PlaybackServiceMock) Canvas(ctx context.Context, trackID string) (playback.Canvas, error) {
	if m.CanvasFn != nil {
		return m.CanvasFn(ctx, trackID)
	}
	return playback.Canvas{}, playback.ErrNotFound
}
func (m *PlaybackServiceMock) Lyrics(ctx context.Context, trackID string) (json.RawMessage, error) {
	if m.LyricsFn != nil {
		return m.LyricsFn(ctx, trackID)
	}
	return nil, playback.ErrNotFound
}
func (m *PlaybackServiceMock) PlayerState(ctx context.Context) (json.RawMessage, error) {
	if m.PlayerStateFn != nil {
		return m.PlayerStateFn(ctx)
	}
	return nil, playback.ErrNothingPlaying
}
func (m *PlaybackServiceMock) CurrentTrack(ctx context.Context) (*playback.Track, error) {
	if m.CurrentTrackFn != nil {
		return m.CurrentTrackFn(ctx)
	}
	return nil, playback.ErrNothingPlaying
}

// CacheAdminServiceMock is a lightweight mock for CacheAdminService
type CacheAdminServiceMock struct {
	StatsFn func(ctx context.Context) cache.Stats
	ClearFn func(ctx context.Context, key string)
}

func (m *CacheAdminServiceMock) Stats(ctx context.Context) cache.Stats {
	if m.StatsFn != nil {
		return m.StatsFn(ctx)
	}
	return cache.Stats{}
}
func (m *CacheAdminServiceMock) Clear(ctx context.Context, key string) {
	if m.ClearFn != nil {
		m.ClearFn(ctx, key)
	}
}

// RateLimitRepositoryMock is a lightweight mock for RateLimitRepository
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, clientKey, window, keyPrefix, ttl)
	}
	return 1, time.Now().Truncate(window), nil
}

// RateLimiterServiceMock is a lightweight mock for RateLimiterService
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, clientKey string) (ports.RateLimitDecision, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, clientKey string) (ports.RateLimitDecision, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, clientKey)
	}
	return ports.RateLimitDecision{Allowed: true, Remaining: 100, Limit: 100, Reset: time.Now().Add(time.Minute)}, nil
}
