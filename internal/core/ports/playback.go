package ports

import (
	"context"
	"encoding/json"

	"github.com/avatarctic/spotify-screensaver/internal/core/domain/playback"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/cache"
)

// TokenService hands out cached upstream credentials.
type TokenService interface {
	Token(ctx context.Context) (playback.Token, error)
	Invalidate(ctx context.Context)
}

// PlaybackService serves screensaver data through the request cache.
type PlaybackService interface {
	Canvas(ctx context.Context, trackID string) (playback.Canvas, error)
	Lyrics(ctx context.Context, trackID string) (json.RawMessage, error)
	PlayerState(ctx context.Context) (json.RawMessage, error)
	CurrentTrack(ctx context.Context) (*playback.Track, error)
}

// CacheAdminService is the operator surface over the request cache.
type CacheAdminService interface {
	Stats(ctx context.Context) cache.Stats
	Clear(ctx context.Context, key string)
}
