package ports

import (
	"context"
	"encoding/json"

	"github.com/avatarctic/spotify-screensaver/internal/core/domain/playback"
)

// SpotifyClient performs the raw upstream calls. Implementations do no
// caching; every call reaches the network.
type SpotifyClient interface {
	// FetchToken exchanges the configured session cookie for web-player
	// credentials.
	FetchToken(ctx context.Context) (playback.Token, error)
	// FetchCanvas returns the encoded canvas response for a track.
	FetchCanvas(ctx context.Context, token playback.Token, trackID string) (playback.Canvas, error)
	// FetchLyrics returns the lyrics JSON for a track.
	FetchLyrics(ctx context.Context, token playback.Token, trackID string) (json.RawMessage, error)
	// FetchPlayerState returns the currently-playing JSON document, or
	// playback.ErrNothingPlaying.
	FetchPlayerState(ctx context.Context, token playback.Token) (json.RawMessage, error)
}
