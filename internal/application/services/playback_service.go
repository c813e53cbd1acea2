package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/avatarctic/spotify-screensaver/internal/core/domain/playback"
	"github.com/avatarctic/spotify-screensaver/internal/core/ports"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/cache"
)

// progressCompensation keeps the cached currently-playing document's
// progress_ms advancing between upstream polls.
var progressCompensation = cache.WithCompensation(cache.JSONProgress("progress_ms", "timestamp"))

type PlaybackService struct {
	client ports.SpotifyClient
	tokens ports.TokenService
	cache  *cache.Cache
	logger *logrus.Logger
}

func NewPlaybackService(client ports.SpotifyClient, tokens ports.TokenService, c *cache.Cache, logger *logrus.Logger) *PlaybackService {
	return &PlaybackService{client: client, tokens: tokens, cache: c, logger: logger}
}

func (s *PlaybackService) Canvas(ctx context.Context, trackID string) (playback.Canvas, error) {
	if err := playback.ValidateTrackID(trackID); err != nil {
		return playback.Canvas{}, err
	}
	return cache.Execute(ctx, s.cache, playback.CanvasKey(trackID), func(ctx context.Context) (playback.Canvas, error) {
		return withToken(ctx, s, func(ctx context.Context, token playback.Token) (playback.Canvas, error) {
			return s.client.FetchCanvas(ctx, token, trackID)
		})
	}, playback.CanvasTTL)
}

func (s *PlaybackService) Lyrics(ctx context.Context, trackID string) (json.RawMessage, error) {
	if err := playback.ValidateTrackID(trackID); err != nil {
		return nil, err
	}
	return cache.Execute(ctx, s.cache, playback.LyricsKey(trackID), func(ctx context.Context) (json.RawMessage, error) {
		return withToken(ctx, s, func(ctx context.Context, token playback.Token) (json.RawMessage, error) {
			return s.client.FetchLyrics(ctx, token, trackID)
		})
	}, playback.LyricsTTL)
}

// PlayerState returns the currently-playing document with progress_ms
// advanced to now.
func (s *PlaybackService) PlayerState(ctx context.Context) (json.RawMessage, error) {
	return cache.Execute(ctx, s.cache, playback.PlayerProgressKey, func(ctx context.Context) (json.RawMessage, error) {
		return withToken(ctx, s, s.client.FetchPlayerState)
	}, playback.PlayerProgressTTL, progressCompensation)
}

func (s *PlaybackService) CurrentTrack(ctx context.Context) (*playback.Track, error) {
	track, err := cache.Execute(ctx, s.cache, playback.CurrentTrackKey, func(ctx context.Context) (playback.Track, error) {
		state, err := s.PlayerState(ctx)
		if err != nil {
			return playback.Track{}, err
		}
		return parseTrack(state)
	}, playback.CurrentTrackTTL)
	if err != nil {
		return nil, err
	}
	return &track, nil
}

// withToken runs fn with cached credentials and retries once with fresh ones
// when the upstream rejects them.
func withToken[T any](ctx context.Context, s *PlaybackService, fn func(context.Context, playback.Token) (T, error)) (T, error) {
	var zero T
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return zero, err
	}
	v, err := fn(ctx, token)
	if !errors.Is(err, playback.ErrUnauthorized) {
		return v, err
	}
	if s.logger != nil {
		s.logger.WithError(err).Info("upstream rejected token; refreshing")
	}
	s.tokens.Invalidate(ctx)
	token, err = s.tokens.Token(ctx)
	if err != nil {
		return zero, err
	}
	return fn(ctx, token)
}

// parseTrack extracts the screensaver's view of the playing item. Both
// tracks and podcast episodes are understood.
func parseTrack(state json.RawMessage) (playback.Track, error) {
	doc := gjson.ParseBytes(state)
	item := doc.Get("item")
	if !item.IsObject() || item.Get("id").String() == "" {
		return playback.Track{}, playback.ErrNothingPlaying
	}

	t := playback.Track{
		ID:         item.Get("id").String(),
		URI:        item.Get("uri").String(),
		Name:       item.Get("name").String(),
		DurationMs: item.Get("duration_ms").Int(),
		ProgressMs: doc.Get("progress_ms").Int(),
		IsPlaying:  doc.Get("is_playing").Bool(),
		Timestamp:  doc.Get("timestamp").Int(),
		Artists:    []string{},
	}
	if item.Get("type").String() == "episode" {
		t.Album = item.Get("show.name").String()
		t.Artists = append(t.Artists, item.Get("show.publisher").String())
		t.ImageURL = item.Get("images.0.url").String()
		return t, nil
	}
	for _, a := range item.Get("artists.#.name").Array() {
		t.Artists = append(t.Artists, a.String())
	}
	t.Album = item.Get("album.name").String()
	t.ImageURL = item.Get("album.images.0.url").String()
	return t, nil
}
