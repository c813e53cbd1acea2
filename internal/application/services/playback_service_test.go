package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	impl "github.com/avatarctic/spotify-screensaver/internal/application/services"
	"github.com/avatarctic/spotify-screensaver/internal/core/domain/playback"
	"github.com/avatarctic/spotify-screensaver/internal/infrastructure/cache"
	tmocks "github.com/avatarctic/spotify-screensaver/test/mocks"
)

const trackID = "4uLU6hMCjMI75M1A2tKUQC"

const playingTrack = `{
  "timestamp": 1714564800000,
  "progress_ms": 25000,
  "is_playing": true,
  "item": {
    "type": "track",
    "id": "4uLU6hMCjMI75M1A2tKUQC",
    "uri": "spotify:track:4uLU6hMCjMI75M1A2tKUQC",
    "name": "Never Gonna Give You Up",
    "duration_ms": 213573,
    "artists": [{"name": "Rick Astley"}, {"name": "Guest"}],
    "album": {"name": "Whenever You Need Somebody", "images": [{"url": "https://i.scdn.co/image/large"}, {"url": "https://i.scdn.co/image/small"}]}
  }
}`

const playingEpisode = `{
  "progress_ms": 100,
  "is_playing": false,
  "item": {
    "type": "episode",
    "id": "ep1",
    "name": "Episode One",
    "duration_ms": 3600000,
    "images": [{"url": "https://i.scdn.co/image/ep"}],
    "show": {"name": "The Show", "publisher": "Studio"}
  }
}`

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newPlayback(client *tmocks.SpotifyClientMock) (*impl.PlaybackService, *cache.Cache, *clock) {
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := cache.New(cache.WithClock(clk.Now))
	tokens := impl.NewTokenService(client, c, nil)
	return impl.NewPlaybackService(client, tokens, c, nil), c, clk
}

func TestCanvas_InvalidTrackIDSkipsUpstream(t *testing.T) {
	client := &tmocks.SpotifyClientMock{}
	svc, _, _ := newPlayback(client)

	_, err := svc.Canvas(context.Background(), "not-a-track")
	require.ErrorIs(t, err, playback.ErrInvalidTrackID)
	require.Equal(t, int32(0), client.CanvasCalls.Load())
	require.Equal(t, int32(0), client.TokenCalls.Load())
}

func TestCanvas_ConcurrentRequestsShareOneUpstreamCall(t *testing.T) {
	gate := make(chan struct{})
	client := &tmocks.SpotifyClientMock{}
	client.FetchCanvasFn = func(ctx context.Context, token playback.Token, id string) (playback.Canvas, error) {
		<-gate
		return playback.Canvas{TrackID: id, ContentType: "application/x-protobuf", Body: []byte("video")}, nil
	}
	svc, c, _ := newPlayback(client)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			canvas, err := svc.Canvas(context.Background(), trackID)
			assert.NoError(t, err)
			assert.Equal(t, []byte("video"), canvas.Body)
		}()
	}
	require.Eventually(t, func() bool { return client.CanvasCalls.Load() == 1 }, time.Second, time.Millisecond)
	close(gate)
	wg.Wait()

	require.Equal(t, int32(1), client.CanvasCalls.Load())
	_, ok := c.Get(playback.CanvasKey(trackID))
	require.True(t, ok)
}

func TestLyrics_CachedForTTL(t *testing.T) {
	client := &tmocks.SpotifyClientMock{}
	client.FetchLyricsFn = func(ctx context.Context, token playback.Token, id string) (json.RawMessage, error) {
		return json.RawMessage(`{"lyrics":{}}`), nil
	}
	svc, _, clk := newPlayback(client)
	ctx := context.Background()

	_, err := svc.Lyrics(ctx, trackID)
	require.NoError(t, err)
	clk.Advance(playback.LyricsTTL)
	_, err = svc.Lyrics(ctx, trackID)
	require.NoError(t, err)
	require.Equal(t, int32(1), client.LyricsCalls.Load())

	clk.Advance(time.Millisecond)
	_, err = svc.Lyrics(ctx, trackID)
	require.NoError(t, err)
	require.Equal(t, int32(2), client.LyricsCalls.Load())
}

func TestLyrics_NotFoundIsNotCached(t *testing.T) {
	client := &tmocks.SpotifyClientMock{}
	client.FetchLyricsFn = func(ctx context.Context, token playback.Token, id string) (json.RawMessage, error) {
		return nil, &playback.UpstreamError{Op: "lyrics", StatusCode: 404, Err: playback.ErrNotFound}
	}
	svc, c, _ := newPlayback(client)

	for i := 0; i < 2; i++ {
		_, err := svc.Lyrics(context.Background(), trackID)
		require.ErrorIs(t, err, playback.ErrNotFound)
	}
	require.Equal(t, int32(2), client.LyricsCalls.Load())
	_, ok := c.Get(playback.LyricsKey(trackID))
	require.False(t, ok)
}

func TestUnauthorizedRefreshesTokenOnce(t *testing.T) {
	client := &tmocks.SpotifyClientMock{}
	tokens := []string{"stale", "fresh"}
	client.FetchTokenFn = func(ctx context.Context) (playback.Token, error) {
		n := client.TokenCalls.Load()
		return playback.Token{AccessToken: tokens[n-1], ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	client.FetchLyricsFn = func(ctx context.Context, token playback.Token, id string) (json.RawMessage, error) {
		if token.AccessToken != "fresh" {
			return nil, &playback.UpstreamError{Op: "lyrics", StatusCode: 401, Err: playback.ErrUnauthorized}
		}
		return json.RawMessage(`{"ok":true}`), nil
	}
	svc, c, _ := newPlayback(client)

	doc, err := svc.Lyrics(context.Background(), trackID)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(doc))
	require.Equal(t, int32(2), client.TokenCalls.Load())
	require.Equal(t, int32(2), client.LyricsCalls.Load())

	token, ok, err := cache.GetAs[playback.Token](c, playback.TokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "fresh", token.AccessToken)
}

func TestPlayerState_ProgressAdvancesBetweenPolls(t *testing.T) {
	client := &tmocks.SpotifyClientMock{}
	client.FetchPlayerStateFn = func(ctx context.Context, token playback.Token) (json.RawMessage, error) {
		return json.RawMessage(playingTrack), nil
	}
	svc, _, clk := newPlayback(client)
	ctx := context.Background()

	first, err := svc.PlayerState(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(25000), gjson.GetBytes(first, "progress_ms").Int())

	clk.Advance(1500 * time.Millisecond)
	second, err := svc.PlayerState(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(26500), gjson.GetBytes(second, "progress_ms").Int())
	require.Equal(t, clk.Now().UnixMilli(), gjson.GetBytes(second, "timestamp").Int())
	require.Equal(t, int32(1), client.PlayerCalls.Load())

	clk.Advance(time.Second)
	_, err = svc.PlayerState(ctx)
	require.NoError(t, err)
	require.Equal(t, int32(2), client.PlayerCalls.Load(), "entry expired after its 2s ttl")
}

func TestCurrentTrack(t *testing.T) {
	client := &tmocks.SpotifyClientMock{}
	client.FetchPlayerStateFn = func(ctx context.Context, token playback.Token) (json.RawMessage, error) {
		return json.RawMessage(playingTrack), nil
	}
	svc, _, _ := newPlayback(client)

	track, err := svc.CurrentTrack(context.Background())
	require.NoError(t, err)
	assert.Equal(t, trackID, track.ID)
	assert.Equal(t, "Never Gonna Give You Up", track.Name)
	assert.Equal(t, []string{"Rick Astley", "Guest"}, track.Artists)
	assert.Equal(t, "Whenever You Need Somebody", track.Album)
	assert.Equal(t, "https://i.scdn.co/image/large", track.ImageURL)
	assert.Equal(t, int64(213573), track.DurationMs)
	assert.True(t, track.IsPlaying)

	_, err = svc.CurrentTrack(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), client.PlayerCalls.Load())
}

func TestCurrentTrack_Episode(t *testing.T) {
	client := &tmocks.SpotifyClientMock{}
	client.FetchPlayerStateFn = func(ctx context.Context, token playback.Token) (json.RawMessage, error) {
		return json.RawMessage(playingEpisode), nil
	}
	svc, _, _ := newPlayback(client)

	track, err := svc.CurrentTrack(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "The Show", track.Album)
	assert.Equal(t, []string{"Studio"}, track.Artists)
	assert.Equal(t, "https://i.scdn.co/image/ep", track.ImageURL)
	assert.False(t, track.IsPlaying)
}

func TestCurrentTrack_NothingPlaying(t *testing.T) {
	client := &tmocks.SpotifyClientMock{}
	svc, c, _ := newPlayback(client)

	_, err := svc.CurrentTrack(context.Background())
	require.ErrorIs(t, err, playback.ErrNothingPlaying)

	client.FetchPlayerStateFn = func(ctx context.Context, token playback.Token) (json.RawMessage, error) {
		return json.RawMessage(`{"is_playing":true,"currently_playing_type":"ad","item":null}`), nil
	}
	c.Clear()
	_, err = svc.CurrentTrack(context.Background())
	require.ErrorIs(t, err, playback.ErrNothingPlaying)
	require.Equal(t, 0, c.Stats().PendingRequests)
}

func TestTokenFailurePropagates(t *testing.T) {
	boom := errors.New("cookie expired")
	client := &tmocks.SpotifyClientMock{FetchTokenFn: func(ctx context.Context) (playback.Token, error) { return playback.Token{}, boom }}
	svc, _, _ := newPlayback(client)

	_, err := svc.Canvas(context.Background(), trackID)
	require.ErrorIs(t, err, boom)
	require.Equal(t, int32(0), client.CanvasCalls.Load())
}
