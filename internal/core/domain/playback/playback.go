package playback

import (
	"regexp"
	"time"
)

// Cache keys. Per-track keys are built with CanvasKey and LyricsKey; the
// rest are process-wide singletons.
const (
	PlayerProgressKey = "player:progress"
	CurrentTrackKey   = "player:track"
	TokenKey          = "auth:token"

	canvasPrefix = "canvas:"
	lyricsPrefix = "lyrics:"
)

// Conventional TTLs for each key family.
const (
	CanvasTTL         = 30 * time.Second
	LyricsTTL         = 60 * time.Second
	PlayerProgressTTL = 2 * time.Second
	CurrentTrackTTL   = 5 * time.Second
	TokenTTL          = time.Hour
)

// TokenExpirySkew is subtracted from an upstream token's expiry when
// deciding how long it may be cached.
const TokenExpirySkew = time.Minute

var trackIDPattern = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)

// ValidateTrackID checks that id is a base62 Spotify track id.
func ValidateTrackID(id string) error {
	if !trackIDPattern.MatchString(id) {
		return ErrInvalidTrackID
	}
	return nil
}

func CanvasKey(trackID string) string { return canvasPrefix + trackID }

func LyricsKey(trackID string) string { return lyricsPrefix + trackID }

// TrackURI returns the spotify:track URI for id.
func TrackURI(trackID string) string { return "spotify:track:" + trackID }

// Token is the pair of credentials needed for the web-player endpoints.
type Token struct {
	AccessToken string    `json:"access_token"`
	ClientToken string    `json:"client_token,omitempty"`
	ClientID    string    `json:"client_id,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
	IsAnonymous bool      `json:"is_anonymous"`
}

// CacheTTL returns how long t may be cached at now: TokenTTL, shortened so
// the entry expires TokenExpirySkew before the token does. A token that is
// already inside the skew window gets a zero TTL.
func (t Token) CacheTTL(now time.Time) time.Duration {
	ttl := TokenTTL
	if t.ExpiresAt.IsZero() {
		return ttl
	}
	if remaining := t.ExpiresAt.Sub(now) - TokenExpirySkew; remaining < ttl {
		ttl = remaining
	}
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Track is the compact view of the currently playing item served to the
// screensaver.
type Track struct {
	ID         string   `json:"id"`
	URI        string   `json:"uri"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	ImageURL   string   `json:"image_url,omitempty"`
	DurationMs int64    `json:"duration_ms"`
	ProgressMs int64    `json:"progress_ms"`
	IsPlaying  bool     `json:"is_playing"`
	Timestamp  int64    `json:"timestamp"`
}

// Canvas is an opaque upstream canvas payload.
type Canvas struct {
	TrackID     string
	ContentType string
	Body        []byte
}
