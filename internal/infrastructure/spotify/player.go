package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/avatarctic/spotify-screensaver/internal/core/domain/playback"
)

// FetchPlayerState returns the currently-playing document. An empty 204
// response maps to playback.ErrNothingPlaying.
func (c *Client) FetchPlayerState(ctx context.Context, token playback.Token) (json.RawMessage, error) {
	u := c.cfg.Endpoints.API + "/v1/me/player/currently-playing?additional_types=track,episode&market=" + c.cfg.Market
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("player: build request: %w", err)
	}
	c.setAuthHeaders(req, token)
	req.Header.Set("Accept", "application/json")

	body, status, err := c.do(ctx, "player", req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || len(body) == 0 {
		return nil, playback.ErrNothingPlaying
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("player: upstream returned invalid JSON")
	}
	return json.RawMessage(body), nil
}
