package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/avatarctic/spotify-screensaver/internal/core/domain/playback"
)

// FetchLyrics returns the color-lyrics document for trackID as-is.
func (c *Client) FetchLyrics(ctx context.Context, token playback.Token, trackID string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("vocalRemoval", "false")
	q.Set("market", c.cfg.Market)
	u := c.cfg.Endpoints.SPClient + "/color-lyrics/v2/track/" + url.PathEscape(trackID) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("lyrics: build request: %w", err)
	}
	c.setAuthHeaders(req, token)
	req.Header.Set("Accept", "application/json")

	body, status, err := c.do(ctx, "lyrics", req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || len(body) == 0 {
		return nil, &playback.UpstreamError{Op: "lyrics", StatusCode: status, Err: playback.ErrNotFound}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("lyrics: upstream returned invalid JSON")
	}
	return json.RawMessage(body), nil
}
