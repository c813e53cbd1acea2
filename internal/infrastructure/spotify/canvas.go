package spotify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/avatarctic/spotify-screensaver/internal/core/domain/playback"
)

const canvasContentType = "application/x-protobuf"

// encodeCanvasRequest builds the canvaz request message:
//
//	message CanvasRequest {
//	  message Entity { string entity_uri = 1; }
//	  repeated Entity entities = 1;
//	}
func encodeCanvasRequest(trackURIs ...string) []byte {
	var out []byte
	for _, uri := range trackURIs {
		var entity []byte
		entity = protowire.AppendTag(entity, 1, protowire.BytesType)
		entity = protowire.AppendString(entity, uri)

		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendBytes(out, entity)
	}
	return out
}

// FetchCanvas posts a canvaz request for trackID. The protobuf response is
// returned undecoded.
func (c *Client) FetchCanvas(ctx context.Context, token playback.Token, trackID string) (playback.Canvas, error) {
	body := encodeCanvasRequest(playback.TrackURI(trackID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoints.SPClient+"/canvaz-cache/v0/canvases", bytes.NewReader(body))
	if err != nil {
		return playback.Canvas{}, fmt.Errorf("canvas: build request: %w", err)
	}
	c.setAuthHeaders(req, token)
	req.Header.Set("Content-Type", canvasContentType)
	req.Header.Set("Accept", canvasContentType)

	resp, _, err := c.do(ctx, "canvas", req)
	if err != nil {
		return playback.Canvas{}, err
	}
	if len(resp) == 0 {
		return playback.Canvas{}, &playback.UpstreamError{Op: "canvas", StatusCode: http.StatusNoContent, Err: playback.ErrNotFound}
	}
	return playback.Canvas{TrackID: trackID, ContentType: canvasContentType, Body: resp}, nil
}
