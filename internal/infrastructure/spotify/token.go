package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avatarctic/spotify-screensaver/internal/core/domain/playback"
)

var errMissingSPDC = errors.New("spotify: sp_dc cookie is not configured")

type accessTokenResponse struct {
	ClientID                         string `json:"clientId"`
	AccessToken                      string `json:"accessToken"`
	AccessTokenExpirationTimestampMs int64  `json:"accessTokenExpirationTimestampMs"`
	IsAnonymous                      bool   `json:"isAnonymous"`
}

type clientTokenRequest struct {
	ClientData struct {
		ClientVersion string `json:"client_version"`
		ClientID      string `json:"client_id"`
		JSSDKData     struct {
			DeviceBrand string `json:"device_brand"`
			DeviceModel string `json:"device_model"`
			OS          string `json:"os"`
			OSVersion   string `json:"os_version"`
			DeviceType  string `json:"device_type"`
		} `json:"js_sdk_data"`
	} `json:"client_data"`
}

type clientTokenResponse struct {
	ResponseType string `json:"response_type"`
	GrantedToken struct {
		Token               string `json:"token"`
		ExpiresAfterSeconds int64  `json:"expires_after_seconds"`
	} `json:"granted_token"`
}

// FetchToken obtains a web-player access token from the sp_dc cookie and
// pairs it with a client token. A failing client-token exchange is not
// fatal; some endpoints work without it.
func (c *Client) FetchToken(ctx context.Context) (playback.Token, error) {
	if c.cfg.SPDC == "" {
		return playback.Token{}, errMissingSPDC
	}

	q := url.Values{}
	q.Set("reason", "transport")
	q.Set("productType", "web_player")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoints.Web+"/get_access_token?"+q.Encode(), nil)
	if err != nil {
		return playback.Token{}, fmt.Errorf("access token: build request: %w", err)
	}
	c.setCommonHeaders(req)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: "sp_dc", Value: c.cfg.SPDC})

	body, _, err := c.do(ctx, "access_token", req)
	if err != nil {
		return playback.Token{}, err
	}
	var at accessTokenResponse
	if err := json.Unmarshal(body, &at); err != nil {
		return playback.Token{}, fmt.Errorf("access token: decode: %w", err)
	}
	if at.AccessToken == "" {
		return playback.Token{}, fmt.Errorf("access token: empty token in response")
	}

	token := playback.Token{
		AccessToken: at.AccessToken,
		ClientID:    at.ClientID,
		IsAnonymous: at.IsAnonymous,
	}
	if at.AccessTokenExpirationTimestampMs > 0 {
		token.ExpiresAt = time.UnixMilli(at.AccessTokenExpirationTimestampMs)
	}

	ct, err := c.fetchClientToken(ctx, at.ClientID)
	if err != nil {
		if c.logger != nil {
			c.logger.WithError(err).Warn("client token exchange failed; continuing without it")
		}
		return token, nil
	}
	token.ClientToken = ct
	return token, nil
}

func (c *Client) fetchClientToken(ctx context.Context, clientID string) (string, error) {
	var payload clientTokenRequest
	payload.ClientData.ClientVersion = c.cfg.ClientVersion
	payload.ClientData.ClientID = clientID
	payload.ClientData.JSSDKData.DeviceBrand = "unknown"
	payload.ClientData.JSSDKData.DeviceModel = "unknown"
	payload.ClientData.JSSDKData.OS = "windows"
	payload.ClientData.JSSDKData.OSVersion = "NT 10.0"
	payload.ClientData.JSSDKData.DeviceType = "computer"

	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("client token: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoints.ClientToken+"/v1/clienttoken", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("client token: build request: %w", err)
	}
	c.setCommonHeaders(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	body, _, err := c.do(ctx, "client_token", req)
	if err != nil {
		return "", err
	}
	var ct clientTokenResponse
	if err := json.Unmarshal(body, &ct); err != nil {
		return "", fmt.Errorf("client token: decode: %w", err)
	}
	if ct.GrantedToken.Token == "" {
		return "", fmt.Errorf("client token: not granted (%s)", ct.ResponseType)
	}
	return ct.GrantedToken.Token, nil
}
