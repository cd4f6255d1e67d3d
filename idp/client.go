// Package idp talks to the OpenID Connect identity provider on the
// endpoints the session lifecycle needs directly: the refresh_token grant
// and the server-side logout. The interactive authorization-code flow goes
// through provider discovery in the server package instead.
package idp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atinroy/leetly-web/internal/config"
	apperrors "github.com/atinroy/leetly-web/internal/errors"
)

// Keycloak OpenID Connect paths relative to the realm issuer.
const (
	tokenPath  = "/protocol/openid-connect/token"
	logoutPath = "/protocol/openid-connect/logout"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TokenSet is the outcome of a successful token grant with the relative
// expiry already resolved to an absolute one.
type TokenSet struct {
	AccessToken string

	// RefreshToken is empty when the provider did not rotate it; the
	// caller keeps reusing the previous one in that case.
	RefreshToken string

	// ExpiresAt is the access token expiry in epoch seconds.
	ExpiresAt int64
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Client is a stateless HTTP client for the provider's token and logout
// endpoints. The embedded timeout bounds every call; a refresh that hangs
// is a failed refresh, never an indefinite wait.
type Client struct {
	issuerURL    string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

func NewClient(cfg config.AuthConfig) *Client {
	return &Client{
		issuerURL:    strings.TrimSuffix(cfg.GetIssuerURL(), "/"),
		clientID:     cfg.GetClientID(),
		clientSecret: cfg.GetClientSecret(),
		httpClient:   &http.Client{Timeout: cfg.GetRefreshTimeout()},
	}
}

// Refresh executes exactly one refresh_token grant. There are no retries:
// backoff policy, if ever wanted, belongs to the caller.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrNoRefreshToken
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.clientID)
	if c.clientSecret != "" {
		// Confidential client; public clients omit the secret entirely.
		form.Set("client_secret", c.clientSecret)
	}
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.issuerURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Client Refresh] create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Client Refresh] token request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Client Refresh] read token response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The body may carry provider error hints; keep it in the debug
		// log, out of the error value.
		log.Debug().Int("status", resp.StatusCode).Str("body", string(body)).Msg("Refresh grant rejected")
		return nil, apperrors.Wrapf(apperrors.ErrRefreshRejected, "[Client Refresh] status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, apperrors.Wrapf(err, "[Client Refresh] parse token response")
	}

	return &TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    NowTimeFunc().Unix() + tr.ExpiresIn,
	}, nil
}

// Logout asks the provider to invalidate the refresh token server-side.
// Call sites treat it as best-effort: a failure is logged, never surfaced
// to the user.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	if c.clientSecret != "" {
		form.Set("client_secret", c.clientSecret)
	}
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.issuerURL+logoutPath, strings.NewReader(form.Encode()))
	if err != nil {
		return apperrors.Wrapf(err, "[Client Logout] create logout request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrapf(err, "[Client Logout] logout request failed")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.Wrapf(apperrors.ErrLogoutRejected, "[Client Logout] status %d", resp.StatusCode)
	}
	return nil
}
