// Package oauth holds the outbound OAuth provider adapters. Both flows are
// plain authorization-code exchanges; the core consumes only the verified
// identity that comes back.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/infrastructure/metrics"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/rs/zerolog"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleClient implements the Google authorization-code grant.
type GoogleClient struct {
	clientID     string
	clientSecret string
	redirectURI  string
	authURL      string
	tokenURL     string
	userInfoURL  string
	httpClient   *http.Client
	logger       zerolog.Logger
}

var _ ports.GoogleOAuth = (*GoogleClient)(nil)

// NewGoogleClient creates a Google OAuth client. redirectURI must match the
// console-registered callback.
func NewGoogleClient(clientID, clientSecret, redirectURI string, logger zerolog.Logger) *GoogleClient {
	return &GoogleClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authURL:      googleAuthURL,
		tokenURL:     googleTokenURL,
		userInfoURL:  googleUserInfoURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		logger:       logger,
	}
}

func (g *GoogleClient) AuthURL(state string) string {
	params := url.Values{}
	params.Set("client_id", g.clientID)
	params.Set("redirect_uri", g.redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", "openid email profile")
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")
	params.Set("state", state)
	return g.authURL + "?" + params.Encode()
}

// Exchange trades an authorization code for tokens and fetches the user's
// verified profile.
func (g *GoogleClient) Exchange(ctx context.Context, code string) (*domain.GoogleIdentity, error) {
	accessToken, err := g.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return g.userInfo(ctx, accessToken)
}

func (g *GoogleClient) exchangeCode(ctx context.Context, code string) (_ string, err error) {
	defer func() { metrics.ObserveUpstream("google", err) }()

	values := url.Values{}
	values.Set("code", code)
	values.Set("client_id", g.clientID)
	values.Set("client_secret", g.clientSecret)
	values.Set("redirect_uri", g.redirectURI)
	values.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenURL, strings.NewReader(values.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Msg("Google token exchange failed")
		return "", fmt.Errorf("google token exchange: %w", domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		g.logger.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("Google token exchange returned non-success status")
		return "", fmt.Errorf("google token exchange: status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return "", fmt.Errorf("failed to decode google token response: %w", domain.ErrUpstreamUnavailable)
	}
	return tokens.AccessToken, nil
}

func (g *GoogleClient) userInfo(ctx context.Context, accessToken string) (_ *domain.GoogleIdentity, err error) {
	defer func() { metrics.ObserveUpstream("google", err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Msg("Google userinfo fetch failed")
		return nil, fmt.Errorf("google userinfo: %w", domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo: status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	var identity domain.GoogleIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode google userinfo: %w", domain.ErrUpstreamUnavailable)
	}
	return &identity, nil
}
