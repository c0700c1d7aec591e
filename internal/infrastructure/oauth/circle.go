package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/infrastructure/metrics"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/rs/zerolog"
)

const circleBaseURL = "https://app.circle.so"

// CircleClient verifies community membership through Circle.so's headless
// auth API: mint a member auth token by email or member id, then read the
// member's profile with it.
type CircleClient struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ ports.CircleVerifier = (*CircleClient)(nil)

// NewCircleClient creates a Circle.so headless-auth client.
func NewCircleClient(apiToken string, logger zerolog.Logger) *CircleClient {
	return &CircleClient{
		apiToken:   apiToken,
		baseURL:    circleBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

func (c *CircleClient) Verify(ctx context.Context, email, memberID string) (*domain.CircleMember, error) {
	accessToken, err := c.authToken(ctx, email, memberID)
	if err != nil {
		return nil, err
	}
	member, err := c.profile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	member.AccessToken = accessToken
	return member, nil
}

func (c *CircleClient) authToken(ctx context.Context, email, memberID string) (_ string, err error) {
	defer func() { metrics.ObserveUpstream("circle", err) }()

	payload := map[string]string{}
	if email != "" {
		payload["email"] = email
	}
	if memberID != "" {
		payload["community_member_id"] = memberID
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/headless/auth_token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create circle auth request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("Circle auth token request failed")
		return "", fmt.Errorf("circle auth: %w", domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("circle member: %w", domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error().Int("status", resp.StatusCode).Str("body", string(respBody)).Msg("Circle auth token returned non-success status")
		return "", fmt.Errorf("circle auth: status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", fmt.Errorf("failed to decode circle auth response: %w", domain.ErrUpstreamUnavailable)
	}
	if auth.AccessToken == "" {
		return "", fmt.Errorf("circle auth returned no access token: %w", domain.ErrUpstreamUnavailable)
	}
	return auth.AccessToken, nil
}

func (c *CircleClient) profile(ctx context.Context, accessToken string) (_ *domain.CircleMember, err error) {
	defer func() { metrics.ObserveUpstream("circle", err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/headless/v1/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create circle profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("Circle profile fetch failed")
		return nil, fmt.Errorf("circle profile: %w", domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("circle profile: status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	var profile struct {
		Member struct {
			ID        int64  `json:"id"`
			Email     string `json:"email"`
			Name      string `json:"name"`
			AvatarURL string `json:"avatar_url"`
		} `json:"member"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode circle profile: %w", domain.ErrUpstreamUnavailable)
	}

	return &domain.CircleMember{
		ID:        strconv.FormatInt(profile.Member.ID, 10),
		Email:     profile.Member.Email,
		Name:      profile.Member.Name,
		AvatarURL: profile.Member.AvatarURL,
	}, nil
}
