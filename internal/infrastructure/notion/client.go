package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/infrastructure/metrics"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
)

// Client is a thin HTTP client for the Notion REST API. Upstream failures
// are logged with their bodies but surface to callers only as
// domain.ErrUpstreamUnavailable so no raw Notion error detail leaks out.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Notion API client.
func NewClient(token string, logger zerolog.Logger) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint.
// Tests point this at a local server.
func NewClientWithBaseURL(token, baseURL string, logger zerolog.Logger) *Client {
	c := NewClient(token, logger)
	c.baseURL = baseURL
	return c
}

// Page is a Notion page with its property map.
type Page struct {
	ID         string     `json:"id"`
	Properties Properties `json:"properties"`
}

// Sort is one entry of a database query sort clause.
type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type queryRequest struct {
	Filter any    `json:"filter,omitempty"`
	Sorts  []Sort `json:"sorts,omitempty"`
}

type queryResponse struct {
	Results []Page `json:"results"`
}

// QueryDatabase runs a filtered query against a database and returns the
// matching pages.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter any, sorts []Sort) ([]Page, error) {
	var out queryResponse
	path := fmt.Sprintf("/databases/%s/query", databaseID)
	if err := c.do(ctx, http.MethodPost, path, queryRequest{Filter: filter, Sorts: sorts}, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// GetPage fetches a single page by id.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage patches page properties.
func (c *Client) UpdatePage(ctx context.Context, pageID string, properties map[string]Property) error {
	body := struct {
		Properties map[string]Property `json:"properties"`
	}{Properties: properties}
	return c.do(ctx, http.MethodPatch, "/pages/"+pageID, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (err error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode notion request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	defer func() { metrics.ObserveUpstream("notion", err) }()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create notion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("Notion request failed")
		return fmt.Errorf("notion %s %s: %w", method, path, domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("notion %s %s: %w", method, path, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("body", string(respBody)).
			Msg("Notion API returned non-success status")
		return fmt.Errorf("notion %s %s: status %d: %w", method, path, resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode notion response: %w", domain.ErrUpstreamUnavailable)
		}
	}
	return nil
}

// Filter builders for the handful of query shapes this portal uses.

type propertyFilter map[string]any

// EmailEquals filters on an email property.
func EmailEquals(property, value string) any {
	return propertyFilter{"property": property, "email": map[string]string{"equals": value}}
}

// TitleContains filters on a title property, substring match.
func TitleContains(property, value string) any {
	return propertyFilter{"property": property, "title": map[string]string{"contains": value}}
}

// TitleEquals filters on a title property, exact match.
func TitleEquals(property, value string) any {
	return propertyFilter{"property": property, "title": map[string]string{"equals": value}}
}

// RelationContains filters on a relation property containing a page id.
func RelationContains(property, pageID string) any {
	return propertyFilter{"property": property, "relation": map[string]string{"contains": pageID}}
}

// And combines filters conjunctively.
func And(filters ...any) any {
	return map[string]any{"and": filters}
}
