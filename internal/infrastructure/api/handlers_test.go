package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CampusStoresCanada/csc-institution-management/internal/application"
	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	appmiddleware "github.com/CampusStoresCanada/csc-institution-management/internal/infrastructure/middleware"
	"github.com/CampusStoresCanada/csc-institution-management/internal/token"
)

// stubDirectory serves a fixed one-organization roster.
type stubDirectory struct {
	organization domain.Organization
	contacts     []domain.Contact
}

func (s *stubDirectory) FindContactByEmail(_ context.Context, email string) (*domain.Contact, error) {
	for _, c := range s.contacts {
		if c.Email == email {
			match := c
			return &match, nil
		}
	}
	return nil, fmt.Errorf("contact %s: %w", email, domain.ErrNotFound)
}

func (s *stubDirectory) ListContactsByOrganization(_ context.Context, organizationID string) ([]domain.Contact, error) {
	var out []domain.Contact
	for _, c := range s.contacts {
		if c.OrganizationID == organizationID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubDirectory) GetOrganization(_ context.Context, organizationID string) (*domain.Organization, error) {
	if organizationID != s.organization.ID {
		return nil, fmt.Errorf("organization %s: %w", organizationID, domain.ErrNotFound)
	}
	org := s.organization
	return &org, nil
}

func (s *stubDirectory) FindOrganizationByName(_ context.Context, name string) (*domain.Organization, error) {
	if name != s.organization.Name {
		return nil, fmt.Errorf("organization %q: %w", name, domain.ErrNotFound)
	}
	org := s.organization
	return &org, nil
}

func (s *stubDirectory) UpdateOrganization(_ context.Context, _ string, _ domain.OrganizationUpdate) error {
	return nil
}

func (s *stubDirectory) UpdateContact(_ context.Context, _ string, _ domain.ContactUpdate) error {
	return nil
}

func (s *stubDirectory) FindContactInOrganization(_ context.Context, organizationID, email string) (*domain.Contact, error) {
	for _, c := range s.contacts {
		if c.OrganizationID == organizationID && c.Email == email {
			match := c
			return &match, nil
		}
	}
	return nil, fmt.Errorf("contact %s: %w", email, domain.ErrNotFound)
}

func (s *stubDirectory) SetPrimaryContact(_ context.Context, _, _ string) error { return nil }

func testDirectory() *stubDirectory {
	return &stubDirectory{
		organization: domain.Organization{ID: "org-1", Name: "Example University"},
		contacts: []domain.Contact{
			{ID: "contact-primary", Name: "Alice Admin", Email: "alice@university.ca", IsPrimary: true, OrganizationID: "org-1"},
			{ID: "contact-member", Name: "Bob Member", Email: "bob@university.ca", OrganizationID: "org-1"},
		},
	}
}

func testRouter(t *testing.T) (*chi.Mux, *token.Codec) {
	t.Helper()
	logger := zerolog.Nop()
	codec := token.NewCodec("")
	dir := testDirectory()

	sessions := application.NewSessionService(dir, codec, nil, "https://portal.example.com", logger)
	organizations := application.NewOrganizationService(dir, logger)
	team := application.NewTeamService(dir, logger)

	bridge := NewBridgeHandler(nil, sessions, codec, "circle-client", "circle-secret", "https://portal.example.com", logger)
	orgs := NewOrganizationHandler(organizations, team, logger)

	r := chi.NewRouter()
	r.Get("/api/auth/circle/authorize", bridge.Authorize)
	r.Post("/api/auth/circle/authenticate", bridge.Authenticate)
	r.Post("/api/auth/circle/token", bridge.Token)
	r.Get("/api/auth/circle/profile", bridge.Profile)
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.RequireSession(codec, logger))
		r.Get("/api/organization", orgs.Get)
		r.Patch("/api/organization", orgs.Update)
		r.Get("/api/organization/contacts", orgs.ListContacts)
	})
	return r, codec
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBridgeOAuthFlow(t *testing.T) {
	router, _ := testRouter(t)

	// Authorize: Circle.so sends the member to us.
	req := httptest.NewRequest(http.MethodGet,
		"/api/auth/circle/authorize?client_id=circle-client&redirect_uri=https%3A%2F%2Fapp.circle.so%2Fcb&response_type=code&state=xyz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/circle-login", loc.Path)
	oauthState := loc.Query().Get("oauth_state")
	require.NotEmpty(t, oauthState)

	// Authenticate: the login form posts the member's email.
	rec = postJSON(t, router, "/api/auth/circle/authenticate", map[string]string{
		"email":       "alice@university.ca",
		"oauth_state": oauthState,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var authResp struct {
		RedirectURL string `json:"redirect_url"`
		User        struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &authResp))
	assert.Equal(t, "primary", authResp.User.Role)

	redirect, err := url.Parse(authResp.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "app.circle.so", redirect.Host)
	assert.Equal(t, "xyz", redirect.Query().Get("state"))
	code := redirect.Query().Get("code")
	require.NotEmpty(t, code)

	// Token: Circle.so exchanges the code server to server.
	rec = postJSON(t, router, "/api/auth/circle/token", map[string]string{
		"code":          code,
		"client_id":     "circle-client",
		"client_secret": "circle-secret",
		"grant_type":    "authorization_code",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokenResp))
	assert.Equal(t, "Bearer", tokenResp.TokenType)
	assert.Equal(t, 3600, tokenResp.ExpiresIn)

	// Profile: Circle.so reads the member profile with the access token.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/circle/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tokenResp.AccessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "contact-primary", profile["id"])
	assert.Equal(t, "alice@university.ca", profile["email"])
	assert.Equal(t, "Example University", profile["organization"])
}

func TestBridgeAuthorize_RejectsUnknownClient(t *testing.T) {
	router, _ := testRouter(t)
	req := httptest.NewRequest(http.MethodGet,
		"/api/auth/circle/authorize?client_id=evil&redirect_uri=https%3A%2F%2Fevil.example%2Fcb&response_type=code", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized_client")
}

func TestBridgeToken_RejectsBadCredentials(t *testing.T) {
	router, _ := testRouter(t)
	rec := postJSON(t, router, "/api/auth/circle/token", map[string]string{
		"code":          "whatever",
		"client_id":     "circle-client",
		"client_secret": "wrong",
		"grant_type":    "authorization_code",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_client")
}

func TestBridgeAuthenticate_UnknownEmail(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet,
		"/api/auth/circle/authorize?client_id=circle-client&redirect_uri=https%3A%2F%2Fapp.circle.so%2Fcb&response_type=code", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)

	rec = postJSON(t, router, "/api/auth/circle/authenticate", map[string]string{
		"email":       "stranger@nowhere.ca",
		"oauth_state": loc.Query().Get("oauth_state"),
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "steve@campusstores.ca")
}

func memberToken(t *testing.T, codec *token.Codec) string {
	t.Helper()
	tok, _ := codec.IssueSession(
		domain.Principal{ID: "g-2", Email: "bob@university.ca", Name: "Bob Member"},
		&domain.OrganizationRef{ID: "org-1", Name: "Example University"},
		domain.RoleMember, "contact-member",
	)
	return tok
}

func TestOrganizationGet_RequiresBearer(t *testing.T) {
	router, _ := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/organization", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No session token provided")
}

func TestOrganizationGet_WithSession(t *testing.T) {
	router, codec := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/organization", nil)
	req.Header.Set("Authorization", "Bearer "+memberToken(t, codec))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Organization struct {
			Name    string `json:"name"`
			CanEdit bool   `json:"canEdit"`
		} `json:"organization"`
		InstitutionSizeOptions []domain.SelectOption `json:"institutionSizeOptions"`
		ProvinceOptions        []domain.SelectOption `json:"provinceOptions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Example University", resp.Organization.Name)
	assert.False(t, resp.Organization.CanEdit, "member cannot edit")
	assert.Len(t, resp.InstitutionSizeOptions, 5)
	assert.Len(t, resp.ProvinceOptions, 14)
}

func primaryToken(t *testing.T, codec *token.Codec) string {
	t.Helper()
	tok, _ := codec.IssueSession(
		domain.Principal{ID: "g-1", Email: "alice@university.ca", Name: "Alice Admin"},
		&domain.OrganizationRef{ID: "org-1", Name: "Example University"},
		domain.RolePrimary, "contact-primary",
	)
	return tok
}

func TestOrganizationUpdate_EmptyBodyStillForbiddenForMember(t *testing.T) {
	router, codec := testRouter(t)

	payload, _ := json.Marshal(map[string]any{"organizationUpdates": map[string]any{}})
	req := httptest.NewRequest(http.MethodPatch, "/api/organization", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+memberToken(t, codec))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only the primary contact can update organization details")
}

func TestOrganizationUpdate_PrimaryEmptyBodyIsNoOp(t *testing.T) {
	router, codec := testRouter(t)

	payload, _ := json.Marshal(map[string]any{"organizationUpdates": map[string]any{}})
	req := httptest.NewRequest(http.MethodPatch, "/api/organization", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+primaryToken(t, codec))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No changes detected")
}

func TestOrganizationUpdate_MemberForbidden(t *testing.T) {
	router, codec := testRouter(t)

	payload, _ := json.Marshal(map[string]any{
		"organizationUpdates": map[string]any{"institutionName": "Hijacked U"},
	})
	req := httptest.NewRequest(http.MethodPatch, "/api/organization", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+memberToken(t, codec))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only the primary contact can update organization details")
}

func TestListContacts_FlagsForMember(t *testing.T) {
	router, codec := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/organization/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+memberToken(t, codec))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TeamMembers []struct {
			ID            string `json:"id"`
			IsCurrentUser bool   `json:"isCurrentUser"`
			CanEdit       bool   `json:"canEdit"`
		} `json:"teamMembers"`
		UserRole      string `json:"userRole"`
		CurrentUserID string `json:"currentUserId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "member", resp.UserRole)
	assert.Equal(t, "contact-member", resp.CurrentUserID)
	for _, m := range resp.TeamMembers {
		assert.Equal(t, m.ID == "contact-member", m.CanEdit)
		assert.Equal(t, m.ID == "contact-member", m.IsCurrentUser)
	}
}
