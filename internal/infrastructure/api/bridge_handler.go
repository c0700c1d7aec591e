package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/CampusStoresCanada/csc-institution-management/internal/application"
	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/CampusStoresCanada/csc-institution-management/internal/token"
	"github.com/rs/zerolog"
)

// defaultOrganizationName labels sessions for contacts with no
// organization relation.
const defaultOrganizationName = "Campus Stores Canada"

// BridgeHandler implements the Circle.so side of authentication: the
// membership-verification login and the small OAuth provider Circle.so
// calls back into.
type BridgeHandler struct {
	circle       ports.CircleVerifier
	sessions     *application.SessionService
	codec        *token.Codec
	clientID     string
	clientSecret string
	frontendURL  string
	logger       zerolog.Logger
}

// NewBridgeHandler creates the Circle.so bridge handler.
func NewBridgeHandler(
	circle ports.CircleVerifier,
	sessions *application.SessionService,
	codec *token.Codec,
	clientID, clientSecret, frontendURL string,
	logger zerolog.Logger,
) *BridgeHandler {
	return &BridgeHandler{
		circle:       circle,
		sessions:     sessions,
		codec:        codec,
		clientID:     clientID,
		clientSecret: clientSecret,
		frontendURL:  frontendURL,
		logger:       logger,
	}
}

type verifyRequest struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
}

// Verify checks Circle.so community membership and maps the member onto a
// directory contact, returning a portal session.
func (h *BridgeHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" && req.UserID == "" {
		respondError(w, http.StatusBadRequest, "Either email or user_id is required",
			"Please provide your Circle.so user information")
		return
	}

	member, err := h.circle.Verify(r.Context(), req.Email, req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found in Circle.so community",
				"Please make sure you have joined the Campus Stores Canada community on Circle.so first.")
			return
		}
		h.logger.Error().Err(err).Msg("Circle.so verification failed")
		respondError(w, http.StatusUnauthorized, "Circle.so authentication failed",
			"Could not verify your Circle.so membership. Please try again.")
		return
	}

	searchEmail := req.Email
	if searchEmail == "" {
		searchEmail = member.Email
	}

	principal := domain.Principal{ID: member.ID, Email: member.Email, Name: member.Name}
	issued, err := h.sessions.IssueForEmail(r.Context(), principal, searchEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Work email not found in CSC database",
				fmt.Sprintf("Your Circle.so email (%s) is not associated with any Campus Stores Canada organization. Please contact steve@campusstores.ca to link your accounts.", searchEmail))
			return
		}
		respondDomainError(w, h.logger, err, "Verification failed")
		return
	}

	organizationName := defaultOrganizationName
	if issued.Organization != nil && issued.Organization.Name != "" {
		organizationName = issued.Organization.Name
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Authentication verified successfully",
		"session_token": issued.Token,
		"user": map[string]any{
			"circle": map[string]any{
				"id":         member.ID,
				"name":       member.Name,
				"email":      member.Email,
				"avatar_url": member.AvatarURL,
			},
			"csc": map[string]any{
				"contact_name": issued.ContactName,
				"work_email":   searchEmail,
				"organization": organizationName,
				"role":         issued.Role,
			},
		},
	})
}

// bridgeState is the OAuth request snapshot carried through the login form
// as an opaque blob.
type bridgeState struct {
	ClientID    string `json:"client_id"`
	RedirectURI string `json:"redirect_uri"`
	State       string `json:"state"`
	Timestamp   int64  `json:"timestamp"`
}

// Authorize is the OAuth authorization endpoint Circle.so redirects
// members to. It validates the request and forwards to the login form.
func (h *BridgeHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID := q.Get("client_id")
	redirectURI := q.Get("redirect_uri")

	if clientID == "" || redirectURI == "" || q.Get("response_type") != "code" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "invalid_request",
			"error_description": "Missing or invalid OAuth parameters",
		})
		return
	}
	if clientID != h.clientID {
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error":             "unauthorized_client",
			"error_description": "Invalid client_id",
		})
		return
	}

	blob, _ := json.Marshal(bridgeState{
		ClientID:    clientID,
		RedirectURI: redirectURI,
		State:       q.Get("state"),
		Timestamp:   time.Now().UnixMilli(),
	})
	encoded := base64.StdEncoding.EncodeToString(blob)
	http.Redirect(w, r, h.frontendURL+"/circle-login?oauth_state="+url.QueryEscape(encoded), http.StatusFound)
}

type authenticateRequest struct {
	Email      string `json:"email"`
	OAuthState string `json:"oauth_state"`
}

// Authenticate handles the login-form submission: it verifies the email
// against the directory and mints the authorization code Circle.so will
// exchange.
func (h *BridgeHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.OAuthState == "" {
		respondError(w, http.StatusBadRequest, "Email and OAuth state are required", "")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.OAuthState)
	var state bridgeState
	if err != nil || json.Unmarshal(raw, &state) != nil {
		respondError(w, http.StatusBadRequest, "Invalid OAuth state", "")
		return
	}
	if time.Since(time.UnixMilli(state.Timestamp)) > token.AuthCodeTTL {
		respondError(w, http.StatusBadRequest, "OAuth request has expired. Please try again.", "")
		return
	}

	auth, err := h.sessions.AuthenticateBridge(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusForbidden,
				fmt.Sprintf("The email %s is not registered with Campus Stores Canada. Please check your email address or contact steve@campusstores.ca for assistance.", req.Email), "")
			return
		}
		respondDomainError(w, h.logger, err,
			"Authentication failed. Please try again or contact steve@campusstores.ca for assistance.")
		return
	}

	redirectParams := url.Values{"code": {auth.Code}, "state": {state.State}}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"redirect_url": state.RedirectURI + "?" + redirectParams.Encode(),
		"user": map[string]any{
			"name":         auth.Name,
			"organization": auth.Organization,
			"role":         auth.Role,
		},
	})
}

type tokenRequest struct {
	Code         string `json:"code"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
}

// Token is the OAuth token endpoint. It exchanges a fresh authorization
// code for a one-hour access token.
func (h *BridgeHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code == "" || req.ClientID == "" || req.ClientSecret == "" || req.GrantType != "authorization_code" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "invalid_request",
			"error_description": "Missing or invalid parameters",
		})
		return
	}
	if req.ClientID != h.clientID || req.ClientSecret != h.clientSecret {
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error":             "invalid_client",
			"error_description": "Invalid client credentials",
		})
		return
	}

	code, err := h.codec.DecodeAuthCode(req.Code)
	if err != nil {
		description := "Invalid authorization code"
		if errors.Is(err, domain.ErrSessionExpired) {
			description = "Authorization code has expired"
		}
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "invalid_grant",
			"error_description": description,
		})
		return
	}

	accessToken, _ := h.codec.IssueAccessToken(code)
	h.logger.Info().Str("email", code.Email).Msg("OAuth token issued")
	respondJSON(w, http.StatusOK, map[string]any{
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   int(token.AccessTokenTTL.Seconds()),
		"scope":        "profile email",
	})
}

// Profile returns the member profile for a bridge access token, in the
// shape Circle.so expects.
func (h *BridgeHandler) Profile(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error":             "invalid_token",
			"error_description": "Missing or invalid authorization header",
		})
		return
	}

	claims, err := h.codec.DecodeAccessToken(strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			respondJSON(w, http.StatusUnauthorized, map[string]string{
				"error":             "token_expired",
				"error_description": "Access token has expired",
			})
			return
		}
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error":             "invalid_token",
			"error_description": "Invalid access token",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":           claims.Sub,
		"email":        claims.Email,
		"name":         claims.Name,
		"avatar_url":   nil,
		"organization": claims.Organization,
		"role":         claims.Role,
	})
}
