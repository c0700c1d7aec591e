package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/CampusStoresCanada/csc-institution-management/internal/application"
	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const oauthStateTTL = 10 * time.Minute

// AuthHandler serves the Google login flow and the account-linking
// endpoints that bind a login identity to an organization.
type AuthHandler struct {
	google      ports.GoogleOAuth
	states      ports.StateStore
	sessions    *application.SessionService
	frontendURL string
	logger      zerolog.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(
	google ports.GoogleOAuth,
	states ports.StateStore,
	sessions *application.SessionService,
	frontendURL string,
	logger zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		google:      google,
		states:      states,
		sessions:    sessions,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// InitGoogle starts the Google OAuth flow and returns the authorization URL.
func (h *AuthHandler) InitGoogle(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	err := h.states.Save(r.Context(), state, domain.OAuthState{
		Provider:  "google",
		ReturnURL: r.URL.Query().Get("return_url"),
		CreatedAt: time.Now(),
	}, oauthStateTTL)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to save OAuth state")
		respondError(w, http.StatusInternalServerError, "Failed to start login", "")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"authUrl": h.google.AuthURL(state)})
}

// GoogleCallback completes the Google OAuth flow. Linked contacts land on
// the management page with a fresh session; unlinked identities are sent
// to the organization-linking form.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if providerErr := q.Get("error"); providerErr != "" {
		h.logger.Warn().Str("error", providerErr).Msg("Google OAuth returned an error")
		h.redirectError(w, r, "oauth_error")
		return
	}
	code := q.Get("code")
	if code == "" {
		h.redirectError(w, r, "missing_code")
		return
	}
	state, err := h.states.Take(r.Context(), q.Get("state"))
	if err != nil || state == nil {
		h.logger.Warn().Err(err).Msg("OAuth state missing or expired")
		h.redirectError(w, r, "invalid_state")
		return
	}

	identity, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error().Err(err).Msg("Google code exchange failed")
		h.redirectError(w, r, "oauth_failed")
		return
	}

	principal := domain.Principal{ID: identity.ID, Email: identity.Email, Name: identity.Name}
	issued, err := h.sessions.IssueForEmail(r.Context(), principal, identity.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Not in the directory yet; hand the identity to the linking form.
			payload, _ := json.Marshal(identity)
			http.Redirect(w, r,
				h.frontendURL+"/link-organization?google_user="+url.QueryEscape(string(payload)),
				http.StatusFound)
			return
		}
		h.logger.Error().Err(err).Msg("Session issuance failed after Google login")
		h.redirectError(w, r, "oauth_failed")
		return
	}

	http.Redirect(w, r, h.frontendURL+"/manage?session="+issued.Token, http.StatusFound)
}

func (h *AuthHandler) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, fmt.Sprintf("%s/?error=%s", h.frontendURL, code), http.StatusFound)
}

type linkAccountRequest struct {
	GoogleUser       domain.GoogleIdentity `json:"googleUser"`
	OrganizationName string                `json:"organizationName"`
	WorkEmail        string                `json:"workEmail"`
}

// LinkAccount binds a Google identity to an organization by work email and
// returns a fully linked session.
func (h *AuthHandler) LinkAccount(w http.ResponseWriter, r *http.Request) {
	var req linkAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.GoogleUser.Email == "" || req.OrganizationName == "" || req.WorkEmail == "" {
		respondError(w, http.StatusBadRequest, "Google user, organization name, and work email are required", "")
		return
	}

	issued, err := h.sessions.LinkAccount(r.Context(), req.GoogleUser, req.OrganizationName, req.WorkEmail)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			respondError(w, http.StatusNotFound, "Organization not found",
				fmt.Sprintf("We couldn't find %q in our records. Please check the spelling or contact steve@campusstores.ca for assistance.", req.OrganizationName))
		case errors.Is(err, domain.ErrForbidden):
			respondError(w, http.StatusForbidden, "Work email not found",
				fmt.Sprintf("The email %s is not associated with %s. Please use an email address that's registered with your organization or contact steve@campusstores.ca for assistance.", req.WorkEmail, req.OrganizationName))
		default:
			respondDomainError(w, h.logger, err, "Failed to link account")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("Successfully linked %s to %s", req.GoogleUser.Name, req.OrganizationName),
		"sessionToken": issued.Token,
		"user": map[string]any{
			"name":         issued.ContactName,
			"organization": req.OrganizationName,
			"role":         issued.Role,
		},
	})
}

type requestAccessRequest struct {
	OrganizationName string `json:"organizationName"`
	ContactEmail     string `json:"contactEmail"`
}

// RequestAccess verifies membership and emails a pre-authenticated
// management link to the contact.
func (h *AuthHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	var req requestAccessRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.OrganizationName == "" || req.ContactEmail == "" {
		respondError(w, http.StatusBadRequest, "Organization name and contact email are required", "")
		return
	}

	if err := h.sessions.RequestAccess(r.Context(), req.OrganizationName, req.ContactEmail); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			respondError(w, http.StatusNotFound, "Organization not found",
				fmt.Sprintf("We couldn't find %q in our records. Please check the spelling or contact steve@campusstores.ca for assistance.", req.OrganizationName))
		case errors.Is(err, domain.ErrForbidden):
			respondError(w, http.StatusForbidden, "Email not associated with organization",
				fmt.Sprintf("The email %s is not associated with %s. Please use an email address that's registered with your organization or contact steve@campusstores.ca for assistance.", req.ContactEmail, req.OrganizationName))
		default:
			respondDomainError(w, h.logger, err, "Failed to process access request")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Access link sent to %s! Check your email for the secure management link.", req.ContactEmail),
	})
}
