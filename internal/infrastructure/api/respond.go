package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/rs/zerolog"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorBody is the common error envelope. Message carries user-facing
// guidance and is omitted when there is none.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondError(w http.ResponseWriter, status int, errText, message string) {
	respondJSON(w, status, errorBody{Error: errText, Message: message})
}

// errorStatus maps the domain error taxonomy onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNoOrganization), errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError maps err to a status and writes a generic body. Error
// details stay in the log; clients only see the class of failure.
func respondDomainError(w http.ResponseWriter, logger zerolog.Logger, err error, fallback string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError || status == http.StatusBadGateway {
		logger.Error().Err(err).Msg("Request failed")
	}
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		respondError(w, status, "Session expired", "")
	case errors.Is(err, domain.ErrInvalidToken):
		respondError(w, status, "Invalid session token", "")
	case errors.Is(err, domain.ErrNoOrganization):
		respondError(w, status, "No organization associated with your account", "")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		respondError(w, status, "Upstream service unavailable", "Please try again in a moment.")
	default:
		respondError(w, status, fallback, "")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "")
		return false
	}
	return true
}

// authContext pulls the validated session context injected by the
// RequireSession middleware.
func authContext(w http.ResponseWriter, r *http.Request) (domain.AuthContext, bool) {
	ac, ok := domain.GetAuthContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "No session token provided", "")
	}
	return ac, ok
}
