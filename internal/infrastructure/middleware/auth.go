package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/token"
	"github.com/rs/zerolog"
)

// RequireSession validates the bearer token on every request it wraps and
// stores the resulting AuthContext on the request context. Validation is
// stateless and re-executed per request; there is no shared validated
// session cache.
func RequireSession(codec *token.Codec, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "No session token provided")
				return
			}

			ac, err := codec.Validate(raw)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrSessionExpired):
					unauthorized(w, "Session expired")
				default:
					unauthorized(w, "Invalid session token")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithAuthContext(r.Context(), ac)))
		})
	}
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
