package domain

import "errors"

// Error taxonomy for the session and authorization core. Handlers map these
// to HTTP statuses; nothing else is surfaced to untrusted callers.
var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidToken        = errors.New("invalid token")
	ErrSessionExpired      = errors.New("session expired")
	ErrNoOrganization      = errors.New("no organization associated with this account")
	ErrForbidden           = errors.New("forbidden")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrNotFound            = errors.New("not found")
)
