package domain

import "context"

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const authContextKey contextKey = "auth_context"

// WithAuthContext stores a validated authorization context on the request
// context.
func WithAuthContext(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// GetAuthContext retrieves the authorization context set by the session
// middleware. The second return is false on unauthenticated requests.
func GetAuthContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey).(AuthContext)
	return ac, ok
}
