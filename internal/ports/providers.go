package ports

import (
	"context"
	"time"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
)

// GoogleOAuth is the Google authorization-code grant. The core consumes
// only the resulting verified identity.
type GoogleOAuth interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.GoogleIdentity, error)
}

// CircleVerifier verifies membership in the Circle.so community, by email
// or community member id, and returns the member's profile.
type CircleVerifier interface {
	Verify(ctx context.Context, email, memberID string) (*domain.CircleMember, error)
}

// StateStore holds OAuth CSRF state between flow initiation and callback.
type StateStore interface {
	Save(ctx context.Context, state string, value domain.OAuthState, ttl time.Duration) error
	// Take fetches and deletes the state in one step; nil when absent or
	// expired.
	Take(ctx context.Context, state string) (*domain.OAuthState, error)
}

// ObjectStore is fire-and-forget object storage. A successful Put returns
// a durable public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
