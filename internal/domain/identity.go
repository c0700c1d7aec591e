package domain

import "time"

// GoogleIdentity is the verified identity returned by Google's userinfo
// endpoint after a successful code exchange.
type GoogleIdentity struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// CircleMember is the verified community identity returned by Circle.so's
// headless auth API.
type CircleMember struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	AccessToken string `json:"-"`
}

// OAuthState is the server-side CSRF state minted when an OAuth flow is
// initiated and consumed exactly once by the callback.
type OAuthState struct {
	Provider  string    `json:"provider"`
	ReturnURL string    `json:"return_url"`
	CreatedAt time.Time `json:"created_at"`
}
