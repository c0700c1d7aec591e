package domain

// Role is the authorization role carried by a session. It is derived from
// the directory's primary-contact marker at issuance time and is never
// accepted from a client.
type Role string

const (
	RolePrimary Role = "primary"
	RoleMember  Role = "member"
)

// SessionIssuer tags every session token minted by this service.
const SessionIssuer = "csc-institution-management"

// Principal identifies the authenticated person behind a session.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OrganizationRef is the organization binding carried inside a session.
// A nil binding means the principal has not linked an organization yet.
type OrganizationRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is the self-contained payload of a bearer token. There is no
// server-side session store: the token is the session, re-validated on
// every request, and it dies only by expiry.
type Session struct {
	Principal    Principal        `json:"principal"`
	Organization *OrganizationRef `json:"organization"`
	Role         Role             `json:"role"`
	ContactID    string           `json:"contact_id"`
	Issued       int64            `json:"issued"`
	Expires      int64            `json:"expires"`
	Issuer       string           `json:"issuer"`
}

// AuthContext is the read-only authorization context extracted from a
// validated session token.
type AuthContext struct {
	PrincipalID      string
	ContactID        string
	OrganizationID   string
	OrganizationName string
	Role             Role
}

// AuthContextFromSession projects a decoded session onto the authorization
// context handlers work with.
func AuthContextFromSession(s Session) AuthContext {
	ac := AuthContext{
		PrincipalID: s.Principal.ID,
		ContactID:   s.ContactID,
		Role:        s.Role,
	}
	if s.Organization != nil {
		ac.OrganizationID = s.Organization.ID
		ac.OrganizationName = s.Organization.Name
	}
	return ac
}

// RequireOrganization returns ErrNoOrganization when the context carries no
// organization binding.
func (a AuthContext) RequireOrganization() error {
	if a.OrganizationID == "" {
		return ErrNoOrganization
	}
	return nil
}
