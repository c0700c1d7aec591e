package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/CampusStoresCanada/csc-institution-management/internal/token"
	"github.com/rs/zerolog"
)

// SessionService is the session issuer: it resolves a verified external
// identity against the contact directory and mints the bearer credential.
// The role is derived from the directory's primary marker here and nowhere
// else; clients never supply it.
type SessionService struct {
	directory ports.Directory
	codec     *token.Codec
	mailer    ports.Mailer
	appURL    string
	logger    zerolog.Logger
}

// NewSessionService creates a session service. mailer may be nil; the
// access-request flow then logs instead of sending.
func NewSessionService(
	directory ports.Directory,
	codec *token.Codec,
	mailer ports.Mailer,
	appURL string,
	logger zerolog.Logger,
) *SessionService {
	return &SessionService{
		directory: directory,
		codec:     codec,
		mailer:    mailer,
		appURL:    appURL,
		logger:    logger,
	}
}

// IssuedSession is a freshly minted session with the directory context it
// was derived from.
type IssuedSession struct {
	Token        string
	Session      domain.Session
	ContactName  string
	Organization *domain.OrganizationRef
	Role         domain.Role
}

// IssueForEmail looks the work email up in the directory and mints a
// 24-hour session. A zero-match lookup returns ErrNotFound and no session
// is minted. Contacts without an organization relation get a session with
// a nil binding; they must complete account linking before organization
// operations work.
func (s *SessionService) IssueForEmail(ctx context.Context, principal domain.Principal, email string) (*IssuedSession, error) {
	contact, err := s.directory.FindContactByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	org := s.resolveOrganization(ctx, contact.OrganizationID)
	return s.mint(principal, contact, org), nil
}

// LinkAccount binds a Google identity to an organization: the organization
// is resolved by name and the work email must belong to one of its
// contacts. On success a fully linked session is returned.
func (s *SessionService) LinkAccount(ctx context.Context, identity domain.GoogleIdentity, organizationName, workEmail string) (*IssuedSession, error) {
	if organizationName == "" || workEmail == "" {
		return nil, fmt.Errorf("organization name and work email are required: %w", domain.ErrInvalidRequest)
	}
	org, err := s.directory.FindOrganizationByName(ctx, organizationName)
	if err != nil {
		return nil, err
	}
	contact, err := s.directory.FindContactInOrganization(ctx, org.ID, workEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("work email %s not registered with %s: %w", workEmail, org.Name, domain.ErrForbidden)
		}
		return nil, err
	}

	principal := domain.Principal{ID: identity.ID, Email: identity.Email, Name: identity.Name}
	issued := s.mint(principal, contact, &domain.OrganizationRef{ID: org.ID, Name: org.Name})
	s.logger.Info().
		Str("googleEmail", identity.Email).
		Str("organization", org.Name).
		Str("role", string(issued.Role)).
		Msg("Linked account to organization")
	return issued, nil
}

// RequestAccess verifies that the contact email belongs to the named
// organization and emails a 24-hour management link to it.
func (s *SessionService) RequestAccess(ctx context.Context, organizationName, contactEmail string) error {
	if organizationName == "" || contactEmail == "" {
		return fmt.Errorf("organization name and contact email are required: %w", domain.ErrInvalidRequest)
	}
	org, err := s.directory.FindOrganizationByName(ctx, organizationName)
	if err != nil {
		return err
	}
	contact, err := s.directory.FindContactInOrganization(ctx, org.ID, contactEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("email %s not registered with %s: %w", contactEmail, org.Name, domain.ErrForbidden)
		}
		return err
	}

	principal := domain.Principal{ID: contact.ID, Email: contactEmail, Name: contact.Name}
	issued := s.mint(principal, contact, &domain.OrganizationRef{ID: org.ID, Name: org.Name})
	link := fmt.Sprintf("%s/manage?session=%s", s.appURL, issued.Token)

	if s.mailer == nil {
		s.logger.Info().Str("to", contactEmail).Msg("Mailer not configured, access link logged only")
		return nil
	}
	subject := "Your Campus Stores Canada management link"
	body := fmt.Sprintf(
		"Hello %s,\n\nUse the link below to manage %s's information. The link is valid for 24 hours.\n\n%s\n\n---\nThis is an automated message from CSC Institution Management.\n",
		contact.Name, org.Name, link,
	)
	return s.mailer.Send(ctx, contactEmail, subject, body)
}

// BridgeAuth is the outcome of a Circle.so bridge authentication: an
// authorization code plus the display fields the login form shows.
type BridgeAuth struct {
	Code         string
	Name         string
	Organization string
	Role         domain.Role
}

// AuthenticateBridge verifies the email against the directory and mints a
// 5-minute authorization code for the Circle.so OAuth bridge.
func (s *SessionService) AuthenticateBridge(ctx context.Context, email string) (*BridgeAuth, error) {
	contact, err := s.directory.FindContactByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	org := s.resolveOrganization(ctx, contact.OrganizationID)
	orgName := "Campus Stores Canada"
	if org != nil {
		orgName = org.Name
	}
	role := roleFor(contact)
	code := s.codec.IssueAuthCode(contact.ID, email, contact.Name, orgName, role)
	s.logger.Info().
		Str("email", email).
		Str("organization", orgName).
		Str("role", string(role)).
		Msg("Bridge authentication successful")
	return &BridgeAuth{Code: code, Name: contact.Name, Organization: orgName, Role: role}, nil
}

func (s *SessionService) mint(principal domain.Principal, contact *domain.Contact, org *domain.OrganizationRef) *IssuedSession {
	role := roleFor(contact)
	tok, session := s.codec.IssueSession(principal, org, role, contact.ID)
	s.logger.Info().
		Str("contact", contact.Name).
		Str("role", string(role)).
		Msg("Session issued")
	return &IssuedSession{
		Token:        tok,
		Session:      session,
		ContactName:  contact.Name,
		Organization: org,
		Role:         role,
	}
}

// resolveOrganization fetches the organization name for a binding. A
// failed fetch degrades to an id-only binding rather than blocking login.
func (s *SessionService) resolveOrganization(ctx context.Context, organizationID string) *domain.OrganizationRef {
	if organizationID == "" {
		return nil
	}
	org, err := s.directory.GetOrganization(ctx, organizationID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn().Err(err).Str("organizationID", organizationID).Msg("Could not fetch organization details")
		}
		return &domain.OrganizationRef{ID: organizationID}
	}
	return &domain.OrganizationRef{ID: org.ID, Name: org.Name}
}

func roleFor(contact *domain.Contact) domain.Role {
	if contact.IsPrimary {
		return domain.RolePrimary
	}
	return domain.RoleMember
}
