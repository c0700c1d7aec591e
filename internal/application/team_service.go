package application

import (
	"context"
	"fmt"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/rs/zerolog"
)

// TeamService manages the organization's team roster.
type TeamService struct {
	directory ports.Directory
	logger    zerolog.Logger
}

// NewTeamService creates a team service.
func NewTeamService(directory ports.Directory, logger zerolog.Logger) *TeamService {
	return &TeamService{directory: directory, logger: logger}
}

// TeamMember is one roster entry with the caller's permissions computed
// per entry.
type TeamMember struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Title            string `json:"title"`
	IsPrimary        bool   `json:"isPrimary"`
	IsCurrentUser    bool   `json:"isCurrentUser"`
	CanEdit          bool   `json:"canEdit"`
	CanChangePrimary bool   `json:"canChangePrimary"`
}

// List returns the roster for the caller's organization. Any authenticated
// actor bound to the organization may list; mutation rights are reported
// per entry.
func (s *TeamService) List(ctx context.Context, ac domain.AuthContext) ([]TeamMember, error) {
	if err := ac.RequireOrganization(); err != nil {
		return nil, err
	}
	contacts, err := s.directory.ListContactsByOrganization(ctx, ac.OrganizationID)
	if err != nil {
		return nil, err
	}
	members := make([]TeamMember, 0, len(contacts))
	for _, c := range contacts {
		members = append(members, TeamMember{
			ID:               c.ID,
			Name:             c.Name,
			Email:            c.Email,
			Phone:            c.Phone,
			Title:            c.Title,
			IsPrimary:        c.IsPrimary,
			IsCurrentUser:    c.ID == ac.ContactID,
			CanEdit:          domain.CanEditContact(ac, c.ID),
			CanChangePrimary: domain.CanChangePrimary(ac, c.IsPrimary),
		})
	}
	return members, nil
}

// UpdateMember edits a roster entry's personal fields. Members may edit
// only themselves; the primary contact may edit anyone on the roster.
func (s *TeamService) UpdateMember(ctx context.Context, ac domain.AuthContext, contactID string, update domain.ContactUpdate) error {
	if err := ac.RequireOrganization(); err != nil {
		return err
	}
	if err := domain.AuthorizeContactEdit(ac, contactID); err != nil {
		return err
	}
	if update.Empty() {
		return nil
	}
	// A primary editing someone else must stay inside their own roster.
	if contactID != ac.ContactID {
		if _, err := s.rosterEntry(ctx, ac.OrganizationID, contactID); err != nil {
			return err
		}
	}
	if err := s.directory.UpdateContact(ctx, contactID, update); err != nil {
		return err
	}
	s.logger.Info().
		Str("contactID", contactID).
		Str("actor", ac.ContactID).
		Msg("Roster entry updated")
	return nil
}

// SetPrimary hands the primary designation to the given roster entry. Only
// the current primary may do this, and only toward a member that is not
// already primary.
func (s *TeamService) SetPrimary(ctx context.Context, ac domain.AuthContext, contactID string) error {
	if err := ac.RequireOrganization(); err != nil {
		return err
	}
	target, err := s.rosterEntry(ctx, ac.OrganizationID, contactID)
	if err != nil {
		return err
	}
	if err := domain.AuthorizePrimaryChange(ac, target.IsPrimary); err != nil {
		return err
	}
	if err := s.directory.SetPrimaryContact(ctx, ac.OrganizationID, contactID); err != nil {
		return err
	}
	s.logger.Info().
		Str("organizationID", ac.OrganizationID).
		Str("newPrimary", contactID).
		Str("actor", ac.ContactID).
		Msg("Primary contact changed")
	return nil
}

func (s *TeamService) rosterEntry(ctx context.Context, organizationID, contactID string) (*domain.Contact, error) {
	contacts, err := s.directory.ListContactsByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		if contacts[i].ID == contactID {
			return &contacts[i], nil
		}
	}
	return nil, fmt.Errorf("contact %s not on roster: %w", contactID, domain.ErrNotFound)
}
