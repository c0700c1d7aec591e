package application

import (
	"context"
	"fmt"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/rs/zerolog"
)

// OrganizationService reads and updates the organization profile.
type OrganizationService struct {
	directory ports.Directory
	logger    zerolog.Logger
}

// NewOrganizationService creates an organization service.
func NewOrganizationService(directory ports.Directory, logger zerolog.Logger) *OrganizationService {
	return &OrganizationService{directory: directory, logger: logger}
}

// OrganizationView is the profile plus the caller's computed permissions,
// so the presentation layer never re-derives policy.
type OrganizationView struct {
	domain.Organization
	CanEdit  bool        `json:"canEdit"`
	UserRole domain.Role `json:"userRole"`
}

// Get returns the caller's organization profile.
func (s *OrganizationService) Get(ctx context.Context, ac domain.AuthContext) (*OrganizationView, error) {
	if err := ac.RequireOrganization(); err != nil {
		return nil, err
	}
	org, err := s.directory.GetOrganization(ctx, ac.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &OrganizationView{
		Organization: *org,
		CanEdit:      domain.CanEditOrganization(ac),
		UserRole:     ac.Role,
	}, nil
}

// Update applies an organization-level change. Only the primary contact may
// mutate these fields, and the whole update is validated before any
// external call so a request either succeeds entirely or touches nothing.
func (s *OrganizationService) Update(ctx context.Context, ac domain.AuthContext, update domain.OrganizationUpdate) error {
	if err := ac.RequireOrganization(); err != nil {
		return err
	}
	if err := domain.AuthorizeOrganizationEdit(ac); err != nil {
		return err
	}
	if update.Empty() {
		return nil
	}
	if err := validateOrganizationUpdate(update); err != nil {
		return err
	}
	if err := s.directory.UpdateOrganization(ctx, ac.OrganizationID, update); err != nil {
		return err
	}
	s.logger.Info().
		Str("organizationID", ac.OrganizationID).
		Msg("Organization updated")
	return nil
}

func validateOrganizationUpdate(update domain.OrganizationUpdate) error {
	if update.InstitutionSize != nil && !validOption(domain.InstitutionSizeOptions(), *update.InstitutionSize) {
		return fmt.Errorf("unknown institution size %q: %w", *update.InstitutionSize, domain.ErrInvalidRequest)
	}
	if update.Province != nil && !validOption(domain.ProvinceOptions(), *update.Province) {
		return fmt.Errorf("unknown province %q: %w", *update.Province, domain.ErrInvalidRequest)
	}
	if update.Name != nil && *update.Name == "" {
		return fmt.Errorf("organization name cannot be empty: %w", domain.ErrInvalidRequest)
	}
	return nil
}

func validOption(options []domain.SelectOption, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}
