package ports

import (
	"context"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
)

// Directory is the external contact directory: the organizations, contacts
// and tag-lookup databases this portal reads and writes. Lookups that match
// nothing return domain.ErrNotFound; failed upstream calls return
// domain.ErrUpstreamUnavailable-wrapped errors.
type Directory interface {
	// FindContactByEmail resolves a contact by work email, with the
	// primary marker already derived (checkbox or tag relation).
	FindContactByEmail(ctx context.Context, email string) (*domain.Contact, error)

	// ListContactsByOrganization returns the team roster, primary contact
	// first, then by name.
	ListContactsByOrganization(ctx context.Context, organizationID string) ([]domain.Contact, error)

	GetOrganization(ctx context.Context, organizationID string) (*domain.Organization, error)
	FindOrganizationByName(ctx context.Context, name string) (*domain.Organization, error)

	UpdateOrganization(ctx context.Context, organizationID string, update domain.OrganizationUpdate) error
	UpdateContact(ctx context.Context, contactID string, update domain.ContactUpdate) error

	// FindContactInOrganization resolves a contact by work email scoped to
	// one organization.
	FindContactInOrganization(ctx context.Context, organizationID, email string) (*domain.Contact, error)

	// SetPrimaryContact moves the primary designation to the given contact,
	// clearing it from the current holder.
	SetPrimaryContact(ctx context.Context, organizationID, contactID string) error
}
