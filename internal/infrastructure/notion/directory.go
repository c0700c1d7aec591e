package notion

import (
	"context"
	"fmt"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/CampusStoresCanada/csc-institution-management/internal/ports"
	"github.com/rs/zerolog"
)

// Property names in the CSC workspace databases.
const (
	propOrganization    = "Organization" // title in organizations, relation in contacts
	propName            = "Name"
	propWorkEmail       = "Work Email"
	propWorkPhone       = "Work Phone"
	propTitle           = "Title"
	propPrimaryContact  = "Primary Contact"
	propPersonalTag     = "Personal Tag"
	propWebsite         = "Website"
	propInstitutionSize = "Institution Size"
	propStreetAddress   = "Street Address"
	propCity            = "City"
	propProvince        = "Province"
	propPostalCode      = "Postal Code"
)

// Directory implements the contact directory over three Notion databases:
// organizations, contacts and the tag system. The primary-contact marker
// exists in two shapes across the workspace: a direct checkbox on the
// contact, or membership of the "Primary Contact" tag in the contact's
// Personal Tag relation. Either marks a contact primary; the checkbox wins
// when both are present.
type Directory struct {
	client          *Client
	organizationsDB string
	contactsDB      string
	tagSystemDB     string
	logger          zerolog.Logger
}

var _ ports.Directory = (*Directory)(nil)

// NewDirectory creates a Notion-backed directory.
func NewDirectory(client *Client, organizationsDB, contactsDB, tagSystemDB string, logger zerolog.Logger) *Directory {
	return &Directory{
		client:          client,
		organizationsDB: organizationsDB,
		contactsDB:      contactsDB,
		tagSystemDB:     tagSystemDB,
		logger:          logger,
	}
}

func (d *Directory) FindContactByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	pages, err := d.client.QueryDatabase(ctx, d.contactsDB, EmailEquals(propWorkEmail, email), nil)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("contact %s: %w", email, domain.ErrNotFound)
	}
	return d.contactFromPage(ctx, pages[0])
}

func (d *Directory) FindContactInOrganization(ctx context.Context, organizationID, email string) (*domain.Contact, error) {
	filter := And(
		RelationContains(propOrganization, organizationID),
		EmailEquals(propWorkEmail, email),
	)
	pages, err := d.client.QueryDatabase(ctx, d.contactsDB, filter, nil)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("contact %s in organization: %w", email, domain.ErrNotFound)
	}
	return d.contactFromPage(ctx, pages[0])
}

func (d *Directory) ListContactsByOrganization(ctx context.Context, organizationID string) ([]domain.Contact, error) {
	pages, err := d.listContactPages(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	tagID := d.primaryTagID(ctx)
	contacts := make([]domain.Contact, 0, len(pages))
	for _, p := range pages {
		contacts = append(contacts, contactFromProperties(p, tagID))
	}
	return contacts, nil
}

func (d *Directory) GetOrganization(ctx context.Context, organizationID string) (*domain.Organization, error) {
	page, err := d.client.GetPage(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	org := organizationFromPage(*page)
	return &org, nil
}

func (d *Directory) FindOrganizationByName(ctx context.Context, name string) (*domain.Organization, error) {
	pages, err := d.client.QueryDatabase(ctx, d.organizationsDB, TitleContains(propOrganization, name), nil)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("organization %q: %w", name, domain.ErrNotFound)
	}
	// First match; names are effectively unique in the workspace.
	org := organizationFromPage(pages[0])
	return &org, nil
}

func (d *Directory) UpdateOrganization(ctx context.Context, organizationID string, update domain.OrganizationUpdate) error {
	if update.Empty() {
		return nil
	}
	properties := map[string]Property{}
	if update.Name != nil {
		properties[propOrganization] = TitleProperty(*update.Name)
	}
	if update.Website != nil {
		properties[propWebsite] = URLProperty(*update.Website)
	}
	if update.InstitutionSize != nil {
		properties[propInstitutionSize] = SelectProperty(*update.InstitutionSize)
	}
	if update.StreetAddress != nil {
		properties[propStreetAddress] = TextProperty(*update.StreetAddress)
	}
	if update.City != nil {
		properties[propCity] = TextProperty(*update.City)
	}
	if update.Province != nil {
		properties[propProvince] = SelectProperty(*update.Province)
	}
	if update.PostalCode != nil {
		properties[propPostalCode] = TextProperty(*update.PostalCode)
	}
	return d.client.UpdatePage(ctx, organizationID, properties)
}

func (d *Directory) UpdateContact(ctx context.Context, contactID string, update domain.ContactUpdate) error {
	if update.Empty() {
		return nil
	}
	properties := map[string]Property{}
	if update.Name != nil {
		properties[propName] = TitleProperty(*update.Name)
	}
	if update.Email != nil {
		properties[propWorkEmail] = EmailProperty(*update.Email)
	}
	if update.Phone != nil {
		properties[propWorkPhone] = PhoneProperty(*update.Phone)
	}
	if update.Title != nil {
		properties[propTitle] = TextProperty(*update.Title)
	}
	return d.client.UpdatePage(ctx, contactID, properties)
}

func (d *Directory) SetPrimaryContact(ctx context.Context, organizationID, contactID string) error {
	pages, err := d.listContactPages(ctx, organizationID)
	if err != nil {
		return err
	}
	tagID := d.primaryTagID(ctx)

	var target *Page
	for i := range pages {
		if pages[i].ID == contactID {
			target = &pages[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("contact %s not in organization: %w", contactID, domain.ErrNotFound)
	}

	// Demote the current holder(s) first so the roster never shows two
	// primaries if the promotion call fails.
	for _, p := range pages {
		if p.ID == contactID || !isPrimaryPage(p, tagID) {
			continue
		}
		properties := map[string]Property{propPrimaryContact: CheckboxProperty(false)}
		if tagID != "" {
			properties[propPersonalTag] = RelationProperty(without(p.Properties.RelationIDs(propPersonalTag), tagID)...)
		}
		if err := d.client.UpdatePage(ctx, p.ID, properties); err != nil {
			return err
		}
	}

	properties := map[string]Property{propPrimaryContact: CheckboxProperty(true)}
	if tagID != "" {
		tags := target.Properties.RelationIDs(propPersonalTag)
		if !contains(tags, tagID) {
			tags = append(tags, tagID)
		}
		properties[propPersonalTag] = RelationProperty(tags...)
	}
	return d.client.UpdatePage(ctx, contactID, properties)
}

func (d *Directory) listContactPages(ctx context.Context, organizationID string) ([]Page, error) {
	sorts := []Sort{
		{Property: propPrimaryContact, Direction: "descending"},
		{Property: propName, Direction: "ascending"},
	}
	return d.client.QueryDatabase(ctx, d.contactsDB, RelationContains(propOrganization, organizationID), sorts)
}

// primaryTagID resolves the Tag System page id of the "Primary Contact"
// tag. Empty when the tag database has no such entry; the checkbox marker
// still works without it.
func (d *Directory) primaryTagID(ctx context.Context) string {
	if d.tagSystemDB == "" {
		return ""
	}
	pages, err := d.client.QueryDatabase(ctx, d.tagSystemDB, TitleEquals(propName, propPrimaryContact), nil)
	if err != nil {
		d.logger.Warn().Err(err).Msg("Primary Contact tag lookup failed, falling back to checkbox marker")
		return ""
	}
	if len(pages) == 0 {
		return ""
	}
	return pages[0].ID
}

func (d *Directory) contactFromPage(ctx context.Context, p Page) (*domain.Contact, error) {
	tagID := ""
	if !p.Properties.Bool(propPrimaryContact) && len(p.Properties.RelationIDs(propPersonalTag)) > 0 {
		tagID = d.primaryTagID(ctx)
	}
	c := contactFromProperties(p, tagID)
	return &c, nil
}

func contactFromProperties(p Page, primaryTagID string) domain.Contact {
	c := domain.Contact{
		ID:        p.ID,
		Name:      p.Properties.TitleText(propName),
		Email:     p.Properties.EmailValue(propWorkEmail),
		Phone:     p.Properties.PhoneValue(propWorkPhone),
		Title:     p.Properties.Text(propTitle),
		IsPrimary: isPrimaryPage(p, primaryTagID),
	}
	if orgs := p.Properties.RelationIDs(propOrganization); len(orgs) > 0 {
		c.OrganizationID = orgs[0]
	}
	return c
}

func isPrimaryPage(p Page, primaryTagID string) bool {
	if p.Properties.Bool(propPrimaryContact) {
		return true
	}
	return primaryTagID != "" && contains(p.Properties.RelationIDs(propPersonalTag), primaryTagID)
}

func organizationFromPage(p Page) domain.Organization {
	return domain.Organization{
		ID:              p.ID,
		Name:            p.Properties.TitleText(propOrganization),
		Website:         p.Properties.URLValue(propWebsite),
		InstitutionSize: p.Properties.SelectName(propInstitutionSize),
		Address: domain.Address{
			StreetAddress: p.Properties.Text(propStreetAddress),
			City:          p.Properties.Text(propCity),
			Province:      p.Properties.SelectName(propProvince),
			PostalCode:    p.Properties.Text(propPostalCode),
		},
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
