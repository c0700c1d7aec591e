package application

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
)

// fakeDirectory is an in-memory stand-in for the Notion directory.
type fakeDirectory struct {
	mu            sync.Mutex
	organizations map[string]*domain.Organization
	contacts      map[string]*domain.Contact

	orgUpdates     []string
	contactUpdates []string
	primaryChanges []string

	failWith error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		organizations: map[string]*domain.Organization{},
		contacts:      map[string]*domain.Contact{},
	}
}

func (f *fakeDirectory) addOrganization(org domain.Organization) {
	f.organizations[org.ID] = &org
}

func (f *fakeDirectory) addContact(c domain.Contact) {
	f.contacts[c.ID] = &c
}

func (f *fakeDirectory) FindContactByEmail(_ context.Context, email string) (*domain.Contact, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, c := range f.contacts {
		if c.Email == email {
			copy := *c
			return &copy, nil
		}
	}
	return nil, fmt.Errorf("no contact with email %s: %w", email, domain.ErrNotFound)
}

func (f *fakeDirectory) ListContactsByOrganization(_ context.Context, organizationID string) ([]domain.Contact, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var roster []domain.Contact
	for _, c := range f.contacts {
		if c.OrganizationID == organizationID {
			roster = append(roster, *c)
		}
	}
	sort.Slice(roster, func(i, j int) bool {
		if roster[i].IsPrimary != roster[j].IsPrimary {
			return roster[i].IsPrimary
		}
		return roster[i].Name < roster[j].Name
	})
	return roster, nil
}

func (f *fakeDirectory) GetOrganization(_ context.Context, organizationID string) (*domain.Organization, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	org, ok := f.organizations[organizationID]
	if !ok {
		return nil, fmt.Errorf("organization %s: %w", organizationID, domain.ErrNotFound)
	}
	copy := *org
	return &copy, nil
}

func (f *fakeDirectory) FindOrganizationByName(_ context.Context, name string) (*domain.Organization, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, org := range f.organizations {
		if org.Name == name {
			copy := *org
			return &copy, nil
		}
	}
	return nil, fmt.Errorf("no organization named %q: %w", name, domain.ErrNotFound)
}

func (f *fakeDirectory) UpdateOrganization(_ context.Context, organizationID string, update domain.OrganizationUpdate) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orgUpdates = append(f.orgUpdates, organizationID)
	if org, ok := f.organizations[organizationID]; ok {
		if update.Name != nil {
			org.Name = *update.Name
		}
		if update.Website != nil {
			org.Website = *update.Website
		}
		if update.InstitutionSize != nil {
			org.InstitutionSize = *update.InstitutionSize
		}
		if update.Province != nil {
			org.Address.Province = *update.Province
		}
	}
	return nil
}

func (f *fakeDirectory) UpdateContact(_ context.Context, contactID string, update domain.ContactUpdate) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contactUpdates = append(f.contactUpdates, contactID)
	if c, ok := f.contacts[contactID]; ok {
		if update.Name != nil {
			c.Name = *update.Name
		}
		if update.Title != nil {
			c.Title = *update.Title
		}
	}
	return nil
}

func (f *fakeDirectory) FindContactInOrganization(_ context.Context, organizationID, email string) (*domain.Contact, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, c := range f.contacts {
		if c.OrganizationID == organizationID && c.Email == email {
			copy := *c
			return &copy, nil
		}
	}
	return nil, fmt.Errorf("no contact %s in organization %s: %w", email, organizationID, domain.ErrNotFound)
}

func (f *fakeDirectory) SetPrimaryContact(_ context.Context, organizationID, contactID string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.primaryChanges = append(f.primaryChanges, contactID)
	for _, c := range f.contacts {
		if c.OrganizationID == organizationID {
			c.IsPrimary = c.ID == contactID
		}
	}
	return nil
}

// fakeMailer records outgoing mail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	to, subject, body string
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// fakeObjectStore records puts and returns deterministic URLs.
type fakeObjectStore struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeObjectStore) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return "https://files.example.com/" + key, nil
}
