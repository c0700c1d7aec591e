package application

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
)

func strptr(s string) *string { return &s }

func primaryContext() domain.AuthContext {
	return domain.AuthContext{
		PrincipalID:      "g-1",
		ContactID:        "contact-primary",
		OrganizationID:   "org-1",
		OrganizationName: "Example University",
		Role:             domain.RolePrimary,
	}
}

func memberContext() domain.AuthContext {
	return domain.AuthContext{
		PrincipalID:      "g-2",
		ContactID:        "contact-member",
		OrganizationID:   "org-1",
		OrganizationName: "Example University",
		Role:             domain.RoleMember,
	}
}

func TestOrganizationGet(t *testing.T) {
	dir := newFakeDirectory()
	seedOrganization(dir)
	svc := NewOrganizationService(dir, zerolog.Nop())

	view, err := svc.Get(context.Background(), primaryContext())
	require.NoError(t, err)
	assert.Equal(t, "Example University", view.Name)
	assert.True(t, view.CanEdit)
	assert.Equal(t, domain.RolePrimary, view.UserRole)

	view, err = svc.Get(context.Background(), memberContext())
	require.NoError(t, err)
	assert.False(t, view.CanEdit)
}

func TestOrganizationGet_RequiresBinding(t *testing.T) {
	svc := NewOrganizationService(newFakeDirectory(), zerolog.Nop())
	unlinked := domain.AuthContext{ContactID: "contact-z", Role: domain.RoleMember}

	_, err := svc.Get(context.Background(), unlinked)
	assert.ErrorIs(t, err, domain.ErrNoOrganization)
}

func TestOrganizationUpdate_MemberForbidden(t *testing.T) {
	dir := newFakeDirectory()
	seedOrganization(dir)
	svc := NewOrganizationService(dir, zerolog.Nop())

	err := svc.Update(context.Background(), memberContext(), domain.OrganizationUpdate{Name: strptr("New Name")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, dir.orgUpdates, "no write may reach the directory")

	// permission runs before the empty-update short circuit
	err = svc.Update(context.Background(), memberContext(), domain.OrganizationUpdate{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOrganizationUpdate_Primary(t *testing.T) {
	dir := newFakeDirectory()
	seedOrganization(dir)
	svc := NewOrganizationService(dir, zerolog.Nop())

	update := domain.OrganizationUpdate{
		Name:            strptr("Example University (Main)"),
		InstitutionSize: strptr("Medium"),
		Province:        strptr("Ontario"),
	}
	require.NoError(t, svc.Update(context.Background(), primaryContext(), update))
	require.Len(t, dir.orgUpdates, 1)

	org, err := dir.GetOrganization(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, "Example University (Main)", org.Name)
	assert.Equal(t, "Medium", org.InstitutionSize)
}

func TestOrganizationUpdate_ValidatesBeforeWriting(t *testing.T) {
	dir := newFakeDirectory()
	seedOrganization(dir)
	svc := NewOrganizationService(dir, zerolog.Nop())

	cases := []domain.OrganizationUpdate{
		{InstitutionSize: strptr("Gigantic")},
		{Province: strptr("Atlantis")},
		{Name: strptr("")},
	}
	for _, update := range cases {
		err := svc.Update(context.Background(), primaryContext(), update)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	}
	assert.Empty(t, dir.orgUpdates, "invalid updates must touch nothing")
}

func TestOrganizationUpdate_EmptyIsNoOp(t *testing.T) {
	dir := newFakeDirectory()
	seedOrganization(dir)
	svc := NewOrganizationService(dir, zerolog.Nop())

	require.NoError(t, svc.Update(context.Background(), primaryContext(), domain.OrganizationUpdate{}))
	assert.Empty(t, dir.orgUpdates)
}
