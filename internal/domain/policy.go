package domain

// Role-based authorization rules for mutating operations. All rules are
// pure functions of the AuthContext so every consumer derives the same
// answer; the roster response also carries the computed flags so the
// presentation layer never re-implements them.

// CanEditOrganization reports whether the actor may change organization
// level fields (name, website, address, institution size).
func CanEditOrganization(a AuthContext) bool {
	return a.Role == RolePrimary
}

// CanEditContact reports whether the actor may edit the personal fields of
// the roster entry with the given contact id. Primary contacts may edit
// anyone; members only themselves.
func CanEditContact(a AuthContext, contactID string) bool {
	return a.Role == RolePrimary || a.ContactID == contactID
}

// CanChangePrimary reports whether the actor may hand the primary
// designation to the given target. Only the current primary may do so, and
// never to a target that is already primary.
func CanChangePrimary(a AuthContext, targetIsPrimary bool) bool {
	return a.Role == RolePrimary && !targetIsPrimary
}

// AuthorizeOrganizationEdit gates an organization-level mutation.
func AuthorizeOrganizationEdit(a AuthContext) error {
	if !CanEditOrganization(a) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeContactEdit gates a roster-entry mutation.
func AuthorizeContactEdit(a AuthContext, contactID string) error {
	if !CanEditContact(a, contactID) {
		return ErrForbidden
	}
	return nil
}

// AuthorizePrimaryChange gates a primary-designation toggle.
func AuthorizePrimaryChange(a AuthContext, targetIsPrimary bool) error {
	if !CanChangePrimary(a, targetIsPrimary) {
		return ErrForbidden
	}
	return nil
}
