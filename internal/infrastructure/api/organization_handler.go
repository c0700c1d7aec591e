package api

import (
	"errors"
	"net/http"

	"github.com/CampusStoresCanada/csc-institution-management/internal/application"
	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// OrganizationHandler serves the organization profile and team roster.
type OrganizationHandler struct {
	organizations *application.OrganizationService
	team          *application.TeamService
	logger        zerolog.Logger
}

// NewOrganizationHandler creates the organization handler.
func NewOrganizationHandler(
	organizations *application.OrganizationService,
	team *application.TeamService,
	logger zerolog.Logger,
) *OrganizationHandler {
	return &OrganizationHandler{organizations: organizations, team: team, logger: logger}
}

// Get returns the caller's organization profile with the dropdown option
// lists the edit form needs.
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, ok := authContext(w, r)
	if !ok {
		return
	}
	view, err := h.organizations.Get(r.Context(), ac)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to load organization data")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"organization":           view,
		"institutionSizeOptions": domain.InstitutionSizeOptions(),
		"provinceOptions":        domain.ProvinceOptions(),
	})
}

type organizationUpdateRequest struct {
	OrganizationUpdates organizationUpdatePayload `json:"organizationUpdates"`
}

type organizationUpdatePayload struct {
	InstitutionName *string         `json:"institutionName"`
	Website         *string         `json:"website"`
	InstitutionSize *string         `json:"institutionSize"`
	Address         *addressPayload `json:"address"`
}

type addressPayload struct {
	StreetAddress *string `json:"streetAddress"`
	City          *string `json:"city"`
	Province      *string `json:"province"`
	PostalCode    *string `json:"postalCode"`
}

func (p organizationUpdatePayload) toDomain() domain.OrganizationUpdate {
	update := domain.OrganizationUpdate{
		Name:            p.InstitutionName,
		Website:         p.Website,
		InstitutionSize: p.InstitutionSize,
	}
	if p.Address != nil {
		update.StreetAddress = p.Address.StreetAddress
		update.City = p.Address.City
		update.Province = p.Address.Province
		update.PostalCode = p.Address.PostalCode
	}
	return update
}

// Update applies profile changes. Primary contact only; the permission
// check runs before the empty-update short circuit so members get 403
// even on a no-op body.
func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, ok := authContext(w, r)
	if !ok {
		return
	}
	var req organizationUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	update := req.OrganizationUpdates.toDomain()

	if err := h.organizations.Update(r.Context(), ac, update); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			respondError(w, http.StatusForbidden, "Only the primary contact can update organization details", "")
			return
		}
		respondDomainError(w, h.logger, err, "Failed to update organization")
		return
	}

	message := "Organization updated"
	if update.Empty() {
		message = "No changes detected"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"organizationId": ac.OrganizationID,
		"message":        message,
	})
}

// ListContacts returns the team roster with per-entry permission flags.
func (h *OrganizationHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	ac, ok := authContext(w, r)
	if !ok {
		return
	}
	members, err := h.team.List(r.Context(), ac)
	if err != nil {
		respondDomainError(w, h.logger, err, "Failed to load team members")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"teamMembers":   members,
		"userRole":      ac.Role,
		"currentUserId": ac.ContactID,
	})
}

type contactUpdateRequest struct {
	ContactUpdates contactUpdatePayload `json:"contactUpdates"`
}

type contactUpdatePayload struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Title *string `json:"title"`
}

func (p contactUpdatePayload) toDomain() domain.ContactUpdate {
	return domain.ContactUpdate{Name: p.Name, Email: p.Email, Phone: p.Phone, Title: p.Title}
}

// UpdateContact edits a roster entry's personal fields.
func (h *OrganizationHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ac, ok := authContext(w, r)
	if !ok {
		return
	}
	var req contactUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	contactID := chi.URLParam(r, "contactID")

	if err := h.team.UpdateMember(r.Context(), ac, contactID, req.ContactUpdates.toDomain()); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			respondError(w, http.StatusForbidden, "You can only edit your own information", "")
			return
		}
		respondDomainError(w, h.logger, err, "Failed to update team member")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "contactId": contactID})
}

// SetPrimary transfers the primary-contact designation to the given
// roster entry.
func (h *OrganizationHandler) SetPrimary(w http.ResponseWriter, r *http.Request) {
	ac, ok := authContext(w, r)
	if !ok {
		return
	}
	contactID := chi.URLParam(r, "contactID")

	if err := h.team.SetPrimary(r.Context(), ac, contactID); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			respondError(w, http.StatusForbidden, "Only the current primary contact can change who is primary", "")
			return
		}
		respondDomainError(w, h.logger, err, "Failed to change primary contact")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Primary contact updated",
		"contactId": contactID,
	})
}
