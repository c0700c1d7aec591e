package domain

// Organization is the membership record as stored in the external
// directory. This service references it by id only; Notion owns it.
type Organization struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Website         string  `json:"website"`
	InstitutionSize string  `json:"institutionSize"`
	Address         Address `json:"address"`
}

// Address groups the organization address fields.
type Address struct {
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postalCode"`
}

// Contact is a person on an organization's team roster.
type Contact struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Title          string `json:"title"`
	IsPrimary      bool   `json:"isPrimary"`
	OrganizationID string `json:"-"`
}

// OrganizationUpdate carries the organization fields a primary contact may
// change. Nil fields are left untouched.
type OrganizationUpdate struct {
	Name            *string
	Website         *string
	InstitutionSize *string
	StreetAddress   *string
	City            *string
	Province        *string
	PostalCode      *string
}

// Empty reports whether the update would change nothing.
func (u OrganizationUpdate) Empty() bool {
	return u.Name == nil && u.Website == nil && u.InstitutionSize == nil &&
		u.StreetAddress == nil && u.City == nil && u.Province == nil && u.PostalCode == nil
}

// ContactUpdate carries the personal fields of a roster entry. Nil fields
// are left untouched.
type ContactUpdate struct {
	Name  *string
	Email *string
	Phone *string
	Title *string
}

// Empty reports whether the update would change nothing.
func (u ContactUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil && u.Title == nil
}

// SelectOption is a value/label pair for the dropdowns the frontend renders.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// InstitutionSizeOptions are the select values used by the Institution Size
// property in the organizations database.
func InstitutionSizeOptions() []SelectOption {
	return []SelectOption{
		{Value: "XSmall", Label: "XSmall (< 2,000 FTE)"},
		{Value: "Small", Label: "Small (2,001 - 5,000 FTE)"},
		{Value: "Medium", Label: "Medium (5,001 - 10,000 FTE)"},
		{Value: "Large", Label: "Large (10,001 - 15,000 FTE)"},
		{Value: "XLarge", Label: "XLarge (> 15,001 FTE)"},
	}
}

// ProvinceOptions are the select values used by the Province property.
func ProvinceOptions() []SelectOption {
	names := []string{
		"Alberta", "British Columbia", "Manitoba", "New Brunswick",
		"Newfoundland and Labrador", "Northwest Territories", "Nova Scotia",
		"Nunavut", "Ontario", "Prince Edward Island", "Quebec",
		"Saskatchewan", "Yukon", "Out of Canada",
	}
	opts := make([]SelectOption, 0, len(names))
	for _, n := range names {
		opts = append(opts, SelectOption{Value: n, Label: n})
	}
	return opts
}
