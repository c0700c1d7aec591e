package notion

import (
	"encoding/json"
	"fmt"
)

// Property kinds this portal reads and writes. Notion tags every property
// value with its kind; Value switches over this set exhaustively so a new
// kind cannot be silently dropped.
const (
	KindTitle       = "title"
	KindRichText    = "rich_text"
	KindSelect      = "select"
	KindMultiSelect = "multi_select"
	KindRelation    = "relation"
	KindCheckbox    = "checkbox"
	KindURL         = "url"
	KindEmail       = "email"
	KindPhoneNumber = "phone_number"
	KindDate        = "date"
)

// RichText is one fragment of a title or rich_text value.
type RichText struct {
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
	PlainText string `json:"plain_text,omitempty"`
}

// SelectValue is a select or multi_select option.
type SelectValue struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// RelationRef points at a related page.
type RelationRef struct {
	ID string `json:"id"`
}

// DateValue is a date property value.
type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// Property is a typed Notion property value. Exactly one variant field is
// populated, selected by Type.
type Property struct {
	Type        string        `json:"type,omitempty"`
	Title       []RichText    `json:"title,omitempty"`
	RichText    []RichText    `json:"rich_text,omitempty"`
	Select      *SelectValue  `json:"select,omitempty"`
	MultiSelect []SelectValue `json:"multi_select,omitempty"`
	Relation    []RelationRef `json:"relation,omitempty"`
	Checkbox    *bool         `json:"checkbox,omitempty"`
	URL         *string       `json:"url,omitempty"`
	Email       *string       `json:"email,omitempty"`
	PhoneNumber *string       `json:"phone_number,omitempty"`
	Date        *DateValue    `json:"date,omitempty"`
}

// MarshalJSON emits only the populated variant. A non-nil empty Relation
// slice is kept so a patch can clear a relation; omitempty would drop it.
func (p Property) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	if p.Title != nil {
		m["title"] = p.Title
	}
	if p.RichText != nil {
		m["rich_text"] = p.RichText
	}
	if p.Select != nil {
		m["select"] = p.Select
	}
	if p.MultiSelect != nil {
		m["multi_select"] = p.MultiSelect
	}
	if p.Relation != nil {
		m["relation"] = p.Relation
	}
	if p.Checkbox != nil {
		m["checkbox"] = *p.Checkbox
	}
	if p.URL != nil {
		m["url"] = *p.URL
	}
	if p.Email != nil {
		m["email"] = *p.Email
	}
	if p.PhoneNumber != nil {
		m["phone_number"] = *p.PhoneNumber
	}
	if p.Date != nil {
		m["date"] = p.Date
	}
	return json.Marshal(m)
}

// Value extracts the property's Go representation. The switch covers every
// supported kind; an unrecognized kind is an error, not an empty value.
func (p Property) Value() (any, error) {
	switch p.Type {
	case KindTitle:
		return joinRichText(p.Title), nil
	case KindRichText:
		return joinRichText(p.RichText), nil
	case KindSelect:
		if p.Select == nil {
			return "", nil
		}
		return p.Select.Name, nil
	case KindMultiSelect:
		names := make([]string, 0, len(p.MultiSelect))
		for _, v := range p.MultiSelect {
			names = append(names, v.Name)
		}
		return names, nil
	case KindRelation:
		ids := make([]string, 0, len(p.Relation))
		for _, r := range p.Relation {
			ids = append(ids, r.ID)
		}
		return ids, nil
	case KindCheckbox:
		return p.Checkbox != nil && *p.Checkbox, nil
	case KindURL:
		return deref(p.URL), nil
	case KindEmail:
		return deref(p.Email), nil
	case KindPhoneNumber:
		return deref(p.PhoneNumber), nil
	case KindDate:
		if p.Date == nil {
			return "", nil
		}
		return p.Date.Start, nil
	default:
		return nil, fmt.Errorf("unsupported notion property kind %q", p.Type)
	}
}

// Properties is a page's property map.
type Properties map[string]Property

// TitleText returns the plain text of a title property, empty when absent.
func (props Properties) TitleText(name string) string {
	return joinRichText(props[name].Title)
}

// Text returns the plain text of a rich_text property.
func (props Properties) Text(name string) string {
	return joinRichText(props[name].RichText)
}

// SelectName returns the chosen option of a select property.
func (props Properties) SelectName(name string) string {
	if s := props[name].Select; s != nil {
		return s.Name
	}
	return ""
}

// Bool returns a checkbox value, false when absent.
func (props Properties) Bool(name string) bool {
	c := props[name].Checkbox
	return c != nil && *c
}

// URLValue returns a url property.
func (props Properties) URLValue(name string) string { return deref(props[name].URL) }

// EmailValue returns an email property.
func (props Properties) EmailValue(name string) string { return deref(props[name].Email) }

// PhoneValue returns a phone_number property.
func (props Properties) PhoneValue(name string) string { return deref(props[name].PhoneNumber) }

// RelationIDs returns the page ids of a relation property.
func (props Properties) RelationIDs(name string) []string {
	rel := props[name].Relation
	ids := make([]string, 0, len(rel))
	for _, r := range rel {
		ids = append(ids, r.ID)
	}
	return ids
}

// Builders for property patches.

func TitleProperty(content string) Property {
	return Property{Title: []RichText{textFragment(content)}}
}

func TextProperty(content string) Property {
	return Property{RichText: []RichText{textFragment(content)}}
}

func SelectProperty(name string) Property {
	return Property{Select: &SelectValue{Name: name}}
}

func MultiSelectProperty(names ...string) Property {
	values := make([]SelectValue, 0, len(names))
	for _, n := range names {
		values = append(values, SelectValue{Name: n})
	}
	return Property{MultiSelect: values}
}

func RelationProperty(ids ...string) Property {
	refs := make([]RelationRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, RelationRef{ID: id})
	}
	return Property{Relation: refs}
}

func CheckboxProperty(checked bool) Property {
	return Property{Checkbox: &checked}
}

func URLProperty(url string) Property { return Property{URL: &url} }

func EmailProperty(email string) Property { return Property{Email: &email} }

func PhoneProperty(phone string) Property { return Property{PhoneNumber: &phone} }

func DateProperty(start string) Property {
	return Property{Date: &DateValue{Start: start}}
}

func textFragment(content string) RichText {
	var rt RichText
	rt.Text.Content = content
	return rt
}

func joinRichText(fragments []RichText) string {
	out := ""
	for _, f := range fragments {
		if f.Text.Content != "" {
			out += f.Text.Content
		} else {
			out += f.PlainText
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
