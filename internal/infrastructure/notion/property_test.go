package notion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyMarshal_EmitsOnlyPopulatedVariant(t *testing.T) {
	raw, err := json.Marshal(SelectProperty("Ontario"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"select":{"name":"Ontario"}}`, string(raw))

	raw, err = json.Marshal(TitleProperty("Example University"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":[{"text":{"content":"Example University"}}]}`, string(raw))

	raw, err = json.Marshal(CheckboxProperty(false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"checkbox":false}`, string(raw))
}

func TestPropertyMarshal_KeepsEmptyRelation(t *testing.T) {
	// Clearing a relation sends an empty array; dropping the field would
	// leave the relation untouched.
	raw, err := json.Marshal(RelationProperty())
	require.NoError(t, err)
	assert.JSONEq(t, `{"relation":[]}`, string(raw))
}

func TestPropertyValue_AllKinds(t *testing.T) {
	checked := true
	u := "https://example.com"
	props := map[string]Property{
		KindTitle:       {Type: KindTitle, Title: TitleProperty("A Title").Title},
		KindRichText:    {Type: KindRichText, RichText: TextProperty("Some text").RichText},
		KindSelect:      {Type: KindSelect, Select: &SelectValue{Name: "Medium"}},
		KindMultiSelect: {Type: KindMultiSelect, MultiSelect: []SelectValue{{Name: "a"}, {Name: "b"}}},
		KindRelation:    {Type: KindRelation, Relation: []RelationRef{{ID: "page-1"}}},
		KindCheckbox:    {Type: KindCheckbox, Checkbox: &checked},
		KindURL:         {Type: KindURL, URL: &u},
	}
	expected := map[string]any{
		KindTitle:       "A Title",
		KindRichText:    "Some text",
		KindSelect:      "Medium",
		KindMultiSelect: []string{"a", "b"},
		KindRelation:    []string{"page-1"},
		KindCheckbox:    true,
		KindURL:         u,
	}
	for kind, p := range props {
		v, err := p.Value()
		require.NoError(t, err, kind)
		assert.Equal(t, expected[kind], v, kind)
	}
}

func TestPropertyValue_UnknownKind(t *testing.T) {
	_, err := Property{Type: "rollup"}.Value()
	assert.Error(t, err)
}

func TestPropertyValue_NilVariants(t *testing.T) {
	v, err := Property{Type: KindSelect}.Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)

	v, err = Property{Type: KindCheckbox}.Value()
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestPropertiesAccessors(t *testing.T) {
	email := "jane@university.ca"
	phone := "555-0100"
	checked := true
	props := Properties{
		"Name":            {Type: KindTitle, Title: TitleProperty("Jane Doe").Title},
		"Title":           {Type: KindRichText, RichText: TextProperty("Manager").RichText},
		"Work Email":      {Type: KindEmail, Email: &email},
		"Work Phone":      {Type: KindPhoneNumber, PhoneNumber: &phone},
		"Primary Contact": {Type: KindCheckbox, Checkbox: &checked},
		"Organization":    {Type: KindRelation, Relation: []RelationRef{{ID: "org-1"}}},
	}

	assert.Equal(t, "Jane Doe", props.TitleText("Name"))
	assert.Equal(t, "Manager", props.Text("Title"))
	assert.Equal(t, email, props.EmailValue("Work Email"))
	assert.Equal(t, phone, props.PhoneValue("Work Phone"))
	assert.True(t, props.Bool("Primary Contact"))
	assert.Equal(t, []string{"org-1"}, props.RelationIDs("Organization"))

	// Absent properties degrade to zero values.
	assert.Equal(t, "", props.TitleText("Missing"))
	assert.False(t, props.Bool("Missing"))
	assert.Empty(t, props.RelationIDs("Missing"))
}

func TestJoinRichText_FallsBackToPlainText(t *testing.T) {
	fragments := []RichText{
		{PlainText: "plain "},
		textFragment("content"),
	}
	assert.Equal(t, "plain content", joinRichText(fragments))
}
