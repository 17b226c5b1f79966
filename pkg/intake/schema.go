package intake

import "strings"

const (
	PageTitle = "Appliance Repair Service"
	PageIntro = "Please fill out the form below to request service for your appliance. We'll get back to you as soon as possible."
)

// FieldKind selects the control used for a field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindPhone    FieldKind = "tel"
	KindEmail    FieldKind = "email"
	KindSelect   FieldKind = "select"
	KindTextArea FieldKind = "textarea"
)

// Choice is one selectable option.
type Choice struct {
	Value string
	Label string
}

// FieldSpec describes how a field is presented.
type FieldSpec struct {
	Name         string
	Label        string
	Kind         FieldKind
	Placeholder  string
	Required     bool
	Choices      []Choice
	Autocomplete bool
}

// SectionSpec groups fields under a heading.
type SectionSpec struct {
	Title  string
	Fields []FieldSpec
}

// Sections returns the form layout in display order.
func Sections() []SectionSpec {
	return []SectionSpec{
		{
			Title: "Personal Information",
			Fields: []FieldSpec{
				{Name: FieldFirstName, Label: "First Name", Kind: KindText, Required: true},
				{Name: FieldLastName, Label: "Last Name", Kind: KindText, Required: true},
			},
		},
		{
			Title: "Contact Information",
			Fields: []FieldSpec{
				{Name: FieldMobilePhone, Label: "Mobile Phone", Kind: KindPhone, Required: true},
				{Name: FieldHomePhone, Label: "Home Phone", Kind: KindPhone},
				{Name: FieldOtherPhone, Label: "Other Phone", Kind: KindPhone},
				{Name: FieldEmail, Label: "Email Address", Kind: KindEmail, Required: true},
			},
		},
		{
			Title: "Service Details",
			Fields: []FieldSpec{
				{Name: FieldAddress, Label: "Service Address", Kind: KindText, Placeholder: "Enter your address", Required: true, Autocomplete: true},
				{Name: FieldApplianceType, Label: "Appliance Type", Kind: KindSelect, Placeholder: "Select appliance type", Choices: ApplianceChoices()},
				{Name: FieldProblem, Label: "Problem Description", Kind: KindTextArea, Required: true},
			},
		},
	}
}

// Spec returns the presentation of a single field.
func Spec(name string) (FieldSpec, bool) {
	for _, section := range Sections() {
		for _, field := range section.Fields {
			if field.Name == name {
				return field, true
			}
		}
	}
	return FieldSpec{}, false
}

// ApplianceChoices returns the appliance types with display labels.
func ApplianceChoices() []Choice {
	out := make([]Choice, 0, len(ApplianceTypes))
	for _, value := range ApplianceTypes {
		out = append(out, Choice{Value: value, Label: strings.ToUpper(value[:1]) + value[1:]})
	}
	return out
}
