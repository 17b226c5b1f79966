package intake

import (
	"fmt"
	"sort"
	"strings"
)

// Field names used by the form, the JSON API, and validation errors.
const (
	FieldFirstName     = "firstName"
	FieldLastName      = "lastName"
	FieldMobilePhone   = "mobilePhone"
	FieldHomePhone     = "homePhone"
	FieldOtherPhone    = "otherPhone"
	FieldEmail         = "email"
	FieldAddress       = "address"
	FieldApplianceType = "applianceType"
	FieldProblem       = "problem"
)

// Fields lists every form field in display order.
var Fields = []string{
	FieldFirstName,
	FieldLastName,
	FieldMobilePhone,
	FieldHomePhone,
	FieldOtherPhone,
	FieldEmail,
	FieldAddress,
	FieldApplianceType,
	FieldProblem,
}

// RequiredFields are the fields that must be non-empty before submission.
// The appliance type is optional.
var RequiredFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldMobilePhone,
	FieldEmail,
	FieldAddress,
	FieldProblem,
}

// ApplianceTypes are the selectable appliance kinds.
var ApplianceTypes = []string{
	"refrigerator",
	"washer",
	"dryer",
	"dishwasher",
	"oven",
	"microwave",
}

// Values is the working copy of the form. Every field is free text.
type Values struct {
	FirstName     string `json:"firstName" form:"firstName"`
	LastName      string `json:"lastName" form:"lastName"`
	MobilePhone   string `json:"mobilePhone" form:"mobilePhone"`
	HomePhone     string `json:"homePhone" form:"homePhone"`
	OtherPhone    string `json:"otherPhone" form:"otherPhone"`
	Email         string `json:"email" form:"email"`
	Address       string `json:"address" form:"address"`
	ApplianceType string `json:"applianceType" form:"applianceType"`
	Problem       string `json:"problem" form:"problem"`
}

func (v *Values) field(name string) (*string, bool) {
	switch name {
	case FieldFirstName:
		return &v.FirstName, true
	case FieldLastName:
		return &v.LastName, true
	case FieldMobilePhone:
		return &v.MobilePhone, true
	case FieldHomePhone:
		return &v.HomePhone, true
	case FieldOtherPhone:
		return &v.OtherPhone, true
	case FieldEmail:
		return &v.Email, true
	case FieldAddress:
		return &v.Address, true
	case FieldApplianceType:
		return &v.ApplianceType, true
	case FieldProblem:
		return &v.Problem, true
	}
	return nil, false
}

// Get returns the value of the named field.
func (v Values) Get(name string) (string, bool) {
	ptr, ok := v.field(name)
	if !ok {
		return "", false
	}
	return *ptr, true
}

// Set replaces the named field.
func (v *Values) Set(name, value string) error {
	ptr, ok := v.field(name)
	if !ok {
		return fmt.Errorf("intake: unknown field %q", name)
	}
	*ptr = value
	return nil
}

// Map returns the values keyed by field name.
func (v Values) Map() map[string]string {
	out := make(map[string]string, len(Fields))
	for _, name := range Fields {
		out[name], _ = v.Get(name)
	}
	return out
}

// ValuesFromMap builds Values from a field map, ignoring unknown keys.
func ValuesFromMap(m map[string]string) Values {
	var v Values
	for name, value := range m {
		_ = v.Set(name, value)
	}
	return v
}

// ValidationError lists the required fields that were left empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "intake: missing required fields: " + strings.Join(e.Missing, ", ")
}

// MissingFields returns the empty required fields in display order.
func (e *ValidationError) MissingFields() []string {
	return append([]string(nil), e.Missing...)
}

// Has reports whether field is among the missing ones.
func (e *ValidationError) Has(field string) bool {
	for _, m := range e.Missing {
		if m == field {
			return true
		}
	}
	return false
}

// Validate checks presence of the required fields. No format checks are made.
func (v Values) Validate() error {
	var missing []string
	for _, name := range RequiredFields {
		value, _ := v.Get(name)
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return indexOf(Fields, missing[i]) < indexOf(Fields, missing[j])
	})
	return &ValidationError{Missing: missing}
}

func indexOf(list []string, value string) int {
	for i, v := range list {
		if v == value {
			return i
		}
	}
	return len(list)
}
