package components

// Built-in component names.
const (
	NameInput    = "input"
	NameTextarea = "textarea"
	NameSelect   = "select"
	NameAddress  = "address"
)

// Theme partial keys a manifest can override.
const (
	PartialInput    = "forms.input"
	PartialTextarea = "forms.textarea"
	PartialSelect   = "forms.select"
	PartialAddress  = "forms.address"
)
