package render

import theme "github.com/goliatone/go-theme"

// Page is the renderer-agnostic view of the intake form.
type Page struct {
	Title         string        `json:"title"`
	Intro         string        `json:"intro,omitempty"`
	Action        string        `json:"action"`
	Method        string        `json:"method"`
	SubmitLabel   string        `json:"submitLabel"`
	Submitting    bool          `json:"submitting"`
	Sections      []Section     `json:"sections"`
	FormErrors    []string      `json:"formErrors,omitempty"`
	Notifications []Notice      `json:"notifications,omitempty"`
	Scripts       []Script      `json:"scripts,omitempty"`
	Hidden        []HiddenField `json:"hidden,omitempty"`
	RuntimeURL    string        `json:"runtimeURL,omitempty"`

	Theme *theme.RendererConfig `json:"-"`
}

type Section struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Field is one control with its current value and inline errors. Status is
// used by the address field to show the suggestion loader state.
type Field struct {
	Name         string       `json:"name"`
	Label        string       `json:"label"`
	Type         string       `json:"type"`
	Placeholder  string       `json:"placeholder,omitempty"`
	Value        string       `json:"value"`
	Required     bool         `json:"required"`
	Disabled     bool         `json:"disabled"`
	Autocomplete bool         `json:"autocomplete"`
	Options      []Option     `json:"options,omitempty"`
	Errors       []string     `json:"errors,omitempty"`
	Status       *FieldStatus `json:"status,omitempty"`
}

type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// FieldStatus is an inline indicator rendered next to a field.
type FieldStatus struct {
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
	Error   bool   `json:"error"`
}

// Notice is a flash message.
type Notice struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Script is an external script tag emitted into the page head.
type Script struct {
	Src   string `json:"src"`
	Async bool   `json:"async"`
	Defer bool   `json:"defer"`
}

// Field returns a pointer to the named field, or nil.
func (p *Page) Field(name string) *Field {
	for i := range p.Sections {
		for j := range p.Sections[i].Fields {
			if p.Sections[i].Fields[j].Name == name {
				return &p.Sections[i].Fields[j]
			}
		}
	}
	return nil
}

// ApplyErrors attaches field errors and appends form-level errors.
func (p *Page) ApplyErrors(mapping ErrorMapping) {
	for name, messages := range mapping.Fields {
		if field := p.Field(name); field != nil {
			field.Errors = normalizeMessages(append(field.Errors, messages...))
			continue
		}
		p.FormErrors = append(p.FormErrors, messages...)
	}
	p.FormErrors = MergeFormErrors(p.FormErrors, mapping.Form...)
}
