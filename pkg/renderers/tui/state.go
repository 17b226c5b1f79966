package tui

import "github.com/goliatone/go-intake/pkg/render"

// State tracks collected values in page order along with the errors the page
// carried in.
type State struct {
	order  []string
	values map[string]string
	errors map[string][]string
}

// NewState seeds values and errors from the page fields.
func NewState(page render.Page) *State {
	s := &State{
		values: make(map[string]string),
		errors: make(map[string][]string),
	}
	for _, section := range page.Sections {
		for _, field := range section.Fields {
			s.order = append(s.order, field.Name)
			s.values[field.Name] = field.Value
			if len(field.Errors) > 0 {
				s.errors[field.Name] = append([]string(nil), field.Errors...)
			}
		}
	}
	return s
}

func (s *State) Value(name string) string {
	return s.values[name]
}

func (s *State) Set(name, value string) {
	if _, ok := s.values[name]; !ok {
		s.order = append(s.order, name)
	}
	s.values[name] = value
}

func (s *State) ErrorsFor(name string) []string {
	return s.errors[name]
}

// Values returns a copy of the collected values.
func (s *State) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Order returns field names in the order they were prompted.
func (s *State) Order() []string {
	return append([]string(nil), s.order...)
}
