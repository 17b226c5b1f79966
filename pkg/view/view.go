// Package view turns intake state into a render.Page shared by the HTML and
// terminal front ends.
package view

import (
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/loader"
	"github.com/goliatone/go-intake/pkg/render"
)

const (
	SubmitLabel     = "Submit Request"
	SubmittingLabel = "Submitting..."

	StatusLoading = "Loading address suggestions..."
)

// Input carries everything a page depends on. The zero value renders an
// empty form with the address field enabled.
type Input struct {
	Values        intake.Values
	Errors        render.ErrorMapping
	Address       loader.State
	Notifications []intake.Notification
	Submitting    bool
	Action        string
	Scripts       []loader.ScriptRef
	Hidden        []render.HiddenField
	RuntimeURL    string
}

// Build lays out the intake sections with the current values, inline errors
// and the address field status.
func Build(in Input) render.Page {
	page := render.Page{
		Title:       intake.PageTitle,
		Intro:       intake.PageIntro,
		Action:      in.Action,
		Method:      "post",
		SubmitLabel: SubmitLabel,
		Submitting:  in.Submitting,
		Hidden:      render.SortedHiddenFields(render.MergeHiddenFields(nil, in.Hidden...)),
		RuntimeURL:  in.RuntimeURL,
	}
	if page.Action == "" {
		page.Action = "/"
	}
	if in.Submitting {
		page.SubmitLabel = SubmittingLabel
	}

	for _, spec := range intake.Sections() {
		section := render.Section{Title: spec.Title}
		for _, fs := range spec.Fields {
			section.Fields = append(section.Fields, buildField(fs, in))
		}
		page.Sections = append(page.Sections, section)
	}

	for _, n := range in.Notifications {
		page.Notifications = append(page.Notifications, render.Notice{
			Severity: string(n.Severity),
			Message:  n.Message,
		})
	}
	page.Scripts = Scripts(in.Scripts)
	page.ApplyErrors(in.Errors)
	return page
}

func buildField(spec intake.FieldSpec, in Input) render.Field {
	value, _ := in.Values.Get(spec.Name)
	field := render.Field{
		Name:         spec.Name,
		Label:        spec.Label,
		Type:         string(spec.Kind),
		Placeholder:  spec.Placeholder,
		Value:        value,
		Required:     spec.Required,
		Disabled:     in.Submitting,
		Autocomplete: spec.Autocomplete,
	}
	for _, choice := range spec.Choices {
		field.Options = append(field.Options, render.Option{
			Value:    choice.Value,
			Label:    choice.Label,
			Selected: choice.Value == value,
		})
	}
	if spec.Autocomplete {
		field.Status = AddressStatus(in.Address)
		if in.Address.IsLoading() {
			field.Disabled = true
		}
	}
	return field
}

// AddressStatus maps the loader state to the inline indicator next to the
// address field. Ready and not-started states show nothing.
func AddressStatus(state loader.State) *render.FieldStatus {
	switch state.Phase {
	case loader.PhaseLoading:
		return &render.FieldStatus{State: state.Phase.String(), Message: StatusLoading}
	case loader.PhaseFailed:
		return &render.FieldStatus{State: state.Phase.String(), Message: state.Reason, Error: true}
	}
	return nil
}

// Scripts converts injected script references into page script tags.
func Scripts(refs []loader.ScriptRef) []render.Script {
	if len(refs) == 0 {
		return nil
	}
	out := make([]render.Script, 0, len(refs))
	for _, ref := range refs {
		if ref.Src == "" {
			continue
		}
		out = append(out, render.Script{Src: ref.Src, Async: ref.Async, Defer: ref.Defer})
	}
	return out
}

// Values reads the intake fields back out of a page.
func Values(page render.Page) intake.Values {
	var v intake.Values
	for _, section := range page.Sections {
		for _, field := range section.Fields {
			_ = v.Set(field.Name, field.Value)
		}
	}
	return v
}
