package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-intake/pkg/places"
	"github.com/goliatone/go-intake/pkg/render"
)

// KeepTypedOption is offered next to address suggestions to keep the raw text.
const KeepTypedOption = "Use the address as typed"

// Renderer implements render.Renderer for terminal sessions: it prompts for
// every field of the page and returns the collected values.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	addressWidget     func() AddressWidget
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver()
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for each field in page order. Page notices and form errors
// are printed first; required fields are asked again until filled.
func (r *Renderer) Render(ctx context.Context, page render.Page) ([]byte, error) {
	values, err := r.Collect(ctx, page)
	if err != nil {
		return nil, err
	}
	return r.serialize(page, values)
}

// Collect runs the prompts and returns the raw values keyed by field name.
func (r *Renderer) Collect(ctx context.Context, page render.Page) (map[string]string, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	if page.Title != "" {
		if err := r.driver.Info(ctx, page.Title); err != nil {
			return nil, err
		}
	}
	for _, notice := range page.Notifications {
		prefix := r.theme.InfoPrefix
		if notice.Severity == "error" {
			prefix = r.theme.ErrorPrefix
		}
		_ = r.driver.Info(ctx, prefix+notice.Message)
	}
	for _, message := range page.FormErrors {
		_ = r.driver.Info(ctx, r.theme.ErrorPrefix+message)
	}

	state := NewState(page)
	for _, section := range page.Sections {
		if section.Title != "" {
			_ = r.driver.Info(ctx, r.theme.SectionPrefix+section.Title)
		}
		for _, field := range section.Fields {
			if err := r.promptField(ctx, field, state); err != nil {
				return nil, err
			}
		}
	}

	values := state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return values, nil
}

func (r *Renderer) promptField(ctx context.Context, field render.Field, state *State) error {
	for _, message := range state.ErrorsFor(field.Name) {
		_ = r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, displayLabel(field), message))
	}
	if status := field.Status; status != nil && status.Message != "" {
		prefix := r.theme.InfoPrefix
		if status.Error {
			prefix = r.theme.ErrorPrefix
		}
		_ = r.driver.Info(ctx, prefix+status.Message)
	}

	switch field.Type {
	case "select":
		return r.promptSelect(ctx, field, state)
	case "textarea":
		return r.promptText(ctx, field, state, true)
	}
	if field.Autocomplete && r.addressWidget != nil {
		if widget := r.addressWidget(); widget != nil {
			return r.promptAddress(ctx, field, state, widget)
		}
	}
	return r.promptText(ctx, field, state, false)
}

func (r *Renderer) promptText(ctx context.Context, field render.Field, state *State, multiline bool) error {
	label := displayLabel(field)
	for {
		var (
			response string
			err      error
		)
		if multiline {
			response, err = r.driver.TextArea(ctx, TextAreaConfig{
				Message: label,
				Default: state.Value(field.Name),
				Help:    field.Placeholder,
			})
		} else {
			response, err = r.driver.Input(ctx, InputConfig{
				Message: label,
				Default: state.Value(field.Name),
				Help:    field.Placeholder,
			})
		}
		if err != nil {
			return err
		}
		if field.Required && strings.TrimSpace(response) == "" {
			_ = r.driver.Info(ctx, r.theme.ErrorPrefix+render.RequiredMessage)
			continue
		}
		state.Set(field.Name, response)
		return nil
	}
}

func (r *Renderer) promptSelect(ctx context.Context, field render.Field, state *State) error {
	options := make([]string, 0, len(field.Options))
	defaultIdx := -1
	current := state.Value(field.Name)
	for i, option := range field.Options {
		options = append(options, option.Label)
		if option.Value == current {
			defaultIdx = i
		}
	}
	if len(options) == 0 {
		return fmt.Errorf("tui: field %q has no options", field.Name)
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(field),
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         field.Placeholder,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			_ = r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s selection", r.theme.ErrorPrefix, displayLabel(field)))
			continue
		}
		state.Set(field.Name, field.Options[idx].Value)
		return nil
	}
}

// promptAddress reads free text with live suggestions, then offers the
// predictions for that text. Choosing one selects it on the widget, which
// fires place_changed for any bound listener; the field takes the place's
// formatted address. Keeping the typed text commits it with Enter.
func (r *Renderer) promptAddress(ctx context.Context, field render.Field, state *State, widget AddressWidget) error {
	label := displayLabel(field)
	suggest := func(partial string) []string {
		if strings.TrimSpace(partial) == "" {
			return nil
		}
		predictions, err := widget.Predict(ctx, partial)
		if err != nil {
			return nil
		}
		return descriptions(predictions)
	}

	for {
		text, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: state.Value(field.Name),
			Help:    field.Placeholder,
			Suggest: suggest,
		})
		if err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			if field.Required {
				_ = r.driver.Info(ctx, r.theme.ErrorPrefix+render.RequiredMessage)
				continue
			}
			state.Set(field.Name, "")
			return nil
		}

		predictions, err := widget.Predict(ctx, text)
		if err != nil {
			_ = r.driver.Info(ctx, r.theme.ErrorPrefix+"Address suggestions are unavailable.")
		}
		if err != nil || len(predictions) == 0 {
			widget.Enter(text)
			state.Set(field.Name, text)
			return nil
		}

		options := append(descriptions(predictions), KeepTypedOption)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: 0,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(predictions) {
			widget.Enter(text)
			state.Set(field.Name, text)
			return nil
		}

		if err := widget.Select(ctx, predictions[idx].PlaceID); err != nil {
			_ = r.driver.Info(ctx, fmt.Sprintf("%sCould not resolve the selected address: %v", r.theme.ErrorPrefix, err))
			continue
		}
		address := widget.GetPlace().FormattedAddress
		if address == "" {
			address = text
		}
		state.Set(field.Name, address)
		return nil
	}
}

func (r *Renderer) serialize(page render.Page, values map[string]string) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		form := url.Values{}
		for key, value := range values {
			form.Set(key, value)
		}
		return []byte(form.Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(page, values)), nil
	default:
		return json.Marshal(values)
	}
}

func displayLabel(field render.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func descriptions(predictions []places.Prediction) []string {
	out := make([]string, 0, len(predictions))
	for _, p := range predictions {
		out = append(out, p.Description)
	}
	return out
}

// prettyPrint writes "Label: value" lines in page order.
func prettyPrint(page render.Page, values map[string]string) string {
	var b strings.Builder
	seen := make(map[string]struct{}, len(values))
	for _, section := range page.Sections {
		for _, field := range section.Fields {
			value, ok := values[field.Name]
			if !ok {
				continue
			}
			seen[field.Name] = struct{}{}
			fmt.Fprintf(&b, "%s: %s\n", displayLabel(field), value)
		}
	}
	for key, value := range values {
		if _, ok := seen[key]; !ok {
			fmt.Fprintf(&b, "%s: %s\n", key, value)
		}
	}
	return b.String()
}
