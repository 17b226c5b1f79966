package tui

import (
	"context"

	"github.com/goliatone/go-intake/pkg/places"
)

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	OutputFormatJSON           OutputFormat = "json"
	OutputFormatFormURLEncoded OutputFormat = "form"
	OutputFormatPrettyText     OutputFormat = "pretty"
)

// Theme holds message prefixes. Keep it free of ANSI specifics.
type Theme struct {
	SectionPrefix string
	InfoPrefix    string
	ErrorPrefix   string
}

// DefaultTheme is applied when no theme is configured.
var DefaultTheme = Theme{
	SectionPrefix: "== ",
	InfoPrefix:    "",
	ErrorPrefix:   "! ",
}

// AddressWidget is the suggestion surface used by the address prompt. The
// binder's current widget satisfies it.
type AddressWidget interface {
	Predict(ctx context.Context, text string) ([]places.Prediction, error)
	Select(ctx context.Context, placeID string) error
	Enter(text string)
	GetPlace() places.Place
}

// SubmitTransformer mutates collected values before serialization.
type SubmitTransformer func(map[string]string) (map[string]string, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithAddressWidget supplies the widget lookup for autocomplete fields. The
// function is called per prompt so a rebound widget is picked up; returning
// nil falls back to plain text entry.
func WithAddressWidget(fn func() AddressWidget) Option {
	return func(r *Renderer) {
		r.addressWidget = fn
	}
}

// WithSubmitTransformer allows callers to mutate collected values prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
