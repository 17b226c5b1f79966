package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/render"
)

const templatePrefix = "templates/components/"

// NewDefaultRegistry returns a registry with the built-in intake controls.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameInput, Descriptor{
		Renderer: templateComponentRenderer(PartialInput, templatePrefix+"input.tmpl"),
	})
	registry.MustRegister(NameTextarea, Descriptor{
		Renderer: templateComponentRenderer(PartialTextarea, templatePrefix+"textarea.tmpl"),
	})
	registry.MustRegister(NameSelect, Descriptor{
		Renderer: templateComponentRenderer(PartialSelect, templatePrefix+"select.tmpl"),
	})
	registry.MustRegister(NameAddress, Descriptor{
		Renderer: templateComponentRenderer(PartialAddress, templatePrefix+"address.tmpl"),
	})

	return registry
}

// Resolve picks the component for a field from its type and flags.
func Resolve(field render.Field) string {
	if field.Autocomplete {
		return NameAddress
	}
	switch strings.ToLower(strings.TrimSpace(field.Type)) {
	case "select":
		return NameSelect
	case "textarea":
		return NameTextarea
	default:
		return NameInput
	}
}

func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field render.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolvedTemplate := templateName
		if candidate := strings.TrimSpace(data.ThemePartials[partialKey]); candidate != "" {
			resolvedTemplate = candidate
		}

		rendered, err := data.Template.RenderTemplate(resolvedTemplate, map[string]any{
			"field": field,
			"id":    data.ControlID,
		})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", resolvedTemplate, err)
		}
		buf.WriteString(strings.TrimRight(rendered, "\n"))
		return nil
	}
}
