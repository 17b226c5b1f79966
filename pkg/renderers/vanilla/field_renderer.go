package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/render/template"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla/components"
)

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	partials  map[string]string

	usedComponents map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, partials map[string]string) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates:      templates,
		registry:       registry,
		partials:       partials,
		usedComponents: make(map[string]struct{}),
	}
}

func (r *componentRenderer) render(field render.Field) (string, error) {
	componentName := components.Resolve(field)
	descriptor, ok := r.registry.Descriptor(componentName)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", componentName, field.Name)
	}

	id := controlID(field.Name)
	data := components.ComponentData{
		Template:      r.templates,
		ControlID:     id,
		ThemePartials: r.partials,
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", componentName, field.Name, err)
	}

	r.usedComponents[componentName] = struct{}{}

	return buildFieldMarkup(field, id, componentName, control.String()), nil
}

func (r *componentRenderer) assets() (stylesheets []string, scripts []render.Script) {
	if len(r.usedComponents) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Assets(names)
}

// buildFieldMarkup wraps a control with its label, status line and inline
// errors.
func buildFieldMarkup(field render.Field, id, componentName, control string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="`)
	builder.WriteString(string(ClassField))
	if len(field.Errors) > 0 {
		builder.WriteString(` `)
		builder.WriteString(string(ClassField))
		builder.WriteString(`--invalid`)
	}
	builder.WriteString(`" data-field="`)
	builder.WriteString(html.EscapeString(field.Name))
	builder.WriteString(`" data-component="`)
	builder.WriteString(html.EscapeString(componentName))
	builder.WriteString("\">\n")

	if label := strings.TrimSpace(field.Label); label != "" {
		builder.WriteString(`  <label for="`)
		builder.WriteString(html.EscapeString(id))
		builder.WriteString(`">`)
		builder.WriteString(html.EscapeString(label))
		if field.Required {
			builder.WriteString(` <span class="intake-required" aria-hidden="true">*</span>`)
		}
		builder.WriteString("</label>\n")
	}

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("  ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if status := field.Status; status != nil && strings.TrimSpace(status.Message) != "" {
		builder.WriteString(`  <p class="`)
		builder.WriteString(statusClass(status.State, status.Error))
		builder.WriteString(`" id="`)
		builder.WriteString(html.EscapeString(id))
		builder.WriteString(`-status"`)
		if status.Error {
			builder.WriteString(` role="alert"`)
		} else {
			builder.WriteString(` role="status"`)
		}
		builder.WriteString(`>`)
		builder.WriteString(html.EscapeString(status.Message))
		builder.WriteString("</p>\n")
	}

	if len(field.Errors) > 0 {
		builder.WriteString(`  <ul class="`)
		builder.WriteString(string(ClassFieldErrors))
		builder.WriteString(`" id="`)
		builder.WriteString(html.EscapeString(id))
		builder.WriteString("-errors\">\n")
		for _, message := range field.Errors {
			builder.WriteString("    <li>")
			builder.WriteString(html.EscapeString(message))
			builder.WriteString("</li>\n")
		}
		builder.WriteString("  </ul>\n")
	}

	builder.WriteString("</div>")
	return builder.String()
}
