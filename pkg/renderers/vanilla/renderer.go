package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-intake/pkg/render"
	rendertemplate "github.com/goliatone/go-intake/pkg/render/template"
	gotemplate "github.com/goliatone/go-intake/pkg/render/template/gotemplate"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla/components"
)

const pageTemplate = "templates/page.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	stylesheets      []string
	inlineStyles     bool
	introMarkup      string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the built-in control registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithStylesheet links an extra stylesheet from the page head.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if href = strings.TrimSpace(href); href != "" {
			cfg.stylesheets = append(cfg.stylesheets, href)
		}
	}
}

// WithDefaultStyles inlines the embedded stylesheet into the page.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// WithIntroMarkup replaces the page intro with sanitized HTML. Only inline
// formatting and links survive.
func WithIntroMarkup(markup string) Option {
	return func(cfg *config) {
		cfg.introMarkup = markup
	}
}

// Renderer produces the full HTML intake page.
type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	registry    *components.Registry
	stylesheets []string
	inlineStyle string
	introHTML   string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	registry := cfg.registry
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}

	out := &Renderer{
		templates:   renderer,
		registry:    registry,
		stylesheets: cfg.stylesheets,
		introHTML:   sanitizeIntroMarkup(cfg.introMarkup),
	}
	if cfg.inlineStyles {
		out.inlineStyle = defaultStylesheet()
	}
	return out, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, page render.Page) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var partials map[string]string
	if page.Theme != nil {
		partials = page.Theme.Partials
	}
	controls := newComponentRenderer(r.templates, r.registry, partials)

	sections := make([]map[string]any, 0, len(page.Sections))
	for _, section := range page.Sections {
		fields := make([]string, 0, len(section.Fields))
		for _, field := range section.Fields {
			markup, err := controls.render(field)
			if err != nil {
				return nil, fmt.Errorf("vanilla renderer: %w", err)
			}
			fields = append(fields, markup)
		}
		sections = append(sections, map[string]any{
			"title":  section.Title,
			"fields": fields,
		})
	}

	stylesheets, scripts := controls.assets()
	stylesheets = append(themeStylesheets(page.Theme), append(stylesheets, r.stylesheets...)...)
	scripts = append(scripts, page.Scripts...)

	result, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"page":         page,
		"sections":     sections,
		"classes":      chromeClasses(),
		"stylesheets":  stylesheets,
		"scripts":      scripts,
		"inline_style": r.inlineStyle,
		"css_vars":     themeCSSVars(page.Theme),
		"runtime":      runtimeURL(page),
		"intro_html":   r.introHTML,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
