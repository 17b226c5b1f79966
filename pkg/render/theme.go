package render

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

const (
	DefaultThemeName = "intake"
	DarkVariant      = "dark"

	// AssetStylesheet is the asset key of the page stylesheet.
	AssetStylesheet = "stylesheet"
	// AssetRuntime is the asset key of the address runtime script.
	AssetRuntime = "runtime"
)

// DefaultManifest is the built-in theme with a dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":        "#2f6fb0",
			"brand-strong": "#1f4f82",
			"surface":      "#f4f8fc",
			"panel":        "#ffffff",
			"text":         "#1b2733",
			"muted":        "#5b6b7b",
			"error":        "#d93025",
			"success":      "#188038",
			"radius":       "0.375rem",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				AssetStylesheet: "intake.css",
				AssetRuntime:    "intake-places.js",
			},
		},
		Variants: map[string]theme.Variant{
			DarkVariant: {
				Tokens: map[string]string{
					"surface": "#111820",
					"panel":   "#1b2530",
					"text":    "#e6edf3",
					"muted":   "#9aa8b6",
				},
			},
		},
	}
}

// Themes resolves theme selections. Manifests are validated by a go-theme
// registry on registration.
type Themes struct {
	registry interface{ Register(*theme.Manifest) error }

	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
}

// NewThemes registers manifests; with none, the default manifest is used.
func NewThemes(manifests ...*theme.Manifest) (*Themes, error) {
	t := &Themes{
		registry:  theme.NewRegistry(),
		manifests: make(map[string]*theme.Manifest),
	}
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultManifest()}
	}
	for _, m := range manifests {
		if err := t.Register(m); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Themes) Register(m *theme.Manifest) error {
	if m == nil {
		return fmt.Errorf("render: theme manifest is required")
	}
	if err := t.registry.Register(m); err != nil {
		return fmt.Errorf("render: register theme %q: %w", m.Name, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.manifests[m.Name] = m
	return nil
}

// Select resolves a theme and variant. An empty name picks the default theme;
// an unknown variant is an error.
func (t *Themes) Select(name, variant string) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultThemeName
	}
	variant = strings.TrimSpace(variant)

	t.mu.RLock()
	m, ok := t.manifests[name]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("render: theme %q not found", name)
	}
	if variant != "" {
		if _, ok := m.Variants[variant]; !ok {
			return nil, fmt.Errorf("render: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: m}, nil
}

// ThemeConfig flattens a selection into renderer configuration: variant
// tokens override the base ones and each token is exposed as a --css var.
func ThemeConfig(sel *theme.Selection) *theme.RendererConfig {
	if sel == nil || sel.Manifest == nil {
		return nil
	}
	m := sel.Manifest
	v, hasVariant := m.Variants[sel.Variant]

	tokens := mergeStrings(m.Tokens, nil)
	partials := mergeStrings(m.Templates, nil)
	files := mergeStrings(m.Assets.Files, nil)
	prefix := m.Assets.Prefix
	if hasVariant {
		tokens = mergeStrings(tokens, v.Tokens)
		partials = mergeStrings(partials, v.Templates)
		files = mergeStrings(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    sel.Theme,
		Variant:  sel.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				return ""
			}
			if strings.Contains(file, "://") || prefix == "" {
				return file
			}
			if strings.Contains(prefix, "://") {
				return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
			}
			return path.Join(prefix, file)
		},
	}
}

// CSSVarsStyle renders CSS variables as a :root block with sorted keys.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		fmt.Fprintf(&b, "  %s: %s;\n", key, vars[key])
	}
	b.WriteString("}")
	return b.String()
}

func mergeStrings(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
