package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-intake/pkg/render"
	rendertemplate "github.com/goliatone/go-intake/pkg/render/template"
)

// Renderer writes the control markup for a field into buf.
type Renderer func(buf *bytes.Buffer, field render.Field, data ComponentData) error

// ComponentData is what a control renderer gets besides the field.
type ComponentData struct {
	Template      rendertemplate.TemplateRenderer
	ControlID     string
	ThemePartials map[string]string
}

// Descriptor is a control renderer plus the assets it needs on the page.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
	Scripts     []render.Script
}

// Registry maps control names (case-insensitive) to descriptors.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]Descriptor
}

func New() *Registry {
	return &Registry{byKey: make(map[string]Descriptor)}
}

// Register stores descriptor under name, replacing any previous entry.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("components: component name is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", key)
	}
	descriptor.Name = key
	descriptor.Stylesheets = slices.Clone(descriptor.Stylesheets)
	descriptor.Scripts = slices.Clone(descriptor.Scripts)

	r.mu.Lock()
	r.byKey[key] = descriptor
	r.mu.Unlock()
	return nil
}

func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byKey[normalize(name)]
	return d, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byKey))
	for name := range r.byKey {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Assets returns the stylesheets and scripts of the named controls in order,
// each at most once. Unknown names are skipped.
func (r *Registry) Assets(names []string) (stylesheets []string, scripts []render.Script) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, name := range names {
		d, ok := r.byKey[normalize(name)]
		if !ok {
			continue
		}
		for _, href := range d.Stylesheets {
			if href != "" && !seen["css:"+href] {
				seen["css:"+href] = true
				stylesheets = append(stylesheets, href)
			}
		}
		for _, script := range d.Scripts {
			if script.Src != "" && !seen["js:"+script.Src] {
				seen["js:"+script.Src] = true
				scripts = append(scripts, script)
			}
		}
	}
	return stylesheets, scripts
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
