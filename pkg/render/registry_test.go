package render_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/render"
)

type namedRenderer string

func (n namedRenderer) Name() string        { return string(n) }
func (n namedRenderer) ContentType() string { return "text/plain" }
func (n namedRenderer) Render(context.Context, render.Page) ([]byte, error) {
	return []byte(n), nil
}

func TestRegistry_DefaultAndLookup(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(namedRenderer("vanilla"))
	registry.MustRegister(namedRenderer("text"))

	got, err := registry.Get("")
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if got.Name() != "vanilla" {
		t.Fatalf("expected first registered renderer as default, got %q", got.Name())
	}

	if _, err := registry.Get("preact"); err == nil {
		t.Fatal("expected unknown renderer error")
	}
	if err := registry.Register(namedRenderer("text")); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if err := registry.Register(namedRenderer(" ")); err == nil {
		t.Fatal("expected empty name error")
	}
	if diff := cmp.Diff([]string{"text", "vanilla"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}
