package binder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-intake/pkg/loader"
	"github.com/goliatone/go-intake/pkg/places"
	"github.com/goliatone/go-intake/pkg/secrets"
)

type stubService struct {
	places map[string]places.Place
}

func (s stubService) Predictions(context.Context, places.PredictionRequest) ([]places.Prediction, error) {
	return nil, nil
}

func (s stubService) Details(_ context.Context, req places.DetailsRequest) (places.Place, error) {
	place, ok := s.places[req.PlaceID]
	if !ok {
		return places.Place{}, places.ErrNotFound
	}
	return place, nil
}

type recordingFactory struct {
	mu      sync.Mutex
	widgets []*places.Autocomplete
	service places.Service
}

func (f *recordingFactory) build(_ loader.Capability, inputID string, opts places.Options) (Widget, error) {
	w := places.NewAutocomplete(f.service, inputID, opts)
	f.mu.Lock()
	f.widgets = append(f.widgets, w)
	f.mu.Unlock()
	return w, nil
}

func (f *recordingFactory) all() []*places.Autocomplete {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*places.Autocomplete{}, f.widgets...)
}

func readyLoader(t *testing.T) *loader.Loader {
	t.Helper()
	marker := &loader.Marker{}
	marker.Set(loader.Capability{Library: "places", Key: "k"})
	l := loader.New(secrets.Static{}, loader.NewHead(nil), loader.WithMarker(marker))
	if state := l.Acquire(context.Background()); !state.IsReady() {
		t.Fatalf("expected ready loader, got %s", state)
	}
	t.Cleanup(l.Close)
	return l
}

func springfield() stubService {
	return stubService{places: map[string]places.Place{
		"p1": {PlaceID: "p1", FormattedAddress: "123 Main St, Springfield"},
		"p2": {PlaceID: "p2"},
	}}
}

func TestBind_NoopUntilReady(t *testing.T) {
	l := loader.New(secrets.Static{loader.DefaultSecretName: "k"}, loader.NewHead(nil), loader.WithMarker(&loader.Marker{}))
	defer l.Close()
	factory := &recordingFactory{service: springfield()}
	b := New(l, factory.build)
	defer b.Close()

	b.Bind(NewInput("address"), func(string) {})
	if b.ActiveListeners() != 0 || b.Current() != nil {
		t.Fatalf("expected no widget before the loader is ready")
	}

	if state := l.Acquire(context.Background()); !state.IsReady() {
		t.Fatalf("expected ready, got %s", state)
	}
	if b.ActiveListeners() != 1 {
		t.Fatalf("expected binding once ready, got %d listeners", b.ActiveListeners())
	}
	if len(factory.all()) != 1 {
		t.Fatalf("expected one widget, got %d", len(factory.all()))
	}
}

func TestBind_UnmountedInputIsIgnored(t *testing.T) {
	factory := &recordingFactory{service: springfield()}
	b := New(readyLoader(t), factory.build)
	defer b.Close()

	in := NewInput("address")
	in.Unmount()
	b.Bind(in, func(string) {})
	if b.ActiveListeners() != 0 {
		t.Fatalf("expected no binding for an unmounted input")
	}

	in.Mount()
	b.Bind(in, func(string) {})
	if b.ActiveListeners() != 1 {
		t.Fatalf("expected binding once mounted")
	}
}

func TestBind_SelectionWithAddressCallsBackOnce(t *testing.T) {
	b := New(readyLoader(t), ServiceWidgets(springfield()))
	defer b.Close()

	var got []string
	b.Bind(NewInput("address"), func(addr string) { got = append(got, addr) })

	if err := b.Current().Select(context.Background(), "p1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 1 || got[0] != "123 Main St, Springfield" {
		t.Fatalf("expected one callback with the formatted address, got %v", got)
	}
}

func TestBind_SelectionWithoutAddressIsIgnored(t *testing.T) {
	b := New(readyLoader(t), ServiceWidgets(springfield()))
	defer b.Close()

	calls := 0
	b.Bind(NewInput("address"), func(string) { calls++ })

	if err := b.Current().Select(context.Background(), "p2"); err != nil {
		t.Fatalf("select: %v", err)
	}
	b.Current().Enter("just typed")
	if calls != 0 {
		t.Fatalf("expected zero callbacks, got %d", calls)
	}
}

func TestBind_RapidRebindKeepsOneListener(t *testing.T) {
	factory := &recordingFactory{service: springfield()}
	b := New(readyLoader(t), factory.build)
	defer b.Close()

	var calls atomic.Int32
	in := NewInput("address")
	for i := 0; i < 25; i++ {
		b.Bind(in, func(string) { calls.Add(1) })
		if b.ActiveListeners() > 1 {
			t.Fatalf("more than one listener after rebind %d", i)
		}
	}

	widgets := factory.all()
	if len(widgets) != 25 {
		t.Fatalf("expected a widget per bind, got %d", len(widgets))
	}
	for i, w := range widgets[:len(widgets)-1] {
		if n := w.ListenerCount(places.EventPlaceChanged); n != 0 {
			t.Fatalf("stale widget %d still has %d listeners", i, n)
		}
	}
	latest := widgets[len(widgets)-1]
	if n := latest.ListenerCount(places.EventPlaceChanged); n != 1 {
		t.Fatalf("expected one listener on the live widget, got %d", n)
	}

	widgets[0].SetPlace(places.Place{FormattedAddress: "stale"})
	if err := latest.Select(context.Background(), "p1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one callback, got %d", calls.Load())
	}
}

func TestClose_ClearsListenersAndSubscription(t *testing.T) {
	l := readyLoader(t)
	factory := &recordingFactory{service: springfield()}
	b := New(l, factory.build)
	if l.Subscribers() != 1 {
		t.Fatalf("expected binder subscription, got %d", l.Subscribers())
	}

	calls := 0
	b.Bind(NewInput("address"), func(string) { calls++ })
	widget := factory.all()[0]
	b.Close()
	b.Close()

	if l.Subscribers() != 0 {
		t.Fatalf("expected subscription released, got %d", l.Subscribers())
	}
	if widget.ListenerCount(places.EventPlaceChanged) != 0 {
		t.Fatalf("expected listeners cleared on close")
	}
	widget.SetPlace(places.Place{FormattedAddress: "123 Main St, Springfield"})
	if calls != 0 {
		t.Fatalf("callback fired after close")
	}

	b.Bind(NewInput("address"), func(string) { calls++ })
	if b.ActiveListeners() != 0 {
		t.Fatalf("closed binder must not bind")
	}
}

func TestBind_LoaderRetryBindsAfterFailure(t *testing.T) {
	var attempts atomic.Int32
	src := secrets.SourceFunc(func(context.Context, string) (string, error) {
		if attempts.Add(1) == 1 {
			return "", errors.New("rpc down")
		}
		return "k", nil
	})
	l := loader.New(src, loader.NewHead(nil), loader.WithMarker(&loader.Marker{}))
	defer l.Close()
	b := New(l, ServiceWidgets(springfield()))
	defer b.Close()

	b.Bind(NewInput("address"), func(string) {})
	if state := l.Acquire(context.Background()); !state.IsFailed() {
		t.Fatalf("expected failure, got %s", state)
	}
	if b.ActiveListeners() != 0 {
		t.Fatalf("failed loader must leave the input unbound")
	}
	if state := l.Retry(context.Background()); !state.IsReady() {
		t.Fatalf("expected ready after retry, got %s", state)
	}
	if b.ActiveListeners() != 1 {
		t.Fatalf("expected binding after retry")
	}
}

func TestUnbind(t *testing.T) {
	b := New(readyLoader(t), ServiceWidgets(springfield()))
	defer b.Close()
	b.Bind(NewInput("address"), func(string) {})
	b.Unbind()
	if b.ActiveListeners() != 0 || b.Current() != nil {
		t.Fatalf("expected no widget after unbind")
	}
}

func TestGoogleWidgets_RequiresKey(t *testing.T) {
	if _, err := GoogleWidgets()(loader.Capability{}, "address", places.DefaultOptions()); err == nil {
		t.Fatalf("expected error without api key")
	}
	w, err := GoogleWidgets()(loader.Capability{Key: "k"}, "address", places.DefaultOptions())
	if err != nil || w == nil {
		t.Fatalf("expected widget, got %v", err)
	}
}
