package places

import (
	"context"
	"errors"
	"testing"
)

type fakeService struct {
	predictions []Prediction
	places      map[string]Place
	sessions    []string
}

func (f *fakeService) Predictions(_ context.Context, req PredictionRequest) ([]Prediction, error) {
	f.sessions = append(f.sessions, req.SessionToken)
	return f.predictions, nil
}

func (f *fakeService) Details(_ context.Context, req DetailsRequest) (Place, error) {
	f.sessions = append(f.sessions, req.SessionToken)
	place, ok := f.places[req.PlaceID]
	if !ok {
		return Place{}, ErrNotFound
	}
	return place, nil
}

func TestAutocomplete_SelectFiresPlaceChanged(t *testing.T) {
	svc := &fakeService{places: map[string]Place{
		"p1": {PlaceID: "p1", FormattedAddress: "123 Main St, Springfield"},
	}}
	ac := NewAutocomplete(svc, "address", DefaultOptions())

	fired := 0
	ac.AddListener(EventPlaceChanged, func() { fired++ })

	if _, err := ac.Predict(context.Background(), "123"); err != nil {
		t.Fatalf("predict: %v", err)
	}
	if err := ac.Select(context.Background(), "p1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected one event, got %d", fired)
	}
	if got := ac.GetPlace().FormattedAddress; got != "123 Main St, Springfield" {
		t.Fatalf("unexpected place %q", got)
	}
	if len(svc.sessions) != 2 || svc.sessions[0] != svc.sessions[1] {
		t.Fatalf("prediction and details should share a session: %v", svc.sessions)
	}

	if _, err := ac.Predict(context.Background(), "456"); err != nil {
		t.Fatalf("predict: %v", err)
	}
	if svc.sessions[2] == svc.sessions[0] {
		t.Fatalf("session token should rotate after a selection")
	}
}

func TestAutocomplete_SelectErrorKeepsPlace(t *testing.T) {
	ac := NewAutocomplete(&fakeService{}, "address", DefaultOptions())
	fired := 0
	ac.AddListener(EventPlaceChanged, func() { fired++ })

	if err := ac.Select(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if fired != 0 {
		t.Fatalf("no event expected on failed lookup")
	}
}

func TestAutocomplete_EnterWithoutSuggestion(t *testing.T) {
	ac := NewAutocomplete(nil, "address", DefaultOptions())
	fired := 0
	ac.AddListener(EventPlaceChanged, func() { fired++ })

	ac.Enter(" somewhere ")
	place := ac.GetPlace()
	if fired != 1 || place.HasAddress() || place.Name != "somewhere" {
		t.Fatalf("unexpected state fired=%d place=%#v", fired, place)
	}
}

func TestAutocomplete_ListenerRemoval(t *testing.T) {
	ac := NewAutocomplete(nil, "address", DefaultOptions())
	first := ac.AddListener(EventPlaceChanged, func() {})
	ac.AddListener(EventPlaceChanged, func() {})
	if n := ac.ListenerCount(EventPlaceChanged); n != 2 {
		t.Fatalf("expected 2 listeners, got %d", n)
	}
	first.Remove()
	first.Remove()
	if n := ac.ListenerCount(EventPlaceChanged); n != 1 {
		t.Fatalf("expected 1 listener, got %d", n)
	}
	ac.ClearInstanceListeners()
	if n := ac.ListenerCount(EventPlaceChanged); n != 0 {
		t.Fatalf("expected no listeners, got %d", n)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Country != "us" || len(opts.Types) != 1 || opts.Types[0] != "address" {
		t.Fatalf("unexpected defaults %#v", opts)
	}
	if len(opts.Fields) != 2 {
		t.Fatalf("expected formatted_address and address_components, got %v", opts.Fields)
	}
}
