package binder

import (
	"context"
	"errors"

	"github.com/goliatone/go-intake/pkg/loader"
	"github.com/goliatone/go-intake/pkg/places"
)

// Widget is the address widget surface the binder manages.
type Widget interface {
	AddListener(event string, fn func()) *places.Listener
	ClearInstanceListeners()
	GetPlace() places.Place
	Predict(ctx context.Context, text string) ([]places.Prediction, error)
	Select(ctx context.Context, placeID string) error
	Enter(text string)
}

var _ Widget = (*places.Autocomplete)(nil)

// WidgetFactory constructs a widget for inputID from a loaded capability.
type WidgetFactory func(capab loader.Capability, inputID string, opts places.Options) (Widget, error)

// GoogleWidgets builds Autocomplete widgets backed by the Places web service,
// keyed with the capability's API key.
func GoogleWidgets(fns ...places.ClientOptionFn) WidgetFactory {
	return func(capab loader.Capability, inputID string, opts places.Options) (Widget, error) {
		if capab.Key == "" {
			return nil, errors.New("binder: capability has no api key")
		}
		client := places.NewGoogleClient(capab.Key, fns...)
		return places.NewAutocomplete(client, inputID, opts), nil
	}
}

// ServiceWidgets builds Autocomplete widgets over a fixed service.
func ServiceWidgets(service places.Service) WidgetFactory {
	return func(_ loader.Capability, inputID string, opts places.Options) (Widget, error) {
		if service == nil {
			return nil, errors.New("binder: places service is nil")
		}
		return places.NewAutocomplete(service, inputID, opts), nil
	}
}
