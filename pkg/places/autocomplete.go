package places

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// EventPlaceChanged fires after the user selects a suggestion or commits text.
const EventPlaceChanged = "place_changed"

// Autocomplete is the address widget attached to one input.
type Autocomplete struct {
	service Service
	inputID string
	opts    Options

	mu        sync.Mutex
	place     Place
	session   string
	listeners map[string]map[uint64]func()
	nextID    uint64
}

func NewAutocomplete(service Service, inputID string, opts Options) *Autocomplete {
	return &Autocomplete{
		service:   service,
		inputID:   inputID,
		opts:      opts.clone(),
		session:   uuid.NewString(),
		listeners: make(map[string]map[uint64]func()),
	}
}

func (a *Autocomplete) InputID() string { return a.inputID }

func (a *Autocomplete) Options() Options { return a.opts.clone() }

// Listener is the handle returned by AddListener.
type Listener struct {
	once   sync.Once
	remove func()
}

// Remove detaches the listener.
func (l *Listener) Remove() {
	if l == nil {
		return
	}
	l.once.Do(func() {
		if l.remove != nil {
			l.remove()
		}
	})
}

func (a *Autocomplete) AddListener(event string, fn func()) *Listener {
	if fn == nil {
		return &Listener{}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	id := a.nextID
	if a.listeners[event] == nil {
		a.listeners[event] = make(map[uint64]func())
	}
	a.listeners[event][id] = fn
	return &Listener{remove: func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners[event], id)
	}}
}

// ClearInstanceListeners removes every listener registered on the widget.
func (a *Autocomplete) ClearInstanceListeners() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = make(map[string]map[uint64]func())
}

func (a *Autocomplete) ListenerCount(event string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.listeners[event])
}

// GetPlace returns the current selection.
func (a *Autocomplete) GetPlace() Place {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.place
}

// Predict returns suggestions for partial input.
func (a *Autocomplete) Predict(ctx context.Context, text string) ([]Prediction, error) {
	if a.service == nil {
		return nil, errors.New("places: service is not configured")
	}
	a.mu.Lock()
	session := a.session
	a.mu.Unlock()
	return a.service.Predictions(ctx, PredictionRequest{
		Input:        text,
		SessionToken: session,
		Options:      a.opts,
	})
}

// Select resolves placeID with the configured fields and fires place_changed.
// The session token is rotated after each selection.
func (a *Autocomplete) Select(ctx context.Context, placeID string) error {
	if a.service == nil {
		return errors.New("places: service is not configured")
	}
	a.mu.Lock()
	session := a.session
	a.mu.Unlock()

	place, err := a.service.Details(ctx, DetailsRequest{
		PlaceID:      placeID,
		SessionToken: session,
		Fields:       a.opts.Fields,
	})
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.session = uuid.NewString()
	a.mu.Unlock()
	a.SetPlace(place)
	return nil
}

// Enter commits free text without a suggestion. The resulting place only has
// a name.
func (a *Autocomplete) Enter(text string) {
	a.SetPlace(Place{Name: strings.TrimSpace(text)})
}

// SetPlace replaces the selection and fires place_changed.
func (a *Autocomplete) SetPlace(place Place) {
	a.mu.Lock()
	a.place = place
	fns := make([]func(), 0, len(a.listeners[EventPlaceChanged]))
	for _, fn := range a.listeners[EventPlaceChanged] {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
