package binder

import (
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/loader"
	"github.com/goliatone/go-intake/pkg/places"
)

// StateSource is the loader surface the binder observes. *loader.Loader
// satisfies it.
type StateSource interface {
	State() loader.State
	Capability() (loader.Capability, bool)
	Subscribe(fn func(loader.State)) *loader.Subscription
}

var _ StateSource = (*loader.Loader)(nil)

// Binder wires one input to the address widget.
type Binder struct {
	source  StateSource
	factory WidgetFactory
	opts    Options
	logger  *zap.Logger

	mu       sync.Mutex
	input    InputRef
	callback func(string)
	widget   Widget
	listener *places.Listener
	gen      uint64
	closed   bool
	sub      *loader.Subscription
}

// New builds a binder that rebinds whenever source becomes ready.
func New(source StateSource, factory WidgetFactory, fns ...OptionFn) *Binder {
	opts := NewOptions(fns...)
	b := &Binder{
		source:  source,
		factory: factory,
		opts:    opts,
		logger:  opts.Logger.Named("binder"),
	}
	if source != nil {
		b.sub = source.Subscribe(b.onState)
	}
	return b
}

// Bind attaches onPlaceSelected to input. It does nothing visible until the
// loader is ready and the input is mounted; once both hold, a widget is built
// and exactly one place_changed listener is registered. Any previous widget is
// cleared first.
func (b *Binder) Bind(input InputRef, onPlaceSelected func(string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.input = input
	b.callback = onPlaceSelected
	b.rebindLocked()
}

// Unbind clears the widget and forgets the input.
func (b *Binder) Unbind() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.teardownLocked()
	b.input = nil
	b.callback = nil
}

// Current returns the bound widget, or nil.
func (b *Binder) Current() Widget {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.widget
}

// ActiveListeners reports how many place_changed listeners the binder holds.
func (b *Binder) ActiveListeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listener == nil {
		return 0
	}
	return 1
}

// Close clears the widget and detaches from the loader. Events fired after
// Close are ignored.
func (b *Binder) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.teardownLocked()
	b.input = nil
	b.callback = nil
	sub := b.sub
	b.sub = nil
	b.mu.Unlock()

	sub.Close()
}

func (b *Binder) onState(state loader.State) {
	if !state.IsReady() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.rebindLocked()
}

func (b *Binder) rebindLocked() {
	b.teardownLocked()
	if b.input == nil || !b.input.Mounted() || b.callback == nil || b.factory == nil || b.source == nil {
		return
	}
	capab, ok := b.source.Capability()
	if !ok {
		return
	}
	widget, err := b.factory(capab, b.input.ID(), b.opts.Places)
	if err != nil {
		b.logger.Warn("widget construction failed", zap.String("input", b.input.ID()), zap.Error(err))
		return
	}

	gen := b.gen
	callback := b.callback
	b.widget = widget
	b.listener = widget.AddListener(places.EventPlaceChanged, func() {
		b.placeChanged(gen, widget, callback)
	})
	b.logger.Debug("widget bound", zap.String("input", b.input.ID()))
}

func (b *Binder) teardownLocked() {
	b.gen++
	if b.listener != nil {
		b.listener.Remove()
		b.listener = nil
	}
	if b.widget != nil {
		b.widget.ClearInstanceListeners()
		b.widget = nil
	}
}

func (b *Binder) placeChanged(gen uint64, widget Widget, callback func(string)) {
	b.mu.Lock()
	live := !b.closed && b.gen == gen
	b.mu.Unlock()
	if !live {
		return
	}
	place := widget.GetPlace()
	if place.FormattedAddress == "" {
		return
	}
	callback(place.FormattedAddress)
}
