package places

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/binder"
	"github.com/goliatone/go-intake/pkg/loader"
	pkgplaces "github.com/goliatone/go-intake/pkg/places"
)

type GuardFunc func(r *http.Request) error

// Loader is the shared loader surface the component needs. *loader.Loader
// satisfies it.
type Loader interface {
	binder.StateSource
	Retry(ctx context.Context) loader.State
	Options() loader.Options
}

var _ Loader = (*loader.Loader)(nil)

type Options struct {
	RoutePath    string
	SearchParam  string
	LimitParam   string
	PlaceIDParam string
	DefaultLimit int
	MaxLimit     int
	Timeout      time.Duration
	Guard        GuardFunc

	Loader  Loader
	Widgets binder.WidgetFactory
	Places  pkgplaces.Options
	Logger  *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:    "/api/places",
		SearchParam:  "q",
		LimitParam:   "limit",
		PlaceIDParam: "place_id",
		DefaultLimit: 5,
		MaxLimit:     10,
		Timeout:      5 * time.Second,
		Places:       pkgplaces.DefaultOptions(),
		Logger:       zap.NewNop(),
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 5
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 10
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/api/places"
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if opts.LimitParam == "" {
		opts.LimitParam = "limit"
	}
	if opts.PlaceIDParam == "" {
		opts.PlaceIDParam = "place_id"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchParam = name
	}
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.LimitParam = name
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultLimit = limit
	}
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxLimit = limit
	}
}

func WithTimeout(d time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Timeout = d
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

// WithLoader sets the shared loader whose capability backs every request.
func WithLoader(l Loader) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Loader = l
	}
}

// WithWidgets sets the factory used to build address widgets.
func WithWidgets(factory binder.WidgetFactory) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Widgets = factory
	}
}

func WithPlacesOptions(p pkgplaces.Options) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Places = p
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func clampLimit(limit int, opts Options) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
