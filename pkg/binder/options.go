package binder

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/places"
)

type Options struct {
	Places places.Options
	Logger *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		Places: places.DefaultOptions(),
		Logger: zap.NewNop(),
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
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithPlacesOptions(p places.Options) OptionFn {
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
