package supabase

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const DefaultTimeout = 10 * time.Second

type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Schema     string
	Logger     *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{Timeout: DefaultTimeout}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithHTTPClient(client *http.Client) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.HTTPClient = client
	}
}

func WithTimeout(timeout time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Timeout = timeout
	}
}

// WithSchema selects a non-default schema through the profile headers.
func WithSchema(schema string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Schema = schema
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
