package loader

import (
	"time"

	"go.uber.org/zap"
)

const (
	DefaultSecretName    = "GOOGLE_PLACES_API_KEY"
	DefaultScriptURL     = "https://maps.googleapis.com/maps/api/js"
	DefaultSecretTimeout = 10 * time.Second
	DefaultLoadTimeout   = 10 * time.Second
)

// Options configures a Loader.
type Options struct {
	SecretName    string
	ScriptURL     string
	Libraries     []string
	SecretTimeout time.Duration
	LoadTimeout   time.Duration
	Async         bool
	Defer         bool

	Marker *Marker
	Logger *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		SecretName:    DefaultSecretName,
		ScriptURL:     DefaultScriptURL,
		Libraries:     []string{"places"},
		SecretTimeout: DefaultSecretTimeout,
		LoadTimeout:   DefaultLoadTimeout,
		Async:         true,
		Defer:         true,
		Marker:        Global,
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
	if opts.SecretName == "" {
		opts.SecretName = DefaultSecretName
	}
	if opts.ScriptURL == "" {
		opts.ScriptURL = DefaultScriptURL
	}
	if opts.SecretTimeout <= 0 {
		opts.SecretTimeout = DefaultSecretTimeout
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = DefaultLoadTimeout
	}
	if opts.Marker == nil {
		opts.Marker = Global
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Libraries != nil {
		opts.Libraries = append([]string{}, opts.Libraries...)
	}
	return opts
}

func WithSecretName(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SecretName = name
	}
}

func WithScriptURL(raw string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ScriptURL = raw
	}
}

func WithLibraries(libraries ...string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Libraries = append([]string{}, libraries...)
	}
}

func WithSecretTimeout(d time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SecretTimeout = d
	}
}

func WithLoadTimeout(d time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.LoadTimeout = d
	}
}

// WithMarker overrides the process-wide marker, mostly for tests.
func WithMarker(m *Marker) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Marker = m
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
