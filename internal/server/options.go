package server

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/places"
)

const (
	DefaultTokenTTL     = time.Hour
	DefaultMaxBodyBytes = 64 << 10
)

// Options configures the HTTP surface. Zero values fall back to defaults.
type Options struct {
	Addr            string
	BasePath        string
	Table           string
	SubmitTimeout   time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TokenTTL        time.Duration
	MaxBodyBytes    int64
	PlaceOptions    places.Options
	Logger          *zap.Logger
	Now             func() time.Time
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		Addr:            ":8080",
		BasePath:        "/",
		Table:           intake.DefaultTable,
		SubmitTimeout:   intake.DefaultSubmitTimeout,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		TokenTTL:        DefaultTokenTTL,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		PlaceOptions:    places.DefaultOptions(),
		Logger:          zap.NewNop(),
		Now:             time.Now,
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
	defaults := DefaultOptions()
	if opts.Addr == "" {
		opts.Addr = defaults.Addr
	}
	if opts.BasePath == "" {
		opts.BasePath = defaults.BasePath
	}
	if opts.Table == "" {
		opts.Table = defaults.Table
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = defaults.SubmitTimeout
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaults.TokenTTL
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

func WithAddr(addr string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Addr = addr
	}
}

// WithBasePath mounts every route below path.
func WithBasePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BasePath = path
	}
}

func WithTable(table string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Table = table
	}
}

func WithSubmitTimeout(d time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SubmitTimeout = d
	}
}

// WithTimeouts sets the http.Server read and write timeouts and the grace
// period given to in-flight requests on shutdown.
func WithTimeouts(read, write, shutdown time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ReadTimeout = read
		o.WriteTimeout = write
		o.ShutdownTimeout = shutdown
	}
}

// WithTokenTTL bounds how long an issued submission token is remembered.
func WithTokenTTL(d time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.TokenTTL = d
	}
}

func WithPlaceOptions(p places.Options) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PlaceOptions = p
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil || logger == nil {
			return
		}
		o.Logger = logger
	}
}

// WithClock overrides the time source used for token expiry.
func WithClock(now func() time.Time) OptionFn {
	return func(o *Options) {
		if o == nil || now == nil {
			return
		}
		o.Now = now
	}
}
