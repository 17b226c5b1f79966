package intake

import (
	"time"

	"go.uber.org/zap"
)

const DefaultSubmitTimeout = 10 * time.Second

type Options struct {
	Table         string
	SubmitTimeout time.Duration
	Initial       Values
	Notifier      Notifier
	Logger        *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		Table:         DefaultTable,
		SubmitTimeout: DefaultSubmitTimeout,
		Logger:        zap.NewNop(),
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
	if opts.Table == "" {
		opts.Table = DefaultTable
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithTable(table string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Table = table
	}
}

func WithSubmitTimeout(timeout time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SubmitTimeout = timeout
	}
}

// WithInitial sets the values the form starts from and resets to.
func WithInitial(v Values) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Initial = v
	}
}

func WithNotifier(n Notifier) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Notifier = n
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
