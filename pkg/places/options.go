package places

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"
	DefaultTimeout = 10 * time.Second
)

// Options restrict what the widget suggests and which place fields it reads.
type Options struct {
	Types   []string `json:"types" yaml:"types"`
	Country string   `json:"country" yaml:"country"`
	Fields  []string `json:"fields" yaml:"fields"`
}

// DefaultOptions restricts suggestions to US street addresses and reads the
// formatted address together with its components.
func DefaultOptions() Options {
	return Options{
		Types:   []string{"address"},
		Country: "us",
		Fields:  []string{"formatted_address", "address_components"},
	}
}

func (o Options) clone() Options {
	out := o
	out.Types = append([]string(nil), o.Types...)
	out.Fields = append([]string(nil), o.Fields...)
	return out
}

// ClientOptions configure the web service client.
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type ClientOptionFn func(*ClientOptions)

func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

func NewClientOptions(fns ...ClientOptionFn) ClientOptions {
	opts := DefaultClientOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithBaseURL(url string) ClientOptionFn {
	return func(o *ClientOptions) {
		if o == nil {
			return
		}
		o.BaseURL = url
	}
}

func WithTimeout(timeout time.Duration) ClientOptionFn {
	return func(o *ClientOptions) {
		if o == nil {
			return
		}
		o.Timeout = timeout
	}
}

func WithHTTPClient(client *http.Client) ClientOptionFn {
	return func(o *ClientOptions) {
		if o == nil {
			return
		}
		o.HTTPClient = client
	}
}

func WithLogger(logger *zap.Logger) ClientOptionFn {
	return func(o *ClientOptions) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}
