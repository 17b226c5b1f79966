// Package config resolves the service configuration: built-in defaults, then
// an optional YAML or TOML file, then INTAKE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/loader"
	"github.com/goliatone/go-intake/pkg/places"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/supabase"
)

// Store drivers.
const (
	StoreSupabase = "supabase"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Secret sources.
const (
	SecretsSupabase = "supabase"
	SecretsEnv      = "env"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Supabase  SupabaseConfig  `yaml:"supabase" toml:"supabase"`
	Secrets   SecretsConfig   `yaml:"secrets" toml:"secrets"`
	Places    PlacesConfig    `yaml:"places" toml:"places"`
	Intake    IntakeConfig    `yaml:"intake" toml:"intake"`
	Store     StoreConfig     `yaml:"store" toml:"store"`
	Theme     ThemeConfig     `yaml:"theme" toml:"theme"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" toml:"addr" env:"INTAKE_ADDR"`
	BasePath        string        `yaml:"base_path" toml:"base_path" env:"INTAKE_BASE_PATH"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout" env:"INTAKE_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout" env:"INTAKE_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" env:"INTAKE_SHUTDOWN_TIMEOUT"`
}

type SupabaseConfig struct {
	URL     string        `yaml:"url" toml:"url" env:"INTAKE_SUPABASE_URL"`
	AnonKey string        `yaml:"anon_key" toml:"anon_key" env:"INTAKE_SUPABASE_ANON_KEY"`
	Schema  string        `yaml:"schema" toml:"schema" env:"INTAKE_SUPABASE_SCHEMA"`
	Timeout time.Duration `yaml:"timeout" toml:"timeout" env:"INTAKE_SUPABASE_TIMEOUT"`
}

// SecretsConfig picks where the Places API key is read from. The env source
// reads EnvPrefix + the secret name.
type SecretsConfig struct {
	Source    string `yaml:"source" toml:"source" env:"INTAKE_SECRETS_SOURCE"`
	EnvPrefix string `yaml:"env_prefix" toml:"env_prefix" env:"INTAKE_SECRETS_ENV_PREFIX"`
}

type PlacesConfig struct {
	SecretName     string        `yaml:"secret_name" toml:"secret_name" env:"INTAKE_PLACES_SECRET_NAME"`
	ScriptURL      string        `yaml:"script_url" toml:"script_url" env:"INTAKE_PLACES_SCRIPT_URL"`
	Libraries      []string      `yaml:"libraries" toml:"libraries" env:"INTAKE_PLACES_LIBRARIES" envSeparator:","`
	APIBaseURL     string        `yaml:"api_base_url" toml:"api_base_url" env:"INTAKE_PLACES_API_BASE_URL"`
	Country        string        `yaml:"country" toml:"country" env:"INTAKE_PLACES_COUNTRY"`
	Types          []string      `yaml:"types" toml:"types" env:"INTAKE_PLACES_TYPES" envSeparator:","`
	Fields         []string      `yaml:"fields" toml:"fields" env:"INTAKE_PLACES_FIELDS" envSeparator:","`
	SecretTimeout  time.Duration `yaml:"secret_timeout" toml:"secret_timeout" env:"INTAKE_PLACES_SECRET_TIMEOUT"`
	LoadTimeout    time.Duration `yaml:"load_timeout" toml:"load_timeout" env:"INTAKE_PLACES_LOAD_TIMEOUT"`
	RequestTimeout time.Duration `yaml:"request_timeout" toml:"request_timeout" env:"INTAKE_PLACES_REQUEST_TIMEOUT"`
	// ProbeScript fetches the script server-side before reporting ready.
	ProbeScript bool `yaml:"probe_script" toml:"probe_script" env:"INTAKE_PLACES_PROBE_SCRIPT"`
}

type IntakeConfig struct {
	Table         string        `yaml:"table" toml:"table" env:"INTAKE_TABLE"`
	SubmitTimeout time.Duration `yaml:"submit_timeout" toml:"submit_timeout" env:"INTAKE_SUBMIT_TIMEOUT"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" toml:"driver" env:"INTAKE_STORE_DRIVER"`
	Path   string `yaml:"path" toml:"path" env:"INTAKE_STORE_PATH"`
}

// ThemeConfig selects the page theme. TemplatesDir overrides the embedded
// templates from disk. IntroHTML replaces the page intro and is sanitized
// before rendering.
type ThemeConfig struct {
	Name         string `yaml:"name" toml:"name" env:"INTAKE_THEME"`
	Variant      string `yaml:"variant" toml:"variant" env:"INTAKE_THEME_VARIANT"`
	TemplatesDir string `yaml:"templates_dir" toml:"templates_dir" env:"INTAKE_TEMPLATES_DIR"`
	InlineStyles bool   `yaml:"inline_styles" toml:"inline_styles" env:"INTAKE_INLINE_STYLES"`
	IntroHTML    string `yaml:"intro_html" toml:"intro_html" env:"INTAKE_INTRO_HTML"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level" env:"INTAKE_LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"INTAKE_LOG_FORMAT"`
}

// TelemetryConfig enables OTLP trace export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint" toml:"endpoint" env:"INTAKE_OTEL_ENDPOINT"`
	Enabled     bool   `yaml:"enabled" toml:"enabled" env:"INTAKE_OTEL_ENABLED"`
	ServiceName string `yaml:"service_name" toml:"service_name" env:"INTAKE_OTEL_SERVICE_NAME"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	placeOpts := places.DefaultOptions()
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			BasePath:        "/",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Supabase: SupabaseConfig{
			Schema:  "public",
			Timeout: supabase.DefaultTimeout,
		},
		Secrets: SecretsConfig{Source: SecretsSupabase},
		Places: PlacesConfig{
			SecretName:     loader.DefaultSecretName,
			ScriptURL:      loader.DefaultScriptURL,
			Libraries:      []string{"places"},
			APIBaseURL:     places.DefaultBaseURL,
			Country:        placeOpts.Country,
			Types:          placeOpts.Types,
			Fields:         placeOpts.Fields,
			SecretTimeout:  loader.DefaultSecretTimeout,
			LoadTimeout:    loader.DefaultLoadTimeout,
			RequestTimeout: places.DefaultTimeout,
		},
		Intake: IntakeConfig{
			Table:         intake.DefaultTable,
			SubmitTimeout: intake.DefaultSubmitTimeout,
		},
		Store: StoreConfig{Driver: StoreSupabase, Path: "intake.db"},
		Theme: ThemeConfig{Name: render.DefaultThemeName},
		Log:   LogConfig{Level: "info", Format: "json"},
		Telemetry: TelemetryConfig{
			Enabled:     true,
			ServiceName: "go-intake",
		},
	}
}

// Load resolves defaults, the optional file at path, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case StoreSupabase, StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			errs = append(errs, errors.New("store.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of supabase, sqlite, memory", c.Store.Driver))
	}
	switch c.Secrets.Source {
	case SecretsSupabase, SecretsEnv:
	default:
		errs = append(errs, fmt.Errorf("secrets.source %q is not one of supabase, env", c.Secrets.Source))
	}
	if c.NeedsSupabase() {
		if strings.TrimSpace(c.Supabase.URL) == "" {
			errs = append(errs, errors.New("supabase.url is required"))
		}
		if strings.TrimSpace(c.Supabase.AnonKey) == "" {
			errs = append(errs, errors.New("supabase.anon_key is required"))
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of json, console", c.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// NeedsSupabase reports whether any component talks to Supabase.
func (c Config) NeedsSupabase() bool {
	return c.Store.Driver == StoreSupabase || c.Secrets.Source == SecretsSupabase
}

// PlaceOptions returns the widget restrictions.
func (c Config) PlaceOptions() places.Options {
	return places.Options{
		Types:   append([]string(nil), c.Places.Types...),
		Country: c.Places.Country,
		Fields:  append([]string(nil), c.Places.Fields...),
	}
}
