package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/internal/config"
	"github.com/goliatone/go-intake/internal/logging"
	"github.com/goliatone/go-intake/internal/telemetry"
	"github.com/goliatone/go-intake/pkg/binder"
	"github.com/goliatone/go-intake/pkg/loader"
	"github.com/goliatone/go-intake/pkg/places"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla"
	"github.com/goliatone/go-intake/pkg/secrets"
	"github.com/goliatone/go-intake/pkg/store"
	"github.com/goliatone/go-intake/pkg/store/sqlite"
	"github.com/goliatone/go-intake/pkg/supabase"
)

// app holds the wiring shared by every subcommand.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	secrets secrets.Source
	head    *loader.Head
	loader  *loader.Loader
	sink    store.Sink
	closers []func() error
}

// newApp resolves configuration and builds the collaborators in dependency
// order. Callers must Close the result.
func newApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if level := strings.TrimSpace(flags.logLevel); level != "" {
		cfg.Log.Level = level
	}
	return buildApp(ctx, cfg)
}

func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.Enabled, cfg.Telemetry.Endpoint, cfg.Telemetry.ServiceName)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() error {
		return shutdown(context.WithoutCancel(ctx))
	})

	var client *supabase.Client
	if cfg.NeedsSupabase() {
		client, err = supabase.New(cfg.Supabase.URL, cfg.Supabase.AnonKey,
			supabase.WithSchema(cfg.Supabase.Schema),
			supabase.WithTimeout(cfg.Supabase.Timeout),
			supabase.WithLogger(logger),
		)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	switch cfg.Secrets.Source {
	case config.SecretsEnv:
		a.secrets = secrets.Env{Prefix: cfg.Secrets.EnvPrefix}
	default:
		a.secrets = secrets.NewRPCSource(client)
	}

	if err := a.openSink(ctx, client); err != nil {
		_ = a.Close()
		return nil, err
	}

	var prober loader.Prober
	if cfg.Places.ProbeScript {
		prober = loader.HTTPProber{}
	}
	a.head = loader.NewHead(prober)
	a.loader = loader.New(a.secrets, a.head,
		loader.WithSecretName(cfg.Places.SecretName),
		loader.WithScriptURL(cfg.Places.ScriptURL),
		loader.WithLibraries(cfg.Places.Libraries...),
		loader.WithSecretTimeout(cfg.Places.SecretTimeout),
		loader.WithLoadTimeout(cfg.Places.LoadTimeout),
		loader.WithLogger(logger),
	)
	a.closers = append(a.closers, func() error {
		a.loader.Close()
		return nil
	})
	return a, nil
}

func (a *app) openSink(ctx context.Context, client *supabase.Client) error {
	switch a.cfg.Store.Driver {
	case config.StoreMemory:
		a.sink = &store.Memory{}
	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, a.cfg.Store.Path)
		if err != nil {
			return err
		}
		a.sink = db
		a.closers = append(a.closers, db.Close)
	default:
		if client == nil {
			return errors.New("supabase store requires supabase.url and supabase.anon_key")
		}
		a.sink = client
	}
	a.logger.Debug("sink ready", zap.String("driver", a.cfg.Store.Driver))
	return nil
}

// widgets builds address widgets against the configured Places endpoint.
func (a *app) widgets() binder.WidgetFactory {
	return binder.GoogleWidgets(
		places.WithBaseURL(a.cfg.Places.APIBaseURL),
		places.WithTimeout(a.cfg.Places.RequestTimeout),
		places.WithLogger(a.logger),
	)
}

// htmlRenderer returns the vanilla renderer and the configured theme.
func (a *app) htmlRenderer() (render.Renderer, *theme.RendererConfig, error) {
	var opts []vanilla.Option
	if dir := strings.TrimSpace(a.cfg.Theme.TemplatesDir); dir != "" {
		opts = append(opts, vanilla.WithTemplatesDir(dir))
	}
	if a.cfg.Theme.InlineStyles {
		opts = append(opts, vanilla.WithDefaultStyles())
	}
	if a.cfg.Theme.IntroHTML != "" {
		opts = append(opts, vanilla.WithIntroMarkup(a.cfg.Theme.IntroHTML))
	}
	renderer, err := vanilla.New(opts...)
	if err != nil {
		return nil, nil, err
	}
	themes, err := render.NewThemes()
	if err != nil {
		return nil, nil, err
	}
	sel, err := themes.Select(a.cfg.Theme.Name, a.cfg.Theme.Variant)
	if err != nil {
		return nil, nil, fmt.Errorf("theme: %w", err)
	}
	return renderer, render.ThemeConfig(sel), nil
}

// Close releases everything in reverse construction order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
