// Package server exposes the intake form, the JSON submission API and the
// address component over net/http.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	intakeroot "github.com/goliatone/go-intake"
	placescomp "github.com/goliatone/go-intake/components/places"
	"github.com/goliatone/go-intake/internal/openapi"
	"github.com/goliatone/go-intake/pkg/binder"
	"github.com/goliatone/go-intake/pkg/loader"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/renderers/vanilla"
	"github.com/goliatone/go-intake/pkg/store"
)

// AddressLoader is the loader surface the server drives. *loader.Loader
// satisfies it.
type AddressLoader interface {
	placescomp.Loader
	Acquire(ctx context.Context) loader.State
}

var _ AddressLoader = (*loader.Loader)(nil)

// Deps are the collaborators the server needs. Loader, Sink and Renderer are
// required.
type Deps struct {
	Loader    AddressLoader
	Document  loader.Document
	Sink      store.Sink
	Renderer  render.Renderer
	Theme     *theme.RendererConfig
	Validator *openapi.Validator
	Widgets   binder.WidgetFactory
}

type Server struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
	guard  *submissionGuard
	base   string
	theme  *theme.RendererConfig
}

// New validates deps and builds the server.
func New(deps Deps, fns ...OptionFn) (*Server, error) {
	if deps.Loader == nil {
		return nil, errors.New("server: loader is required")
	}
	if deps.Sink == nil {
		return nil, errors.New("server: sink is required")
	}
	if deps.Renderer == nil {
		return nil, errors.New("server: renderer is required")
	}
	if deps.Validator == nil {
		v, err := openapi.Load(context.Background())
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		deps.Validator = v
	}
	if deps.Widgets == nil {
		deps.Widgets = binder.GoogleWidgets()
	}

	opts := NewOptions(fns...)
	s := &Server{
		deps:   deps,
		opts:   opts,
		logger: opts.Logger.Named("server"),
		guard:  newSubmissionGuard(opts.TokenTTL, opts.Now),
		base:   basePath(opts.BasePath),
	}
	s.theme = s.rebaseTheme(deps.Theme)
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// RegisterRoutes mounts every route below the base path.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle(s.path("/"), http.HandlerFunc(s.handleForm))
	mux.Handle(s.path("/api/service-requests"), http.HandlerFunc(s.handleAPISubmit))
	mux.HandleFunc(s.path("/api/openapi.yaml"), func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openapi.Document())
	})
	mux.Handle(s.path("/runtime/"), http.StripPrefix(s.path("/runtime/"), http.FileServerFS(intakeroot.RuntimeAssetsFS())))
	mux.Handle(s.path("/assets/"), http.StripPrefix(s.path("/assets/"), http.FileServerFS(vanilla.AssetsFS())))
	mux.HandleFunc(s.path("/healthz"), func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if _, err := placescomp.RegisterRoutesWithOptions(mux, s.base, placescomp.NewOptions(
		placescomp.WithLoader(s.deps.Loader),
		placescomp.WithWidgets(s.deps.Widgets),
		placescomp.WithPlacesOptions(s.opts.PlaceOptions),
		placescomp.WithLogger(s.opts.Logger),
	)); err != nil {
		s.logger.Error("mount places component", zap.Error(err))
	}
}

// Start begins loader acquisition in the background. The returned channel
// receives the settled state.
func (s *Server) Start(ctx context.Context) <-chan loader.State {
	done := make(chan loader.State, 1)
	go func() {
		state := s.deps.Loader.Acquire(ctx)
		if state.IsFailed() {
			s.logger.Warn("address suggestions unavailable", zap.String("reason", state.Reason))
		} else {
			s.logger.Info("address loader settled", zap.Stringer("state", state))
		}
		done <- state
	}()
	return done
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.logger.Info("listening", zap.String("addr", s.opts.Addr), zap.String("base", s.base))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-s.Start(ctx)
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})
	return group.Wait()
}

func (s *Server) path(p string) string {
	if s.base == "" {
		return p
	}
	return s.base + p
}

// rebaseTheme prefixes root-relative asset URLs with the base path.
func (s *Server) rebaseTheme(cfg *theme.RendererConfig) *theme.RendererConfig {
	if cfg == nil || s.base == "" || cfg.AssetURL == nil {
		return cfg
	}
	out := *cfg
	resolve := cfg.AssetURL
	out.AssetURL = func(key string) string {
		url := resolve(key)
		if strings.HasPrefix(url, "/") && !strings.HasPrefix(url, "//") {
			return s.base + url
		}
		return url
	}
	return &out
}

// basePath normalises a mount point to "" or "/segment" without a trailing
// slash.
func basePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
