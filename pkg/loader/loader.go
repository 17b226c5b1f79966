package loader

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-intake/pkg/secrets"
)

const tracerName = "github.com/goliatone/go-intake/pkg/loader"

var errStale = errors.New("loader: attempt superseded")

// Loader owns the shared load state for one capability. Construct one per
// process and hand it to every consumer.
type Loader struct {
	secrets secrets.Source
	doc     Document
	opts    Options
	logger  *zap.Logger
	tracer  trace.Tracer
	group   singleflight.Group

	mu      sync.Mutex
	state   State
	epoch   uint64
	cancel  context.CancelFunc
	node    Node
	capab   Capability
	hasCap  bool
	closed  bool
	subs    map[uint64]func(State)
	nextSub uint64

	testHookBeforeBegin func()
}

// New builds a loader that reads the API key from src and injects the script
// into doc.
func New(src secrets.Source, doc Document, fns ...OptionFn) *Loader {
	opts := NewOptions(fns...)
	return &Loader{
		secrets: src,
		doc:     doc,
		opts:    opts,
		logger:  opts.Logger.Named("loader"),
		tracer:  otel.Tracer(tracerName),
		state:   NotStarted,
		subs:    make(map[uint64]func(State)),
	}
}

// Options returns a copy of the loader configuration.
func (l *Loader) Options() Options {
	return NewOptions(func(o *Options) { *o = l.opts })
}

// State returns the current snapshot.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Capability returns the loaded capability once the loader is ready.
func (l *Loader) Capability() (Capability, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.capab, l.hasCap && l.state.IsReady()
}

// Acquire drives the loader to ready or failed and returns the resulting state.
// Concurrent callers share a single attempt. An attempt superseded by Retry is
// not reported; the caller joins the attempt that replaced it. When ctx is done
// before the attempt settles, the current (loading) state is returned and the
// attempt carries on.
func (l *Loader) Acquire(ctx context.Context) State {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		l.mu.Lock()
		if l.closed {
			state := l.state
			l.mu.Unlock()
			if state.Phase == PhaseNotStarted || state.Phase == PhaseLoading {
				return Failed(ReasonClosed)
			}
			return state
		}
		if l.state.Phase == PhaseReady || l.state.Phase == PhaseFailed {
			state := l.state
			l.mu.Unlock()
			return state
		}
		epoch := l.epoch
		l.mu.Unlock()

		key := "acquire:" + strconv.FormatUint(epoch, 10)
		ch := l.group.DoChan(key, func() (any, error) {
			return l.run(context.WithoutCancel(ctx), epoch), nil
		})

		select {
		case res := <-ch:
			out, ok := res.Val.(attempt)
			if !ok {
				return l.State()
			}
			if out.stale {
				continue
			}
			return out.state
		case <-ctx.Done():
			return l.State()
		}
	}
}

// Retry resets a failed (or never started) loader and acquires again. A ready
// loader is left untouched; a loading one is joined.
func (l *Loader) Retry(ctx context.Context) State {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return l.Acquire(ctx)
	}
	switch l.state.Phase {
	case PhaseReady:
		state := l.state
		l.mu.Unlock()
		return state
	case PhaseLoading:
		l.mu.Unlock()
		return l.Acquire(ctx)
	}

	l.epoch++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.node != nil {
		l.node.Remove()
		l.node = nil
	}
	fns := l.setStateLocked(NotStarted)
	l.mu.Unlock()

	l.logger.Info("retrying script load")
	notify(fns, NotStarted)
	return l.Acquire(ctx)
}

// Subscribe registers fn for every subsequent state change. The returned
// subscription must be closed by the consumer on disposal.
func (l *Loader) Subscribe(fn func(State)) *Subscription {
	if fn == nil {
		return &Subscription{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return &Subscription{}
	}
	l.nextSub++
	id := l.nextSub
	l.subs[id] = fn
	return &Subscription{release: func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}}
}

// Subscribers reports the number of live subscriptions.
func (l *Loader) Subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// Close disposes the loader: in-flight work is abandoned without touching the
// state, subscribers are dropped and a script that has not loaded is removed.
// A loaded script stays in the document for other consumers.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.epoch++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.node != nil && !nodeLoaded(l.node) {
		l.node.Remove()
	}
	l.node = nil
	l.subs = make(map[uint64]func(State))
}

// attempt is the outcome of one run. A stale attempt was superseded by Retry
// or Close before it settled.
type attempt struct {
	state State
	stale bool
}

func (l *Loader) outcome(epoch uint64, state State) attempt {
	l.mu.Lock()
	defer l.mu.Unlock()
	return attempt{state: state, stale: l.closed || l.epoch != epoch}
}

func (l *Loader) run(ctx context.Context, epoch uint64) attempt {
	ctx, span := l.tracer.Start(ctx, "loader.acquire",
		trace.WithAttributes(attribute.String("secret.name", l.opts.SecretName)))
	defer span.End()

	if capab, ok := l.opts.Marker.Load(); ok {
		state := l.succeed(epoch, capab, false)
		span.SetAttributes(attribute.Bool("loader.fast_path", true))
		return l.outcome(epoch, state)
	}

	if l.testHookBeforeBegin != nil {
		l.testHookBeforeBegin()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !l.begin(epoch, cancel) {
		return l.outcome(epoch, l.State())
	}

	key, err := l.fetchSecret(ctx)
	if err != nil {
		reason := ReasonSecretFailed
		if errors.Is(err, secrets.ErrNotFound) {
			reason = ReasonSecretMissing
		}
		if errors.Is(err, context.DeadlineExceeded) {
			reason = ReasonTimeout
		}
		l.logger.Error("fetch api key", zap.String("secret", l.opts.SecretName), zap.Error(err))
		span.SetStatus(codes.Error, reason)
		return l.outcome(epoch, l.fail(epoch, reason))
	}

	src, err := BuildScriptSrc(l.opts.ScriptURL, key, l.opts.Libraries)
	if err != nil {
		l.logger.Error("build script src", zap.Error(err))
		span.SetStatus(codes.Error, ReasonScriptFailed)
		return l.outcome(epoch, l.fail(epoch, ReasonScriptFailed))
	}

	node, err := l.inject(epoch, ScriptRef{Src: src, Async: l.opts.Async, Defer: l.opts.Defer})
	if err != nil {
		if errors.Is(err, errStale) {
			return l.outcome(epoch, l.State())
		}
		l.logger.Error("inject script", zap.Error(err))
		span.SetStatus(codes.Error, ReasonScriptFailed)
		return l.outcome(epoch, l.fail(epoch, ReasonScriptFailed))
	}

	timer := time.NewTimer(l.opts.LoadTimeout)
	defer timer.Stop()

	select {
	case <-node.Done():
		if err := node.Err(); err != nil {
			l.logger.Error("script load failed", zap.Error(err))
			span.SetStatus(codes.Error, ReasonScriptFailed)
			return l.outcome(epoch, l.fail(epoch, ReasonScriptFailed))
		}
		return l.outcome(epoch, l.succeed(epoch, Capability{
			Library: joinLibraries(l.opts.Libraries),
			Src:     src,
			Key:     key,
		}, true))
	case <-timer.C:
		l.logger.Warn("script load timed out", zap.Duration("timeout", l.opts.LoadTimeout))
		span.SetStatus(codes.Error, ReasonTimeout)
		return l.outcome(epoch, l.fail(epoch, ReasonTimeout))
	case <-ctx.Done():
		return l.outcome(epoch, l.State())
	}
}

func (l *Loader) fetchSecret(ctx context.Context) (string, error) {
	if l.secrets == nil {
		return "", errors.New("loader: secret source is not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, l.opts.SecretTimeout)
	defer cancel()

	l.logger.Debug("fetching api key", zap.String("secret", l.opts.SecretName))
	key, err := l.secrets.Secret(ctx, l.opts.SecretName)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", secrets.ErrNotFound
	}
	return key, nil
}

func (l *Loader) begin(epoch uint64, cancel context.CancelFunc) bool {
	l.mu.Lock()
	if l.closed || l.epoch != epoch || l.state.Phase != PhaseNotStarted {
		l.mu.Unlock()
		return false
	}
	l.cancel = cancel
	fns := l.setStateLocked(Loading)
	l.mu.Unlock()

	notify(fns, Loading)
	return true
}

func (l *Loader) inject(epoch uint64, ref ScriptRef) (Node, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.epoch != epoch {
		return nil, errStale
	}
	if l.doc == nil {
		return nil, errors.New("loader: document is not configured")
	}
	if l.node != nil {
		if l.node.Src() == ref.Src {
			return l.node, nil
		}
		l.node.Remove()
		l.node = nil
	}
	node, err := l.doc.Inject(ref)
	if err != nil {
		return nil, err
	}
	l.node = node
	l.logger.Debug("script injected", zap.Int("scripts", len(l.doc.Scripts())))
	return node, nil
}

func (l *Loader) succeed(epoch uint64, capab Capability, logLoad bool) State {
	l.mu.Lock()
	if l.closed || l.epoch != epoch || l.state.IsReady() {
		state := l.state
		l.mu.Unlock()
		return state
	}
	l.opts.Marker.Set(capab)
	l.capab = capab
	l.hasCap = true
	l.cancel = nil
	fns := l.setStateLocked(Ready)
	l.mu.Unlock()

	if logLoad {
		l.logger.Info("script loaded", zap.String("library", capab.Library))
	} else {
		l.logger.Debug("capability already present")
	}
	notify(fns, Ready)
	return Ready
}

func (l *Loader) fail(epoch uint64, reason string) State {
	l.mu.Lock()
	if l.closed || l.epoch != epoch {
		state := l.state
		l.mu.Unlock()
		return state
	}
	if l.node != nil {
		l.node.Remove()
		l.node = nil
	}
	l.cancel = nil
	state := Failed(reason)
	fns := l.setStateLocked(state)
	l.mu.Unlock()

	notify(fns, state)
	return state
}

// setStateLocked stores state and returns the subscribers to notify once the
// lock is released.
func (l *Loader) setStateLocked(state State) []func(State) {
	l.state = state
	if len(l.subs) == 0 {
		return nil
	}
	fns := make([]func(State), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(State), state State) {
	for _, fn := range fns {
		fn(state)
	}
}

func nodeLoaded(node Node) bool {
	select {
	case <-node.Done():
		return node.Err() == nil
	default:
		return false
	}
}

// Subscription is the release half of Subscribe.
type Subscription struct {
	once    sync.Once
	release func()
}

// Close detaches the listener. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}
