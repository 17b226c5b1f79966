package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/store"
)

var (
	ErrSubmissionInFlight = errors.New("intake: submission already in flight")
	ErrDisposed           = errors.New("intake: form disposed")
)

// Phase is the submission state of a form.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
)

func (p Phase) String() string {
	if p == PhaseSubmitting {
		return "submitting"
	}
	return "idle"
}

// Form owns the working values and the submission lifecycle.
type Form struct {
	sink   store.Sink
	opts   Options
	logger *zap.Logger
	tracer trace.Tracer

	mu       sync.Mutex
	values   Values
	phase    Phase
	disposed bool
	gen      uint64
}

// New builds a form that writes submissions to sink.
func New(sink store.Sink, fns ...OptionFn) *Form {
	opts := NewOptions(fns...)
	return &Form{
		sink:   sink,
		opts:   opts,
		logger: opts.Logger.Named("intake"),
		tracer: otel.Tracer("github.com/goliatone/go-intake/pkg/intake"),
		values: opts.Initial,
	}
}

// Values returns a copy of the working values.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

func (f *Form) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Set updates one field.
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		return ErrDisposed
	}
	return f.values.Set(field, value)
}

// SetAddress replaces the address field. It is the target of the binder
// callback; manual typing goes through Set.
func (f *Form) SetAddress(address string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		return
	}
	f.values.Address = address
}

// Load replaces every field at once.
func (f *Form) Load(v Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		return
	}
	f.values = v
}

// Reset restores the initial values.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		return
	}
	f.values = f.opts.Initial
}

// Dispose detaches the form. A submission still in flight completes without
// touching the values or notifying.
func (f *Form) Dispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disposed = true
	f.gen++
}

// Submit validates the working values and inserts one row. On success the
// values are reset and a success notification is sent; on failure the values
// are kept and exactly one failure notification is sent. Validation errors are
// returned without notifying.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		return ErrDisposed
	}
	if f.phase == PhaseSubmitting {
		f.mu.Unlock()
		return ErrSubmissionInFlight
	}
	snapshot := f.values
	if err := snapshot.Validate(); err != nil {
		f.mu.Unlock()
		return err
	}
	f.phase = PhaseSubmitting
	gen := f.gen
	f.mu.Unlock()

	ctx, span := f.tracer.Start(ctx, "intake.submit", trace.WithAttributes(attribute.String("db.table", f.opts.Table)))
	defer span.End()

	err := f.insert(ctx, snapshot)

	f.mu.Lock()
	if f.disposed || f.gen != gen {
		f.mu.Unlock()
		return err
	}
	f.phase = PhaseIdle
	if err == nil {
		f.values = f.opts.Initial
	}
	f.mu.Unlock()

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		f.logger.Error("submit service request", zap.String("table", f.opts.Table), zap.Error(err))
		f.notify(Notification{Severity: SeverityError, Message: MessageFailed})
		return err
	}
	f.logger.Info("service request submitted", zap.String("table", f.opts.Table))
	f.notify(Notification{Severity: SeveritySuccess, Message: MessageSubmitted})
	return nil
}

func (f *Form) insert(ctx context.Context, v Values) error {
	if f.sink == nil {
		return fmt.Errorf("intake: submit: %w", store.ErrNotConfigured)
	}
	ctx, cancel := context.WithTimeout(ctx, f.opts.SubmitTimeout)
	defer cancel()
	if err := f.sink.Insert(ctx, f.opts.Table, NewRecord(v).Row()); err != nil {
		return fmt.Errorf("intake: submit: %w", err)
	}
	return nil
}

func (f *Form) notify(n Notification) {
	if f.opts.Notifier != nil {
		f.opts.Notifier.Notify(n)
	}
}
