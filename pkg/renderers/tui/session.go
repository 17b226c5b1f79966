package tui

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/binder"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/loader"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/view"
)

// RetryMessage is the confirmation asked after a failed submission.
const RetryMessage = "Submit again with the same details?"

// AddressInputID identifies the address input bound in a terminal session.
const AddressInputID = "field-address"

// Session drives one terminal intake: prompt, submit, and on failure offer
// to resubmit the same values.
type Session struct {
	renderer *Renderer
	form     *intake.Form
	inbox    *intake.Inbox
	binder   *binder.Binder
	status   func() loader.State
	logger   *zap.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithNotifications drains inbox after each submission and prints its
// messages. The form should notify the same inbox.
func WithNotifications(inbox *intake.Inbox) SessionOption {
	return func(s *Session) {
		s.inbox = inbox
	}
}

// WithAddressBinder binds the address input for the duration of Run. Place
// selections reach the form through its SetAddress callback.
func WithAddressBinder(b *binder.Binder) SessionOption {
	return func(s *Session) {
		s.binder = b
	}
}

// WithAddressState reports the loader state shown next to the address prompt.
func WithAddressState(fn func() loader.State) SessionOption {
	return func(s *Session) {
		s.status = fn
	}
}

func WithSessionLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession pairs a renderer with the form it fills.
func NewSession(renderer *Renderer, form *intake.Form, fns ...SessionOption) (*Session, error) {
	if renderer == nil {
		return nil, errors.New("tui: renderer is required")
	}
	if form == nil {
		return nil, errors.New("tui: form is required")
	}
	s := &Session{renderer: renderer, form: form, logger: zap.NewNop()}
	for _, fn := range fns {
		if fn != nil {
			fn(s)
		}
	}
	if s.binder != nil && s.renderer.addressWidget == nil {
		b := s.binder
		s.renderer.addressWidget = func() AddressWidget {
			widget := b.Current()
			if widget == nil {
				return nil
			}
			return widget
		}
	}
	return s, nil
}

// Run prompts until the form is submitted or the user gives up. Missing
// required fields send the user back through the prompts with inline errors;
// a failed insert keeps the values and asks whether to resubmit them.
func (s *Session) Run(ctx context.Context) error {
	if s.binder != nil {
		s.binder.Bind(binder.NewInput(AddressInputID), s.form.SetAddress)
		defer s.binder.Unbind()
	}

	var mapping render.ErrorMapping
	for {
		page := view.Build(view.Input{
			Values:  s.form.Values(),
			Errors:  mapping,
			Address: s.addressState(),
		})
		// The terminal always accepts a typed address.
		if field := page.Field(intake.FieldAddress); field != nil {
			field.Disabled = false
		}

		collected, err := s.renderer.Collect(ctx, page)
		if err != nil {
			return err
		}
		s.form.Load(intake.ValuesFromMap(collected))

		err = s.submit(ctx)
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			s.logger.Debug("intake incomplete", zap.Strings("missing", verr.MissingFields()))
			mapping = render.MapError(err)
			continue
		}
		return err
	}
}

func (s *Session) submit(ctx context.Context) error {
	for {
		err := s.form.Submit(ctx)
		s.flush(ctx)
		if err == nil {
			return nil
		}
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			return err
		}
		retry, cerr := s.renderer.driver.Confirm(ctx, ConfirmConfig{Message: RetryMessage, Default: true})
		if cerr != nil {
			return cerr
		}
		if !retry {
			return err
		}
		s.logger.Info("resubmitting intake")
	}
}

func (s *Session) flush(ctx context.Context) {
	if s.inbox == nil {
		return
	}
	for _, n := range s.inbox.Drain() {
		prefix := s.renderer.theme.InfoPrefix
		if n.Severity == intake.SeverityError {
			prefix = s.renderer.theme.ErrorPrefix
		}
		_ = s.renderer.driver.Info(ctx, prefix+n.Message)
	}
}

func (s *Session) addressState() loader.State {
	if s.status == nil {
		return loader.Ready
	}
	return s.status()
}
