package server

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	intakeroot "github.com/goliatone/go-intake"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/loader"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/view"
)

const flashCookie = "intake_flash"

// pageState is what a single form response renders.
type pageState struct {
	values        intake.Values
	errors        render.ErrorMapping
	notifications []intake.Notification
	token         string
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != s.path("/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.showForm(w, r)
	case http.MethodPost:
		s.submitForm(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (s *Server) showForm(w http.ResponseWriter, r *http.Request) {
	state := pageState{token: s.guard.Issue()}
	if cookie, err := r.Cookie(flashCookie); err == nil && cookie.Value == string(intake.SeveritySuccess) {
		state.notifications = append(state.notifications, intake.Notification{
			Severity: intake.SeveritySuccess,
			Message:  intake.MessageSubmitted,
		})
		http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: s.path("/"), MaxAge: -1, HttpOnly: true})
	}
	s.renderPage(w, r, http.StatusOK, state)
}

// submitForm handles a browser post. Success redirects back to the empty form
// with a flash; any failure re-renders the posted values.
func (s *Server) submitForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	var values intake.Values
	for _, name := range intake.Fields {
		_ = values.Set(name, r.PostForm.Get(name))
	}
	token := r.PostForm.Get(render.SubmissionFieldName)

	outcome := s.submit(r.Context(), values, token)
	switch {
	case outcome.err == nil:
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    string(intake.SeveritySuccess),
			Path:     s.path("/"),
			MaxAge:   60,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, s.path("/"), http.StatusSeeOther)
	case errors.Is(outcome.err, errAlreadySubmitted):
		s.renderPage(w, r, outcome.status, pageState{
			errors: render.ErrorMapping{Form: []string{errAlreadySubmitted.Error()}},
			token:  s.guard.Issue(),
		})
	default:
		s.renderPage(w, r, outcome.status, pageState{
			values:        values,
			errors:        outcome.mapping,
			notifications: outcome.notifications,
			token:         token,
		})
	}
}

type submitOutcome struct {
	status        int
	err           error
	mapping       render.ErrorMapping
	notifications []intake.Notification
}

// submit runs one guarded submission through a request-scoped form.
func (s *Server) submit(ctx context.Context, values intake.Values, token string) submitOutcome {
	if err := s.guard.Begin(token); err != nil {
		status := http.StatusConflict
		if errors.Is(err, errInvalidToken) {
			status = http.StatusBadRequest
		}
		return submitOutcome{status: status, err: err, mapping: render.ErrorMapping{Form: []string{guardMessage(err)}}}
	}

	inbox := &intake.Inbox{}
	form := intake.New(s.deps.Sink,
		intake.WithTable(s.opts.Table),
		intake.WithSubmitTimeout(s.opts.SubmitTimeout),
		intake.WithNotifier(inbox),
		intake.WithLogger(s.opts.Logger),
	)
	defer form.Dispose()
	form.Load(values)

	err := form.Submit(ctx)
	s.guard.Finish(token, err == nil)

	outcome := submitOutcome{err: err, notifications: inbox.Drain(), status: http.StatusOK}
	var verr *intake.ValidationError
	switch {
	case err == nil:
		outcome.status = http.StatusCreated
	case errors.As(err, &verr):
		outcome.status = http.StatusUnprocessableEntity
		outcome.mapping = render.MapError(err)
	default:
		outcome.status = http.StatusBadGateway
		s.logger.Warn("submission failed", zap.Error(err))
	}
	return outcome
}

func guardMessage(err error) string {
	if errors.Is(err, errAlreadySubmitted) {
		return errAlreadySubmitted.Error()
	}
	if errors.Is(err, errInvalidToken) {
		return errInvalidToken.Error()
	}
	return "your service request is already being submitted"
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, state pageState) {
	page := view.Build(view.Input{
		Values:        state.values,
		Errors:        state.errors,
		Address:       s.deps.Loader.State(),
		Notifications: state.notifications,
		Action:        s.path("/"),
		Scripts:       s.scripts(),
		Hidden:        []render.HiddenField{render.SubmissionToken(state.token)},
		RuntimeURL:    s.path("/runtime/" + intakeroot.RuntimeScript),
	})
	page.Theme = s.theme

	out, err := s.deps.Renderer.Render(r.Context(), page)
	if err != nil {
		s.logger.Error("render page", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.deps.Renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(out)
}

func (s *Server) scripts() []loader.ScriptRef {
	if s.deps.Document == nil {
		return nil
	}
	return s.deps.Document.Scripts()
}
