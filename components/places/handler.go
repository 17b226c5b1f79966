package places

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/binder"
	"github.com/goliatone/go-intake/pkg/loader"
	pkgplaces "github.com/goliatone/go-intake/pkg/places"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// Option is one suggestion entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Status reports the loader state. Script is set once the library has loaded
// so pages rendered earlier can inject it themselves.
type Status struct {
	Phase  string  `json:"phase"`
	Ready  bool    `json:"ready"`
	Reason string  `json:"reason,omitempty"`
	Script *Script `json:"script,omitempty"`
}

// Script is the tag a page needs to load the library.
type Script struct {
	Src   string `json:"src"`
	Async bool   `json:"async"`
	Defer bool   `json:"defer"`
}

type optionsResponse struct {
	Data []Option `json:"data"`
}

type optionResponse struct {
	Data Option `json:"data"`
}

type statusResponse struct {
	Data Status `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var (
	errNotReady        = errors.New("address suggestions are not available yet")
	errNoLoader        = errors.New("address loader is not configured")
	errNoAddress       = errors.New("place has no formatted address")
	errMissingPlaceID  = errors.New("place_id is required")
	errWidgetUnbound   = errors.New("address widget could not be bound")
	errUpstreamFailure = errors.New("address lookup failed")
)

// Handler builds a net/http handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds the handler from a pre-built Options value. The
// sub-route is picked from the last path segment.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	if opts.Widgets == nil {
		opts.Widgets = binder.GoogleWidgets()
	}
	h := &handler{opts: opts, logger: opts.Logger.Named("places.http")}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		switch route(r.URL.Path) {
		case "details":
			if !allowRead(w, r) {
				return
			}
			h.details(w, r)
		case "status":
			if !allowRead(w, r) {
				return
			}
			h.status(w, r)
		case "retry":
			if r.Method != http.MethodPost {
				w.Header().Set("Allow", http.MethodPost)
				http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
				return
			}
			h.retry(w, r)
		default:
			if !allowRead(w, r) {
				return
			}
			h.search(w, r)
		}
	})
}

type handler struct {
	opts   Options
	logger *zap.Logger
}

func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	capab, err := h.capability()
	if err != nil {
		writeError(w, r, err)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get(h.opts.SearchParam))
	limit := clampLimit(parseInt(r.URL.Query().Get(h.opts.LimitParam)), h.opts)
	if query == "" || limit == 0 {
		writeJSON(w, r, http.StatusOK, optionsResponse{Data: []Option{}})
		return
	}

	widget, err := h.opts.Widgets(capab, "api-search", h.opts.Places)
	if err != nil {
		h.logger.Error("build widget", zap.Error(err))
		writeError(w, r, StatusError{Code: http.StatusServiceUnavailable, Err: errWidgetUnbound})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.Timeout)
	defer cancel()

	predictions, err := widget.Predict(ctx, query)
	if err != nil {
		h.logger.Warn("place predictions", zap.String("query", query), zap.Error(err))
		writeError(w, r, StatusError{Code: http.StatusBadGateway, Err: errUpstreamFailure})
		return
	}

	writeJSON(w, r, http.StatusOK, optionsResponse{Data: PredictionOptions(predictions, limit)})
}

// details selects a place through a binder bound for this request only. The
// response carries whatever the place_changed callback delivered.
func (h *handler) details(w http.ResponseWriter, r *http.Request) {
	if _, err := h.capability(); err != nil {
		writeError(w, r, err)
		return
	}
	placeID := strings.TrimSpace(r.URL.Query().Get(h.opts.PlaceIDParam))
	if placeID == "" {
		writeError(w, r, StatusError{Code: http.StatusBadRequest, Err: errMissingPlaceID})
		return
	}

	b := binder.New(h.opts.Loader, h.opts.Widgets,
		binder.WithPlacesOptions(h.opts.Places),
		binder.WithLogger(h.opts.Logger),
	)
	defer b.Close()

	var address string
	b.Bind(binder.NewInput("api-"+uuid.NewString()), func(formatted string) {
		address = formatted
	})
	widget := b.Current()
	if widget == nil {
		writeError(w, r, StatusError{Code: http.StatusServiceUnavailable, Err: errWidgetUnbound})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.Timeout)
	defer cancel()

	if err := widget.Select(ctx, placeID); err != nil {
		if errors.Is(err, pkgplaces.ErrNotFound) {
			writeError(w, r, StatusError{Code: http.StatusNotFound, Err: err})
			return
		}
		h.logger.Warn("place details", zap.String("place_id", placeID), zap.Error(err))
		writeError(w, r, StatusError{Code: http.StatusBadGateway, Err: errUpstreamFailure})
		return
	}
	if address == "" {
		writeError(w, r, StatusError{Code: http.StatusNotFound, Err: errNoAddress})
		return
	}

	writeJSON(w, r, http.StatusOK, optionResponse{Data: Option{Value: address, Label: address}})
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	if h.opts.Loader == nil {
		writeError(w, r, StatusError{Code: http.StatusServiceUnavailable, Err: errNoLoader})
		return
	}
	writeJSON(w, r, http.StatusOK, statusResponse{Data: h.statusOf(h.opts.Loader.State())})
}

func (h *handler) retry(w http.ResponseWriter, r *http.Request) {
	if h.opts.Loader == nil {
		writeError(w, r, StatusError{Code: http.StatusServiceUnavailable, Err: errNoLoader})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.Timeout)
	defer cancel()
	state := h.opts.Loader.Retry(ctx)
	writeJSON(w, r, http.StatusOK, statusResponse{Data: h.statusOf(state)})
}

func (h *handler) statusOf(state loader.State) Status {
	status := StatusFrom(state)
	if !state.IsReady() {
		return status
	}
	capab, ok := h.opts.Loader.Capability()
	if !ok || capab.Src == "" {
		return status
	}
	opts := h.opts.Loader.Options()
	status.Script = &Script{Src: capab.Src, Async: opts.Async, Defer: opts.Defer}
	return status
}

func (h *handler) capability() (loader.Capability, error) {
	if h.opts.Loader == nil {
		return loader.Capability{}, StatusError{Code: http.StatusServiceUnavailable, Err: errNoLoader}
	}
	state := h.opts.Loader.State()
	if state.IsFailed() {
		return loader.Capability{}, StatusError{Code: http.StatusServiceUnavailable, Err: errors.New(state.Reason)}
	}
	capab, ok := h.opts.Loader.Capability()
	if !ok {
		return loader.Capability{}, StatusError{Code: http.StatusServiceUnavailable, Err: errNotReady}
	}
	return capab, nil
}

// StatusFrom converts a loader state for the status endpoint.
func StatusFrom(state loader.State) Status {
	return Status{
		Phase:  state.Phase.String(),
		Ready:  state.IsReady(),
		Reason: state.Reason,
	}
}

// PredictionOptions maps predictions to options, keeping at most limit.
func PredictionOptions(predictions []pkgplaces.Prediction, limit int) []Option {
	out := make([]Option, 0, len(predictions))
	for _, p := range predictions {
		if limit > 0 && len(out) >= limit {
			break
		}
		if p.PlaceID == "" {
			continue
		}
		out = append(out, Option{Value: p.PlaceID, Label: p.Description})
	}
	return out
}

func route(path string) string {
	path = strings.TrimRight(path, "/")
	switch {
	case strings.HasSuffix(path, "/details"):
		return "details"
	case strings.HasSuffix(path, "/status"):
		return "status"
	case strings.HasSuffix(path, "/retry"):
		return "retry"
	}
	return ""
}

func allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if r.Method == http.MethodHead {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
	}
	writeJSON(w, r, code, errorResponse{Error: err.Error()})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
