package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/goliatone/go-intake/internal/openapi"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/render"
)

const submissionTokenKey = "submissionToken"

type problemResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// handleAPISubmit accepts a JSON service request validated against the
// embedded OpenAPI description.
func (s *Server) handleAPISubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, problemResponse{Error: "request body is too large"})
		return
	}

	doc, err := s.deps.Validator.ValidateBody(r.Context(), openapi.OperationCreateServiceRequest, body)
	if err != nil {
		var verr *openapi.ValidationError
		if errors.As(err, &verr) {
			mapping := render.MapErrorPayload(apiFields(), verr.Payload())
			writeJSON(w, http.StatusUnprocessableEntity, problem("invalid service request", mapping))
			return
		}
		writeJSON(w, http.StatusInternalServerError, problemResponse{Error: err.Error()})
		return
	}

	raw := make(map[string]string, len(doc))
	for key, value := range doc {
		if text, ok := value.(string); ok {
			raw[key] = text
		}
	}
	outcome := s.submit(r.Context(), intake.ValuesFromMap(raw), raw[submissionTokenKey])

	var verr *intake.ValidationError
	switch {
	case outcome.err == nil:
		writeJSON(w, http.StatusCreated, intake.Notification{Severity: intake.SeveritySuccess, Message: intake.MessageSubmitted})
	case errors.As(outcome.err, &verr):
		writeJSON(w, outcome.status, problem("invalid service request", outcome.mapping))
	case outcome.status == http.StatusConflict || outcome.status == http.StatusBadRequest:
		writeJSON(w, outcome.status, problemResponse{Error: guardMessage(outcome.err)})
	default:
		writeJSON(w, outcome.status, problemResponse{Error: intake.MessageFailed})
	}
}

func apiFields() []string {
	return append(append([]string(nil), intake.Fields...), submissionTokenKey)
}

func problem(message string, mapping render.ErrorMapping) problemResponse {
	out := problemResponse{Error: message}
	if len(mapping.Form) > 0 {
		out.Error = mapping.Form[0]
	}
	if len(mapping.Fields) > 0 {
		out.Fields = mapping.Fields
	}
	return out
}
