// Package openapi embeds the intake API description and validates request
// bodies against it with kin-openapi.
package openapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// OperationCreateServiceRequest is the JSON submission operation.
const OperationCreateServiceRequest = "createServiceRequest"

//go:embed openapi.yaml
var document []byte

// Document returns the embedded OpenAPI description.
func Document() []byte {
	return append([]byte(nil), document...)
}

// Validator checks JSON request bodies against the operations of a document.
type Validator struct {
	doc     *openapi3.T
	schemas map[string]*openapi3.Schema
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*Validator, error) {
	return LoadFromData(ctx, document)
}

// LoadFromData parses raw and indexes the JSON request body schema of every
// operation by operationId.
func LoadFromData(ctx context.Context, raw []byte) (*Validator, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}

	v := &Validator{doc: doc, schemas: make(map[string]*openapi3.Schema)}
	if doc.Paths == nil {
		return v, nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op == nil || op.OperationID == "" {
				continue
			}
			if schema := requestSchema(op.RequestBody); schema != nil {
				v.schemas[op.OperationID] = schema
			}
		}
	}
	return v, nil
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	media := body.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil {
		return nil
	}
	return media.Schema.Value
}

// Operations lists the operation ids that carry a JSON request schema.
func (v *Validator) Operations() []string {
	out := make([]string, 0, len(v.schemas))
	for id := range v.schemas {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ValidationError groups schema violations by top-level property. Problems
// that are not tied to a property are listed under Form.
type ValidationError struct {
	Fields map[string][]string
	Form   []string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields)+len(e.Form))
	parts = append(parts, e.Form...)
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], "; "))
	}
	return "openapi: invalid request: " + strings.Join(parts, ", ")
}

// Payload returns the violations keyed by JSON pointer, the shape
// render.MapErrorPayload accepts.
func (e *ValidationError) Payload() map[string][]string {
	out := make(map[string][]string, len(e.Fields)+1)
	for name, messages := range e.Fields {
		out["/"+name] = append([]string(nil), messages...)
	}
	if len(e.Form) > 0 {
		out[""] = append([]string(nil), e.Form...)
	}
	return out
}

// ValidateBody decodes body and checks it against the request schema of
// operationID. The decoded document is returned on success.
func (v *Validator) ValidateBody(_ context.Context, operationID string, body []byte) (map[string]any, error) {
	schema, ok := v.schemas[operationID]
	if !ok {
		return nil, fmt.Errorf("openapi: unknown operation %q", operationID)
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, &ValidationError{Form: []string{"request body is not valid JSON"}}
	}
	if err := schema.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return nil, collect(err)
	}
	out, ok := value.(map[string]any)
	if !ok {
		return nil, &ValidationError{Form: []string{"request body must be an object"}}
	}
	return out, nil
}

func collect(err error) *ValidationError {
	verr := &ValidationError{Fields: make(map[string][]string)}
	var walk func(error)
	walk = func(err error) {
		var multi openapi3.MultiError
		if errors.As(err, &multi) {
			for _, inner := range multi {
				walk(inner)
			}
			return
		}
		var schemaErr *openapi3.SchemaError
		if errors.As(err, &schemaErr) {
			pointer := schemaErr.JSONPointer()
			if len(pointer) > 0 {
				verr.Fields[pointer[0]] = append(verr.Fields[pointer[0]], schemaErr.Reason)
				return
			}
			verr.Form = append(verr.Form, schemaErr.Reason)
			return
		}
		verr.Form = append(verr.Form, err.Error())
	}
	walk(err)
	return verr
}
