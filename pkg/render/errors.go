package render

import (
	"errors"
	"strings"
)

// ErrorMapping splits error messages into per-field and form-level lists.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MissingFields is implemented by validation errors that list empty required
// fields.
type MissingFields interface {
	error
	MissingFields() []string
}

// RequiredMessage is the inline message for an empty required field.
const RequiredMessage = "This field is required."

// MergeFormErrors concatenates form-level messages, trimming and dropping
// duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapError converts err into a mapping. Errors listing missing fields become
// field errors; anything else is form-level.
func MapError(err error) ErrorMapping {
	if err == nil {
		return ErrorMapping{}
	}
	var missing MissingFields
	if errors.As(err, &missing) {
		fields := make(map[string][]string)
		for _, name := range missing.MissingFields() {
			fields[name] = []string{RequiredMessage}
		}
		return ErrorMapping{Fields: fields}
	}
	return ErrorMapping{Form: normalizeMessages([]string{err.Error()})}
}

// MapErrorPayload maps server error payloads keyed by field path (JSON
// pointers, dotted paths, or bare names) onto known field names. Unknown
// paths become form-level messages.
func MapErrorPayload(known []string, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	names := make(map[string]struct{}, len(known))
	for _, name := range known {
		names[name] = struct{}{}
	}

	for raw, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		name, ok := matchField(raw, names)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[name] = append(mapping.Fields[name], messages...)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func matchField(raw string, names map[string]struct{}) (string, bool) {
	segments := pathSegments(raw)
	for len(segments) > 0 && isWrapperSegment(segments[0]) {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return "", false
	}
	if _, ok := names[segments[0]]; ok {
		return segments[0], true
	}
	return "", false
}

func pathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool { return r == '.' || r == '/' })
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~"))
		}
	}
	return out
}

func isWrapperSegment(segment string) bool {
	switch strings.ToLower(segment) {
	case "body", "request", "payload", "data":
		return true
	}
	return false
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
