package vanilla

import "strings"

// controlID derives a DOM id from a field name: "field-" plus kebab case.
func controlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("field-")
	for i, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
		case r == ' ' || r == '_' || r == '.':
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func statusClass(state string, isError bool) string {
	cls := string(ClassStatus)
	if state = strings.TrimSpace(state); state != "" {
		cls += " " + string(ClassStatus) + "--" + state
	}
	if isError && state != "error" {
		cls += " " + string(ClassStatus) + "--error"
	}
	return cls
}
