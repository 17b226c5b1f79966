package vanilla

// ChromeClass is a typed identifier for the page chrome CSS classes.
type ChromeClass string

const (
	ClassPage        ChromeClass = "intake-page"
	ClassHeader      ChromeClass = "intake-header"
	ClassForm        ChromeClass = "intake-form"
	ClassSection     ChromeClass = "intake-section"
	ClassField       ChromeClass = "intake-field"
	ClassFieldErrors ChromeClass = "intake-field-errors"
	ClassStatus      ChromeClass = "intake-status"
	ClassActions     ChromeClass = "intake-actions"
	ClassErrors      ChromeClass = "intake-errors"
	ClassNotice      ChromeClass = "intake-notice"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"page":    string(ClassPage),
		"header":  string(ClassHeader),
		"form":    string(ClassForm),
		"section": string(ClassSection),
		"actions": string(ClassActions),
		"errors":  string(ClassErrors),
		"notice":  string(ClassNotice),
	}
}
