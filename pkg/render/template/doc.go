// Package template defines the engine contract used by the HTML renderers.
// The pongo2-backed implementation lives in the gotemplate subpackage.
package template
