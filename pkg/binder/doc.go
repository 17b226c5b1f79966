// Package binder attaches the address widget to a mounted input once the
// script loader reports ready, and forwards the formatted address of each
// selection to a callback. It owns the widget lifecycle: at most one
// place_changed listener per bound input, cleared on every rebind and on
// Close.
package binder
