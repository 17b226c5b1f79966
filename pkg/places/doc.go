// Package places exposes the address capability made available by the Google
// Maps JavaScript library with the places selector: predictions for partial
// input, place details, and an Autocomplete widget bound to a single input.
//
// The widget mirrors the browser widget's event surface (AddListener,
// ClearInstanceListeners, GetPlace) so the binder can manage it the same way
// a page would, while predictions and details are resolved through the Places
// web service.
package places
