// Package places exposes the address autocomplete over HTTP: place
// predictions for a partial address, place selection through a request-scoped
// binder, and the state of the shared script loader.
//
// Routes, relative to the mount path (default /api/places):
//
//	GET  ?q=&limit=         predictions as {"data":[{"value","label"}]}
//	GET  /details?place_id= the selected place's formatted address
//	GET  /status            loader state
//	POST /retry             retry a failed loader
//
// Prediction and detail requests answer 503 until the loader is ready.
package places
