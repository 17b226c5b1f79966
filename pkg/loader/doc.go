// Package loader makes a third-party browser capability (the Google Maps places
// library) available exactly once per process.
//
// A Loader fetches the API key from a secrets.Source, injects a script reference
// into a shared Document, waits for the load or error event and records the
// outcome as a State. The capability marker is process-wide: once any loader
// observes a successful load, every loader sharing the marker resolves to ready
// without fetching the key or injecting the script again.
//
// The lifecycle is:
//
//	not-started -> loading -> ready | failed
//
// failed is terminal until Retry is called explicitly. Every suspension point
// (secret fetch and script load) is bounded by a timeout.
package loader
