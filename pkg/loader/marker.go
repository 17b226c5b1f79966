package loader

import "sync/atomic"

// Capability describes what becomes available once the script has loaded.
type Capability struct {
	Library string
	Src     string
	Key     string
}

// Marker is the process-wide signal that the third-party library has loaded.
// It starts absent, is set once, and is never unset.
type Marker struct {
	value atomic.Pointer[Capability]
}

// Global is the marker shared by every loader that does not override it.
var Global = &Marker{}

// Set records the capability. Only the first call wins; it reports whether the
// marker transitioned from absent to present.
func (m *Marker) Set(c Capability) bool {
	if m == nil {
		return false
	}
	copyCap := c
	return m.value.CompareAndSwap(nil, &copyCap)
}

// Load returns the capability when the marker is present.
func (m *Marker) Load() (Capability, bool) {
	if m == nil {
		return Capability{}, false
	}
	c := m.value.Load()
	if c == nil {
		return Capability{}, false
	}
	return *c, true
}

// Present reports whether the marker is set.
func (m *Marker) Present() bool {
	_, ok := m.Load()
	return ok
}
