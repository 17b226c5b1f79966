package binder

import "sync/atomic"

// InputRef identifies the input element the widget attaches to.
type InputRef interface {
	ID() string
	Mounted() bool
}

// Input is a simple InputRef whose mounted flag is toggled by its owner.
type Input struct {
	id      string
	mounted atomic.Bool
}

// NewInput returns a mounted input.
func NewInput(id string) *Input {
	in := &Input{id: id}
	in.mounted.Store(true)
	return in
}

func (i *Input) ID() string {
	if i == nil {
		return ""
	}
	return i.id
}

func (i *Input) Mounted() bool {
	return i != nil && i.mounted.Load()
}

func (i *Input) Mount() { i.mounted.Store(true) }

func (i *Input) Unmount() { i.mounted.Store(false) }
