// Package store defines where submitted intake records are written.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotConfigured is returned by sinks without a backing connection.
var ErrNotConfigured = errors.New("store: sink is not configured")

// Row is one flat record keyed by column name.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Sink inserts rows into a named table.
type Sink interface {
	Insert(ctx context.Context, table string, row Row) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, table string, row Row) error

func (f SinkFunc) Insert(ctx context.Context, table string, row Row) error {
	return f(ctx, table, row)
}

// Record is a row captured by Memory.
type Record struct {
	Table string
	Row   Row
}

// Memory keeps inserted rows in memory.
type Memory struct {
	mu   sync.Mutex
	rows []Record
}

func (m *Memory) Insert(ctx context.Context, table string, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, Record{Table: table, Row: row.Clone()})
	return nil
}

// Records returns the captured rows in insertion order.
func (m *Memory) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.rows...)
}
