// Package sqlite provides a local SQLite outbox for intake rows. It is used
// when no remote database is configured and by tooling that inspects what
// would have been submitted.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-intake/pkg/store"
	"github.com/goliatone/go-intake/pkg/store/sqlite/migrations"
)

// Entry is one stored row.
type Entry struct {
	ID        string
	Table     string
	Row       store.Row
	CreatedAt time.Time
}

// Store persists rows in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Sink = (*Store)(nil)

// Open opens the database at path and applies embedded migrations. The path
// ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Insert stores row as JSON under table.
func (s *Store) Insert(ctx context.Context, table string, row store.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return store.ErrNotConfigured
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return fmt.Errorf("table is required")
	}
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO intake_rows (id, table_name, payload, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), table, string(payload), s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert row: %w", err)
	}
	return nil
}

// Count returns the number of rows stored under table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	if s == nil || s.db == nil {
		return 0, store.ErrNotConfigured
	}
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM intake_rows WHERE table_name = ?`, table,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// List returns rows stored under table, oldest first. A limit of zero or less
// returns every row.
func (s *Store) List(ctx context.Context, table string, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, store.ErrNotConfigured
	}
	query := `SELECT id, table_name, payload, created_at FROM intake_rows
WHERE table_name = ? ORDER BY created_at, rowid`
	args := []any{table}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			entry   Entry
			payload string
			created int64
		)
		if err := rows.Scan(&entry.ID, &entry.Table, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &entry.Row); err != nil {
			return nil, fmt.Errorf("decode row %s: %w", entry.ID, err)
		}
		entry.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
