package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-intake/pkg/store"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "intake.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestInsertAndList(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	row := store.Row{"F_Name": "Jane", "Mobile": int64(5551234567), "Work": nil}
	if err := s.Insert(ctx, "intake-test-customers", row); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(ctx, "other", store.Row{"x": 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	n, err := s.Count(ctx, "intake-test-customers")
	if err != nil || n != 1 {
		t.Fatalf("count = %d, %v; want 1", n, err)
	}

	entries, err := s.List(ctx, "intake-test-customers", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	got := entries[0]
	if got.ID == "" || got.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %#v", got)
	}
	if got.Row["F_Name"] != "Jane" {
		t.Fatalf("F_Name = %v", got.Row["F_Name"])
	}
	// JSON numbers decode as float64.
	if got.Row["Mobile"] != float64(5551234567) {
		t.Fatalf("Mobile = %v", got.Row["Mobile"])
	}
	if v, ok := got.Row["Work"]; !ok || v != nil {
		t.Fatalf("Work should be stored as null, got %v (present=%v)", v, ok)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intake.db")
	for i := 0; i < 2; i++ {
		s, err := Open(context.Background(), path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		_ = s.Close()
	}
}

func TestInsertRequiresTable(t *testing.T) {
	s := openTempStore(t)
	if err := s.Insert(context.Background(), "", store.Row{}); err == nil {
		t.Fatal("expected table error")
	}
}

func TestUpSection(t *testing.T) {
	got := upSection("-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;")
	if got != "\nCREATE TABLE a (id INT);\n" {
		t.Fatalf("unexpected up section %q", got)
	}
}
