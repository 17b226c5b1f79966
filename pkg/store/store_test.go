package store

import (
	"context"
	"testing"
)

func TestMemory_InsertCopiesRow(t *testing.T) {
	var mem Memory
	row := Row{"F_Name": "Jane"}
	if err := mem.Insert(context.Background(), "customers", row); err != nil {
		t.Fatalf("insert: %v", err)
	}
	row["F_Name"] = "changed"

	records := mem.Records()
	if len(records) != 1 || records[0].Table != "customers" || records[0].Row["F_Name"] != "Jane" {
		t.Fatalf("unexpected records %#v", records)
	}
}

func TestMemory_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var mem Memory
	if err := mem.Insert(ctx, "customers", Row{}); err == nil {
		t.Fatalf("expected context error")
	}
}
