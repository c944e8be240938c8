package memory

import (
	"context"
	"testing"

	"tempo/internal/core"
)

func TestStore_Append(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, core.Invoice{Number: "INV-000001", ClientName: "Acme Corp"})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("Append() ref = %q, want %q", ref, "mem:1")
	}

	ref, err = s.Append(ctx, core.Invoice{Number: "INV-000002", ClientName: "Acme Corp"})
	if err != nil {
		t.Fatalf("Append() second error = %v", err)
	}
	if ref != "mem:2" {
		t.Errorf("Append() second ref = %q, want %q", ref, "mem:2")
	}

	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("Items() len = %d, want 2", len(items))
	}
	if items[0].Number != "INV-000001" {
		t.Errorf("Items()[0].Number = %q", items[0].Number)
	}
}
