package google

import "testing"

func TestYearSheetName(t *testing.T) {
	if got := yearSheetName("Invoices", 2026); got != "2026 Invoices" {
		t.Fatalf("got %q", got)
	}
	if got := yearSheetName("Fatture", 2025); got != "2025 Fatture" {
		t.Fatalf("got %q", got)
	}
}
