package cache

import (
	"testing"
	"time"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("get a = %d, %v", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("missing key reported present")
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // touch a so b is the eviction candidate
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("least recently used key not evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("recently used key was evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRUCache[int](10, -time.Second) // already expired on insert
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expired entry returned")
	}
	c.Set("b", 2)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("cleaned = %d, want 1", n)
	}
}

func TestLRUDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("summary:2025-01", 1)
	c.Set("summary:2025-02", 2)
	c.Set("goal:3", 3)

	if n := c.DeletePrefix("summary:"); n != 2 {
		t.Fatalf("deleted = %d, want 2", n)
	}
	if _, ok := c.Get("goal:3"); !ok {
		t.Fatalf("unrelated key deleted")
	}
}
