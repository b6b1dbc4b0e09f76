package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New[string](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache should miss")
	}

	c.Set("a", "value-a")
	got, ok := c.Get("a")
	if !ok || got != "value-a" {
		t.Errorf("Get(a) = %q, %v; want value-a, true", got, ok)
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New[int](10, 10*time.Millisecond)
	c.Set("a", 1)

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("Get() should miss after TTL")
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after expired Get, want 0", c.Size())
	}
}

func TestLRUEviction(t *testing.T) {
	c := New[int](3, time.Minute)
	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	// Touch k0 so k1 becomes the eviction candidate.
	c.Get("k0")
	c.Set("k3", 3)

	if _, ok := c.Get("k1"); ok {
		t.Error("k1 should have been evicted")
	}
	if _, ok := c.Get("k0"); !ok {
		t.Error("k0 should still be cached")
	}
	if c.Size() != 3 {
		t.Errorf("Size() = %d, want 3", c.Size())
	}
}

func TestNamespaceInvalidation(t *testing.T) {
	c := New[string](10, time.Minute)

	key := c.Key("user-1", "report")
	c.Set(key, "cached")

	if _, ok := c.Get(c.Key("user-1", "report")); !ok {
		t.Fatal("expected hit before invalidation")
	}

	c.Invalidate("user-1")

	if _, ok := c.Get(c.Key("user-1", "report")); ok {
		t.Error("expected miss after invalidation")
	}

	// Other namespaces are untouched.
	other := c.Key("user-2", "report")
	c.Set(other, "kept")
	c.Invalidate("user-1")
	if _, ok := c.Get(other); !ok {
		t.Error("user-2 entry should survive user-1 invalidation")
	}
}

func TestCleanExpired(t *testing.T) {
	c := New[int](10, 10*time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)

	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	// c was just written with a fresh deadline, but the 10ms TTL may
	// still be generous; only assert on the clearly expired pair.
	removed := c.CleanExpired()
	if removed < 2 {
		t.Errorf("CleanExpired() = %d, want at least 2", removed)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("a should be gone")
	}
}
