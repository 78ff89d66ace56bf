package cache

import (
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	c := New(time.Minute)
	if _, ok := c.Get("grid-load"); ok {
		t.Fatal("empty cache must miss")
	}
	c.Set("grid-load", 42)
	v, ok := c.Get("grid-load")
	if !ok || v.(int) != 42 {
		t.Fatalf("got %v/%v, want 42/true", v, ok)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New(time.Minute)
	clock := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("fresh entry must hit")
	}

	clock = clock.Add(61 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry must miss")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := New(time.Minute)
	c.Set("k", 1)
	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("invalidated entry must miss")
	}
}

func TestCacheDefaultTTL(t *testing.T) {
	c := New(0)
	if c.ttl != DefaultTTL {
		t.Fatalf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}
