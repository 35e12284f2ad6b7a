package quotemill

import (
	"testing"
	"time"
)

func TestTokenCachePutGet(t *testing.T) {
	c := NewTokenCache(time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown token")
	}

	c.Put("tok-1", "alice")
	subject, ok := c.Get("tok-1")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if subject != "alice" {
		t.Errorf("subject = %q, want %q", subject, "alice")
	}
}

func TestTokenCacheExpires(t *testing.T) {
	c := NewTokenCache(50 * time.Millisecond)
	c.Put("tok-1", "alice")

	time.Sleep(80 * time.Millisecond)
	if _, ok := c.Get("tok-1"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestTokenCacheInvalidate(t *testing.T) {
	c := NewTokenCache(time.Minute)
	c.Put("tok-1", "alice")
	c.Put("tok-2", "bob")

	c.Invalidate()
	if _, ok := c.Get("tok-1"); ok {
		t.Fatal("expected miss after Invalidate")
	}
	if _, ok := c.Get("tok-2"); ok {
		t.Fatal("expected miss after Invalidate")
	}
}
