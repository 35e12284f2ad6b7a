package quotemill

import (
	"sync"
	"time"
)

// tokenCacheSweepSize is the entry count that triggers an expiry sweep on
// insert.
const tokenCacheSweepSize = 1024

// TokenCache memoizes verified bearer tokens for a bounded time so the API
// layer does not re-verify the HMAC on every request. It is an explicit
// cache-with-expiry value, constructed at boot and passed where needed.
type TokenCache struct {
	mu      sync.RWMutex
	entries map[string]tokenCacheEntry
	ttl     time.Duration
}

type tokenCacheEntry struct {
	subject string
	expires time.Time
}

// NewTokenCache creates a TokenCache whose entries live for ttl.
func NewTokenCache(ttl time.Duration) *TokenCache {
	return &TokenCache{
		entries: make(map[string]tokenCacheEntry),
		ttl:     ttl,
	}
}

// Get returns the cached subject for a token, if present and unexpired.
func (c *TokenCache) Get(token string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[token]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, token)
		c.mu.Unlock()
		return "", false
	}
	return entry.subject, true
}

// Put records a verified token's subject.
func (c *TokenCache) Put(token, subject string) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= tokenCacheSweepSize {
		for k, e := range c.entries {
			if now.After(e.expires) {
				delete(c.entries, k)
			}
		}
	}
	c.entries[token] = tokenCacheEntry{subject: subject, expires: now.Add(c.ttl)}
}

// Invalidate clears all cached verifications.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]tokenCacheEntry)
	c.mu.Unlock()
}
