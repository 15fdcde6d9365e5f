package client

import (
	"sync"
	"time"
)

// CacheMode selects per-call cache behavior.
type CacheMode int

const (
	// CacheUse reads a fresh entry if present, otherwise fetches and writes.
	CacheUse CacheMode = iota
	// CacheRefresh always fetches and overwrites the entry.
	CacheRefresh
	// CacheBypass fetches without reading or writing the cache.
	CacheBypass
)

type cacheEntry struct {
	body      string
	expiresAt time.Time
}

// responseCache maps final URLs to response bodies with a TTL. Entries are
// immutable once stored; a write replaces the entry atomically.
type responseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (rc *responseCache) get(url string) (string, bool) {
	rc.mu.RLock()
	entry, ok := rc.entries[url]
	rc.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.body, true
}

// set stores body under url. A non-positive ttl falls back to the default.
func (rc *responseCache) set(url, body string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = rc.ttl
	}
	rc.mu.Lock()
	rc.entries[url] = cacheEntry{body: body, expiresAt: time.Now().Add(ttl)}
	rc.mu.Unlock()
}

func (rc *responseCache) invalidate(url string) {
	rc.mu.Lock()
	delete(rc.entries, url)
	rc.mu.Unlock()
}

func (rc *responseCache) flush() {
	rc.mu.Lock()
	rc.entries = make(map[string]cacheEntry)
	rc.mu.Unlock()
}

// InvalidateCache drops the entry for one final URL.
func (c *Client) InvalidateCache(url string) {
	if c.cache != nil {
		c.cache.invalidate(url)
	}
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	if c.cache != nil {
		c.cache.flush()
	}
}
