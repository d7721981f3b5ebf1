package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultTTL matches the product default for provider response reuse.
const DefaultTTL = 24 * time.Hour

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is a concurrency-safe in-memory key-value store with TTL semantics,
// shared by all in-flight audits in the process.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   Clock
	entries map[string]entry
}

// New creates a cache with the given TTL.
func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, realClock{})
}

// NewWithClock creates a cache with an injectable clock.
func NewWithClock(ttl time.Duration, clock Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl, clock: clock, entries: make(map[string]entry)}
}

// Get returns the cached value and true when present and unexpired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: another writer may have refreshed it.
		if cur, ok := c.entries[key]; ok && c.clock.Now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key for the cache TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.clock.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Key builds a normalized cache key: lower-cased, whitespace-collapsed parts
// joined with '|' so equivalent queries hash equal.
func Key(parts ...string) string {
	norm := make([]string, 0, len(parts))
	for _, p := range parts {
		norm = append(norm, strings.Join(strings.Fields(strings.ToLower(p)), " "))
	}
	return strings.Join(norm, "|")
}
