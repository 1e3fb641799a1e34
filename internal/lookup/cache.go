// Package lookup implements the metadata lookup cache. Lookups are memoized
// for the lifetime of the cache, including explicit "not found" results, so
// repeated references to the same word in a short window cost at most one
// round-trip. Entries never expire on a timer; correctness relies on explicit
// invalidation by whichever operation changed the underlying entity.
package lookup

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Result is a memoized lookup result. Found is false for a word the backend
// does not know; that is a cacheable answer, not an error.
type Result struct {
	Found    bool
	ID       string
	Lemma    string
	Language string
	PackID   string
}

// Func performs the actual backend lookup for a normalized key
type Func func(ctx context.Context, key string) (*Result, error)

// Cache memoizes lookup results by normalized key. Concurrent misses for the
// same key are coalesced into a single backend call. Instances are
// constructor-passed, never package-level, so tests can isolate them.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Result
	group   singleflight.Group
	fn      Func
}

// NewCache creates a cache backed by the given lookup function
func NewCache(fn Func) *Cache {
	return &Cache{
		entries: make(map[string]*Result),
		fn:      fn,
	}
}

// Normalize folds a lookup key so that "Foo", "foo" and " foo " collide
func Normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Lookup returns the cached result for key, performing at most one backend
// call on a miss. Failed lookups are not cached, so a later retry can
// succeed.
func (c *Cache) Lookup(ctx context.Context, key string) (*Result, error) {
	normalized := Normalize(key)

	c.mu.RLock()
	cached, ok := c.entries[normalized]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	value, err, _ := c.group.Do(normalized, func() (any, error) {
		// Re-check under the flight: another caller may have settled the
		// entry between the read above and joining the flight.
		c.mu.RLock()
		cached, ok := c.entries[normalized]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		result, err := c.fn(ctx, normalized)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[normalized] = result
		c.mu.Unlock()
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(*Result), nil
}

// Invalidate removes any cached entry for key, forcing the next lookup to hit
// the backend. Must be called by any operation known to have just created or
// changed the entity the key refers to.
func (c *Cache) Invalidate(key string) {
	normalized := Normalize(key)
	c.mu.Lock()
	delete(c.entries, normalized)
	c.mu.Unlock()
	c.group.Forget(normalized)
}

// Clear drops every cached entry
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*Result)
	c.mu.Unlock()
}

// Size returns the number of cached entries
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
