// Package querycache is a small TTL cache for API reads. Entries are keyed by
// a resource path plus a hash of the query parameters, and are dropped by
// resource prefix when a mutation makes them stale.
package querycache

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultTTL matches how long list views are considered fresh
const DefaultTTL = 30 * time.Second

type entry struct {
	value   []byte
	expires time.Time
}

// Cache stores JSON snapshots of decoded responses. A nil *Cache is valid
// and caches nothing.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

type Option func(*Cache)

// WithNowTime sets the clock (primarily for testing)
func WithNowTime(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds a cache key from a resource path such as "cars" or "car/4" and
// optional query parameters.
func Key(resource string, params url.Values) string {
	if len(params) == 0 {
		return resource
	}
	return resource + ":" + strconv.FormatUint(xxhash.Sum64String(params.Encode()), 16)
}

// Get decodes the entry under key into out. It reports false on a miss.
func (c *Cache) Get(key string, out any) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	if c.now().After(e.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false
	}
	return json.Unmarshal(e.value, out) == nil
}

// Set stores a snapshot of v under key
func (c *Cache) Set(key string, v any) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry{value: b, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops every entry whose resource starts with one of the given
// prefixes. "car/4" drops "car/4" and "car/4/reviews" but not "car/42".
func (c *Cache) Invalidate(prefixes ...string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		for _, p := range prefixes {
			if matchesPrefix(key, p) {
				delete(c.entries, key)
				break
			}
		}
	}
}

// Clear drops every entry
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of entries, expired ones included
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func matchesPrefix(key, prefix string) bool {
	if !strings.HasPrefix(key, prefix) {
		return false
	}
	if len(key) == len(prefix) {
		return true
	}
	next := key[len(prefix)]
	return next == '/' || next == ':'
}

// Fetch returns the cached value under key, or calls load and caches its result
func Fetch[T any](c *Cache, key string, load func() (T, error)) (T, error) {
	var cached T
	if c.Get(key, &cached) {
		return cached, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}
