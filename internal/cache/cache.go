package cache

import "sync"

// Cache is a thread-safe keyed cache with a soft limit. When the cache
// exceeds the limit, the least recently used quarter is evicted.
//
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*entry[V]
	softLimit int
	tick      int64
	hits      uint64
	misses    uint64
}

type entry[V any] struct {
	value V
	atime int64
}

// New creates a cache with the given soft limit. Zero means unlimited.
func New[K comparable, V any](softLimit int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:   make(map[K]*entry[V]),
		softLimit: softLimit,
	}
}

// Get returns the value stored under key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.tick++
	e.atime = c.tick
	return e.value, true
}

// GetOrCreate returns the value stored under key, building it with create
// on a miss. create runs under the lock, so concurrent callers build a key
// once. A failed create stores nothing.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick++
	if e, ok := c.entries[key]; ok {
		c.hits++
		e.atime = c.tick
		return e.value, nil
	}
	c.misses++
	v, err := create()
	if err != nil {
		return v, err
	}
	c.entries[key] = &entry[V]{value: v, atime: c.tick}
	if c.softLimit > 0 && len(c.entries) > c.softLimit {
		c.evict()
	}
	return v, nil
}

// Delete removes key and reports whether it was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.tick = 0
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Len: len(c.entries), Capacity: c.softLimit, Hits: c.hits, Misses: c.misses}
}

// evict drops the oldest entries until three quarters of the limit remain.
// Caller must hold c.mu.
func (c *Cache[K, V]) evict() {
	target := max(c.softLimit*3/4, 1)
	for len(c.entries) > target {
		var oldest K
		first := true
		var at int64
		for k, e := range c.entries {
			if first || e.atime < at {
				oldest, at, first = k, e.atime, false
			}
		}
		delete(c.entries, oldest)
	}
}

// Stats contains cache statistics.
type Stats struct {
	Len      int
	Capacity int
	Hits     uint64
	Misses   uint64
}
