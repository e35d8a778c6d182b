package scene

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is a ResourceCache with least-recently-used eviction by byte
// size.
//
// The cache holds opaque GPU resources (typically BufferHandles) and evicts
// the least recently used ones when the byte budget is exceeded. The evict
// callback receives every value that leaves the cache, whether by eviction,
// replacement, Remove or Clear, so it can release the GPU object.
//
// Example:
//
//	r := headless.NewRenderer()
//	cache := scene.NewLRUCache(256<<20, func(key, value any) {
//	    r.DeleteBuffer(value.(scene.BufferHandle))
//	})
type LRUCache struct {
	maxBytes  int64 // Maximum size in bytes, 0 for unlimited
	usedBytes int64
	entries   map[any]*cacheEntry
	lru       *list.List // Most recent at front
	onEvict   func(key, value any)
	mu        sync.RWMutex

	hits, misses, evictions int
}

// cacheEntry tracks one cached resource.
type cacheEntry struct {
	key          any
	value        any
	size         int64
	element      *list.Element
	lastAccessed time.Time
}

// NewLRUCache creates a cache limited to maxBytes. Set maxBytes to 0 for an
// unlimited cache. onEvict may be nil.
func NewLRUCache(maxBytes int64, onEvict func(key, value any)) *LRUCache {
	return &LRUCache{
		maxBytes: maxBytes,
		entries:  make(map[any]*cacheEntry),
		lru:      list.New(),
		onEvict:  onEvict,
	}
}

// Get returns the value cached under key and marks it recently used.
func (c *LRUCache) Get(key any) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	entry.lastAccessed = time.Now()
	c.lru.MoveToFront(entry.element)
	return entry.value, true
}

// Put stores value under key. A value larger than the whole budget is not
// cached and is handed straight to the evict callback.
func (c *LRUCache) Put(key any, value any, size int64) {
	var evicted []*cacheEntry
	c.mu.Lock()

	if entry, ok := c.entries[key]; ok {
		if entry.value != value {
			evicted = append(evicted, &cacheEntry{key: key, value: entry.value})
		}
		c.usedBytes += size - entry.size
		entry.value = value
		entry.size = size
		entry.lastAccessed = time.Now()
		c.lru.MoveToFront(entry.element)
	} else if c.maxBytes > 0 && size > c.maxBytes {
		evicted = append(evicted, &cacheEntry{key: key, value: value})
	} else {
		entry := &cacheEntry{
			key:          key,
			value:        value,
			size:         size,
			lastAccessed: time.Now(),
		}
		entry.element = c.lru.PushFront(entry)
		c.entries[key] = entry
		c.usedBytes += size
	}

	// Evict until we are back under budget, never the entry just stored.
	if c.maxBytes > 0 {
		for c.usedBytes > c.maxBytes && c.lru.Len() > 1 {
			evicted = append(evicted, c.evictLRU())
		}
	}
	c.mu.Unlock()

	c.notify(evicted)
}

// evictLRU removes the least recently used entry.
// Must be called with c.mu locked.
func (c *LRUCache) evictLRU() *cacheEntry {
	elem := c.lru.Back()
	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.entries, entry.key)
	c.usedBytes -= entry.size
	c.evictions++
	return entry
}

// Remove drops the entry for key, if any.
func (c *LRUCache) Remove(key any) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok {
		c.lru.Remove(entry.element)
		delete(c.entries, key)
		c.usedBytes -= entry.size
	}
	c.mu.Unlock()

	if ok {
		c.notify([]*cacheEntry{entry})
	}
}

// Clear removes every entry.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	evicted := make([]*cacheEntry, 0, len(c.entries))
	for e := c.lru.Front(); e != nil; e = e.Next() {
		evicted = append(evicted, e.Value.(*cacheEntry))
	}
	c.entries = make(map[any]*cacheEntry)
	c.lru.Init()
	c.usedBytes = 0
	c.mu.Unlock()

	c.notify(evicted)
}

// notify runs the evict callback outside the lock.
func (c *LRUCache) notify(entries []*cacheEntry) {
	if c.onEvict == nil {
		return
	}
	for _, e := range entries {
		c.onEvict(e.key, e.value)
	}
}

// Stats returns cache statistics.
func (c *LRUCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return CacheStats{
		Entries:   len(c.entries),
		UsedBytes: c.usedBytes,
		MaxBytes:  c.maxBytes,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	Entries   int   // Number of resources currently cached
	UsedBytes int64 // Bytes accounted to cached resources
	MaxBytes  int64 // Byte budget, 0 for unlimited
	Hits      int
	Misses    int
	Evictions int
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
