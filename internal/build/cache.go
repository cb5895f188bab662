// Package build renders the whole site to the output directory: it plans one
// render task per route, runs them through a worker pipeline with an LRU
// result cache, and writes pages, feeds, the sitemap, and static assets.
package build

import (
	"sync"
	"sync/atomic"
	"time"
)

// RenderCache caches rendered page HTML with LRU eviction and TTL. Keys
// combine the route with the source content hash, so an edited document
// misses naturally while untouched documents hit on rebuilds.
type RenderCache struct {
	entries     map[string]*cacheEntry
	mutex       sync.Mutex
	maxSize     int64
	currentSize int64
	ttl         time.Duration
	// LRU doubly-linked list with dummy head and tail
	head *cacheEntry
	tail *cacheEntry
	// Statistics tracking (atomic for thread safety)
	hits      int64
	misses    int64
	sets      int64
	evictions int64
}

type cacheEntry struct {
	key        string
	value      string
	createdAt  time.Time
	accessedAt time.Time
	size       int64
	prev       *cacheEntry
	next       *cacheEntry
}

// NewRenderCache creates a render cache bounded by maxSize bytes of HTML.
func NewRenderCache(maxSize int64, ttl time.Duration) *RenderCache {
	cache := &RenderCache{
		entries: make(map[string]*cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}

	cache.head = &cacheEntry{}
	cache.tail = &cacheEntry{}
	cache.head.next = cache.tail
	cache.tail.prev = cache.head

	return cache
}

// Get retrieves a rendered page from the cache.
func (rc *RenderCache) Get(key string) (string, bool) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	entry, exists := rc.entries[key]
	if !exists {
		atomic.AddInt64(&rc.misses, 1)
		return "", false
	}

	if time.Since(entry.createdAt) > rc.ttl {
		rc.removeFromList(entry)
		delete(rc.entries, key)
		rc.currentSize -= entry.size
		atomic.AddInt64(&rc.misses, 1)
		return "", false
	}

	rc.moveToFront(entry)
	entry.accessedAt = time.Now()
	atomic.AddInt64(&rc.hits, 1)
	return entry.value, true
}

// Set stores a rendered page in the cache.
func (rc *RenderCache) Set(key, value string) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if existing, exists := rc.entries[key]; exists {
		sizeDiff := int64(len(value)) - existing.size
		existing.value = value
		existing.accessedAt = time.Now()
		existing.size = int64(len(value))
		rc.currentSize += sizeDiff
		rc.moveToFront(existing)
		atomic.AddInt64(&rc.sets, 1)
		return
	}

	rc.evictIfNeeded(int64(len(value)))

	entry := &cacheEntry{
		key:        key,
		value:      value,
		createdAt:  time.Now(),
		accessedAt: time.Now(),
		size:       int64(len(value)),
	}

	rc.entries[key] = entry
	rc.currentSize += entry.size
	rc.addToFront(entry)
	atomic.AddInt64(&rc.sets, 1)
}

// evictIfNeeded evicts least recently used entries until newSize fits.
func (rc *RenderCache) evictIfNeeded(newSize int64) {
	if rc.currentSize+newSize <= rc.maxSize {
		return
	}

	for rc.currentSize+newSize > rc.maxSize && rc.tail.prev != rc.head {
		lru := rc.tail.prev
		rc.removeFromList(lru)
		delete(rc.entries, lru.key)
		rc.currentSize -= lru.size
		atomic.AddInt64(&rc.evictions, 1)
	}
}

// Clear drops all entries and resets statistics.
func (rc *RenderCache) Clear() {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	rc.entries = make(map[string]*cacheEntry)
	rc.currentSize = 0
	rc.head.next = rc.tail
	rc.tail.prev = rc.head

	atomic.StoreInt64(&rc.hits, 0)
	atomic.StoreInt64(&rc.misses, 0)
	atomic.StoreInt64(&rc.sets, 0)
	atomic.StoreInt64(&rc.evictions, 0)
}

// GetStats returns entry count, current size, and max size.
func (rc *RenderCache) GetStats() (int, int64, int64) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	return len(rc.entries), rc.currentSize, rc.maxSize
}

// GetHits returns the number of cache hits.
func (rc *RenderCache) GetHits() int64 {
	return atomic.LoadInt64(&rc.hits)
}

// GetMisses returns the number of cache misses.
func (rc *RenderCache) GetMisses() int64 {
	return atomic.LoadInt64(&rc.misses)
}

// GetEvictions returns the number of evictions.
func (rc *RenderCache) GetEvictions() int64 {
	return atomic.LoadInt64(&rc.evictions)
}

// GetHitRate returns the hit rate between 0.0 and 1.0.
func (rc *RenderCache) GetHitRate() float64 {
	hits := atomic.LoadInt64(&rc.hits)
	misses := atomic.LoadInt64(&rc.misses)
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// LRU doubly-linked list operations
func (rc *RenderCache) addToFront(entry *cacheEntry) {
	entry.prev = rc.head
	entry.next = rc.head.next
	rc.head.next.prev = entry
	rc.head.next = entry
}

func (rc *RenderCache) removeFromList(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
}

func (rc *RenderCache) moveToFront(entry *cacheEntry) {
	rc.removeFromList(entry)
	rc.addToFront(entry)
}
