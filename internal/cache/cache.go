// Package cache provides thread-safe generic caches and load-once queries.
package cache

import "sync"

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

func (c *Cache[K, V]) SetTo(items map[K]V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// renderedSourceCache holds highlighted campaign markup keyed by content hash and style.
var renderedSourceCache = NewCache[string, string]()

func renderedSourceKey(contentHash, style string) string {
	return contentHash + ":" + style
}

func GetRenderedSource(contentHash, style string) (string, bool) {
	return renderedSourceCache.Get(renderedSourceKey(contentHash, style))
}

func SetRenderedSource(contentHash, style, html string) {
	renderedSourceCache.Set(renderedSourceKey(contentHash, style), html)
}

func ClearRenderedSourceCache() {
	renderedSourceCache.Clear()
}
