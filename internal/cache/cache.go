// Package cache provides an LRU cache with TTL and namespace
// invalidation. Entries are grouped by namespace (one per user); bumping
// a namespace's generation makes all of its entries unreachable, which
// stands in for prefix deletion an LRU cannot do.
package cache

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

type Cache[T any] struct {
	mu          sync.Mutex
	maxSize     int
	ttl         time.Duration
	items       map[string]*list.Element
	lru         *list.List
	generations map[string]uint64
}

type entry[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func New[T any](maxSize int, ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		maxSize:     maxSize,
		ttl:         ttl,
		items:       make(map[string]*list.Element),
		lru:         list.New(),
		generations: make(map[string]uint64),
	}
}

// Key builds a cache key scoped to the namespace's current generation.
func (c *Cache[T]) Key(namespace, suffix string) string {
	c.mu.Lock()
	gen := c.generations[namespace]
	c.mu.Unlock()
	return fmt.Sprintf("%s#%d#%s", namespace, gen, suffix)
}

// Invalidate makes every key previously built for the namespace stale.
func (c *Cache[T]) Invalidate(namespace string) {
	c.mu.Lock()
	c.generations[namespace]++
	c.mu.Unlock()
}

func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	e := elem.Value.(*entry[T])
	if time.Now().After(e.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return e.data, true
}

func (c *Cache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = e
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(e)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

func (c *Cache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *Cache[T]) removeElement(elem *list.Element) {
	e := elem.Value.(*entry[T])
	delete(c.items, e.key)
	c.lru.Remove(elem)
}

// CleanExpired removes expired entries and returns how many were dropped.
// Stale-generation entries age out the same way since nothing refreshes
// them.
func (c *Cache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry[T]).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	return len(toRemove)
}
