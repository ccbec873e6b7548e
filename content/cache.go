// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package content

import "sync"

// Cache is the session's local copy of one collection, newest first.
// It changes only at the reconcile points of Store: List replaces it,
// Create prepends, Delete removes and Update patches in place.
type Cache[P any] struct {
	mu      sync.RWMutex
	records []Record[P]
	loaded  bool
}

func (c *Cache[P]) Replace(records []Record[P]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append([]Record[P](nil), records...)
	c.loaded = true
}

// Snapshot returns a copy of the cached slice. Payload maps are shared and
// must be treated as read-only.
func (c *Cache[P]) Snapshot() []Record[P] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Record[P](nil), c.records...)
}

// Loaded reports whether a List has ever succeeded.
func (c *Cache[P]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Cache[P]) Find(id string) (Record[P], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record[P]{}, false
}

func (c *Cache[P]) Prepend(r Record[P]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append([]Record[P]{r}, c.records...)
}

func (c *Cache[P]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, r := range c.records {
		if r.ID == id {
			c.records = append(c.records[:i:i], c.records[i+1:]...)
			return true
		}
	}
	return false
}

// Patch replaces the payload of id with fn's result.
func (c *Cache[P]) Patch(id string, fn func(P) P) (Record[P], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, r := range c.records {
		if r.ID == id {
			c.records[i].Payload = fn(r.Payload)
			return c.records[i], true
		}
	}
	return Record[P]{}, false
}
