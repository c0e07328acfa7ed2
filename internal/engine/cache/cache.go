// Package cache provides the in-memory store of compiled artifacts.
package cache

import (
	"sync"

	"go.trai.ch/rnws/internal/core/domain"
)

// Cache maps fingerprints to compiled artifacts.
//
// Entries are only ever removed all at once by Clear. Lookups never trigger
// a compilation; that is the router's job.
type Cache struct {
	mu      sync.RWMutex
	entries map[domain.Fingerprint]domain.Artifact
	gen     uint64
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[domain.Fingerprint]domain.Artifact),
	}
}

// Get returns the artifact stored for fp.
func (c *Cache) Get(fp domain.Fingerprint) (domain.Artifact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	a, ok := c.entries[fp]
	return a, ok
}

// Put stores an artifact for fp, replacing any previous entry.
func (c *Cache) Put(fp domain.Fingerprint, a domain.Artifact) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fp] = a
}

// PutIfCurrent stores an artifact only if no Clear happened since gen was
// read from Generation. It reports whether the artifact was stored.
func (c *Cache) PutIfCurrent(gen uint64, fp domain.Fingerprint, a domain.Artifact) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}
	c.entries[fp] = a
	return true
}

// Generation returns a counter that Clear increments.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.gen
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.gen++
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
