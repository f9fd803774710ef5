package buffer

import (
	"sync"

	"github.com/gogpu/ggraph/geom"
)

// Cache is a Buffer that remembers which pixels hold valid rendered
// results.
//
// The valid region only grows through Computed, which callers invoke after
// a rectangle has been completely written, so a partially rendered cache
// is always self-consistent.
//
// Cache is safe for concurrent use.
type Cache struct {
	*Buffer

	mu        sync.Mutex
	valid     *geom.Region
	listeners []func(geom.Rect)
}

// NewCache creates an empty cache with the given extent.
func NewCache(extent geom.Rect) *Cache {
	return &Cache{
		Buffer: New(extent),
		valid:  geom.NewRegion(),
	}
}

// Computed marks r as valid and notifies the OnComputed listeners.
func (c *Cache) Computed(r geom.Rect) {
	if r.IsEmpty() {
		return
	}
	c.mu.Lock()
	c.valid.UnionRect(r)
	listeners := make([]func(geom.Rect), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(r)
	}
}

// Invalidate removes r from the valid region. Stored pixels are kept
// until they are overwritten.
func (c *Cache) Invalidate(r geom.Rect) {
	c.mu.Lock()
	c.valid.SubtractRect(r)
	c.mu.Unlock()
}

// Reset empties the valid region and clears every stored pixel.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.valid.Clear()
	c.mu.Unlock()

	c.Buffer.mu.Lock()
	c.Buffer.tiles = make(map[tileKey][]byte)
	c.Buffer.mu.Unlock()
}

// Valid returns a snapshot of the valid region.
func (c *Cache) Valid() *geom.Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valid.Clone()
}

// IsValid reports whether every pixel of r is valid.
func (c *Cache) IsValid(r geom.Rect) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valid.ContainsRect(r)
}

// Missing returns the part of r that is not yet valid.
func (c *Cache) Missing(r geom.Rect) *geom.Region {
	missing := geom.NewRegion(r)
	c.mu.Lock()
	missing.Subtract(c.valid)
	c.mu.Unlock()
	return missing
}

// OnComputed registers fn to be called with every rectangle passed to
// Computed.
func (c *Cache) OnComputed(fn func(geom.Rect)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}
