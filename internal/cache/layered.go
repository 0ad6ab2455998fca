package cache

import "time"

// LayeredCache fronts the persistent store with a hot in-memory layer.
// Repeat lookups within a run are served from memory; a restart only
// costs a disk read, never a repeat oracle call.
type LayeredCache struct {
	hot  Cache
	disk Cache
}

// NewLayeredCache builds the memory + disk pair the pipeline uses when
// caching is enabled.
func NewLayeredCache(hotTTL time.Duration, diskRoot string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		hot:  NewMemoryCache(hotTTL, 10*time.Minute),
		disk: NewDiskCache(diskRoot, diskTTL),
	}
}

// Get checks the hot layer first and backfills it on a disk hit. The
// backfill uses the hot layer's own default lifetime; the disk entry
// keeps the authoritative expiry.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.hot.Get(key); found {
		return val, true
	}

	val, found := c.disk.Get(key)
	if !found {
		return nil, false
	}
	_ = c.hot.Set(key, val, 0)
	return val, true
}

// Set writes disk first. The persistent layer is the one that survives
// a restart, so memory must never acknowledge what disk lost.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.disk.Set(key, value, ttl); err != nil {
		return err
	}
	return c.hot.Set(key, value, ttl)
}

// Delete removes the entry from both layers.
func (c *LayeredCache) Delete(key string) error {
	_ = c.hot.Delete(key)
	return c.disk.Delete(key)
}

// Clear empties both layers.
func (c *LayeredCache) Clear() error {
	_ = c.hot.Clear()
	return c.disk.Clear()
}
