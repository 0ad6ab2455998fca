package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskCache persists entries as JSON files under a root directory.
// Namespaced keys map onto subdirectories, so the layout mirrors the
// key families and stays inspectable:
//
//	<root>/v1/analysis/<hash>.json
//	<root>/v1/query/<hash>.json
type DiskCache struct {
	root       string
	defaultTTL time.Duration
}

// NewDiskCache creates a disk store rooted at dir. defaultTTL applies
// to keys outside the known families; family keys carry their own
// lifetimes.
func NewDiskCache(dir string, defaultTTL time.Duration) *DiskCache {
	if defaultTTL <= 0 {
		defaultTTL = AnalysisTTL
	}
	return &DiskCache{
		root:       dir,
		defaultTTL: defaultTTL,
	}
}

// storedResult is the on-disk envelope. SavedAt is informational; only
// ExpiresAt drives eviction.
type storedResult struct {
	Payload   []byte    `json:"payload"`
	SavedAt   time.Time `json:"saved_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get reads an entry, evicting it if expired. Entries that fail to
// parse are removed too; the caller recomputes instead of failing.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry storedResult
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Payload, true
}

// Set writes an entry, creating the family directory on first use. A
// non-positive ttl selects the key family's default lifetime.
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttlFor(key)
	}

	now := time.Now()
	entry := storedResult{
		Payload:   value,
		SavedAt:   now,
		ExpiresAt: now.Add(ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// Delete removes an entry. A missing entry is not an error.
func (c *DiskCache) Delete(key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes the whole store, all families included.
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.root)
}

// ttlFor resolves the default lifetime for a key by its family
// segment.
func (c *DiskCache) ttlFor(key string) time.Duration {
	switch {
	case strings.Contains(key, "/"+analysisFamily+"/"):
		return AnalysisTTL
	case strings.Contains(key, "/"+queryFamily+"/"):
		return QueryTTL
	}
	return c.defaultTTL
}

// path maps a namespaced key onto the file tree.
func (c *DiskCache) path(key string) string {
	return filepath.Join(c.root, filepath.FromSlash(key)) + ".json"
}
