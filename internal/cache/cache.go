// Package cache provides incremental compilation caching
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
)

// Cache maps each source file to the content hash it was last compiled
// with, so the driver can skip files whose (filename, hash) pair is
// unchanged.
type Cache struct {
	Hashes map[string]string `json:"hashes"`
	path   string
}

// New creates a new cache
func New(cachePath string) *Cache {
	return &Cache{
		Hashes: make(map[string]string),
		path:   cachePath,
	}
}

// Load loads the cache from disk
func Load(cachePath string) (*Cache, error) {
	c := New(cachePath)

	data, err := os.ReadFile(cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil // Empty cache is fine
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	if err := json.Unmarshal(data, &c.Hashes); err != nil {
		return nil, fmt.Errorf("failed to parse cache: %w", err)
	}

	return c, nil
}

// Save saves the cache to disk
func (c *Cache) Save() error {
	// Create cache directory if it doesn't exist
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(c.Hashes)
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}

	return nil
}

// HashContent returns the hex sha256 of file content, the hash half of
// the (filename, hash(content)) key.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// NeedsRegeneration reports whether content for filename differs from
// the hash recorded at its last successful compile.
func (c *Cache) NeedsRegeneration(filename string, content []byte) bool {
	cached, exists := c.Hashes[filename]
	return !exists || cached != HashContent(content)
}

// UpdateHash records content as filename's last-compiled state.
func (c *Cache) UpdateHash(filename string, content []byte) {
	c.Hashes[filename] = HashContent(content)
}

// Remove removes a file from the cache
func (c *Cache) Remove(filename string) {
	delete(c.Hashes, filename)
}

// Clear clears all entries from the cache
func (c *Cache) Clear() {
	c.Hashes = make(map[string]string)
}
