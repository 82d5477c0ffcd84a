// Package cache stores generated group reports on disk, keyed by the
// source content they were generated from so edits invalidate naturally.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// Cache provides file-based caching for generated reports.
type Cache struct {
	dir     string
	enabled bool
}

// Entry represents a cached report.
type Entry struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// New creates a new cache instance.
func New(dir string, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Cache{dir: dir, enabled: true}, nil
}

// HashBytes computes a BLAKE3 hash of bytes as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ReportKey builds the cache key for one group's report: file path, group
// index, and the model that would generate it.
func ReportKey(path string, groupIndex int, model string) string {
	return fmt.Sprintf("report:%s:%d:%s", path, groupIndex, model)
}

// Get retrieves a cached report if the stored content hash matches.
func (c *Cache) Get(key, hash string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	data, err := os.ReadFile(c.keyPath(key))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if entry.Hash != hash {
		return nil, false
	}

	return entry.Data, true
}

// Set stores a report keyed to the content hash it was generated from.
func (c *Cache) Set(key, hash string, data []byte) error {
	if !c.enabled {
		return nil
	}

	entry := Entry{
		Hash:      hash,
		Timestamp: time.Now(),
		Data:      data,
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return os.WriteFile(c.keyPath(key), entryData, 0600)
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath converts a key to a filesystem path. Keys are hashed so path
// separators in file names cannot escape the cache dir.
func (c *Cache) keyPath(key string) string {
	hash := blake3.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}
