package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/xxh3"

	tt "github.com/gnoverse/endlint/internal/types"
)

const (
	cacheFileName = "endlint_cache.msgpack"
	// bumped whenever Issue or the lint semantics change shape
	cacheVersion  = 1
	defaultMaxAge = 7 * 24 * time.Hour
)

type CacheEntry struct {
	ContentHash  uint64     `msgpack:"content_hash"`
	ConfigHash   uint64     `msgpack:"config_hash"`
	Issues       []tt.Issue `msgpack:"issues"`
	CreatedAt    time.Time  `msgpack:"created_at"`
	LastAccessed time.Time  `msgpack:"last_accessed"`
}

type cacheFile struct {
	Version int                   `msgpack:"version"`
	Entries map[string]CacheEntry `msgpack:"entries"`
}

// Cache keeps lint results keyed by file path and validated by a hash of
// the file content and of the rule configuration.
type Cache struct {
	CacheDir string
	entries  map[string]CacheEntry
	mutex    sync.RWMutex
	maxAge   time.Duration
	dirty    bool
}

func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir: cacheDir,
		entries:  make(map[string]CacheEntry),
		maxAge:   defaultMaxAge,
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	return cache, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.CacheDir, cacheFileName)
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil // cache file doesn't exist yet. This is fine.
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}

	var f cacheFile
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	if f.Version != cacheVersion || f.Entries == nil {
		return nil
	}
	c.entries = f.Entries
	return nil
}

// Save writes the cache to disk if it changed since it was loaded.
func (c *Cache) Save() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.dirty {
		return nil
	}

	data, err := msgpack.Marshal(cacheFile{Version: cacheVersion, Entries: c.entries})
	if err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	if err := os.WriteFile(c.path(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	c.dirty = false
	return nil
}

// Put records the issues found for filename with the given content.
func (c *Cache) Put(filename string, content []byte, configHash uint64, issues []tt.Issue) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.entries[filename] = CacheEntry{
		ContentHash:  xxh3.Hash(content),
		ConfigHash:   configHash,
		Issues:       issues,
		CreatedAt:    now,
		LastAccessed: now,
	}
	c.dirty = true
}

// Get returns the cached issues when the entry matches content and config.
func (c *Cache) Get(filename string, content []byte, configHash uint64) ([]tt.Issue, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return nil, false
	}

	if c.isEntryInvalid(entry, content, configHash) {
		delete(c.entries, filename)
		c.dirty = true
		return nil, false
	}

	entry.LastAccessed = time.Now()
	c.entries[filename] = entry

	return entry.Issues, true
}

func (c *Cache) isEntryInvalid(entry CacheEntry, content []byte, configHash uint64) bool {
	// too old
	if c.maxAge > 0 && time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}
	return entry.ConfigHash != configHash || entry.ContentHash != xxh3.Hash(content)
}

func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	c.entries = make(map[string]CacheEntry)
	c.dirty = true
	c.mutex.Unlock()

	_ = c.Save() // ignore error as this is a manual operation
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}
