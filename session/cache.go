package session

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
)

// artifactEntry is one cached compile outcome.
type artifactEntry struct {
	Jar       string
	Timestamp time.Time
}

// ArtifactCache remembers which exact source text already compiled
// successfully and where its artifact landed, so an unchanged buffer can
// skip the bridge round-trip. Entries are gob files keyed by the xxh3 hash
// of the source, invalidated when the artifact disappears from disk.
type ArtifactCache struct {
	dir string
	mu  sync.Mutex
}

// NewArtifactCache opens (creating if needed) the cache directory. An empty
// dir defaults to ".kotpad-cache" under the current working directory.
func NewArtifactCache(dir string) (*ArtifactCache, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		dir = filepath.Join(cwd, ".kotpad-cache")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &ArtifactCache{dir: dir}, nil
}

// Get returns the cached artifact path for the exact source text, if the
// entry exists and the artifact is still on disk. A stale entry is removed.
func (c *ArtifactCache) Get(code string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.entryPath(code)
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	var entry artifactEntry
	if err := gob.NewDecoder(f).Decode(&entry); err != nil {
		_ = os.Remove(path)
		return "", false
	}
	if _, err := os.Stat(entry.Jar); err != nil {
		_ = os.Remove(path)
		return "", false
	}
	return entry.Jar, true
}

// Set records a successful compile of the exact source text.
func (c *ArtifactCache) Set(code string, jar string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Create(c.entryPath(code))
	if err != nil {
		return fmt.Errorf("failed to create cache entry: %w", err)
	}
	defer f.Close()

	return gob.NewEncoder(f).Encode(artifactEntry{Jar: jar, Timestamp: time.Now()})
}

// Clear removes every cache entry.
func (c *ArtifactCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := filepath.Glob(filepath.Join(c.dir, "*.cache"))
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.Remove(entry); err != nil {
			return fmt.Errorf("failed to remove cache entry %s: %w", entry, err)
		}
	}
	return nil
}

// Stats returns entry count and total size of the cache directory.
func (c *ArtifactCache) Stats() (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := filepath.Glob(filepath.Join(c.dir, "*.cache"))
	if err != nil {
		return nil, err
	}
	var totalSize int64
	for _, entry := range entries {
		if info, err := os.Stat(entry); err == nil {
			totalSize += info.Size()
		}
	}
	return map[string]any{
		"cache_dir":   c.dir,
		"cache_files": len(entries),
		"total_size":  totalSize,
	}, nil
}

func (c *ArtifactCache) entryPath(code string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%016x.cache", xxh3.HashString(code)))
}
