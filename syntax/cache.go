package syntax

import (
	"fmt"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/meysamhadeli/kotpad/syntax/models"
)

const defaultHighlightCacheSize = 128

// HighlightCache memoizes tokenization results keyed by the source text and
// rule fingerprint. Tokenization is pure, so identical inputs always yield
// identical StyledText and the cache can never go stale within a rule
// generation.
type HighlightCache struct {
	mu      sync.RWMutex
	entries map[uint64]models.StyledText
	maxSize int
	hits    int64
	misses  int64
}

// NewHighlightCache creates an empty cache bounded to maxSize entries.
// A maxSize <= 0 uses the default bound.
func NewHighlightCache(maxSize int) *HighlightCache {
	if maxSize <= 0 {
		maxSize = defaultHighlightCacheSize
	}
	return &HighlightCache{
		entries: make(map[uint64]models.StyledText),
		maxSize: maxSize,
	}
}

// Tokenize returns the scan-mode classification for text under rules,
// computing and memoizing it on first use.
func (c *HighlightCache) Tokenize(text string, rules *RuleSet) models.StyledText {
	key := cacheKey(text, rules)

	c.mu.RLock()
	st, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return st
	}

	st = Scan(text, rules)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++
	if len(c.entries) >= c.maxSize {
		// Rare full flush keeps the bound without tracking recency.
		c.entries = make(map[uint64]models.StyledText)
	}
	c.entries[key] = st
	return st
}

// Clear drops all memoized entries and resets the counters.
func (c *HighlightCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]models.StyledText)
	c.hits = 0
	c.misses = 0
}

// Stats returns hit/miss counters and the current entry count.
func (c *HighlightCache) Stats() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]any{
		"entries": len(c.entries),
		"hits":    c.hits,
		"misses":  c.misses,
	}
}

func cacheKey(text string, rules *RuleSet) uint64 {
	return xxh3.HashString(fmt.Sprintf("%016x\x00%s", rules.Fingerprint(), text))
}
