package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"kb/internal/port"
)

// EmbeddingCache holds recent query embeddings keyed by model and text.
// Query vectors never go stale with store mutations, so entries only
// leave by TTL or LRU eviction.
type EmbeddingCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	vector    []float32
	timestamp time.Time
}

// NewEmbeddingCache creates a cache. Non-positive arguments select
// sensible defaults.
func NewEmbeddingCache(maxSize int, ttl time.Duration) *EmbeddingCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &EmbeddingCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(model, text string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(hash[:16])
}

// Get returns the cached vector for (model, text) if present and fresh.
func (c *EmbeddingCache) Get(model, text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(model, text)
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}
	c.moveToEnd(key)
	return entry.vector, true
}

// Put stores a vector, evicting the least recently used entry when full.
func (c *EmbeddingCache) Put(model, text string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(model, text)
	if _, ok := c.entries[key]; ok {
		c.entries[key] = &cacheEntry{vector: vector, timestamp: time.Now()}
		c.moveToEnd(key)
		return
	}
	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = &cacheEntry{vector: vector, timestamp: time.Now()}
	c.order = append(c.order, key)
}

// Size returns the current number of cached vectors.
func (c *EmbeddingCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *EmbeddingCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *EmbeddingCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *EmbeddingCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// CachedEmbedder wraps an embedder with the cache for query embeddings.
// Bulk Embed calls pass through: ingest texts rarely repeat.
type CachedEmbedder struct {
	embedder port.Embedder
	cache    *EmbeddingCache
}

func NewCachedEmbedder(embedder port.Embedder, cache *EmbeddingCache) *CachedEmbedder {
	return &CachedEmbedder{embedder: embedder, cache: cache}
}

func (e *CachedEmbedder) Embed(texts []string) ([][]float32, error) {
	return e.embedder.Embed(texts)
}

func (e *CachedEmbedder) EmbedQuery(text string) ([]float32, error) {
	if vec, hit := e.cache.Get(e.embedder.ModelName(), text); hit {
		return vec, nil
	}
	vec, err := e.embedder.EmbedQuery(text)
	if err != nil {
		return nil, err
	}
	e.cache.Put(e.embedder.ModelName(), text, vec)
	return vec, nil
}

func (e *CachedEmbedder) Dimensions() int {
	return e.embedder.Dimensions()
}

func (e *CachedEmbedder) ModelName() string {
	return e.embedder.ModelName()
}
