package embed

import (
	"context"
	"sync"

	"github.com/shelfsearch/shelf-search/internal/pkg/hash"
)

// CacheMetrics is the interface for recording cache metrics. Keeps the cache
// decoupled from the metrics package.
type CacheMetrics interface {
	RecordCacheHit(cacheType string)
	RecordCacheMiss(cacheType string)
	UpdateCacheSize(cacheType string, size int)
}

// Cache caches embeddings by text hash with LRU eviction. Useful mainly for
// the remote embedder: repeated benchmark runs re-embed the same query and
// projection texts.
type Cache struct {
	mu      sync.Mutex
	inner   Embedder
	cache   map[string][]float32
	order   []string // LRU order, oldest first
	maxSize int
	metrics CacheMetrics
}

// NewCache wraps an embedder with an LRU cache of maxSize entries.
func NewCache(inner Embedder, maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 10000
	}

	return &Cache{
		inner:   inner,
		cache:   make(map[string][]float32),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

// SetMetrics sets the metrics recorder for this cache.
func (c *Cache) SetMetrics(metrics CacheMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = metrics
}

// Dimension returns the inner embedder's dimension.
func (c *Cache) Dimension() int {
	return c.inner.Dimension()
}

// Name returns the inner embedder's name: a cached index is still built by
// the same embedding function.
func (c *Cache) Name() string {
	return c.inner.Name()
}

// Embed serves cached vectors where possible and embeds only the misses.
// Output order matches input order.
func (c *Cache) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	missTexts := make([]string, 0, len(texts))
	missIdx := make([]int, 0, len(texts))

	c.mu.Lock()
	for i, text := range texts {
		if vec, ok := c.get(text); ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	c.mu.Unlock()

	if len(missTexts) == 0 {
		return out, nil
	}

	vectors, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for j, vec := range vectors {
		out[missIdx[j]] = vec
		c.set(missTexts[j], vec)
	}
	c.mu.Unlock()

	return out, nil
}

// get retrieves a copy of a cached embedding. Caller holds the lock.
func (c *Cache) get(text string) ([]float32, bool) {
	key := hash.SHA256String(text)

	vec, ok := c.cache[key]
	if !ok {
		if c.metrics != nil {
			c.metrics.RecordCacheMiss("embed")
		}
		return nil, false
	}

	if c.metrics != nil {
		c.metrics.RecordCacheHit("embed")
	}

	c.moveToEnd(key)

	out := make([]float32, len(vec))
	copy(out, vec)
	return out, true
}

// set stores a copy of an embedding, evicting the oldest entries at
// capacity. Caller holds the lock.
func (c *Cache) set(text string, vec []float32) {
	key := hash.SHA256String(text)

	stored := make([]float32, len(vec))
	copy(stored, vec)

	if _, exists := c.cache[key]; exists {
		c.cache[key] = stored
		c.moveToEnd(key)
		return
	}

	for len(c.cache) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.cache, oldest)
	}

	c.cache[key] = stored
	c.order = append(c.order, key)

	if c.metrics != nil {
		c.metrics.UpdateCacheSize("embed", len(c.cache))
	}
}

// moveToEnd moves a key to the most-recently-used position. Caller holds the
// lock.
func (c *Cache) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}

// Len returns the number of cached embeddings.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
