package catalog

import (
	"context"
	"sync"

	"github.com/anomalab/anomalab-go/internal/domain"
)

// Cache wraps a Catalog so each dataset id is resolved at most once for
// the lifetime of the cache. Failed resolutions are cached too: a
// missing dataset fails every run that depends on it without hitting
// the backend again. Scope one Cache to one batch and drop it when the
// batch completes.
type Cache struct {
	inner Catalog

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once    sync.Once
	dataset domain.Dataset
	err     error
}

func NewCache(inner Catalog) *Cache {
	return &Cache{inner: inner, entries: make(map[string]*cacheEntry)}
}

func (c *Cache) Resolve(ctx context.Context, id string) (domain.Dataset, error) {
	c.mu.Lock()
	entry, ok := c.entries[id]
	if !ok {
		entry = &cacheEntry{}
		c.entries[id] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.dataset, entry.err = c.inner.Resolve(ctx, id)
	})
	return entry.dataset, entry.err
}

func (c *Cache) List(ctx context.Context) ([]Entry, error) {
	return c.inner.List(ctx)
}
