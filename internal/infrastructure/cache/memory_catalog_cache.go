package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/catalog"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

var _ catalog.Cache = (*MemoryCatalogCache)(nil)

type memoryItem struct {
	entries   []*entity.CatalogEntry
	expiresAt time.Time // cero = sin vencimiento
}

// MemoryCatalogCache caché local del proceso. No comparte estado entre instancias.
type MemoryCatalogCache struct {
	mu    sync.RWMutex
	items map[entity.Catalog]memoryItem
	now   func() time.Time
}

// NewMemoryCatalogCache construye la caché vacía.
func NewMemoryCatalogCache() *MemoryCatalogCache {
	return &MemoryCatalogCache{items: map[entity.Catalog]memoryItem{}, now: time.Now}
}

func (c *MemoryCatalogCache) Get(_ context.Context, cat entity.Catalog) ([]*entity.CatalogEntry, bool, error) {
	c.mu.RLock()
	item, ok := c.items[cat]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, cat)
		c.mu.Unlock()
		return nil, false, nil
	}
	return copyEntries(item.entries), true, nil
}

func (c *MemoryCatalogCache) Set(_ context.Context, cat entity.Catalog, entries []*entity.CatalogEntry, ttl time.Duration) error {
	item := memoryItem{entries: copyEntries(entries)}
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.items[cat] = item
	c.mu.Unlock()
	return nil
}

func (c *MemoryCatalogCache) Invalidate(_ context.Context, cat entity.Catalog) error {
	c.mu.Lock()
	delete(c.items, cat)
	c.mu.Unlock()
	return nil
}

// copyEntries evita que quien llama modifique lo guardado.
func copyEntries(in []*entity.CatalogEntry) []*entity.CatalogEntry {
	out := make([]*entity.CatalogEntry, len(in))
	for i, e := range in {
		cp := *e
		out[i] = &cp
	}
	return out
}
