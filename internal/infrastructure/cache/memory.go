package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stockflow-api/internal/application/inventory"
)

var _ inventory.StockCache = (*MemoryStockCache)(nil)

type memoryEntry struct {
	version   int64
	qty       int
	expiresAt time.Time
}

// MemoryStockCache caché de stock de un solo proceso, con la misma regla de versiones que Redis.
// Se usa con STORAGE_DRIVER=memory cuando Redis está deshabilitado.
type MemoryStockCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryStockCache construye la caché. ttl <= 0 deja las entradas sin expiración.
func NewMemoryStockCache(ttl time.Duration) *MemoryStockCache {
	return &MemoryStockCache{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (c *MemoryStockCache) Get(_ context.Context, productID, storeID string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.live(stockKey(productID, storeID))
	if !ok {
		return 0, false, nil
	}
	return e.qty, true, nil
}

func (c *MemoryStockCache) Set(_ context.Context, productID, storeID string, version int64, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := stockKey(productID, storeID)
	if cur, ok := c.live(key); ok && cur.version >= version {
		return nil
	}
	e := memoryEntry{version: version, qty: qty}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *MemoryStockCache) Invalidate(_ context.Context, productID, storeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, stockKey(productID, storeID))
	return nil
}

// live devuelve la entrada si existe y no expiró. Requiere mu tomado.
func (c *MemoryStockCache) live(key string) (memoryEntry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}
