// internal/cache/memory.go
package cache

import (
	"context"
	"sync"

	"family-ledger/internal/domain"
)

// MemoryCurrencyCache is an in-process CurrencyCache used when Redis is not configured.
type MemoryCurrencyCache struct {
	mu      sync.RWMutex
	entries map[string]domain.Currency
}

func NewMemoryCurrencyCache() *MemoryCurrencyCache {
	return &MemoryCurrencyCache{entries: make(map[string]domain.Currency)}
}

func (c *MemoryCurrencyCache) Get(_ context.Context, key string) (*domain.Currency, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	currency, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return &currency, true
}

func (c *MemoryCurrencyCache) Set(_ context.Context, key string, currency *domain.Currency) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = *currency
}
