package cache

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryBalanceCache is a process-local balance cache. Safe for concurrent
// use; suitable for single-instance deployments and tests.
type MemoryBalanceCache struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
}

// NewMemoryBalanceCache creates an empty in-memory balance cache.
func NewMemoryBalanceCache() *MemoryBalanceCache {
	return &MemoryBalanceCache{balances: make(map[string]decimal.Decimal)}
}

func (c *MemoryBalanceCache) GetBalance(_ context.Context, walletID string) (decimal.Decimal, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bal, ok := c.balances[walletID]
	if !ok {
		return decimal.Zero, false, nil
	}
	return bal, true, nil
}

func (c *MemoryBalanceCache) SetBalance(_ context.Context, walletID string, balance decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[walletID] = balance
	return nil
}
