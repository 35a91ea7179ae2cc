package ledger

import (
	"context"
	"fmt"

	"tally/internal/money"

	"github.com/shopspring/decimal"
)

// Bookkeeper maintains the cached per-wallet balance. The cache may only be
// written while the wallet's lock is held; the service guarantees that by
// calling the bookkeeper exclusively from locked sections.
type Bookkeeper struct {
	cache   BalanceCache
	gateway StorageGateway
}

// NewBookkeeper creates a Bookkeeper over the given cache and storage.
func NewBookkeeper(cache BalanceCache, gateway StorageGateway) *Bookkeeper {
	if cache == nil {
		panic("balance cache is required")
	}
	if gateway == nil {
		panic("storage gateway is required")
	}
	return &Bookkeeper{cache: cache, gateway: gateway}
}

// Balance returns the cached balance for the wallet, loading and priming it
// from authoritative storage on a cache miss.
func (b *Bookkeeper) Balance(ctx context.Context, walletID string) (decimal.Decimal, error) {
	if bal, ok, err := b.cache.GetBalance(ctx, walletID); err != nil {
		return decimal.Zero, fmt.Errorf("failed to read cached balance: %w", err)
	} else if ok {
		return bal, nil
	}

	bal, err := b.gateway.ReadBalance(ctx, walletID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read stored balance: %w", err)
	}
	if err := b.cache.SetBalance(ctx, walletID, bal); err != nil {
		return decimal.Zero, fmt.Errorf("failed to prime balance cache: %w", err)
	}
	return bal, nil
}

// Increase applies a delta to the cached balance optimistically: the new
// value is considered current before storage confirms it. On failure the
// caller must resynchronize via Sync.
func (b *Bookkeeper) Increase(ctx context.Context, walletID string, delta decimal.Decimal) (decimal.Decimal, error) {
	cur, err := b.Balance(ctx, walletID)
	if err != nil {
		return decimal.Zero, err
	}

	next := money.Add(cur, delta)
	if err := b.cache.SetBalance(ctx, walletID, next); err != nil {
		return decimal.Zero, fmt.Errorf("failed to update cached balance: %w", err)
	}
	return next, nil
}

// Sync forcibly overwrites the cached balance with a value read from
// durable storage, discarding any optimistic value. Used only for recovery
// after a persistence failure.
func (b *Bookkeeper) Sync(ctx context.Context, walletID string, authoritative decimal.Decimal) error {
	return b.cache.SetBalance(ctx, walletID, authoritative)
}
