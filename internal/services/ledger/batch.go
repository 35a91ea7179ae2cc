package ledger

import (
	"context"
	"fmt"

	"tally/internal/models"
	"tally/internal/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BatchProcessor persists record batches as all-or-nothing units and keeps
// the cached balance consistent with storage. Keys already present in
// storage are replayed from the stored rows and contribute nothing to the
// net delta.
type BatchProcessor struct {
	gateway StorageGateway
	books   *Bookkeeper
	log     *zap.Logger
}

// NewBatchProcessor creates a BatchProcessor. A nil logger defaults to a
// no-op logger.
func NewBatchProcessor(gateway StorageGateway, books *Bookkeeper, log *zap.Logger) *BatchProcessor {
	if gateway == nil {
		panic("storage gateway is required")
	}
	if books == nil {
		panic("bookkeeper is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BatchProcessor{gateway: gateway, books: books, log: log}
}

// MakeTransactions persists the batch atomically, then applies the net
// confirmed delta of the newly inserted records to each affected wallet:
// first optimistically to the cache, then durably to storage. If the
// durable write fails, the cache is resynchronized from the authoritative
// balance before the original error is surfaced.
//
// The caller must hold the lock of every wallet referenced by the batch.
func (p *BatchProcessor) MakeTransactions(ctx context.Context, batch map[string]*models.Transaction) (map[string]*models.Transaction, error) {
	res, err := p.gateway.InsertTransactions(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to persist transaction batch: %w", err)
	}

	deltas := make(map[string]decimal.Decimal)
	for id := range res.Inserted {
		tx := res.Records[id]
		if tx == nil || !tx.Confirmed {
			continue
		}
		deltas[tx.WalletID] = money.Add(deltas[tx.WalletID], tx.Amount)
	}

	for walletID, delta := range deltas {
		if delta.IsZero() {
			continue
		}

		next, err := p.books.Increase(ctx, walletID, delta)
		if err != nil {
			p.resync(ctx, walletID)
			return nil, err
		}

		if err := p.gateway.UpdateBalance(ctx, walletID, next); err != nil {
			p.resync(ctx, walletID)
			return nil, err
		}
	}

	return res.Records, nil
}

// MakeTransfers persists transfer records with the same idempotent-skip and
// all-or-nothing semantics. Balances are untouched: the balance effect
// already happened through the constituent transactions.
func (p *BatchProcessor) MakeTransfers(ctx context.Context, batch map[string]*models.Transfer) (map[string]*models.Transfer, error) {
	res, err := p.gateway.InsertTransfers(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to persist transfer batch: %w", err)
	}
	return res.Records, nil
}

// resync overwrites the cached balance with the authoritative stored value.
// Called while the wallet's lock is still held, so no later reader can
// observe the abandoned optimistic value.
func (p *BatchProcessor) resync(ctx context.Context, walletID string) {
	authoritative, err := p.gateway.ReadBalance(ctx, walletID)
	if err != nil {
		p.log.Error("failed to read authoritative balance during resync",
			zap.String("wallet_id", walletID), zap.Error(err))
		return
	}
	if err := p.books.Sync(ctx, walletID, authoritative); err != nil {
		p.log.Error("failed to resynchronize cached balance",
			zap.String("wallet_id", walletID), zap.Error(err))
		return
	}
	p.log.Warn("cached balance resynchronized from storage",
		zap.String("wallet_id", walletID))
}
