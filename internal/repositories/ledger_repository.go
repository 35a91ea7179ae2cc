// Package repositories provides the data access layer: the GORM-backed
// storage gateway and wallet resolution consumed by the ledger core.
package repositories

import (
	"context"
	"fmt"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates the GORM-backed storage gateway.
func NewLedgerRepository(db *gorm.DB) *ledgerRepository {
	if db == nil {
		panic("db is required")
	}
	return &ledgerRepository{db: db}
}

// InsertTransactions persists the batch in a single database transaction.
// Keys that already exist are skipped and their stored rows returned, so a
// replayed batch never double-applies.
func (r *ledgerRepository) InsertTransactions(ctx context.Context, batch map[string]*models.Transaction) (*ledger.TransactionInsertResult, error) {
	result := &ledger.TransactionInsertResult{
		Records:  make(map[string]*models.Transaction, len(batch)),
		Inserted: make(map[string]bool, len(batch)),
	}
	if len(batch) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Transaction
		if err := tx.Where("id IN ?", ids).Find(&existing).Error; err != nil {
			return err
		}
		for i := range existing {
			result.Records[existing[i].ID] = &existing[i]
		}

		toInsert := make([]*models.Transaction, 0, len(batch))
		for id, record := range batch {
			if _, ok := result.Records[id]; ok {
				continue
			}
			toInsert = append(toInsert, record)
		}
		if len(toInsert) > 0 {
			if err := tx.Create(&toInsert).Error; err != nil {
				return err
			}
		}
		for _, record := range toInsert {
			result.Records[record.ID] = record
			result.Inserted[record.ID] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction batch: %w", err)
	}
	return result, nil
}

// InsertTransfers persists transfer records with the same idempotent-skip
// and all-or-nothing semantics as InsertTransactions.
func (r *ledgerRepository) InsertTransfers(ctx context.Context, batch map[string]*models.Transfer) (*ledger.TransferInsertResult, error) {
	result := &ledger.TransferInsertResult{
		Records:  make(map[string]*models.Transfer, len(batch)),
		Inserted: make(map[string]bool, len(batch)),
	}
	if len(batch) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Transfer
		if err := tx.Where("id IN ?", ids).Find(&existing).Error; err != nil {
			return err
		}
		for i := range existing {
			result.Records[existing[i].ID] = &existing[i]
		}

		toInsert := make([]*models.Transfer, 0, len(batch))
		for id, record := range batch {
			if _, ok := result.Records[id]; ok {
				continue
			}
			toInsert = append(toInsert, record)
		}
		if len(toInsert) > 0 {
			if err := tx.Create(&toInsert).Error; err != nil {
				return err
			}
		}
		for _, record := range toInsert {
			result.Records[record.ID] = record
			result.Inserted[record.ID] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert transfer batch: %w", err)
	}
	return result, nil
}

// ReadBalance returns the authoritative stored balance for a wallet.
func (r *ledgerRepository) ReadBalance(ctx context.Context, walletID string) (decimal.Decimal, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Select("id", "balance").First(&wallet, "id = ?", walletID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, apperrors.ErrWalletNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
	}
	return wallet.Balance, nil
}

// UpdateBalance durably writes a wallet's balance.
func (r *ledgerRepository) UpdateBalance(ctx context.Context, walletID string, balance decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", balance)
	if result.Error != nil {
		return fmt.Errorf("failed to update balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrWalletNotFound
	}
	return nil
}

// Resolve implements ledger.WalletResolver: a pre-resolved record is
// returned as-is, otherwise the wallet is looked up by id or holder.
func (r *ledgerRepository) Resolve(ctx context.Context, ref ledger.WalletRef) (*models.Wallet, error) {
	if w := ref.Wallet(); w != nil {
		return w, nil
	}
	if id := ref.WalletID(); id != "" {
		return r.GetWallet(ctx, id)
	}
	if holderID := ref.HolderID(); holderID != "" {
		return r.GetWalletByHolder(ctx, holderID)
	}
	return nil, apperrors.ErrWalletNotFound
}

// CreateWallet inserts a wallet with a zero balance at the given scale.
func (r *ledgerRepository) CreateWallet(ctx context.Context, holderID string, scale int32) (*models.Wallet, error) {
	wallet := &models.Wallet{
		ID:       uuid.NewString(),
		HolderID: holderID,
		Balance:  decimal.Zero,
		Scale:    scale,
	}
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return wallet, nil
}

// GetWallet looks a wallet up by id.
func (r *ledgerRepository) GetWallet(ctx context.Context, id string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).First(&wallet, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

// GetWalletByHolder looks a wallet up by its holder.
func (r *ledgerRepository) GetWalletByHolder(ctx context.Context, holderID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("holder_id = ?", holderID).First(&wallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

// ListTransactions returns a wallet's transactions, newest first.
func (r *ledgerRepository) ListTransactions(ctx context.Context, walletID string, limit, offset int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// ListTransfers returns transfers where the wallet is either side, newest
// first.
func (r *ledgerRepository) ListTransfers(ctx context.Context, walletID string, limit, offset int) ([]models.Transfer, error) {
	var transfers []models.Transfer
	err := r.db.WithContext(ctx).
		Where("from_wallet_id = ? OR to_wallet_id = ?", walletID, walletID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}

// SumConfirmed recomputes a wallet's balance from its confirmed
// transactions. Used for audits against the cached value.
func (r *ledgerRepository) SumConfirmed(ctx context.Context, walletID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("wallet_id = ? AND confirmed = ?", walletID, true).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum confirmed transactions: %w", err)
	}
	return total, nil
}
