package ledger

import (
	"context"

	"tally/internal/models"

	"github.com/shopspring/decimal"
)

// Service defines the public ledger operations.
type Service interface {
	// Deposit credits a wallet. Amount must be positive.
	Deposit(ctx context.Context, ref WalletRef, amount decimal.Decimal, meta models.JSON, confirmed bool) (*models.Transaction, error)

	// Withdraw debits a wallet after checking available balance.
	Withdraw(ctx context.Context, ref WalletRef, amount decimal.Decimal, meta models.JSON, confirmed bool) (*models.Transaction, error)

	// ForceWithdraw debits a wallet without a sufficiency check; the balance
	// may go negative. Only positivity of the amount is enforced.
	ForceWithdraw(ctx context.Context, ref WalletRef, amount decimal.Decimal, meta models.JSON, confirmed bool) (*models.Transaction, error)

	// Transfer moves funds between two wallets after checking the source's
	// available balance against the effective amount plus fee.
	Transfer(ctx context.Context, from, to WalletRef, amount decimal.Decimal, meta models.JSON, status string) (*models.Transfer, error)

	// ForceTransfer moves funds between two wallets without a sufficiency
	// check on the source.
	ForceTransfer(ctx context.Context, from, to WalletRef, amount decimal.Decimal, meta models.JSON, status string) (*models.Transfer, error)

	// Balance returns the current cached balance of a wallet.
	Balance(ctx context.Context, ref WalletRef) (decimal.Decimal, error)
}

// TransactionInsertResult reports the outcome of an idempotent transaction
// batch insert. Records maps every submitted uuid to its persisted row:
// freshly inserted rows for new keys, previously stored rows for replayed
// keys. Inserted holds the uuids that were actually written by this call.
type TransactionInsertResult struct {
	Records  map[string]*models.Transaction
	Inserted map[string]bool
}

// TransferInsertResult is the transfer-record counterpart of
// TransactionInsertResult.
type TransferInsertResult struct {
	Records  map[string]*models.Transfer
	Inserted map[string]bool
}

// StorageGateway is the durable storage contract the core relies on. Both
// insert methods are atomic: either every new row in the batch commits or
// none does. Rows whose uuid already exists are skipped, not errors.
type StorageGateway interface {
	InsertTransactions(ctx context.Context, batch map[string]*models.Transaction) (*TransactionInsertResult, error)
	InsertTransfers(ctx context.Context, batch map[string]*models.Transfer) (*TransferInsertResult, error)
	ReadBalance(ctx context.Context, walletID string) (decimal.Decimal, error)
	UpdateBalance(ctx context.Context, walletID string, balance decimal.Decimal) error
}

// BalanceCache stores the cached per-wallet balance. Implementations must
// treat a missing key as (zero, false, nil), not an error.
type BalanceCache interface {
	GetBalance(ctx context.Context, walletID string) (decimal.Decimal, bool, error)
	SetBalance(ctx context.Context, walletID string, balance decimal.Decimal) error
}

// PolicyProvider computes transfer adjustments. Both results must be
// non-negative; the assembler rejects negative values.
type PolicyProvider interface {
	Discount(from, to *models.Wallet) decimal.Decimal
	Fee(to *models.Wallet, amount decimal.Decimal) decimal.Decimal
}

// WalletResolver resolves a WalletRef to its canonical wallet record.
type WalletResolver interface {
	Resolve(ctx context.Context, ref WalletRef) (*models.Wallet, error)
}
