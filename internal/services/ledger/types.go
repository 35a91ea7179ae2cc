package ledger

import (
	"tally/internal/models"

	"github.com/shopspring/decimal"
)

// WalletRef is an explicit reference to a wallet: by id, by holder, or an
// already-resolved record. All downstream code operates only on the
// canonical wallet returned by WalletResolver.Resolve.
type WalletRef struct {
	walletID string
	holderID string
	wallet   *models.Wallet
}

// RefByID references a wallet by its identity key.
func RefByID(walletID string) WalletRef {
	return WalletRef{walletID: walletID}
}

// RefByHolder references a holder's wallet.
func RefByHolder(holderID string) WalletRef {
	return WalletRef{holderID: holderID}
}

// RefOf wraps an already-resolved wallet record.
func RefOf(w *models.Wallet) WalletRef {
	return WalletRef{wallet: w}
}

// WalletID returns the referenced wallet id, if any.
func (r WalletRef) WalletID() string { return r.walletID }

// HolderID returns the referenced holder id, if any.
func (r WalletRef) HolderID() string { return r.holderID }

// Wallet returns the pre-resolved wallet record, if any.
func (r WalletRef) Wallet() *models.Wallet { return r.wallet }

// OperationDescriptor is the transient input for building a Transaction.
// Amount is the raw positive magnitude; the assembler derives the sign from
// Type. Descriptors are created and consumed within a single operation and
// are never persisted.
type OperationDescriptor struct {
	WalletID  string
	Type      string
	Amount    decimal.Decimal
	Confirmed bool
	Meta      models.JSON
}

// TransferDescriptor is the transient input for building a Transfer from
// two already-built transactions.
type TransferDescriptor struct {
	FromWalletID string
	ToWalletID   string
	Status       string
	Discount     decimal.Decimal
	Fee          decimal.Decimal
	Deposit      *models.Transaction
	Withdraw     *models.Transaction
}
