package ledger

import (
	"fmt"
	"time"

	"tally/internal/errors"
	"tally/internal/models"
	"tally/internal/money"

	"github.com/google/uuid"
)

// Assembler builds immutable Transaction and Transfer records from
// transient descriptors. Assembly is pure construction: it never touches
// storage or the balance cache.
type Assembler struct{}

// NewAssembler creates an Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// NewTransaction assigns a fresh idempotency key, derives the amount sign
// from the descriptor type and stamps the creation time.
func (a *Assembler) NewTransaction(d OperationDescriptor) (*models.Transaction, error) {
	amount := d.Amount
	switch d.Type {
	case models.TransactionTypeDeposit:
	case models.TransactionTypeWithdraw:
		amount = money.Negate(d.Amount)
	default:
		return nil, fmt.Errorf("unknown transaction type %q: %w", d.Type, errors.ErrAmountInvalid)
	}

	return &models.Transaction{
		ID:        uuid.NewString(),
		WalletID:  d.WalletID,
		Type:      d.Type,
		Amount:    amount,
		Confirmed: d.Confirmed,
		Meta:      d.Meta,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewTransfer assigns a fresh idempotency key and embeds the keys of the
// two already-built transactions. Discount and fee must be non-negative.
func (a *Assembler) NewTransfer(d TransferDescriptor) (*models.Transfer, error) {
	if d.Deposit == nil || d.Withdraw == nil {
		return nil, fmt.Errorf("transfer requires both a deposit and a withdraw transaction: %w", errors.ErrTransactionNotFound)
	}
	if d.Discount.IsNegative() || d.Fee.IsNegative() {
		return nil, fmt.Errorf("discount and fee must be non-negative: %w", errors.ErrAmountInvalid)
	}

	return &models.Transfer{
		ID:           uuid.NewString(),
		DepositID:    d.Deposit.ID,
		WithdrawID:   d.Withdraw.ID,
		Status:       d.Status,
		FromWalletID: d.FromWalletID,
		ToWalletID:   d.ToWalletID,
		Discount:     d.Discount,
		Fee:          d.Fee,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
