package ledger

import (
	"context"

	"tally/internal/errors"
	"tally/internal/models"
	"tally/internal/money"

	"github.com/shopspring/decimal"
)

// ConsistencyChecker validates amounts and available balance strictly
// before any mutation. A failed check leaves all state untouched.
type ConsistencyChecker struct {
	books *Bookkeeper
}

// NewConsistencyChecker creates a checker reading balances through the
// given bookkeeper.
func NewConsistencyChecker(books *Bookkeeper) *ConsistencyChecker {
	if books == nil {
		panic("bookkeeper is required")
	}
	return &ConsistencyChecker{books: books}
}

// CheckPositive fails with ErrAmountInvalid when amount <= 0.
func (c *ConsistencyChecker) CheckPositive(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return errors.ErrAmountInvalid
	}
	return nil
}

// CheckPotential verifies the wallet's available balance covers the
// required amount. A zero balance fails with ErrBalanceIsEmpty; a positive
// but insufficient one with ErrInsufficientFunds.
//
// The read must happen under the wallet's lock; the service guarantees no
// conflicting increase is in flight while this runs.
func (c *ConsistencyChecker) CheckPotential(ctx context.Context, w *models.Wallet, required decimal.Decimal) error {
	if required.Sign() <= 0 {
		return nil
	}

	available, err := c.books.Balance(ctx, w.ID)
	if err != nil {
		return err
	}

	if available.IsZero() {
		return errors.ErrBalanceIsEmpty
	}
	if money.Compare(available, required) < 0 {
		return errors.ErrInsufficientFunds
	}
	return nil
}
