// Package policy provides fee and discount providers for transfers.
// Implementations satisfy the ledger.PolicyProvider interface.
package policy

import (
	"tally/internal/models"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Zero applies no discount and no fee.
type Zero struct{}

// NewZero creates a Zero policy.
func NewZero() *Zero { return &Zero{} }

func (*Zero) Discount(_, _ *models.Wallet) decimal.Decimal { return decimal.Zero }

func (*Zero) Fee(_ *models.Wallet, _ decimal.Decimal) decimal.Decimal { return decimal.Zero }

// PercentFee charges a flat percentage of the transfer amount, rounded to
// the receiving wallet's scale. No discount is applied.
type PercentFee struct {
	percent decimal.Decimal
}

// NewPercentFee creates a PercentFee policy, e.g. NewPercentFee("1.5") for
// a 1.5% fee. Panics on a malformed percentage.
func NewPercentFee(percent string) *PercentFee {
	p, err := decimal.NewFromString(percent)
	if err != nil {
		panic("invalid fee percentage: " + percent)
	}
	if p.IsNegative() {
		panic("fee percentage must be non-negative")
	}
	return &PercentFee{percent: p}
}

func (*PercentFee) Discount(_, _ *models.Wallet) decimal.Decimal { return decimal.Zero }

func (f *PercentFee) Fee(to *models.Wallet, amount decimal.Decimal) decimal.Decimal {
	scale := to.Scale
	if scale <= 0 {
		scale = models.DefaultScale
	}
	return amount.Mul(f.percent).Div(oneHundred).RoundBank(scale)
}
