package policy

import (
	"testing"

	"tally/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestZeroPolicy(t *testing.T) {
	p := NewZero()
	w := &models.Wallet{ID: "w1", Scale: 2}

	assert.True(t, p.Discount(w, w).IsZero())
	assert.True(t, p.Fee(w, decimal.NewFromInt(100)).IsZero())
}

func TestPercentFee(t *testing.T) {
	p := NewPercentFee("1.5")
	w := &models.Wallet{ID: "w1", Scale: 2}

	fee := p.Fee(w, decimal.NewFromInt(200))
	assert.Equal(t, "3.00", fee.StringFixed(2))
}

func TestPercentFeeRoundsToWalletScale(t *testing.T) {
	p := NewPercentFee("0.1")
	w := &models.Wallet{ID: "w1", Scale: 2}

	// 0.1% of 3.33 is 0.00333, rounded at scale 2.
	fee := p.Fee(w, decimal.RequireFromString("3.33"))
	assert.Equal(t, "0.00", fee.StringFixed(2))
}

func TestPercentFeePanicsOnNegative(t *testing.T) {
	assert.Panics(t, func() { NewPercentFee("-1") })
	assert.Panics(t, func() { NewPercentFee("abc") })
}
