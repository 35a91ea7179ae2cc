// Package money provides exact decimal arithmetic for wallet balances and
// transaction amounts. All operations are precision-safe: operands with
// different scales are normalized to the larger scale before the operation,
// so no rounding ever happens implicitly.
package money

import "github.com/shopspring/decimal"

// Zero is the canonical zero amount.
var Zero = decimal.Zero

// Add returns a + b.
func Add(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b)
}

// Sub returns a - b.
func Sub(a, b decimal.Decimal) decimal.Decimal {
	return a.Sub(b)
}

// Negate returns -a.
func Negate(a decimal.Decimal) decimal.Decimal {
	return a.Neg()
}

// Compare returns -1 if a < b, 0 if a == b and 1 if a > b.
func Compare(a, b decimal.Decimal) int {
	return a.Cmp(b)
}

// FloorAtZero returns max(0, a-b). Used when applying a discount to a
// transfer amount: a discount larger than the amount clamps the result to
// zero instead of producing a negative amount.
func FloorAtZero(a, b decimal.Decimal) decimal.Decimal {
	diff := a.Sub(b)
	if diff.IsNegative() {
		return decimal.Zero
	}
	return diff
}

// Format renders an amount as a plain decimal string with exactly the given
// number of decimal places, matching the wallet's configured scale.
func Format(a decimal.Decimal, scale int32) string {
	return a.StringFixed(scale)
}
