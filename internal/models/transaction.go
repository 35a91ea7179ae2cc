package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types. The sign of the amount is derived from the type when
// the record is assembled: deposits carry positive amounts, withdrawals
// negative ones.
const (
	TransactionTypeDeposit  = "deposit"
	TransactionTypeWithdraw = "withdraw"
)

// Transaction is an immutable signed balance-affecting record. The ID is
// the idempotency key: submitting a batch containing an ID that already
// exists in storage replays the stored row instead of inserting again.
// Only confirmed transactions count toward the wallet balance.
type Transaction struct {
	ID        string          `gorm:"primarykey;type:uuid" json:"id"`
	WalletID  string          `gorm:"index;not null" json:"wallet_id"`
	Type      string          `gorm:"not null" json:"type"`
	Amount    decimal.Decimal `gorm:"type:numeric(32,16);not null" json:"amount"`
	Confirmed bool            `gorm:"not null;default:true" json:"confirmed"`
	Meta      JSON            `gorm:"type:jsonb" json:"meta"`
	CreatedAt time.Time       `json:"created_at"`
}
