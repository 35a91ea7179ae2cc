package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer statuses.
const (
	TransferStatusTransfer = "transfer"
	TransferStatusExchange = "exchange"
	TransferStatusRefund   = "refund"
	TransferStatusGift     = "gift"
)

// Transfer links exactly one withdraw and one deposit Transaction created
// together in the same batch. Discount and fee are always non-negative.
type Transfer struct {
	ID           string          `gorm:"primarykey;type:uuid" json:"id"`
	DepositID    string          `gorm:"index;not null" json:"deposit_id"`
	WithdrawID   string          `gorm:"index;not null" json:"withdraw_id"`
	Status       string          `gorm:"not null" json:"status"`
	FromWalletID string          `gorm:"index;not null" json:"from_wallet_id"`
	ToWalletID   string          `gorm:"index;not null" json:"to_wallet_id"`
	Discount     decimal.Decimal `gorm:"type:numeric(32,16);not null" json:"discount"`
	Fee          decimal.Decimal `gorm:"type:numeric(32,16);not null" json:"fee"`
	CreatedAt    time.Time       `json:"created_at"`
}
