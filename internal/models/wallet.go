package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultScale is the number of decimal places used for wallets that do not
// configure their own.
const DefaultScale int32 = 2

// Wallet holds a fixed-scale decimal balance for a single holder. The
// balance column is the authoritative value; the core never mutates it
// directly, only through the bookkeeper/storage pair.
type Wallet struct {
	ID        string          `gorm:"primarykey;type:uuid" json:"id"`
	HolderID  string          `gorm:"index;not null" json:"holder_id"`
	Balance   decimal.Decimal `gorm:"type:numeric(32,16);not null" json:"balance"`
	Scale     int32           `gorm:"not null;default:2" json:"scale"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.Scale <= 0 {
		w.Scale = DefaultScale
	}
	return nil
}

// FormattedBalance renders the balance at the wallet's configured scale.
func (w *Wallet) FormattedBalance() string {
	return w.Balance.StringFixed(w.Scale)
}
