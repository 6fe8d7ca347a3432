package models

import (
	"time"

	"centi/internal/uuid"

	"gorm.io/gorm"
)

// CashAccountID marks the synthetic cash bucket in balance history rows.
// A real empty string keeps the (user, account, day) unique index effective
// for cash rows, which NULL would not.
const CashAccountID = ""

// AccountBalanceHistory is a daily point-in-time copy of an account's
// balance fields, one row per (user, account, day). Rows are upserted within
// a day and never deleted.
type AccountBalanceHistory struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_balance_user_account_day" json:"user_id"`

	// AccountID is the provider business key, CashAccountID for cash.
	AccountID    string    `gorm:"not null;default:'';uniqueIndex:idx_balance_user_account_day" json:"account_id"`
	SnapshotDate time.Time `gorm:"not null;uniqueIndex:idx_balance_user_account_day" json:"snapshot_date"`

	CurrentBalance   float64 `gorm:"not null;default:0" json:"current_balance"`
	AvailableBalance float64 `gorm:"not null;default:0" json:"available_balance"`
	CreditLimit      float64 `gorm:"not null;default:0" json:"credit_limit"`

	// Account metadata frozen at snapshot time.
	AccountName    string `json:"account_name"`
	AccountType    string `json:"account_type"`
	AccountSubtype string `json:"account_subtype"`
	Currency       string `gorm:"not null;default:'USD'" json:"currency"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (h *AccountBalanceHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New()
	}
	return nil
}
