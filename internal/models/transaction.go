package models

import "time"

// TransactionSource identifies how a transaction entered the ledger.
type TransactionSource string

const (
	TransactionSourcePlaid  TransactionSource = "plaid"
	TransactionSourceCSV    TransactionSource = "csv"
	TransactionSourceManual TransactionSource = "manual"
)

// Transaction is an immutable-once-written ledger entry. The sign of Amount
// is the only income/expense discriminator: negative is an expense,
// positive is income. All aggregations rely on the sign convention.
type Transaction struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	// AccountID references Account.AccountID (the provider business key).
	// A nil value means the cash bucket. This is not a hard foreign key:
	// aggregation tolerates ids that no longer resolve to a live account.
	AccountID *string `gorm:"index" json:"account_id,omitempty"`

	Date        time.Time         `gorm:"not null;index" json:"date"`
	Amount      float64           `gorm:"not null" json:"amount"`
	Vendor      string            `gorm:"index" json:"vendor,omitempty"`
	Description string            `json:"description,omitempty"`
	Category    string            `gorm:"index" json:"category,omitempty"`
	Source      TransactionSource `gorm:"not null;default:'manual'" json:"source"`
}
