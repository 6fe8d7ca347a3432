package models

// AccountType represents the type of account as reported by the data
// provider. The set is open: providers may introduce new types, so
// classification treats unknown types as assets.
type AccountType string

const (
	AccountTypeDepository AccountType = "depository"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeLoan       AccountType = "loan"
)

// Account represents a linked bank account. Cash has no Account row; it is
// aggregated directly from transactions with a nil account id.
type Account struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	// AccountID is the provider-side business key (e.g. the Plaid account
	// id). Transactions reference it, not the primary key.
	AccountID string `gorm:"uniqueIndex;not null" json:"account_id"`

	Name         string      `json:"name"`
	OfficialName string      `json:"official_name,omitempty"`
	Type         AccountType `gorm:"not null" json:"type"`
	Subtype      string      `json:"subtype,omitempty"`
	Mask         string      `json:"mask,omitempty"`

	CurrentBalance   float64  `gorm:"not null;default:0" json:"current_balance"`
	AvailableBalance float64  `gorm:"not null;default:0" json:"available_balance"`
	CreditLimit      *float64 `json:"credit_limit,omitempty"`
	Currency         string   `gorm:"not null;default:'USD'" json:"currency"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}

// IsLiability reports whether the account counts against net worth.
// Credit cards and loans are liabilities; everything else, including
// unknown provider types, defaults to asset.
func (a *Account) IsLiability() bool {
	return a.Type == AccountTypeCredit || a.Type == AccountTypeLoan
}
