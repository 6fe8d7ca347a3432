package models

import (
	"time"

	"centi/internal/uuid"

	"gorm.io/gorm"
)

// MonthlySnapshot is a period-keyed copy of a user's financial aggregates,
// one row per user per calendar month. SnapshotDate is always the first of
// the month. This is time-series data — no Base embed, no soft deletes.
type MonthlySnapshot struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;uniqueIndex:idx_monthly_user_period" json:"user_id"`
	SnapshotDate time.Time `gorm:"not null;uniqueIndex:idx_monthly_user_period" json:"snapshot_date"`

	NetWorth         float64 `gorm:"not null;default:0" json:"net_worth"`
	TotalAssets      float64 `gorm:"not null;default:0" json:"total_assets"`
	TotalLiabilities float64 `gorm:"not null;default:0" json:"total_liabilities"`
	MonthlyCashFlow  float64 `gorm:"not null;default:0" json:"monthly_cash_flow"`
	MonthlyIncome    float64 `gorm:"not null;default:0" json:"monthly_income"`
	MonthlySpending  float64 `gorm:"not null;default:0" json:"monthly_spending"`
	TransactionCount int     `gorm:"not null;default:0" json:"transaction_count"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (s *MonthlySnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New()
	}
	return nil
}
