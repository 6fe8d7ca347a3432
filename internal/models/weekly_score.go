package models

import (
	"time"

	"centi/internal/uuid"

	"gorm.io/gorm"
)

// WeeklyScore is one composite score row per user per ISO week, keyed by
// that week's Monday. Alongside the score components it freezes the raw
// financial figures the score was computed from.
type WeeklyScore struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_weekly_user_period" json:"user_id"`
	ScoreDate time.Time `gorm:"not null;uniqueIndex:idx_weekly_user_period" json:"score_date"`

	TotalScore       int `gorm:"not null;default:0" json:"total_score"`
	NetWorthScore    int `gorm:"not null;default:0" json:"net_worth_score"`
	AssetsScore      int `gorm:"not null;default:0" json:"assets_score"`
	LiabilitiesScore int `gorm:"not null;default:0" json:"liabilities_score"`
	CashFlowScore    int `gorm:"not null;default:0" json:"cash_flow_score"`

	NetWorth         float64 `gorm:"not null;default:0" json:"net_worth"`
	TotalAssets      float64 `gorm:"not null;default:0" json:"total_assets"`
	TotalLiabilities float64 `gorm:"not null;default:0" json:"total_liabilities"`
	MonthlyCashFlow  float64 `gorm:"not null;default:0" json:"monthly_cash_flow"`
	TransactionCount int     `gorm:"not null;default:0" json:"transaction_count"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (w *WeeklyScore) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New()
	}
	return nil
}
