package services

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "centi/internal/errors"
	"centi/internal/models"
)

// metricsService computes financial aggregates from the ledger store.
type metricsService struct {
	db *gorm.DB
}

// NewMetricsService creates a new MetricsServicer.
func NewMetricsService(db *gorm.DB) MetricsServicer {
	return &metricsService{db: db}
}

// GetFinancialMetrics aggregates a user's accounts and ledger as of the
// given date. Store failures surface as a retryable error; they are never
// masked as zero aggregates, which would silently corrupt a score.
func (s *metricsService) GetFinancialMetrics(ctx context.Context, userID string, asOf time.Time) (*FinancialMetrics, error) {
	cashBalance, err := unlinkedCashBalance(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	var accounts []models.Account
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	var assets, liabilities float64
	for i := range accounts {
		if accounts[i].IsLiability() {
			liabilities += math.Abs(accounts[i].CurrentBalance)
		} else {
			assets += accounts[i].CurrentBalance
		}
	}
	assets += cashBalance

	monthStart := FirstOfMonth(asOf)

	var income float64
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ? AND amount > 0 AND date >= ?", userID, monthStart).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	// Spending keeps its negative sign; cash flow is income + spending.
	var spending float64
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ? AND amount < 0 AND date >= ?", userID, monthStart).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&spending).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	return &FinancialMetrics{
		NetWorth:         assets - liabilities,
		TotalAssets:      assets,
		TotalLiabilities: liabilities,
		MonthlyCashFlow:  income + spending,
		MonthlyIncome:    income,
		MonthlySpending:  spending,
		TransactionCount: int(count),
		CashBalance:      cashBalance,
	}, nil
}

// unlinkedCashBalance sums the transactions that do not belong to a linked
// account: those with no account id, and those whose account id no longer
// resolves to an account row. Orphaned transactions count as cash rather
// than being dropped.
func unlinkedCashBalance(ctx context.Context, db *gorm.DB, userID string) (float64, error) {
	var balance float64
	err := db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Where("account_id IS NULL OR account_id NOT IN (?)",
			db.Model(&models.Account{}).Select("account_id").Where("user_id = ?", userID)).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&balance).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return balance, nil
}
