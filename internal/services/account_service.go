package services

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "centi/internal/errors"
	"centi/internal/models"
)

// accountService covers account balance history and per-account analytics.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

var balanceHistoryConflict = clause.OnConflict{
	Columns: []clause.Column{{Name: "user_id"}, {Name: "account_id"}, {Name: "snapshot_date"}},
	DoUpdates: clause.AssignmentColumns([]string{
		"current_balance", "available_balance", "credit_limit",
		"account_name", "account_type", "account_subtype", "currency",
	}),
}

// RecordBalanceHistory upserts one balance history row per active account
// plus a cash bucket row, all dated to the given day. Re-running within the
// same day overwrites the day's rows instead of duplicating them. Returns
// the number of rows written.
func (s *accountService) RecordBalanceHistory(ctx context.Context, userID string, day time.Time) (int, error) {
	snapshotDate := dateOnly(day)

	var accounts []models.Account
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&accounts).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	recorded := 0
	for i := range accounts {
		a := &accounts[i]
		row := models.AccountBalanceHistory{
			UserID:           userID,
			AccountID:        a.AccountID,
			SnapshotDate:     snapshotDate,
			CurrentBalance:   a.CurrentBalance,
			AvailableBalance: a.AvailableBalance,
			AccountName:      a.Name,
			AccountType:      string(a.Type),
			AccountSubtype:   a.Subtype,
			Currency:         a.Currency,
		}
		if a.CreditLimit != nil {
			row.CreditLimit = *a.CreditLimit
		}
		if err := s.db.WithContext(ctx).Clauses(balanceHistoryConflict).Create(&row).Error; err != nil {
			return recorded, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
		}
		recorded++
	}

	cash, err := unlinkedCashBalance(ctx, s.db, userID)
	if err != nil {
		return recorded, err
	}
	if cash != 0 {
		row := models.AccountBalanceHistory{
			UserID:           userID,
			AccountID:        models.CashAccountID,
			SnapshotDate:     snapshotDate,
			CurrentBalance:   cash,
			AvailableBalance: cash,
			AccountName:      "Cash",
			AccountType:      "cash",
			Currency:         "USD",
		}
		if err := s.db.WithContext(ctx).Clauses(balanceHistoryConflict).Create(&row).Error; err != nil {
			return recorded, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
		}
		recorded++
	}

	return recorded, nil
}

// GetAccountGrowth reports balance movement over the last days for one
// account, or for the cash bucket when accountID is models.CashAccountID.
// Without a history row at or before the window start the growth fields
// stay nil and only the current balance is reported.
func (s *accountService) GetAccountGrowth(ctx context.Context, userID, accountID string, days int) (*AccountGrowth, error) {
	current, err := s.currentBalance(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	cutoff := dateOnly(time.Now()).AddDate(0, 0, -days)

	var hist models.AccountBalanceHistory
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND account_id = ? AND snapshot_date <= ?", userID, accountID, cutoff).
		Order("snapshot_date DESC").
		First(&hist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &AccountGrowth{CurrentBalance: current}, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	change := current - hist.CurrentBalance

	// Percentage against the historical balance. Growth from a zero base is
	// reported as 100% unless nothing changed.
	var pct float64
	switch {
	case hist.CurrentBalance != 0:
		pct = change / math.Abs(hist.CurrentBalance) * 100
	case current != 0:
		pct = 100
	}

	histBalance := hist.CurrentBalance
	return &AccountGrowth{
		BalanceChange:     &change,
		GrowthPercentage:  &pct,
		CurrentBalance:    current,
		HistoricalBalance: &histBalance,
	}, nil
}

func (s *accountService) currentBalance(ctx context.Context, userID, accountID string) (float64, error) {
	if accountID == models.CashAccountID {
		return unlinkedCashBalance(ctx, s.db, userID)
	}

	var account models.Account
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND account_id = ?", userID, accountID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrAccountNotFound
		}
		return 0, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return account.CurrentBalance, nil
}

// AnalyzePortfolio summarizes a user's active accounts: breakdown by type,
// per-account share of total assets or liabilities, credit utilization
// where a limit is known, and the unlinked cash balance. Cash appears as a
// synthetic entry when it is nonzero.
func (s *accountService) AnalyzePortfolio(ctx context.Context, userID string) (*PortfolioAnalysis, error) {
	var accounts []models.Account
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("account_id ASC").
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	cash, err := unlinkedCashBalance(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	var assetTotal, liabilityTotal float64
	types := make(map[string]TypeBreakdown)
	for i := range accounts {
		a := &accounts[i]
		breakdown := types[string(a.Type)]
		breakdown.Count++
		breakdown.TotalBalance += a.CurrentBalance
		types[string(a.Type)] = breakdown

		if a.IsLiability() {
			liabilityTotal += math.Abs(a.CurrentBalance)
		} else {
			assetTotal += a.CurrentBalance
		}
	}
	assetTotal += cash

	impacts := make([]AccountImpact, 0, len(accounts)+1)
	for i := range accounts {
		a := &accounts[i]
		impact := AccountImpact{
			AccountID: a.AccountID,
			Name:      a.Name,
			Type:      string(a.Type),
			Balance:   a.CurrentBalance,
		}
		if a.IsLiability() {
			if liabilityTotal != 0 {
				impact.Share = math.Abs(a.CurrentBalance) / liabilityTotal * 100
			}
		} else if assetTotal != 0 {
			impact.Share = a.CurrentBalance / assetTotal * 100
		}
		if a.Type == models.AccountTypeCredit && a.CreditLimit != nil && *a.CreditLimit > 0 {
			utilization := math.Abs(a.CurrentBalance) / *a.CreditLimit * 100
			impact.CreditUtilization = &utilization
		}
		impacts = append(impacts, impact)
	}
	if cash != 0 {
		impact := AccountImpact{
			AccountID: models.CashAccountID,
			Name:      "Cash",
			Type:      "cash",
			Balance:   cash,
		}
		if assetTotal != 0 {
			impact.Share = cash / assetTotal * 100
		}
		impacts = append(impacts, impact)
	}

	return &PortfolioAnalysis{
		TotalAccounts: len(accounts),
		AccountTypes:  types,
		Accounts:      impacts,
		CashBalance:   cash,
	}, nil
}

// LiabilityBalanceAsOf reconstructs the user's total liability balance at
// the given day from balance history: the newest row at or before the day
// for each liability account, summed as magnitudes. The second return is
// false when no liability history exists at or before the day.
func (s *accountService) LiabilityBalanceAsOf(ctx context.Context, userID string, day time.Time) (float64, bool, error) {
	var rows []models.AccountBalanceHistory
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND snapshot_date <= ? AND account_type IN ?",
			userID, dateOnly(day), []string{string(models.AccountTypeCredit), string(models.AccountTypeLoan)}).
		Order("account_id ASC, snapshot_date DESC").
		Find(&rows).Error
	if err != nil {
		return 0, false, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	if len(rows) == 0 {
		return 0, false, nil
	}

	var total float64
	seen := make(map[string]bool, len(rows))
	for i := range rows {
		if seen[rows[i].AccountID] {
			continue
		}
		seen[rows[i].AccountID] = true
		total += math.Abs(rows[i].CurrentBalance)
	}
	return total, true, nil
}
