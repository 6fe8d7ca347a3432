package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "centi/internal/errors"
	"centi/internal/models"
	"centi/internal/pagination"
)

// snapshotService owns the monthly snapshot and weekly score time series.
type snapshotService struct {
	db      *gorm.DB
	metrics MetricsServicer
}

// NewSnapshotService creates a new SnapshotServicer.
func NewSnapshotService(db *gorm.DB, metrics MetricsServicer) SnapshotServicer {
	return &snapshotService{db: db, metrics: metrics}
}

// monthlyConflict is the upsert target for monthly snapshots. The period
// uniqueness constraint, not a check-then-write, is what guarantees at most
// one row per (user, month) under concurrent writers.
var monthlyConflict = clause.OnConflict{
	Columns: []clause.Column{{Name: "user_id"}, {Name: "snapshot_date"}},
	DoUpdates: clause.AssignmentColumns([]string{
		"net_worth", "total_assets", "total_liabilities",
		"monthly_cash_flow", "monthly_income", "monthly_spending",
		"transaction_count",
	}),
}

var weeklyConflict = clause.OnConflict{
	Columns: []clause.Column{{Name: "user_id"}, {Name: "score_date"}},
	DoUpdates: clause.AssignmentColumns([]string{
		"total_score", "net_worth_score", "assets_score",
		"liabilities_score", "cash_flow_score",
		"net_worth", "total_assets", "total_liabilities",
		"monthly_cash_flow", "transaction_count",
	}),
}

// UpsertMonthlySnapshot writes or overwrites the snapshot row for the month
// containing monthStart. On conflict only the measured fields change; row
// identity and created_at stay untouched.
func (s *snapshotService) UpsertMonthlySnapshot(ctx context.Context, userID string, monthStart time.Time, metrics *FinancialMetrics) (*models.MonthlySnapshot, error) {
	period := FirstOfMonth(monthStart)

	row := models.MonthlySnapshot{
		UserID:           userID,
		SnapshotDate:     period,
		NetWorth:         metrics.NetWorth,
		TotalAssets:      metrics.TotalAssets,
		TotalLiabilities: metrics.TotalLiabilities,
		MonthlyCashFlow:  metrics.MonthlyCashFlow,
		MonthlyIncome:    metrics.MonthlyIncome,
		MonthlySpending:  metrics.MonthlySpending,
		TransactionCount: metrics.TransactionCount,
	}

	if err := s.db.WithContext(ctx).Clauses(monthlyConflict).Create(&row).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	// Re-read so the caller sees the stored row's identity and created_at,
	// which differ from the insert candidate when the upsert updated.
	return s.GetMonthlySnapshot(ctx, userID, period)
}

// UpsertWeeklyScore writes or overwrites the score row for the week whose
// Monday contains monday.
func (s *snapshotService) UpsertWeeklyScore(ctx context.Context, userID string, monday time.Time, metrics *FinancialMetrics, score ScoreResult) (*models.WeeklyScore, error) {
	period := MondayOf(monday)

	row := models.WeeklyScore{
		UserID:           userID,
		ScoreDate:        period,
		TotalScore:       score.TotalScore,
		NetWorthScore:    score.NetWorthScore,
		AssetsScore:      score.AssetsScore,
		LiabilitiesScore: score.LiabilitiesScore,
		CashFlowScore:    score.CashFlowScore,
		NetWorth:         metrics.NetWorth,
		TotalAssets:      metrics.TotalAssets,
		TotalLiabilities: metrics.TotalLiabilities,
		MonthlyCashFlow:  metrics.MonthlyCashFlow,
		TransactionCount: metrics.TransactionCount,
	}

	if err := s.db.WithContext(ctx).Clauses(weeklyConflict).Create(&row).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	return s.GetWeeklyScore(ctx, userID, period)
}

// GetMonthlySnapshot returns the snapshot for the month containing
// monthStart, or nil when none exists.
func (s *snapshotService) GetMonthlySnapshot(ctx context.Context, userID string, monthStart time.Time) (*models.MonthlySnapshot, error) {
	var row models.MonthlySnapshot
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND snapshot_date = ?", userID, FirstOfMonth(monthStart)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return &row, nil
}

// GetPreviousMonthSnapshot returns the snapshot of the month before the one
// containing current, or nil when none exists.
func (s *snapshotService) GetPreviousMonthSnapshot(ctx context.Context, userID string, current time.Time) (*models.MonthlySnapshot, error) {
	return s.GetMonthlySnapshot(ctx, userID, PreviousMonthStart(current))
}

// ListMonthlySnapshots returns a paginated, newest-first list of monthly
// snapshots.
func (s *snapshotService) ListMonthlySnapshots(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.MonthlySnapshot], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.MonthlySnapshot{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	var rows []models.MonthlySnapshot
	if err := base.Order("snapshot_date DESC").
		Scopes(pagination.Paginate(page)).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	result := pagination.NewPageResponse(rows, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetWeeklyScore returns the score row for the week containing monday, or
// nil when none exists.
func (s *snapshotService) GetWeeklyScore(ctx context.Context, userID string, monday time.Time) (*models.WeeklyScore, error) {
	var row models.WeeklyScore
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND score_date = ?", userID, MondayOf(monday)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return &row, nil
}

// GetLatestWeeklyScore returns the most recent score row, or nil when the
// user has none.
func (s *snapshotService) GetLatestWeeklyScore(ctx context.Context, userID string) (*models.WeeklyScore, error) {
	var row models.WeeklyScore
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("score_date DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return &row, nil
}

// ListWeeklyScores returns up to limit score rows newest-first. A limit of
// zero or less returns the full history.
func (s *snapshotService) ListWeeklyScores(ctx context.Context, userID string, limit int) ([]models.WeeklyScore, error) {
	q := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("score_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []models.WeeklyScore
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return rows, nil
}

// CaptureMonthlySnapshot aggregates the user's current metrics and upserts
// the snapshot row for the month containing now.
func (s *snapshotService) CaptureMonthlySnapshot(ctx context.Context, userID string, now time.Time) (*models.MonthlySnapshot, error) {
	metrics, err := s.metrics.GetFinancialMetrics(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return s.UpsertMonthlySnapshot(ctx, userID, FirstOfMonth(now), metrics)
}
