package services

import (
	"context"
	"time"

	"centi/internal/models"
	"centi/internal/pagination"
)

// FinancialMetrics is a point-in-time aggregate of a user's ledger and
// accounts. MonthlySpending keeps the ledger sign convention: it is the sum
// of negative amounts and therefore negative (or zero), which makes
// MonthlyCashFlow a true sum of income and spending.
type FinancialMetrics struct {
	NetWorth         float64 `json:"net_worth"`
	TotalAssets      float64 `json:"total_assets"`
	TotalLiabilities float64 `json:"total_liabilities"`
	MonthlyCashFlow  float64 `json:"monthly_cash_flow"`
	MonthlyIncome    float64 `json:"monthly_income"`
	MonthlySpending  float64 `json:"monthly_spending"`
	TransactionCount int     `json:"transaction_count"`
	CashBalance      float64 `json:"cash_balance"`
}

// MetricsServicer computes point-in-time financial aggregates from the
// ledger. Pure read: no side effects.
type MetricsServicer interface {
	GetFinancialMetrics(ctx context.Context, userID string, asOf time.Time) (*FinancialMetrics, error)
}

// SnapshotServicer owns the persisted time series: monthly snapshots and
// weekly scores. Upserts are atomic at the store layer (insert-or-update on
// the user+period uniqueness constraint) so concurrent writers cannot
// produce duplicate period rows. Lookups return a nil row, not an error,
// when no snapshot exists for the requested period.
type SnapshotServicer interface {
	UpsertMonthlySnapshot(ctx context.Context, userID string, monthStart time.Time, metrics *FinancialMetrics) (*models.MonthlySnapshot, error)
	UpsertWeeklyScore(ctx context.Context, userID string, monday time.Time, metrics *FinancialMetrics, score ScoreResult) (*models.WeeklyScore, error)

	GetMonthlySnapshot(ctx context.Context, userID string, monthStart time.Time) (*models.MonthlySnapshot, error)
	GetPreviousMonthSnapshot(ctx context.Context, userID string, current time.Time) (*models.MonthlySnapshot, error)
	ListMonthlySnapshots(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.MonthlySnapshot], error)

	GetWeeklyScore(ctx context.Context, userID string, monday time.Time) (*models.WeeklyScore, error)
	GetLatestWeeklyScore(ctx context.Context, userID string) (*models.WeeklyScore, error)
	ListWeeklyScores(ctx context.Context, userID string, limit int) ([]models.WeeklyScore, error)

	CaptureMonthlySnapshot(ctx context.Context, userID string, now time.Time) (*models.MonthlySnapshot, error)
}

// AccountGrowth reports balance movement for one account (or the cash
// bucket) over a lookback window. Pointer fields are nil when no balance
// history exists for the window.
type AccountGrowth struct {
	BalanceChange     *float64 `json:"balance_change"`
	GrowthPercentage  *float64 `json:"growth_percentage"`
	CurrentBalance    float64  `json:"current_balance"`
	HistoricalBalance *float64 `json:"historical_balance"`
}

// TypeBreakdown summarizes the accounts of one type in a portfolio.
type TypeBreakdown struct {
	Count        int     `json:"count"`
	TotalBalance float64 `json:"total_balance"`
}

// AccountImpact reports one account's contribution to the portfolio: its
// share of total assets (asset accounts) or total liabilities (credit and
// loan accounts), and credit utilization where a credit limit is known.
type AccountImpact struct {
	AccountID         string   `json:"account_id"`
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	Balance           float64  `json:"balance"`
	Share             float64  `json:"share"`
	CreditUtilization *float64 `json:"credit_utilization,omitempty"`
}

// PortfolioAnalysis summarizes a user's account distribution.
type PortfolioAnalysis struct {
	TotalAccounts int                      `json:"total_accounts"`
	AccountTypes  map[string]TypeBreakdown `json:"account_types"`
	Accounts      []AccountImpact          `json:"accounts"`
	CashBalance   float64                  `json:"cash_balance"`
}

// AccountServicer covers account balance history and per-account analytics.
type AccountServicer interface {
	RecordBalanceHistory(ctx context.Context, userID string, day time.Time) (int, error)
	GetAccountGrowth(ctx context.Context, userID, accountID string, days int) (*AccountGrowth, error)
	AnalyzePortfolio(ctx context.Context, userID string) (*PortfolioAnalysis, error)
	LiabilityBalanceAsOf(ctx context.Context, userID string, day time.Time) (float64, bool, error)
}

// UserServicer is the user directory consumed by the weekly scheduler.
type UserServicer interface {
	ListActiveUsers(ctx context.Context) ([]models.User, error)
}

// CurrentScore is the facade shape for "what is my score right now": either
// the latest persisted weekly score or a live, unpersisted calculation.
type CurrentScore struct {
	Score         int              `json:"score"`
	Breakdown     ScoreBreakdown   `json:"breakdown"`
	FinancialData FinancialMetrics `json:"financial_data"`
	LastUpdated   *time.Time       `json:"last_updated"`
	ScoreDate     *time.Time       `json:"score_date,omitempty"`
	IsWeeklyScore bool             `json:"is_weekly_score"`
}

// ScoreHistory is a newest-first score list with its trend.
type ScoreHistory struct {
	Scores      []models.WeeklyScore `json:"scores"`
	Trend       Trend                `json:"trend"`
	TotalScores int                  `json:"total_scores"`
}

// MonthlyComparison compares average scores of the current and previous
// calendar months.
type MonthlyComparison struct {
	CurrentMonthAvg  float64 `json:"current_month_avg"`
	PreviousMonthAvg float64 `json:"previous_month_avg"`
	Change           float64 `json:"change"`
	ChangePercentage float64 `json:"change_percentage"`
}

// GrowthAnalysis is the detailed growth report. HasGrowthData is false with
// fewer than two scores; all other fields are then zero-valued.
type GrowthAnalysis struct {
	HasGrowthData     bool                 `json:"has_growth_data"`
	Message           string               `json:"message,omitempty"`
	CurrentScore      int                  `json:"current_score,omitempty"`
	PreviousScore     int                  `json:"previous_score,omitempty"`
	Trend             Trend                `json:"trend,omitempty"`
	MonthlyComparison *MonthlyComparison   `json:"monthly_comparison,omitempty"`
	Streaks           StreakSummary        `json:"streaks,omitempty"`
	Stats             ScoreStats           `json:"stats,omitempty"`
	RecentScores      []models.WeeklyScore `json:"recent_scores,omitempty"`
}

// ScoreSummary is the quick growth summary for UI display. HasData and
// IsFirstScore distinguish the "no history yet" shapes from real growth.
type ScoreSummary struct {
	HasData          bool       `json:"has_data"`
	IsFirstScore     bool       `json:"is_first_score,omitempty"`
	CurrentScore     int        `json:"current_score,omitempty"`
	PreviousScore    int        `json:"previous_score,omitempty"`
	Change           int        `json:"change"`
	ChangePercentage float64    `json:"change_percentage"`
	GrowthMessage    string     `json:"growth_message,omitempty"`
	Message          string     `json:"message,omitempty"`
	LastUpdated      *time.Time `json:"last_updated,omitempty"`
	ScoreDate        *time.Time `json:"score_date,omitempty"`
}

// ScoreStatus is the comprehensive status of a user's score data.
type ScoreStatus struct {
	HasScores    bool                 `json:"has_scores"`
	TotalScores  int                  `json:"total_scores"`
	WeeksTracked int                  `json:"weeks_tracked"`
	LatestScore  int                  `json:"latest_score,omitempty"`
	LatestDate   *time.Time           `json:"latest_score_date,omitempty"`
	BestScore    int                  `json:"best_score,omitempty"`
	WorstScore   int                  `json:"worst_score,omitempty"`
	AverageScore float64              `json:"average_score,omitempty"`
	Trend        TrendDirection       `json:"trend"`
	Change       int                  `json:"change"`
	LastUpdated  *time.Time           `json:"last_updated,omitempty"`
	ScoreHistory []models.WeeklyScore `json:"score_history,omitempty"`
}

// UserStats combines current aggregates with month-over-month growth.
type UserStats struct {
	Totals            FinancialMetrics `json:"totals"`
	Growth            SnapshotGrowth   `json:"growth"`
	HasHistoricalData bool             `json:"has_historical_data"`
}

// AccountUpsert carries a manually entered or provider-synced account write.
type AccountUpsert struct {
	AccountID        string
	Name             string
	OfficialName     string
	Type             models.AccountType
	Subtype          string
	Mask             string
	CurrentBalance   float64
	AvailableBalance float64
	CreditLimit      *float64
	Currency         string
}

// TransactionEntry is one ledger row to record. A nil AccountID targets the
// cash bucket.
type TransactionEntry struct {
	AccountID   *string
	Date        time.Time
	Amount      float64
	Vendor      string
	Description string
	Category    string
	Source      models.TransactionSource
}

// IngestServicer writes accounts and transactions into the ledger. Account
// writes are upserts on the provider business key; transaction writes are
// append-only.
type IngestServicer interface {
	UpsertAccount(ctx context.Context, userID string, in AccountUpsert) (*models.Account, error)
	RecordTransaction(ctx context.Context, userID string, in TransactionEntry) (*models.Transaction, error)
}

// ScoreServicer is the facade route handlers consume. Every method that can
// touch the store fails loudly with a retryable error; "no data yet" states
// are defined result shapes, never errors.
type ScoreServicer interface {
	GetCurrentScore(ctx context.Context, userID string, now time.Time) (*CurrentScore, error)
	GetScoreHistory(ctx context.Context, userID string, limit int) (*ScoreHistory, error)
	GetScoreTrend(ctx context.Context, userID string) (*Trend, error)
	GetGrowthAnalysis(ctx context.Context, userID string, now time.Time) (*GrowthAnalysis, error)
	GetScoreSummary(ctx context.Context, userID string) (*ScoreSummary, error)
	GetScoreStatus(ctx context.Context, userID string) (*ScoreStatus, error)
	CalculateWeeklyScore(ctx context.Context, userID string, now time.Time) (*models.WeeklyScore, error)
	GetStats(ctx context.Context, userID string, now time.Time) (*UserStats, error)
}
