package services

import (
	"context"
	"fmt"
	"time"

	"centi/internal/models"
)

const (
	scoreHistoryDefaultLimit = 12
	recentScoresLimit        = 8
)

// scoreService is the facade over metrics aggregation, score calculation,
// and the persisted time series.
type scoreService struct {
	metrics   MetricsServicer
	snapshots SnapshotServicer
	accounts  AccountServicer
}

// NewScoreService creates a new ScoreServicer.
func NewScoreService(metrics MetricsServicer, snapshots SnapshotServicer, accounts AccountServicer) ScoreServicer {
	return &scoreService{metrics: metrics, snapshots: snapshots, accounts: accounts}
}

// GetCurrentScore returns the latest persisted weekly score when one
// exists, otherwise a live calculation from current metrics. The live path
// persists nothing.
func (s *scoreService) GetCurrentScore(ctx context.Context, userID string, now time.Time) (*CurrentScore, error) {
	latest, err := s.snapshots.GetLatestWeeklyScore(ctx, userID)
	if err != nil {
		return nil, err
	}

	if latest != nil {
		createdAt := latest.CreatedAt
		scoreDate := latest.ScoreDate
		return &CurrentScore{
			Score:         latest.TotalScore,
			Breakdown:     breakdownFromScore(latest),
			FinancialData: metricsFromScore(latest),
			LastUpdated:   &createdAt,
			ScoreDate:     &scoreDate,
			IsWeeklyScore: true,
		}, nil
	}

	metrics, err := s.metrics.GetFinancialMetrics(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	result := CalculateScore(metrics.NetWorth, metrics.TotalAssets, metrics.TotalLiabilities, metrics.MonthlyCashFlow)

	return &CurrentScore{
		Score:         result.TotalScore,
		Breakdown:     result.Breakdown,
		FinancialData: *metrics,
		IsWeeklyScore: false,
	}, nil
}

// GetScoreHistory returns up to limit weekly scores newest-first together
// with the trend over them.
func (s *scoreService) GetScoreHistory(ctx context.Context, userID string, limit int) (*ScoreHistory, error) {
	if limit <= 0 {
		limit = scoreHistoryDefaultLimit
	}
	scores, err := s.snapshots.ListWeeklyScores(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	return &ScoreHistory{
		Scores:      scores,
		Trend:       ScoreTrend(scores),
		TotalScores: len(scores),
	}, nil
}

// GetScoreTrend classifies the movement between the two most recent weekly
// scores.
func (s *scoreService) GetScoreTrend(ctx context.Context, userID string) (*Trend, error) {
	scores, err := s.snapshots.ListWeeklyScores(ctx, userID, 4)
	if err != nil {
		return nil, err
	}
	trend := ScoreTrend(scores)
	return &trend, nil
}

// GetGrowthAnalysis builds the detailed growth report over the user's full
// score history. Fewer than two scores yields HasGrowthData false, not an
// error.
func (s *scoreService) GetGrowthAnalysis(ctx context.Context, userID string, now time.Time) (*GrowthAnalysis, error) {
	scores, err := s.snapshots.ListWeeklyScores(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	if len(scores) < 2 {
		return &GrowthAnalysis{
			HasGrowthData: false,
			Message:       "Need at least 2 weekly scores to analyze growth",
		}, nil
	}

	recent := scores
	if len(recent) > recentScoresLimit {
		recent = recent[:recentScoresLimit]
	}

	comparison := monthlyComparison(scores, now)

	return &GrowthAnalysis{
		HasGrowthData:     true,
		CurrentScore:      scores[0].TotalScore,
		PreviousScore:     scores[1].TotalScore,
		Trend:             ScoreTrend(scores),
		MonthlyComparison: &comparison,
		Streaks:           Streaks(scores),
		Stats:             SummarizeScores(scores),
		RecentScores:      recent,
	}, nil
}

// monthlyComparison compares the average score of the calendar month
// containing now against the month before it. Months without scores
// average to zero.
func monthlyComparison(scores []models.WeeklyScore, now time.Time) MonthlyComparison {
	currentStart := FirstOfMonth(now)
	previousStart := PreviousMonthStart(now)

	var currentMonth, previousMonth []models.WeeklyScore
	for _, sc := range scores {
		switch {
		case !sc.ScoreDate.Before(currentStart):
			currentMonth = append(currentMonth, sc)
		case !sc.ScoreDate.Before(previousStart):
			previousMonth = append(previousMonth, sc)
		}
	}

	currentAvg := SummarizeScores(currentMonth).AverageScore
	previousAvg := SummarizeScores(previousMonth).AverageScore

	return MonthlyComparison{
		CurrentMonthAvg:  currentAvg,
		PreviousMonthAvg: previousAvg,
		Change:           currentAvg - previousAvg,
		ChangePercentage: GrowthPercentage(currentAvg, previousAvg),
	}
}

// GetScoreSummary returns the quick week-over-week summary. No history and
// a single first score are defined shapes, not errors.
func (s *scoreService) GetScoreSummary(ctx context.Context, userID string) (*ScoreSummary, error) {
	scores, err := s.snapshots.ListWeeklyScores(ctx, userID, 2)
	if err != nil {
		return nil, err
	}

	if len(scores) == 0 {
		return &ScoreSummary{
			HasData: false,
			Message: "No weekly scores yet. Your first score arrives after the next weekly run.",
		}, nil
	}

	latest := scores[0]
	createdAt := latest.CreatedAt
	scoreDate := latest.ScoreDate

	if len(scores) == 1 {
		return &ScoreSummary{
			HasData:       true,
			IsFirstScore:  true,
			CurrentScore:  latest.TotalScore,
			GrowthMessage: "This is your first weekly score. Growth tracking starts next week.",
			LastUpdated:   &createdAt,
			ScoreDate:     &scoreDate,
		}, nil
	}

	previous := scores[1]
	change := latest.TotalScore - previous.TotalScore

	return &ScoreSummary{
		HasData:          true,
		CurrentScore:     latest.TotalScore,
		PreviousScore:    previous.TotalScore,
		Change:           change,
		ChangePercentage: GrowthPercentage(float64(latest.TotalScore), float64(previous.TotalScore)),
		GrowthMessage:    growthMessage(change),
		LastUpdated:      &createdAt,
		ScoreDate:        &scoreDate,
	}, nil
}

func growthMessage(change int) string {
	switch {
	case change > 0:
		return fmt.Sprintf("Your score went up %d points this week!", change)
	case change < 0:
		return fmt.Sprintf("Your score dropped %d points this week.", -change)
	default:
		return "Your score held steady this week."
	}
}

// GetScoreStatus reports the overall state of a user's score data,
// including up to the last twelve weeks of history.
func (s *scoreService) GetScoreStatus(ctx context.Context, userID string) (*ScoreStatus, error) {
	scores, err := s.snapshots.ListWeeklyScores(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	if len(scores) == 0 {
		return &ScoreStatus{
			HasScores: false,
			Trend:     TrendInsufficientData,
		}, nil
	}

	history := scores
	if len(history) > scoreHistoryDefaultLimit {
		history = history[:scoreHistoryDefaultLimit]
	}

	stats := SummarizeScores(scores)
	trend := ScoreTrend(scores)
	latest := scores[0]
	createdAt := latest.CreatedAt
	scoreDate := latest.ScoreDate

	return &ScoreStatus{
		HasScores:    true,
		TotalScores:  len(scores),
		WeeksTracked: len(scores),
		LatestScore:  latest.TotalScore,
		LatestDate:   &scoreDate,
		BestScore:    stats.BestScore,
		WorstScore:   stats.WorstScore,
		AverageScore: stats.AverageScore,
		Trend:        trend.Direction,
		Change:       trend.Change,
		LastUpdated:  &createdAt,
		ScoreHistory: history,
	}, nil
}

// CalculateWeeklyScore aggregates current metrics, scores them, and upserts
// the row for the week containing now. Re-running within the same week
// overwrites that week's row.
func (s *scoreService) CalculateWeeklyScore(ctx context.Context, userID string, now time.Time) (*models.WeeklyScore, error) {
	metrics, err := s.metrics.GetFinancialMetrics(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	result := CalculateScore(metrics.NetWorth, metrics.TotalAssets, metrics.TotalLiabilities, metrics.MonthlyCashFlow)
	return s.snapshots.UpsertWeeklyScore(ctx, userID, MondayOf(now), metrics, result)
}

// GetStats returns current aggregates with month-over-month growth. The
// current month's snapshot is refreshed as a side effect so the comparison
// always runs against up-to-date figures. Liability growth prefers the
// balance history reconstruction over the snapshot figure when history
// exists, since snapshots miss intra-month account changes.
func (s *scoreService) GetStats(ctx context.Context, userID string, now time.Time) (*UserStats, error) {
	metrics, err := s.metrics.GetFinancialMetrics(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	current, err := s.snapshots.UpsertMonthlySnapshot(ctx, userID, FirstOfMonth(now), metrics)
	if err != nil {
		return nil, err
	}

	previous, err := s.snapshots.GetPreviousMonthSnapshot(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	growth := GrowthFromSnapshots(current, previous)

	// End of the previous month.
	asOf := FirstOfMonth(now).AddDate(0, 0, -1)
	histLiabilities, ok, err := s.accounts.LiabilityBalanceAsOf(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	if ok {
		growth.TotalLiabilities = GrowthPercentage(metrics.TotalLiabilities, histLiabilities)
	}

	return &UserStats{
		Totals:            *metrics,
		Growth:            growth,
		HasHistoricalData: previous != nil,
	}, nil
}

// breakdownFromScore rebuilds the per-component breakdown from a persisted
// weekly score row without recomputing, so the reported components always
// match what was stored.
func breakdownFromScore(w *models.WeeklyScore) ScoreBreakdown {
	return ScoreBreakdown{
		NetWorth:    ComponentScore{Score: w.NetWorthScore, Max: NetWorthWeight, Value: w.NetWorth},
		Assets:      ComponentScore{Score: w.AssetsScore, Max: AssetsWeight, Value: w.TotalAssets},
		Liabilities: ComponentScore{Score: w.LiabilitiesScore, Max: LiabilitiesWeight, Value: w.TotalLiabilities},
		CashFlow:    ComponentScore{Score: w.CashFlowScore, Max: CashFlowWeight, Value: w.MonthlyCashFlow},
	}
}

// metricsFromScore reports the financial figures frozen on a persisted
// weekly score row. Income and spending are not stored per score, so only
// their sum is available.
func metricsFromScore(w *models.WeeklyScore) FinancialMetrics {
	return FinancialMetrics{
		NetWorth:         w.NetWorth,
		TotalAssets:      w.TotalAssets,
		TotalLiabilities: w.TotalLiabilities,
		MonthlyCashFlow:  w.MonthlyCashFlow,
		TransactionCount: w.TransactionCount,
	}
}
