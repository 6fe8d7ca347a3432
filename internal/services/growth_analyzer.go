package services

import (
	"math"
	"time"

	"centi/internal/models"
)

// MeaningfulGrowthThreshold is the default magnitude below which two values
// are considered noise and their growth reported as zero.
const MeaningfulGrowthThreshold = 10.0

// TrendDirection classifies the movement between two consecutive scores.
type TrendDirection string

const (
	TrendImproving        TrendDirection = "improving"
	TrendDeclining        TrendDirection = "declining"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

// GrowthPercentage computes the bounded, zero-safe percentage change from
// previous to current. A zero base yields 0.0 regardless of current: there
// is no meaningful growth from zero, and neither an error nor infinity is
// useful to a caller. The result is clamped to [-100, 100] to suppress
// misleading spikes from near-zero bases.
func GrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	pct := (current - previous) / math.Abs(previous) * 100
	return math.Max(-100.0, math.Min(100.0, pct))
}

// MeaningfulGrowth is GrowthPercentage with a noise gate: when both values
// have absolute magnitude below threshold, the growth is reported as zero
// rather than as a volatile percentage of a tiny base.
func MeaningfulGrowth(current, previous, threshold float64) float64 {
	if math.Abs(current) < threshold && math.Abs(previous) < threshold {
		return 0.0
	}
	return GrowthPercentage(current, previous)
}

// Trend describes the movement between the two most recent scores.
type Trend struct {
	Direction        TrendDirection `json:"trend"`
	Change           int            `json:"change"`
	ChangePercentage float64        `json:"change_percentage"`
	WeeksTracked     int            `json:"weeks_tracked"`
}

// ScoreTrend classifies a score history ordered newest-first. Fewer than
// two data points is a defined non-error result, not a failure.
func ScoreTrend(scores []models.WeeklyScore) Trend {
	if len(scores) < 2 {
		return Trend{
			Direction:    TrendInsufficientData,
			WeeksTracked: len(scores),
		}
	}

	latest := scores[0].TotalScore
	previous := scores[1].TotalScore
	change := latest - previous

	direction := TrendStable
	if change > 0 {
		direction = TrendImproving
	} else if change < 0 {
		direction = TrendDeclining
	}

	return Trend{
		Direction:        direction,
		Change:           change,
		ChangePercentage: GrowthPercentage(float64(latest), float64(previous)),
		WeeksTracked:     len(scores),
	}
}

// StreakSummary reports the longest runs of consecutive same-direction
// moves in a score history.
type StreakSummary struct {
	LongestGrowthStreak  int `json:"longest_growth_streak"`
	LongestDeclineStreak int `json:"longest_decline_streak"`
}

// Streaks walks a newest-first score history pairwise and tracks runs of
// consecutive improvements and declines. A flat comparison breaks both
// streak types.
func Streaks(scores []models.WeeklyScore) StreakSummary {
	var summary StreakSummary
	var growthRun, declineRun int

	for i := 0; i+1 < len(scores); i++ {
		newer := scores[i].TotalScore
		older := scores[i+1].TotalScore

		switch {
		case newer > older:
			growthRun++
			declineRun = 0
		case newer < older:
			declineRun++
			growthRun = 0
		default:
			growthRun = 0
			declineRun = 0
		}

		summary.LongestGrowthStreak = maxInt(summary.LongestGrowthStreak, growthRun)
		summary.LongestDeclineStreak = maxInt(summary.LongestDeclineStreak, declineRun)
	}

	return summary
}

// ScoreStats summarizes a score history for display.
type ScoreStats struct {
	TotalScores    int       `json:"total_scores"`
	BestScore      int       `json:"best_score"`
	BestScoreDate  time.Time `json:"best_score_date"`
	WorstScore     int       `json:"worst_score"`
	WorstScoreDate time.Time `json:"worst_score_date"`
	AverageScore   float64   `json:"average_score"`
	ScoreRange     int       `json:"score_range"`
}

// SummarizeScores reduces a score history to best, worst, and average.
// The average is rounded to one decimal for display. Empty input yields a
// zero ScoreStats.
func SummarizeScores(scores []models.WeeklyScore) ScoreStats {
	if len(scores) == 0 {
		return ScoreStats{}
	}

	best, worst := scores[0], scores[0]
	sum := 0
	for _, s := range scores {
		if s.TotalScore > best.TotalScore {
			best = s
		}
		if s.TotalScore < worst.TotalScore {
			worst = s
		}
		sum += s.TotalScore
	}

	avg := math.Round(float64(sum)/float64(len(scores))*10) / 10

	return ScoreStats{
		TotalScores:    len(scores),
		BestScore:      best.TotalScore,
		BestScoreDate:  best.ScoreDate,
		WorstScore:     worst.TotalScore,
		WorstScoreDate: worst.ScoreDate,
		AverageScore:   avg,
		ScoreRange:     best.TotalScore - worst.TotalScore,
	}
}

// SnapshotGrowth holds per-field growth percentages between two monthly
// snapshots.
type SnapshotGrowth struct {
	NetWorth         float64 `json:"net_worth"`
	TotalAssets      float64 `json:"total_assets"`
	TotalLiabilities float64 `json:"total_liabilities"`
	MonthlyCashFlow  float64 `json:"monthly_cash_flow"`
	MonthlyIncome    float64 `json:"monthly_income"`
	MonthlySpending  float64 `json:"monthly_spending"`
}

// GrowthFromSnapshots computes field-by-field growth between two monthly
// snapshots. A nil previous snapshot yields all zeros: no history is a
// defined state, not an error.
func GrowthFromSnapshots(current *models.MonthlySnapshot, previous *models.MonthlySnapshot) SnapshotGrowth {
	if current == nil || previous == nil {
		return SnapshotGrowth{}
	}
	return SnapshotGrowth{
		NetWorth:         GrowthPercentage(current.NetWorth, previous.NetWorth),
		TotalAssets:      GrowthPercentage(current.TotalAssets, previous.TotalAssets),
		TotalLiabilities: GrowthPercentage(current.TotalLiabilities, previous.TotalLiabilities),
		MonthlyCashFlow:  GrowthPercentage(current.MonthlyCashFlow, previous.MonthlyCashFlow),
		MonthlyIncome:    GrowthPercentage(current.MonthlyIncome, previous.MonthlyIncome),
		MonthlySpending:  GrowthPercentage(current.MonthlySpending, previous.MonthlySpending),
	}
}
