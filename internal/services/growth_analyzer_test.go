package services

import (
	"testing"
	"time"

	"centi/internal/models"
)

func scoreHistory(scores ...int) []models.WeeklyScore {
	// Newest first, one week apart.
	monday := MondayOf(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	out := make([]models.WeeklyScore, len(scores))
	for i, s := range scores {
		out[i] = models.WeeklyScore{
			TotalScore: s,
			ScoreDate:  monday.AddDate(0, 0, -7*i),
		}
	}
	return out
}

func TestGrowthPercentage(t *testing.T) {
	tests := []struct {
		name              string
		current, previous float64
		want              float64
	}{
		{"zero_base_yields_zero", 500, 0, 0},
		{"zero_base_zero_current", 0, 0, 0},
		{"simple_growth", 150, 100, 50},
		{"simple_decline", 50, 100, -50},
		{"negative_base_uses_magnitude", -50, -100, 50},
		{"clamped_positive", 5000, 100, 100},
		{"clamped_negative", -5000, 100, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GrowthPercentage(tt.current, tt.previous); got != tt.want {
				t.Errorf("GrowthPercentage(%v, %v) = %v, want %v", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestMeaningfulGrowth(t *testing.T) {
	t.Run("both_below_threshold_is_noise", func(t *testing.T) {
		if got := MeaningfulGrowth(5, 2, MeaningfulGrowthThreshold); got != 0 {
			t.Errorf("expected 0 for sub-threshold values, got %v", got)
		}
	})

	t.Run("one_above_threshold_reports_growth", func(t *testing.T) {
		if got := MeaningfulGrowth(50, 25, MeaningfulGrowthThreshold); got != 100 {
			t.Errorf("expected 100, got %v", got)
		}
	})
}

func TestScoreTrend(t *testing.T) {
	t.Run("insufficient_data", func(t *testing.T) {
		trend := ScoreTrend(scoreHistory(42))
		if trend.Direction != TrendInsufficientData {
			t.Errorf("direction = %s, want %s", trend.Direction, TrendInsufficientData)
		}
		if trend.WeeksTracked != 1 {
			t.Errorf("weeks tracked = %d, want 1", trend.WeeksTracked)
		}
	})

	t.Run("improving", func(t *testing.T) {
		trend := ScoreTrend(scoreHistory(60, 50, 55))
		if trend.Direction != TrendImproving {
			t.Errorf("direction = %s, want %s", trend.Direction, TrendImproving)
		}
		if trend.Change != 10 {
			t.Errorf("change = %d, want 10", trend.Change)
		}
		if trend.ChangePercentage != 20 {
			t.Errorf("change pct = %v, want 20", trend.ChangePercentage)
		}
	})

	t.Run("declining", func(t *testing.T) {
		trend := ScoreTrend(scoreHistory(40, 50))
		if trend.Direction != TrendDeclining {
			t.Errorf("direction = %s, want %s", trend.Direction, TrendDeclining)
		}
		if trend.Change != -10 {
			t.Errorf("change = %d, want -10", trend.Change)
		}
	})

	t.Run("stable", func(t *testing.T) {
		trend := ScoreTrend(scoreHistory(50, 50))
		if trend.Direction != TrendStable {
			t.Errorf("direction = %s, want %s", trend.Direction, TrendStable)
		}
	})
}

func TestStreaks(t *testing.T) {
	t.Run("empty_history", func(t *testing.T) {
		s := Streaks(nil)
		if s.LongestGrowthStreak != 0 || s.LongestDeclineStreak != 0 {
			t.Errorf("expected zero streaks, got %+v", s)
		}
	})

	t.Run("growth_run", func(t *testing.T) {
		// Newest-first 80,70,60,50: three consecutive improvements.
		s := Streaks(scoreHistory(80, 70, 60, 50))
		if s.LongestGrowthStreak != 3 {
			t.Errorf("growth streak = %d, want 3", s.LongestGrowthStreak)
		}
		if s.LongestDeclineStreak != 0 {
			t.Errorf("decline streak = %d, want 0", s.LongestDeclineStreak)
		}
	})

	t.Run("flat_breaks_both_streaks", func(t *testing.T) {
		// 70,60,60,50: growth runs of 1 on either side of the plateau.
		s := Streaks(scoreHistory(70, 60, 60, 50))
		if s.LongestGrowthStreak != 1 {
			t.Errorf("growth streak = %d, want 1", s.LongestGrowthStreak)
		}
	})

	t.Run("mixed_runs", func(t *testing.T) {
		// 40,50,60,30,20: two declines then two improvements (newest-first).
		s := Streaks(scoreHistory(40, 50, 60, 30, 20))
		if s.LongestDeclineStreak != 2 {
			t.Errorf("decline streak = %d, want 2", s.LongestDeclineStreak)
		}
		if s.LongestGrowthStreak != 2 {
			t.Errorf("growth streak = %d, want 2", s.LongestGrowthStreak)
		}
	})
}

func TestSummarizeScores(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		stats := SummarizeScores(nil)
		if stats.TotalScores != 0 || stats.AverageScore != 0 {
			t.Errorf("expected zero stats, got %+v", stats)
		}
	})

	t.Run("summary_fields", func(t *testing.T) {
		history := scoreHistory(72, 65, 80, 58)
		stats := SummarizeScores(history)

		if stats.TotalScores != 4 {
			t.Errorf("total = %d, want 4", stats.TotalScores)
		}
		if stats.BestScore != 80 {
			t.Errorf("best = %d, want 80", stats.BestScore)
		}
		if stats.WorstScore != 58 {
			t.Errorf("worst = %d, want 58", stats.WorstScore)
		}
		if stats.ScoreRange != 22 {
			t.Errorf("range = %d, want 22", stats.ScoreRange)
		}
		// (72+65+80+58)/4 = 68.75, rounded to one decimal.
		if stats.AverageScore != 68.8 {
			t.Errorf("average = %v, want 68.8", stats.AverageScore)
		}
		if !stats.BestScoreDate.Equal(history[2].ScoreDate) {
			t.Errorf("best date = %v, want %v", stats.BestScoreDate, history[2].ScoreDate)
		}
	})
}

func TestGrowthFromSnapshots(t *testing.T) {
	t.Run("nil_previous_yields_zeros", func(t *testing.T) {
		current := &models.MonthlySnapshot{NetWorth: 1000}
		if g := GrowthFromSnapshots(current, nil); g != (SnapshotGrowth{}) {
			t.Errorf("expected zero growth, got %+v", g)
		}
	})

	t.Run("field_by_field", func(t *testing.T) {
		current := &models.MonthlySnapshot{
			NetWorth:        1500,
			TotalAssets:     2000,
			MonthlyIncome:   5000,
			MonthlySpending: -3000,
		}
		previous := &models.MonthlySnapshot{
			NetWorth:        1000,
			TotalAssets:     1000,
			MonthlyIncome:   4000,
			MonthlySpending: -4000,
		}

		g := GrowthFromSnapshots(current, previous)
		if g.NetWorth != 50 {
			t.Errorf("net worth growth = %v, want 50", g.NetWorth)
		}
		if g.TotalAssets != 100 {
			t.Errorf("assets growth = %v, want 100", g.TotalAssets)
		}
		if g.MonthlyIncome != 25 {
			t.Errorf("income growth = %v, want 25", g.MonthlyIncome)
		}
		// Spending moved from -4000 to -3000: +25% against the magnitude.
		if g.MonthlySpending != 25 {
			t.Errorf("spending growth = %v, want 25", g.MonthlySpending)
		}
		// Zero liability base stays zero.
		if g.TotalLiabilities != 0 {
			t.Errorf("liabilities growth = %v, want 0", g.TotalLiabilities)
		}
	})
}
