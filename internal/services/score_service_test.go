package services

import (
	"context"
	"testing"
	"time"

	"centi/internal/models"
	"centi/internal/testutil"
	"gorm.io/gorm"
)

func newScoreServiceForTest(db *gorm.DB) ScoreServicer {
	metrics := NewMetricsService(db)
	snapshots := NewSnapshotService(db, metrics)
	accounts := NewAccountService(db)
	return NewScoreService(metrics, snapshots, accounts)
}

func TestGetCurrentScore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)

	t.Run("live_calculation_when_no_weekly_scores", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newScoreServiceForTest(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestAccount(t, db, user.ID, models.AccountTypeDepository, 100000)

		current, err := svc.GetCurrentScore(ctx, user.ID, now)
		testutil.AssertNoError(t, err)

		if current.IsWeeklyScore {
			t.Error("expected live score, got weekly")
		}
		if current.LastUpdated != nil {
			t.Error("live score should have no last updated timestamp")
		}
		// $100k in assets, no debt: 40 + 30 + 20 + 0.
		if current.Score != 90 {
			t.Errorf("score = %d, want 90", current.Score)
		}

		// Nothing persisted by the live path.
		var count int64
		db.Model(&models.WeeklyScore{}).Count(&count)
		if count != 0 {
			t.Errorf("live calculation persisted %d rows", count)
		}
	})

	t.Run("persisted_weekly_score_preferred", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newScoreServiceForTest(db)
		user := testutil.CreateTestUser(t, db)

		monday := MondayOf(now)
		testutil.CreateTestWeeklyScore(t, db, user.ID, monday, 77)

		current, err := svc.GetCurrentScore(ctx, user.ID, now)
		testutil.AssertNoError(t, err)

		if !current.IsWeeklyScore {
			t.Error("expected weekly score")
		}
		if current.Score != 77 {
			t.Errorf("score = %d, want 77", current.Score)
		}
		if current.ScoreDate == nil || !current.ScoreDate.Equal(monday) {
			t.Errorf("score date = %v, want %v", current.ScoreDate, monday)
		}
		if current.LastUpdated == nil {
			t.Error("expected last updated from persisted row")
		}
	})
}

func TestCalculateWeeklyScore(t *testing.T) {
	ctx := context.Background()

	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newScoreServiceForTest(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestAccount(t, db, user.ID, models.AccountTypeDepository, 1000)

	wednesday := time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	first, err := svc.CalculateWeeklyScore(ctx, user.ID, wednesday)
	testutil.AssertNoError(t, err)

	if !first.ScoreDate.Equal(monday) {
		t.Errorf("score date = %v, want the week's Monday %v", first.ScoreDate, monday)
	}

	// A later run in the same week updates the same row.
	friday := wednesday.AddDate(0, 0, 2)
	second, err := svc.CalculateWeeklyScore(ctx, user.ID, friday)
	testutil.AssertNoError(t, err)

	if second.ID != first.ID {
		t.Errorf("same week produced two rows: %s vs %s", second.ID, first.ID)
	}
}

func TestGetScoreSummary(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	t.Run("no_data", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newScoreServiceForTest(db)
		user := testutil.CreateTestUser(t, db)

		summary, err := svc.GetScoreSummary(ctx, user.ID)
		testutil.AssertNoError(t, err)
		if summary.HasData {
			t.Error("expected HasData=false")
		}
		if summary.Message == "" {
			t.Error("expected explanatory message")
		}
	})

	t.Run("first_score", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newScoreServiceForTest(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestWeeklyScore(t, db, user.ID, monday, 55)

		summary, err := svc.GetScoreSummary(ctx, user.ID)
		testutil.AssertNoError(t, err)
		if !summary.HasData || !summary.IsFirstScore {
			t.Errorf("expected first-score shape, got %+v", summary)
		}
		if summary.CurrentScore != 55 {
			t.Errorf("current = %d, want 55", summary.CurrentScore)
		}
		if summary.Change != 0 {
			t.Errorf("change = %d, want 0", summary.Change)
		}
	})

	t.Run("week_over_week", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newScoreServiceForTest(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestWeeklyScore(t, db, user.ID, monday.AddDate(0, 0, -7), 50)
		testutil.CreateTestWeeklyScore(t, db, user.ID, monday, 58)

		summary, err := svc.GetScoreSummary(ctx, user.ID)
		testutil.AssertNoError(t, err)
		if summary.IsFirstScore {
			t.Error("expected IsFirstScore=false")
		}
		if summary.Change != 8 {
			t.Errorf("change = %d, want 8", summary.Change)
		}
		if summary.ChangePercentage != 16 {
			t.Errorf("change pct = %v, want 16", summary.ChangePercentage)
		}
		if summary.GrowthMessage == "" {
			t.Error("expected growth message")
		}
	})
}

func TestGetGrowthAnalysis(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	t.Run("fewer_than_two_scores", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newScoreServiceForTest(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestWeeklyScore(t, db, user.ID, monday, 60)

		analysis, err := svc.GetGrowthAnalysis(ctx, user.ID, now)
		testutil.AssertNoError(t, err)
		if analysis.HasGrowthData {
			t.Error("expected HasGrowthData=false with one score")
		}
	})

	t.Run("full_report", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newScoreServiceForTest(db)
		user := testutil.CreateTestUser(t, db)

		for i, score := range []int{62, 58, 55, 50} {
			testutil.CreateTestWeeklyScore(t, db, user.ID, monday.AddDate(0, 0, -7*i), score)
		}

		analysis, err := svc.GetGrowthAnalysis(ctx, user.ID, now)
		testutil.AssertNoError(t, err)

		if !analysis.HasGrowthData {
			t.Fatal("expected growth data")
		}
		if analysis.CurrentScore != 62 || analysis.PreviousScore != 58 {
			t.Errorf("current/previous = %d/%d, want 62/58", analysis.CurrentScore, analysis.PreviousScore)
		}
		if analysis.Trend.Direction != TrendImproving {
			t.Errorf("trend = %s, want improving", analysis.Trend.Direction)
		}
		if analysis.Streaks.LongestGrowthStreak != 3 {
			t.Errorf("growth streak = %d, want 3", analysis.Streaks.LongestGrowthStreak)
		}
		if analysis.Stats.BestScore != 62 || analysis.Stats.WorstScore != 50 {
			t.Errorf("stats = %+v", analysis.Stats)
		}
		if analysis.MonthlyComparison == nil {
			t.Fatal("expected monthly comparison")
		}
		if len(analysis.RecentScores) != 4 {
			t.Errorf("recent scores = %d, want 4", len(analysis.RecentScores))
		}
	})
}

func TestGetScoreStatus(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	t.Run("no_scores", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newScoreServiceForTest(db)
		user := testutil.CreateTestUser(t, db)

		status, err := svc.GetScoreStatus(ctx, user.ID)
		testutil.AssertNoError(t, err)
		if status.HasScores {
			t.Error("expected HasScores=false")
		}
		if status.Trend != TrendInsufficientData {
			t.Errorf("trend = %s, want insufficient_data", status.Trend)
		}
	})

	t.Run("history_capped_at_twelve", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newScoreServiceForTest(db)
		user := testutil.CreateTestUser(t, db)

		for i := 0; i < 15; i++ {
			testutil.CreateTestWeeklyScore(t, db, user.ID, monday.AddDate(0, 0, -7*i), 40+i)
		}

		status, err := svc.GetScoreStatus(ctx, user.ID)
		testutil.AssertNoError(t, err)

		if status.TotalScores != 15 || status.WeeksTracked != 15 {
			t.Errorf("totals = %d/%d, want 15/15", status.TotalScores, status.WeeksTracked)
		}
		if len(status.ScoreHistory) != 12 {
			t.Errorf("history len = %d, want 12", len(status.ScoreHistory))
		}
		if status.LatestScore != 40 {
			t.Errorf("latest = %d, want 40", status.LatestScore)
		}
		if status.BestScore != 54 || status.WorstScore != 40 {
			t.Errorf("best/worst = %d/%d, want 54/40", status.BestScore, status.WorstScore)
		}
		if status.Trend != TrendDeclining {
			t.Errorf("trend = %s, want declining", status.Trend)
		}
	})
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)

	t.Run("no_history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newScoreServiceForTest(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestAccount(t, db, user.ID, models.AccountTypeDepository, 2000)

		stats, err := svc.GetStats(ctx, user.ID, now)
		testutil.AssertNoError(t, err)

		if stats.HasHistoricalData {
			t.Error("expected no historical data")
		}
		if stats.Growth != (SnapshotGrowth{}) {
			t.Errorf("expected zero growth, got %+v", stats.Growth)
		}
		if stats.Totals.TotalAssets != 2000 {
			t.Errorf("assets = %v, want 2000", stats.Totals.TotalAssets)
		}

		// The call refreshes the current month's snapshot.
		var count int64
		db.Model(&models.MonthlySnapshot{}).Count(&count)
		if count != 1 {
			t.Errorf("expected current month snapshot, got %d rows", count)
		}
	})

	t.Run("month_over_month_growth", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newScoreServiceForTest(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestAccount(t, db, user.ID, models.AccountTypeDepository, 3000)
		july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestMonthlySnapshot(t, db, user.ID, july, 2000)

		stats, err := svc.GetStats(ctx, user.ID, now)
		testutil.AssertNoError(t, err)

		if !stats.HasHistoricalData {
			t.Error("expected historical data")
		}
		if stats.Growth.NetWorth != 50 {
			t.Errorf("net worth growth = %v, want 50", stats.Growth.NetWorth)
		}
	})

	t.Run("liability_growth_from_balance_history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newScoreServiceForTest(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestAccount(t, db, user.ID, models.AccountTypeCredit, -3000)
		july := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestMonthlySnapshot(t, db, user.ID, july, 0)

		// Balance history says liabilities were 2000 at end of July.
		hist := models.AccountBalanceHistory{
			UserID:         user.ID,
			AccountID:      "cc-hist",
			AccountType:    "credit",
			SnapshotDate:   time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC),
			CurrentBalance: -2000,
		}
		if err := db.Create(&hist).Error; err != nil {
			t.Fatalf("failed to seed history: %v", err)
		}

		stats, err := svc.GetStats(ctx, user.ID, now)
		testutil.AssertNoError(t, err)

		// 3000 now vs 2000 reconstructed: +50%.
		if stats.Growth.TotalLiabilities != 50 {
			t.Errorf("liability growth = %v, want 50", stats.Growth.TotalLiabilities)
		}
	})
}
