package integration

import (
	"net/http"
	"testing"
	"time"

	"centi/internal/models"
)

func TestScoreFlow(t *testing.T) {
	app := setupApp(t)
	user, token := app.createUser(t, "scoreflow@test.com")

	app.seedAccount(t, user.ID, "chk-1", models.AccountTypeDepository, 8000)
	app.seedAccount(t, user.ID, "cc-1", models.AccountTypeCredit, -1500)

	// Before any weekly run the current score is a live calculation.
	rec := app.request("GET", "/api/v1/score/current", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("current score failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["is_weekly_score"].(bool) {
		t.Error("expected live score before any weekly run")
	}
	liveScore := result["score"].(float64)

	// Persist this week's score.
	rec = app.request("POST", "/api/v1/score/calculate", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("calculate failed: %d %s", rec.Code, rec.Body.String())
	}
	result = parseJSON(t, rec)
	if result["total_score"].(float64) != liveScore {
		t.Errorf("persisted score %v differs from live score %v", result["total_score"], liveScore)
	}

	// The persisted score now serves /score/current.
	rec = app.request("GET", "/api/v1/score/current", "", token)
	result = parseJSON(t, rec)
	if !result["is_weekly_score"].(bool) {
		t.Error("expected persisted weekly score")
	}
	if result["score"].(float64) != liveScore {
		t.Errorf("expected score %v, got %v", liveScore, result["score"])
	}

	// One score yields the first-score summary shape.
	rec = app.request("GET", "/api/v1/score/summary", "", token)
	result = parseJSON(t, rec)
	if !result["has_data"].(bool) {
		t.Error("expected has_data=true")
	}
	if !result["is_first_score"].(bool) {
		t.Error("expected is_first_score=true")
	}

	// Recalculating within the same week overwrites, never duplicates.
	app.request("POST", "/api/v1/score/calculate", "", token)
	var count int64
	app.DB.Model(&models.WeeklyScore{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 weekly score after recalculation, got %d", count)
	}
}

func TestScoreHistoryFlow(t *testing.T) {
	app := setupApp(t)
	user, token := app.createUser(t, "history@test.com")

	monday := mondayOfThisWeek()
	for i, score := range []int{70, 65, 61, 58} {
		seedWeeklyScore(t, app, user.ID, monday.AddDate(0, 0, -7*i), score)
	}

	rec := app.request("GET", "/api/v1/score/history?limit=3", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("history failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	scores := result["scores"].([]interface{})
	if len(scores) != 3 {
		t.Errorf("expected 3 scores, got %d", len(scores))
	}
	newest := scores[0].(map[string]interface{})
	if newest["total_score"].(float64) != 70 {
		t.Errorf("expected newest score 70, got %v", newest["total_score"])
	}

	rec = app.request("GET", "/api/v1/score/trend", "", token)
	result = parseJSON(t, rec)
	if result["trend"] != "improving" {
		t.Errorf("expected improving trend, got %v", result["trend"])
	}
	if result["change"].(float64) != 5 {
		t.Errorf("expected change=5, got %v", result["change"])
	}

	rec = app.request("GET", "/api/v1/score/growth", "", token)
	result = parseJSON(t, rec)
	if !result["has_growth_data"].(bool) {
		t.Error("expected growth data with 4 scores")
	}
	if result["current_score"].(float64) != 70 {
		t.Errorf("expected current_score=70, got %v", result["current_score"])
	}

	rec = app.request("GET", "/api/v1/score/status", "", token)
	result = parseJSON(t, rec)
	if result["total_scores"].(float64) != 4 {
		t.Errorf("expected total_scores=4, got %v", result["total_scores"])
	}
	if result["best_score"].(float64) != 70 {
		t.Errorf("expected best_score=70, got %v", result["best_score"])
	}
}

func TestScoreUserIsolation(t *testing.T) {
	app := setupApp(t)
	alice, aliceToken := app.createUser(t, "alice@test.com")
	_, bobToken := app.createUser(t, "bob@test.com")

	seedWeeklyScore(t, app, alice.ID, mondayOfThisWeek(), 80)

	rec := app.request("GET", "/api/v1/score/status", "", bobToken)
	result := parseJSON(t, rec)
	if result["has_scores"].(bool) {
		t.Error("bob should not see alice's scores")
	}

	rec = app.request("GET", "/api/v1/score/status", "", aliceToken)
	result = parseJSON(t, rec)
	if !result["has_scores"].(bool) {
		t.Error("alice should see her own scores")
	}
}

func TestScoreRequiresAuth(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/v1/score/current", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/score/current", "", "not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with invalid token, got %d", rec.Code)
	}
}

// mondayOfThisWeek returns the Monday of the current week at midnight UTC.
func mondayOfThisWeek() time.Time {
	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func seedWeeklyScore(t *testing.T, app *testApp, userID string, scoreDate time.Time, totalScore int) {
	t.Helper()
	score := &models.WeeklyScore{
		UserID:     userID,
		ScoreDate:  scoreDate,
		TotalScore: totalScore,
	}
	if err := app.DB.Create(score).Error; err != nil {
		t.Fatalf("failed to seed weekly score: %v", err)
	}
}
