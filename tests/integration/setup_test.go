package integration

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"centi/internal/handlers"
	"centi/internal/logger"
	"centi/internal/middleware"
	"centi/internal/models"
	"centi/internal/scheduler"
	"centi/internal/services"
	"centi/internal/validator"
)

const testPipelineKey = "test-pipeline-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB        *gorm.DB
	Router    *gin.Engine
	Scheduler *scheduler.WeeklyScoreScheduler
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Account{},
		&models.Transaction{},
		&models.MonthlySnapshot{},
		&models.WeeklyScore{},
		&models.AccountBalanceHistory{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	metricsService := services.NewMetricsService(db)
	snapshotService := services.NewSnapshotService(db, metricsService)
	accountService := services.NewAccountService(db)
	userService := services.NewUserService(db)
	scoreService := services.NewScoreService(metricsService, snapshotService, accountService)
	ingestService := services.NewIngestService(db)

	// Scheduler, started so the pipeline endpoint is live
	weeklyScheduler := scheduler.New(userService, scoreService, snapshotService, scheduler.Options{})
	weeklyScheduler.Start()
	t.Cleanup(weeklyScheduler.Stop)

	// Handlers
	scoreHandler := handlers.NewScoreHandler(scoreService)
	statsHandler := handlers.NewStatsHandler(scoreService)
	snapshotHandler := handlers.NewSnapshotHandler(snapshotService, accountService)
	accountHandler := handlers.NewAccountHandler(accountService)
	pipelineHandler := handlers.NewPipelineHandler(weeklyScheduler)
	ingestHandler := handlers.NewIngestHandler(ingestService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	pipeline := router.Group("/api/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(testPipelineKey))
	pipeline.POST("/weekly-run", pipelineHandler.RunWeeklyScores)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware())

	score := v1.Group("/score")
	score.GET("/current", scoreHandler.GetCurrentScore)
	score.GET("/history", scoreHandler.GetScoreHistory)
	score.GET("/trend", scoreHandler.GetScoreTrend)
	score.GET("/growth", scoreHandler.GetGrowthAnalysis)
	score.GET("/summary", scoreHandler.GetScoreSummary)
	score.GET("/status", scoreHandler.GetScoreStatus)
	score.POST("/calculate", scoreHandler.CalculateScore)

	v1.GET("/stats", statsHandler.GetStats)

	snapshots := v1.Group("/snapshots")
	snapshots.GET("/monthly", snapshotHandler.ListMonthlySnapshots)
	snapshots.POST("/monthly", snapshotHandler.CaptureMonthlySnapshot)
	snapshots.POST("/balances", snapshotHandler.RecordBalances)

	accounts := v1.Group("/accounts")
	accounts.POST("", ingestHandler.UpsertAccount)
	accounts.GET("/portfolio", accountHandler.GetPortfolio)
	accounts.GET("/:id/growth", accountHandler.GetAccountGrowth)

	v1.POST("/transactions", ingestHandler.CreateTransaction)

	return &testApp{DB: db, Router: router, Scheduler: weeklyScheduler}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// pipelineRequest makes a request authenticated with the pipeline API key.
func (app *testApp) pipelineRequest(method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// createUser inserts a user and returns it with a valid access token.
// Token issuance lives in the auth service in production; tests mint their
// own against the shared signing key.
func (app *testApp) createUser(t *testing.T, email string) (*models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := app.DB.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	token, err := middleware.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}

// seedAccount inserts an active account for the user.
func (app *testApp) seedAccount(t *testing.T, userID, accountID string, accountType models.AccountType, balance float64) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:         userID,
		AccountID:      accountID,
		Name:           "Integration " + accountID,
		Type:           accountType,
		CurrentBalance: balance,
		Currency:       "USD",
		IsActive:       true,
	}
	if err := app.DB.Create(account).Error; err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	return account
}
