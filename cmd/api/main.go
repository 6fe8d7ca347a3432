package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"centi/internal/config"
	"centi/internal/database"
	"centi/internal/handlers"
	"centi/internal/logger"
	"centi/internal/middleware"
	"centi/internal/scheduler"
	"centi/internal/services"
	"centi/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	metricsService := services.NewMetricsService(db)
	snapshotService := services.NewSnapshotService(db, metricsService)
	accountService := services.NewAccountService(db)
	userService := services.NewUserService(db)
	scoreService := services.NewScoreService(metricsService, snapshotService, accountService)
	ingestService := services.NewIngestService(db)

	// Start the weekly score scheduler
	weeklyScheduler := scheduler.New(userService, scoreService, snapshotService, scheduler.Options{
		PollInterval: appConfig.SchedulerPollInterval,
		UserTimeout:  appConfig.SchedulerUserTimeout,
		Workers:      appConfig.SchedulerWorkers,
	})
	weeklyScheduler.Start()
	defer weeklyScheduler.Stop()

	// Initialize handlers
	scoreHandler := handlers.NewScoreHandler(scoreService)
	statsHandler := handlers.NewStatsHandler(scoreService)
	snapshotHandler := handlers.NewSnapshotHandler(snapshotService, accountService)
	accountHandler := handlers.NewAccountHandler(accountService)
	pipelineHandler := handlers.NewPipelineHandler(weeklyScheduler)
	ingestHandler := handlers.NewIngestHandler(ingestService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Pipeline routes (API-key auth, no user context)
	pipeline := router.Group("/api/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(appConfig.PipelineAPIKey))
	pipeline.POST("/weekly-run", pipelineHandler.RunWeeklyScores)

	// API v1 group, all routes require a user token
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

	srv := &http.Server{
		Addr:    ":" + appConfig.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Centi backend server on port %s", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Infof("Shutdown signal received: %s", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
