package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"centi/internal/scheduler"
)

// WeeklyRunner triggers an immediate weekly scoring batch.
type WeeklyRunner interface {
	RunNow(ctx context.Context) (*scheduler.BatchResult, error)
}

// PipelineHandler handles pipeline trigger requests.
type PipelineHandler struct {
	runner WeeklyRunner
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(runner WeeklyRunner) *PipelineHandler {
	return &PipelineHandler{runner: runner}
}

// RunWeeklyScores handles triggering the weekly scoring batch.
// @Summary     Run weekly scoring
// @Description Score all active users for the current week immediately (pipeline endpoint)
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Success     200 {object} scheduler.BatchResult "Batch result"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     409 {object} ErrorResponse "Scheduler stopped"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/weekly-run [post]
func (h *PipelineHandler) RunWeeklyScores(c *gin.Context) {
	result, err := h.runner.RunNow(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
