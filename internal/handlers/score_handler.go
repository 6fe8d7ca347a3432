package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centi/internal/errors"
	"centi/internal/services"
)

// ScoreHandler handles Centi Score requests.
type ScoreHandler struct {
	scoreService services.ScoreServicer
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(scoreService services.ScoreServicer) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

// GetCurrentScore handles retrieving the user's current score.
// @Summary     Get current score
// @Description Get the latest weekly score, or a live calculation when no weekly score exists yet
// @Tags        score
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.CurrentScore "Current score"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /score/current [get]
func (h *ScoreHandler) GetCurrentScore(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.scoreService.GetCurrentScore(c.Request.Context(), userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetScoreHistory handles retrieving the user's weekly score history.
// @Summary     Get score history
// @Description Get weekly scores newest-first with the trend over them
// @Tags        score
// @Produce     json
// @Security    BearerAuth
// @Param       limit query int false "Max scores to return (default 12)"
// @Success     200 {object} services.ScoreHistory "Score history"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /score/history [get]
func (h *ScoreHandler) GetScoreHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be a non-negative integer"))
			return
		}
	}

	result, err := h.scoreService.GetScoreHistory(c.Request.Context(), userID, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetScoreTrend handles retrieving the user's score trend.
// @Summary     Get score trend
// @Description Classify the movement between the two most recent weekly scores
// @Tags        score
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Trend "Score trend"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /score/trend [get]
func (h *ScoreHandler) GetScoreTrend(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.scoreService.GetScoreTrend(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetGrowthAnalysis handles retrieving the detailed growth report.
// @Summary     Get growth analysis
// @Description Get the detailed growth report over the full score history
// @Tags        score
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.GrowthAnalysis "Growth analysis"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /score/growth [get]
func (h *ScoreHandler) GetGrowthAnalysis(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.scoreService.GetGrowthAnalysis(c.Request.Context(), userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetScoreSummary handles retrieving the quick week-over-week summary.
// @Summary     Get score summary
// @Description Get the quick week-over-week score summary
// @Tags        score
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.ScoreSummary "Score summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /score/summary [get]
func (h *ScoreHandler) GetScoreSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.scoreService.GetScoreSummary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetScoreStatus handles retrieving the overall score data status.
// @Summary     Get score status
// @Description Get the overall state of the user's score data with recent history
// @Tags        score
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.ScoreStatus "Score status"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /score/status [get]
func (h *ScoreHandler) GetScoreStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.scoreService.GetScoreStatus(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CalculateScore handles computing and persisting the user's score for the
// current week.
// @Summary     Calculate weekly score
// @Description Compute and persist the score for the current week; reruns overwrite the week's row
// @Tags        score
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.WeeklyScore "Persisted weekly score"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /score/calculate [post]
func (h *ScoreHandler) CalculateScore(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	score, err := h.scoreService.CalculateWeeklyScore(c.Request.Context(), userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, score)
}
