package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"centi/internal/services"
)

// StatsHandler handles financial stats requests.
type StatsHandler struct {
	scoreService services.ScoreServicer
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(scoreService services.ScoreServicer) *StatsHandler {
	return &StatsHandler{scoreService: scoreService}
}

// GetStats handles retrieving current aggregates with month-over-month growth.
// @Summary     Get financial stats
// @Description Get current financial aggregates with month-over-month growth percentages
// @Tags        stats
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.UserStats "Financial stats"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.scoreService.GetStats(c.Request.Context(), userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
