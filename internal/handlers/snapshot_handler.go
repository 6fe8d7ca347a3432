package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centi/internal/errors"
	"centi/internal/pagination"
	"centi/internal/services"
)

// SnapshotHandler handles monthly snapshot and balance history requests.
type SnapshotHandler struct {
	snapshotService services.SnapshotServicer
	accountService  services.AccountServicer
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(snapshotService services.SnapshotServicer, accountService services.AccountServicer) *SnapshotHandler {
	return &SnapshotHandler{snapshotService: snapshotService, accountService: accountService}
}

// ListMonthlySnapshots handles retrieving the user's monthly snapshots.
// @Summary     List monthly snapshots
// @Description Get paginated monthly financial snapshots, newest first
// @Tags        snapshots
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.MonthlySnapshot] "Paginated snapshots"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /snapshots/monthly [get]
func (h *SnapshotHandler) ListMonthlySnapshots(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.snapshotService.ListMonthlySnapshots(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CaptureMonthlySnapshot handles refreshing the current month's snapshot.
// @Summary     Capture monthly snapshot
// @Description Aggregate current metrics and upsert the snapshot for the current month
// @Tags        snapshots
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.MonthlySnapshot "Captured snapshot"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /snapshots/monthly [post]
func (h *SnapshotHandler) CaptureMonthlySnapshot(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	snapshot, err := h.snapshotService.CaptureMonthlySnapshot(c.Request.Context(), userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// RecordBalances handles writing today's balance history rows.
// @Summary     Record balance history
// @Description Upsert one balance history row per active account plus a cash bucket row, dated today
// @Tags        snapshots
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int "Rows recorded"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Store unavailable"
// @Router      /snapshots/balances [post]
func (h *SnapshotHandler) RecordBalances(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	count, err := h.accountService.RecordBalanceHistory(c.Request.Context(), userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances_recorded": count})
}
