package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "centi/internal/errors"
	"centi/internal/services"
)

const defaultGrowthWindowDays = 30

// AccountHandler handles account analytics requests.
type AccountHandler struct {
	accountService services.AccountServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// GetAccountGrowth handles retrieving balance growth for one account.
// @Summary     Get account growth
// @Description Get balance movement over a lookback window for one account, or the cash bucket with id "cash"
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  string true  "Account ID, or \"cash\""
// @Param       days query int    false "Lookback window in days (default 30)"
// @Success     200 {object} services.AccountGrowth "Account growth"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id}/growth [get]
func (h *AccountHandler) GetAccountGrowth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID := c.Param("id")
	if accountID == "cash" {
		accountID = ""
	}

	days := defaultGrowthWindowDays
	if v := c.Query("days"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil || days <= 0 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "days must be a positive integer"))
			return
		}
	}

	growth, err := h.accountService.GetAccountGrowth(c.Request.Context(), userID, accountID, days)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, growth)
}

// GetPortfolio handles retrieving the user's account distribution.
// @Summary     Analyze portfolio
// @Description Summarize active accounts by type with counts, balances, and the cash balance
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PortfolioAnalysis "Portfolio analysis"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /accounts/portfolio [get]
func (h *AccountHandler) GetPortfolio(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	analysis, err := h.accountService.AnalyzePortfolio(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}
