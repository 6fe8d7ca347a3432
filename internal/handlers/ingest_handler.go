package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "centi/internal/errors"
	"centi/internal/models"
	"centi/internal/services"
)

// IngestHandler handles manual account and transaction entry.
type IngestHandler struct {
	ingestService services.IngestServicer
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(ingestService services.IngestServicer) *IngestHandler {
	return &IngestHandler{ingestService: ingestService}
}

// UpsertAccountRequest is the payload for creating or refreshing an account.
type UpsertAccountRequest struct {
	AccountID        string   `json:"account_id" binding:"required"`
	Name             string   `json:"name" binding:"required"`
	OfficialName     string   `json:"official_name"`
	Type             string   `json:"type" binding:"required,account_type"`
	Subtype          string   `json:"subtype"`
	Mask             string   `json:"mask"`
	CurrentBalance   float64  `json:"current_balance"`
	AvailableBalance float64  `json:"available_balance"`
	CreditLimit      *float64 `json:"credit_limit" binding:"omitempty,gt=0"`
	Currency         string   `json:"currency"`
}

// CreateTransactionRequest is the payload for recording a ledger entry.
// Date accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
type CreateTransactionRequest struct {
	AccountID   *string `json:"account_id"`
	Date        string  `json:"date" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Vendor      string  `json:"vendor"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Source      string  `json:"source" binding:"omitempty,transaction_source"`
}

// UpsertAccount handles creating or refreshing a linked account.
// @Summary     Upsert account
// @Description Create the account, or refresh its balances if the business key already exists
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       account body UpsertAccountRequest true "Account details"
// @Success     200 {object} models.Account "Stored account"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Account id owned by another user"
// @Router      /accounts [post]
func (h *IngestHandler) UpsertAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.ingestService.UpsertAccount(c.Request.Context(), userID, services.AccountUpsert{
		AccountID:        req.AccountID,
		Name:             req.Name,
		OfficialName:     req.OfficialName,
		Type:             models.AccountType(req.Type),
		Subtype:          req.Subtype,
		Mask:             req.Mask,
		CurrentBalance:   req.CurrentBalance,
		AvailableBalance: req.AvailableBalance,
		CreditLimit:      req.CreditLimit,
		Currency:         req.Currency,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// CreateTransaction handles recording a manually entered ledger row.
// @Summary     Record transaction
// @Description Append a ledger entry; omit account_id for a cash entry
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       transaction body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Recorded transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /transactions [post]
func (h *IngestHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := parseFlexibleTime(req.Date)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be RFC3339 or YYYY-MM-DD"))
		return
	}

	txn, err := h.ingestService.RecordTransaction(c.Request.Context(), userID, services.TransactionEntry{
		AccountID:   req.AccountID,
		Date:        date,
		Amount:      req.Amount,
		Vendor:      req.Vendor,
		Description: req.Description,
		Category:    req.Category,
		Source:      models.TransactionSource(req.Source),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, txn)
}
