package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "centi/internal/errors"
	"centi/internal/models"
)

// ingestService writes manually entered accounts and transactions.
type ingestService struct {
	db *gorm.DB
}

// NewIngestService creates a new IngestServicer.
func NewIngestService(db *gorm.DB) IngestServicer {
	return &ingestService{db: db}
}

// accountConflict upserts on the provider business key so repeated writes
// for the same account refresh balances instead of duplicating rows.
var accountConflict = clause.OnConflict{
	Columns: []clause.Column{{Name: "account_id"}},
	DoUpdates: clause.AssignmentColumns([]string{
		"name", "official_name", "type", "subtype", "mask",
		"current_balance", "available_balance", "credit_limit",
		"currency", "is_active",
	}),
}

// UpsertAccount creates or refreshes the account identified by in.AccountID.
// Provider account ids are globally unique, so an id already owned by
// another user is rejected rather than silently rewritten.
func (s *ingestService) UpsertAccount(ctx context.Context, userID string, in AccountUpsert) (*models.Account, error) {
	var existing models.Account
	err := s.db.WithContext(ctx).Where("account_id = ?", in.AccountID).First(&existing).Error
	switch {
	case err == nil:
		if existing.UserID != userID {
			return nil, apperrors.ErrForbidden
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	row := models.Account{
		UserID:           userID,
		AccountID:        in.AccountID,
		Name:             in.Name,
		OfficialName:     in.OfficialName,
		Type:             in.Type,
		Subtype:          in.Subtype,
		Mask:             in.Mask,
		CurrentBalance:   in.CurrentBalance,
		AvailableBalance: in.AvailableBalance,
		CreditLimit:      in.CreditLimit,
		Currency:         in.Currency,
		IsActive:         true,
	}
	if row.Currency == "" {
		row.Currency = "USD"
	}

	if err := s.db.WithContext(ctx).Clauses(accountConflict).Create(&row).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	// Re-read so the caller sees the stored row's identity and created_at,
	// which differ from the insert candidate when the upsert updated.
	var stored models.Account
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND account_id = ?", userID, in.AccountID).
		First(&stored).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return &stored, nil
}

// RecordTransaction appends one ledger row. When the entry targets an
// account, the account must exist and be active for this user; cash entries
// (nil account id) need no prior row.
func (s *ingestService) RecordTransaction(ctx context.Context, userID string, in TransactionEntry) (*models.Transaction, error) {
	if in.AccountID != nil {
		var count int64
		err := s.db.WithContext(ctx).Model(&models.Account{}).
			Where("user_id = ? AND account_id = ? AND is_active = ?", userID, *in.AccountID, true).
			Count(&count).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
		}
		if count == 0 {
			return nil, apperrors.ErrAccountNotFound
		}
	}

	source := in.Source
	if source == "" {
		source = models.TransactionSourceManual
	}

	row := models.Transaction{
		UserID:      userID,
		AccountID:   in.AccountID,
		Date:        in.Date,
		Amount:      in.Amount,
		Vendor:      in.Vendor,
		Description: in.Description,
		Category:    in.Category,
		Source:      source,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return &row, nil
}
