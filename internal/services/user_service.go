package services

import (
	"context"

	"gorm.io/gorm"

	apperrors "centi/internal/errors"
	"centi/internal/models"
)

// userService is the user directory backed by the store.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// ListActiveUsers returns every active user, for the weekly scoring run.
func (s *userService) ListActiveUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return users, nil
}
