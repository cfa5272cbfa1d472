package repository

import (
	"context"
	"errors"
	"time"

	"incognitor/internal/models"

	"gorm.io/gorm"
)

// TokenRepository defines the interface for auth token persistence
type TokenRepository interface {
	WithTx(tx *gorm.DB) TokenRepository

	Create(ctx context.Context, token *models.AuthToken) error
	FindByID(ctx context.Context, id uint) (*models.AuthToken, error)
	DeleteAllForUser(ctx context.Context, userID uint) error
	TouchLastUsed(ctx context.Context, id uint) error
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) WithTx(tx *gorm.DB) TokenRepository {
	return &tokenRepository{db: tx}
}

func (r *tokenRepository) Create(ctx context.Context, token *models.AuthToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tokenRepository) FindByID(ctx context.Context, id uint) (*models.AuthToken, error) {
	var token models.AuthToken
	err := r.db.WithContext(ctx).First(&token, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &token, nil
}

func (r *tokenRepository) DeleteAllForUser(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.AuthToken{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tokenRepository) TouchLastUsed(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.AuthToken{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
