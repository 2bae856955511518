package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"gorm.io/gorm"
)

// PasswordResetRepository defines the interface for password reset data access
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *models.PasswordReset) error
	FindUsableByHash(ctx context.Context, tokenHash string, now time.Time) (*models.PasswordReset, error)
	// MarkUsed redeems the reset and reports false when it was already used
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	InvalidateForEmail(ctx context.Context, email string, at time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository creates a new password reset repository
func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	if err := r.db.WithContext(ctx).Create(reset).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *passwordResetRepository) FindUsableByHash(ctx context.Context, tokenHash string, now time.Time) (*models.PasswordReset, error) {
	var reset models.PasswordReset
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", tokenHash, now).
		First(&reset).Error
	if err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	return result.RowsAffected == 1, result.Error
}

func (r *passwordResetRepository) InvalidateForEmail(ctx context.Context, email string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.PasswordReset{}).
		Where("LOWER(email) = LOWER(?) AND used_at IS NULL", email).
		Update("used_at", at).Error
}

func (r *passwordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", now).
		Delete(&models.PasswordReset{})
	return result.RowsAffected, result.Error
}
