package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"gorm.io/gorm"
)

// RefreshTokenRepository defines the interface for refresh token data access
type RefreshTokenRepository interface {
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	Create(ctx context.Context, token *models.RefreshToken) error
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&rt).Error
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Omit("User").Create(token).Error
}

func (r *refreshTokenRepository) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error
}

func (r *refreshTokenRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error
}

func (r *refreshTokenRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&models.RefreshToken{}).Error
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}

// SessionRepository defines the interface for user session data access
type SessionRepository interface {
	Create(ctx context.Context, session *models.UserSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.UserSession, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]models.UserSession, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, except *uuid.UUID, at time.Time) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.UserSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.UserSession, error) {
	var session models.UserSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]models.UserSession, error) {
	var sessions []models.UserSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now).
		Order("last_activity_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("last_activity_at", at).Error
}

func (r *sessionRepository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
}

func (r *sessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID, except *uuid.UUID, at time.Time) (int64, error) {
	db := r.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID)
	if except != nil {
		db = db.Where("id <> ?", *except)
	}
	result := db.Update("revoked_at", at)
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at IS NOT NULL", now).
		Delete(&models.UserSession{})
	return result.RowsAffected, result.Error
}

// SecurityEventRepository defines the interface for security event data access
type SecurityEventRepository interface {
	Create(ctx context.Context, event *models.SecurityEvent) error
	List(ctx context.Context, query *ListQuery) ([]models.SecurityEvent, int64, error)
	CountSince(ctx context.Context, eventType, ipAddress string, since time.Time) (int64, error)
	Resolve(ctx context.Context, id, resolvedBy uuid.UUID, at time.Time) error
}

type securityEventRepository struct {
	db *gorm.DB
}

// NewSecurityEventRepository creates a new security event repository
func NewSecurityEventRepository(db *gorm.DB) SecurityEventRepository {
	return &securityEventRepository{db: db}
}

func (r *securityEventRepository) Create(ctx context.Context, event *models.SecurityEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *securityEventRepository) List(ctx context.Context, query *ListQuery) ([]models.SecurityEvent, int64, error) {
	var events []models.SecurityEvent
	var total int64

	db := r.db.WithContext(ctx).Model(&models.SecurityEvent{})
	if query.Filters["event_type"] != "" {
		db = db.Where("event_type = ?", query.Filters["event_type"])
	}
	if query.Filters["severity"] != "" {
		db = db.Where("severity = ?", query.Filters["severity"])
	}
	if query.Filters["user_id"] != "" {
		db = db.Where("user_id = ?", query.Filters["user_id"])
	}
	switch query.Filters["resolved"] {
	case "true":
		db = db.Where("resolved_at IS NOT NULL")
	case "false":
		db = db.Where("resolved_at IS NULL")
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order(orderClause(query, "created_at DESC"))
	if query.PerPage > 0 {
		db = db.Offset(query.Offset()).Limit(query.PerPage)
	}

	err := db.Find(&events).Error
	return events, total, err
}

func (r *securityEventRepository) CountSince(ctx context.Context, eventType, ipAddress string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SecurityEvent{}).
		Where("event_type = ? AND ip_address = ? AND created_at >= ?", eventType, ipAddress, since).
		Count(&count).Error
	return count, err
}

func (r *securityEventRepository) Resolve(ctx context.Context, id, resolvedBy uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.SecurityEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{"resolved_at": at, "resolved_by": resolvedBy})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
