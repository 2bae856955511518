package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"gorm.io/gorm"
)

// ActivityLogRepository defines the interface for the write-only activity log
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, query *ListQuery) ([]models.ActivityLog, int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.ActivityLog, error)
	ListBySubject(ctx context.Context, modelType string, modelID uuid.UUID) ([]models.ActivityLog, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Omit("User").Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, query *ListQuery) ([]models.ActivityLog, int64, error) {
	var logs []models.ActivityLog
	var total int64

	db := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if query.Filters["event_type"] != "" {
		db = db.Where("event_type = ?", query.Filters["event_type"])
	}
	if query.Filters["model_type"] != "" {
		db = db.Where("model_type = ?", query.Filters["model_type"])
	}
	if query.Filters["user_id"] != "" {
		db = db.Where("user_id = ?", query.Filters["user_id"])
	}
	if query.Search != "" {
		db = db.Where("description ILIKE ?", "%"+query.Search+"%")
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Preload("User").Order("created_at DESC")
	if query.PerPage > 0 {
		db = db.Offset(query.Offset()).Limit(query.PerPage)
	}

	err := db.Find(&logs).Error
	return logs, total, err
}

func (r *activityLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *activityLogRepository) ListBySubject(ctx context.Context, modelType string, modelID uuid.UUID) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("model_type = ? AND model_id = ?", modelType, modelID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
