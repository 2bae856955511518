package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"gorm.io/gorm"
)

// InvitationRepository defines the interface for user invitation data access
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.UserInvitation) error
	Update(ctx context.Context, invitation *models.UserInvitation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.UserInvitation, error)
	FindByToken(ctx context.Context, token string) (*models.UserInvitation, error)
	FindPendingByEmail(ctx context.Context, email string) (*models.UserInvitation, error)
	List(ctx context.Context, query *ListQuery) ([]models.UserInvitation, int64, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type invitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *models.UserInvitation) error {
	return r.db.WithContext(ctx).Omit("Inviter").Create(invitation).Error
}

func (r *invitationRepository) Update(ctx context.Context, invitation *models.UserInvitation) error {
	return r.db.WithContext(ctx).Omit("Inviter").Save(invitation).Error
}

func (r *invitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.UserInvitation, error) {
	var inv models.UserInvitation
	if err := r.db.WithContext(ctx).Preload("Inviter").First(&inv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) FindByToken(ctx context.Context, token string) (*models.UserInvitation, error) {
	var inv models.UserInvitation
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) FindPendingByEmail(ctx context.Context, email string) (*models.UserInvitation, error) {
	var inv models.UserInvitation
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND status = ?", email, models.InvitationStatusPending).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) List(ctx context.Context, query *ListQuery) ([]models.UserInvitation, int64, error) {
	var invitations []models.UserInvitation
	var total int64

	db := r.db.WithContext(ctx).Model(&models.UserInvitation{})
	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}
	if query.Filters["business_type_id"] != "" {
		db = db.Where("business_type_id = ?", query.Filters["business_type_id"])
	}
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("email ILIKE ? OR name ILIKE ?", search, search)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Preload("Inviter").Preload("BusinessType").Order(orderClause(query, "created_at DESC"))
	if query.PerPage > 0 {
		db = db.Offset(query.Offset()).Limit(query.PerPage)
	}

	err := db.Find(&invitations).Error
	return invitations, total, err
}

// ExpireStale marks pending invitations past their expiry as expired
func (r *invitationRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserInvitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationStatusPending, now).
		Update("status", models.InvitationStatusExpired)
	return result.RowsAffected, result.Error
}
