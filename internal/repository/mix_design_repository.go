package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"gorm.io/gorm"
)

// MixDesignRepository defines the interface for mix design data access
type MixDesignRepository interface {
	Create(ctx context.Context, mix *models.MixDesign) error
	Update(ctx context.Context, mix *models.MixDesign) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MixDesign, error)
	List(ctx context.Context, query *ListQuery) ([]models.MixDesign, int64, error)
	ReplaceCompositions(ctx context.Context, mixID uuid.UUID, compositions []models.MixDesignComposition) error
}

type mixDesignRepository struct {
	db *gorm.DB
}

// NewMixDesignRepository creates a new mix design repository
func NewMixDesignRepository(db *gorm.DB) MixDesignRepository {
	return &mixDesignRepository{db: db}
}

func (r *mixDesignRepository) Create(ctx context.Context, mix *models.MixDesign) error {
	if err := r.db.WithContext(ctx).Create(mix).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *mixDesignRepository) Update(ctx context.Context, mix *models.MixDesign) error {
	if err := r.db.WithContext(ctx).Omit("Compositions").Save(mix).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *mixDesignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.MixDesign{}, "id = ?", id).Error
}

func (r *mixDesignRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.MixDesign, error) {
	var mix models.MixDesign
	err := r.db.WithContext(ctx).
		Preload("Compositions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&mix, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &mix, nil
}

func (r *mixDesignRepository) List(ctx context.Context, query *ListQuery) ([]models.MixDesign, int64, error) {
	var mixes []models.MixDesign
	var total int64

	db := r.db.WithContext(ctx).Model(&models.MixDesign{})
	if query.Filters["strength_class"] != "" {
		db = db.Where("strength_class = ?", query.Filters["strength_class"])
	}
	if query.Filters["is_active"] != "" {
		db = db.Where("is_active = ?", query.Filters["is_active"] == "true")
	}
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("code ILIKE ? OR name ILIKE ?", search, search)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Preload("Compositions").Order(orderClause(query, "code ASC"))
	if query.PerPage > 0 {
		db = db.Offset(query.Offset()).Limit(query.PerPage)
	}

	err := db.Find(&mixes).Error
	return mixes, total, err
}

// ReplaceCompositions swaps every composition of a mix design in one transaction
func (r *mixDesignRepository) ReplaceCompositions(ctx context.Context, mixID uuid.UUID, compositions []models.MixDesignComposition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mix_design_id = ?", mixID).Delete(&models.MixDesignComposition{}).Error; err != nil {
			return err
		}
		if len(compositions) == 0 {
			return nil
		}
		for i := range compositions {
			compositions[i].MixDesignID = mixID
		}
		return tx.Create(&compositions).Error
	})
}
