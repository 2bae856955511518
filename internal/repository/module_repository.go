package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModuleRepository defines the interface for the module catalog and activations
type ModuleRepository interface {
	ListModules(ctx context.Context, category string, activeOnly bool) ([]models.Module, error)
	FindModuleBySlug(ctx context.Context, slug string) (*models.Module, error)
	FindModuleByID(ctx context.Context, id uuid.UUID) (*models.Module, error)
	CountModules(ctx context.Context, activeOnly bool) (int64, error)
	CountCoreModules(ctx context.Context) (int64, error)
	CountModulesByCategory(ctx context.Context) (map[string]int64, error)
	UpsertModule(ctx context.Context, module *models.Module) error

	ListBusinessTypes(ctx context.Context, activeOnly bool) ([]models.BusinessType, error)
	FindBusinessTypeBySlug(ctx context.Context, slug string) (*models.BusinessType, error)
	FindBusinessTypeByID(ctx context.Context, id uuid.UUID) (*models.BusinessType, error)
	UpsertBusinessType(ctx context.Context, businessType *models.BusinessType) error

	Recommendations(ctx context.Context, businessTypeID uuid.UUID) ([]models.ModuleRecommendation, error)
	UpsertRecommendation(ctx context.Context, rec *models.ModuleRecommendation) error

	ListUserModules(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.UserModule, error)
	FindUserModule(ctx context.Context, userID, moduleID uuid.UUID) (*models.UserModule, error)
	CreateUserModule(ctx context.Context, um *models.UserModule) error
	UpdateUserModule(ctx context.Context, um *models.UserModule) error
	CountActiveUserModules(ctx context.Context) (int64, error)
}

type moduleRepository struct {
	db *gorm.DB
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

func (r *moduleRepository) ListModules(ctx context.Context, category string, activeOnly bool) ([]models.Module, error) {
	var modules []models.Module
	db := r.db.WithContext(ctx)
	if category != "" {
		db = db.Where("category = ?", category)
	}
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("sort_order ASC, name ASC").Find(&modules).Error
	return modules, err
}

func (r *moduleRepository) FindModuleBySlug(ctx context.Context, slug string) (*models.Module, error) {
	var module models.Module
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&module).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepository) FindModuleByID(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	var module models.Module
	if err := r.db.WithContext(ctx).First(&module, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepository) CountModules(ctx context.Context, activeOnly bool) (int64, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&models.Module{})
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Count(&count).Error
	return count, err
}

func (r *moduleRepository) CountCoreModules(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Module{}).
		Where("is_core = ? AND is_active = ?", true, true).
		Count(&count).Error
	return count, err
}

func (r *moduleRepository) CountModulesByCategory(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Category string
		Count    int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Module{}).
		Select("category, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

// UpsertModule inserts or updates a module keyed by slug
func (r *moduleRepository) UpsertModule(ctx context.Context, module *models.Module) error {
	return r.db.WithContext(ctx).
		Omit("Recommendations").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "category", "icon", "version", "is_core", "is_active", "sort_order", "updated_at"}),
		}).
		Create(module).Error
}

func (r *moduleRepository) ListBusinessTypes(ctx context.Context, activeOnly bool) ([]models.BusinessType, error) {
	var types []models.BusinessType
	db := r.db.WithContext(ctx)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("sort_order ASC, name ASC").Find(&types).Error
	return types, err
}

func (r *moduleRepository) FindBusinessTypeBySlug(ctx context.Context, slug string) (*models.BusinessType, error) {
	var bt models.BusinessType
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&bt).Error; err != nil {
		return nil, err
	}
	return &bt, nil
}

func (r *moduleRepository) FindBusinessTypeByID(ctx context.Context, id uuid.UUID) (*models.BusinessType, error) {
	var bt models.BusinessType
	if err := r.db.WithContext(ctx).First(&bt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bt, nil
}

// UpsertBusinessType inserts or updates a business type keyed by slug
func (r *moduleRepository) UpsertBusinessType(ctx context.Context, businessType *models.BusinessType) error {
	return r.db.WithContext(ctx).
		Omit("Recommendations").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon", "color", "is_active", "sort_order", "updated_at"}),
		}).
		Create(businessType).Error
}

func (r *moduleRepository) Recommendations(ctx context.Context, businessTypeID uuid.UUID) ([]models.ModuleRecommendation, error) {
	var recs []models.ModuleRecommendation
	err := r.db.WithContext(ctx).
		Joins("Module").
		Where("module_recommendations.business_type_id = ?", businessTypeID).
		Where(`"Module".is_active = ?`, true).
		Order("module_recommendations.priority ASC").
		Find(&recs).Error
	return recs, err
}

func (r *moduleRepository) UpsertRecommendation(ctx context.Context, rec *models.ModuleRecommendation) error {
	return r.db.WithContext(ctx).
		Omit("Module", "BusinessType").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "business_type_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"priority", "is_required", "updated_at"}),
		}).
		Create(rec).Error
}

func (r *moduleRepository) ListUserModules(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.UserModule, error) {
	var ums []models.UserModule
	db := r.db.WithContext(ctx).
		Preload("Module").
		Where("user_id = ?", userID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("created_at ASC").Find(&ums).Error
	return ums, err
}

func (r *moduleRepository) FindUserModule(ctx context.Context, userID, moduleID uuid.UUID) (*models.UserModule, error) {
	var um models.UserModule
	err := r.db.WithContext(ctx).
		Preload("Module").
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		First(&um).Error
	if err != nil {
		return nil, err
	}
	return &um, nil
}

func (r *moduleRepository) CreateUserModule(ctx context.Context, um *models.UserModule) error {
	if err := r.db.WithContext(ctx).Omit("Module").Create(um).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *moduleRepository) UpdateUserModule(ctx context.Context, um *models.UserModule) error {
	return r.db.WithContext(ctx).Omit("Module").Save(um).Error
}

func (r *moduleRepository) CountActiveUserModules(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserModule{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}
