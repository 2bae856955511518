package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BusinessType drives which modules are recommended to a tenant
type BusinessType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description *string   `gorm:"type:text" json:"description"`
	Icon        *string   `json:"icon"`
	Color       *string   `json:"color"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Recommendations []ModuleRecommendation `gorm:"foreignKey:BusinessTypeID" json:"recommendations,omitempty"`
}

// TableName specifies the table name for BusinessType
func (BusinessType) TableName() string {
	return "business_types"
}

// BeforeCreate assigns a UUID when none was provided
func (b *BusinessType) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Module is an activatable ERP feature set
type Module struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description *string   `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:50;not null;index" json:"category"`
	Icon        *string   `json:"icon"`
	Version     string    `gorm:"size:20;default:1.0.0" json:"version"`
	IsCore      bool      `gorm:"not null;default:false" json:"is_core"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Recommendations []ModuleRecommendation `gorm:"foreignKey:ModuleID" json:"recommendations,omitempty"`
}

// TableName specifies the table name for Module
func (Module) TableName() string {
	return "modules"
}

// BeforeCreate assigns a UUID when none was provided
func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Module categories
var ModuleCategories = map[string]string{
	"core":          "Core Modules",
	"manufacturing": "Manufacturing",
	"retail":        "Retail",
	"construction":  "Construction",
	"logistics":     "Logistics",
	"healthcare":    "Healthcare",
	"education":     "Education",
	"industry":      "Industry Specific",
}

// ModuleRecommendation links a module to a business type
type ModuleRecommendation struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_module_recommendations_pair" json:"business_type_id"`
	ModuleID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_module_recommendations_pair" json:"module_id"`
	Priority       int       `gorm:"not null;default:0" json:"priority"`
	IsRequired     bool      `gorm:"not null;default:false" json:"is_required"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Module       *Module       `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
	BusinessType *BusinessType `gorm:"foreignKey:BusinessTypeID" json:"business_type,omitempty"`
}

// TableName specifies the table name for ModuleRecommendation
func (ModuleRecommendation) TableName() string {
	return "module_recommendations"
}

// BeforeCreate assigns a UUID when none was provided
func (r *ModuleRecommendation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// UserModule is a per-user activation record
type UserModule struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_modules_pair" json:"user_id"`
	ModuleID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_modules_pair" json:"module_id"`
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	ActivatedAt   *time.Time     `json:"activated_at"`
	Configuration map[string]any `gorm:"type:jsonb;serializer:json" json:"configuration"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Module *Module `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
}

// TableName specifies the table name for UserModule
func (UserModule) TableName() string {
	return "user_modules"
}

// BeforeCreate assigns a UUID and stamps activation time
func (u *UserModule) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.IsActive && u.ActivatedAt == nil {
		now := time.Now()
		u.ActivatedAt = &now
	}
	return nil
}

// Activate marks the module active at now
func (u *UserModule) Activate(now time.Time) {
	u.IsActive = true
	u.ActivatedAt = &now
}

// Deactivate marks the module inactive, keeping the last activation time
func (u *UserModule) Deactivate() {
	u.IsActive = false
}

// ConfigValue returns a configuration value or the default
func (u *UserModule) ConfigValue(key string, def any) any {
	if v, ok := u.Configuration[key]; ok {
		return v
	}
	return def
}
