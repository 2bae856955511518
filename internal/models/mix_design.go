package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rounding precision for stored quantities
const (
	MoneyPlaces      int32 = 2
	PercentagePlaces int32 = 4
)

// MixDesign is a concrete mix recipe
type MixDesign struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code             string          `gorm:"size:30;uniqueIndex;not null" json:"code"`
	Name             string          `gorm:"not null" json:"name"`
	Description      *string         `gorm:"type:text" json:"description"`
	StrengthClass    string          `gorm:"size:20;not null;index" json:"strength_class"`
	SlumpClass       *string         `gorm:"size:10" json:"slump_class"`
	ExposureClass    *string         `gorm:"size:10" json:"exposure_class"`
	WaterCementRatio decimal.Decimal `gorm:"type:decimal(6,4)" json:"water_cement_ratio"`
	IsActive         bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedBy        uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	ApprovedBy       *uuid.UUID      `gorm:"type:uuid" json:"approved_by"`
	ApprovedAt       *time.Time      `json:"approved_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Compositions []MixDesignComposition `gorm:"foreignKey:MixDesignID;constraint:OnDelete:CASCADE" json:"compositions,omitempty"`
}

// TableName specifies the table name for MixDesign
func (MixDesign) TableName() string {
	return "mix_designs"
}

// BeforeCreate assigns a UUID when none was provided
func (m *MixDesign) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Strength classes per EN 206
var StrengthClasses = []string{
	"C8/10", "C12/15", "C16/20", "C20/25", "C25/30", "C30/37", "C35/45",
	"C40/50", "C45/55", "C50/60", "C55/67", "C60/75",
}

// Slump classes per EN 206
var SlumpClasses = []string{"S1", "S2", "S3", "S4", "S5"}

// Exposure classes per EN 206
var ExposureClasses = []string{
	"X0", "XC1", "XC2", "XC3", "XC4", "XD1", "XD2", "XD3",
	"XS1", "XS2", "XS3", "XF1", "XF2", "XF3", "XF4", "XA1", "XA2", "XA3",
}

// MaterialTypes lists every accepted composition material type
var MaterialTypes = []string{
	MaterialCement, MaterialFineAggregate, MaterialCoarseAggregate,
	MaterialWater, MaterialAdmixture, MaterialSupplementary,
}

// CostPerM3 sums the rounded cost of every composition
func (m *MixDesign) CostPerM3() decimal.Decimal {
	total := decimal.Zero
	for i := range m.Compositions {
		total = total.Add(m.Compositions[i].Cost())
	}
	return total.Round(MoneyPlaces)
}

// MixDesignComposition is one material of a mix design
type MixDesignComposition struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	MixDesignID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"mix_design_id"`
	MaterialType  string          `gorm:"size:30;not null" json:"material_type"`
	MaterialName  string          `gorm:"not null" json:"material_name"`
	Percentage    decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0" json:"percentage"`
	WeightPerM3   decimal.Decimal `gorm:"column:weight_per_m3;type:decimal(10,2);not null;default:0" json:"weight_per_m3"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"unit_cost"`
	AggregateSize *string         `gorm:"size:10" json:"aggregate_size"`
	Notes         *string         `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName specifies the table name for MixDesignComposition
func (MixDesignComposition) TableName() string {
	return "mix_design_compositions"
}

// BeforeCreate assigns a UUID and normalises precision
func (c *MixDesignComposition) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Percentage = c.Percentage.Round(PercentagePlaces)
	return nil
}

// Material types
const (
	MaterialCement          = "cement"
	MaterialFineAggregate   = "fine_aggregate"
	MaterialCoarseAggregate = "coarse_aggregate"
	MaterialWater           = "water"
	MaterialAdmixture       = "admixture"
	MaterialSupplementary   = "supplementary"
)

// IsAggregate returns true for fine and coarse aggregates
func (c *MixDesignComposition) IsAggregate() bool {
	return c.MaterialType == MaterialFineAggregate || c.MaterialType == MaterialCoarseAggregate
}

// Cost returns weight_per_m3 × unit_cost rounded half away from zero to 2 places
func (c *MixDesignComposition) Cost() decimal.Decimal {
	return c.WeightPerM3.Mul(c.UnitCost).Round(MoneyPlaces)
}
