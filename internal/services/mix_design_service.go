package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"go.uber.org/multierr"
)

var hundred = decimal.NewFromInt(100)

// MixDesignService manages concrete mix designs and their cost
type MixDesignService struct {
	repo     repository.MixDesignRepository
	auditSvc *AuditService
	now      func() time.Time
}

func NewMixDesignService(repo repository.MixDesignRepository, auditSvc *AuditService) *MixDesignService {
	return &MixDesignService{repo: repo, auditSvc: auditSvc, now: time.Now}
}

// CompositionInput is one material line of a mix design
type CompositionInput struct {
	MaterialType  string          `json:"material_type" binding:"required"`
	MaterialName  string          `json:"material_name" binding:"required"`
	Percentage    decimal.Decimal `json:"percentage"`
	WeightPerM3   decimal.Decimal `json:"weight_per_m3"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	AggregateSize *string         `json:"aggregate_size"`
	Notes         *string         `json:"notes"`
}

// CreateMixDesignInput is the payload of a new mix design
type CreateMixDesignInput struct {
	Code             string             `json:"code" binding:"required,max=30"`
	Name             string             `json:"name" binding:"required,max=255"`
	Description      *string            `json:"description"`
	StrengthClass    string             `json:"strength_class" binding:"required"`
	SlumpClass       *string            `json:"slump_class"`
	ExposureClass    *string            `json:"exposure_class"`
	WaterCementRatio decimal.Decimal    `json:"water_cement_ratio"`
	Compositions     []CompositionInput `json:"compositions" binding:"required,min=1,dive"`
}

// UpdateMixDesignInput holds the header fields that may change
type UpdateMixDesignInput struct {
	Name             *string          `json:"name" binding:"omitempty,max=255"`
	Description      *string          `json:"description"`
	StrengthClass    *string          `json:"strength_class"`
	SlumpClass       *string          `json:"slump_class"`
	ExposureClass    *string          `json:"exposure_class"`
	WaterCementRatio *decimal.Decimal `json:"water_cement_ratio"`
	IsActive         *bool            `json:"is_active"`
}

// MixDesignClasses lists the accepted classification values
type MixDesignClasses struct {
	StrengthClasses []string `json:"strength_classes"`
	SlumpClasses    []string `json:"slump_classes"`
	ExposureClasses []string `json:"exposure_classes"`
	MaterialTypes   []string `json:"material_types"`
}

// CostLine is the cost of one composition
type CostLine struct {
	MaterialType string          `json:"material_type"`
	MaterialName string          `json:"material_name"`
	WeightPerM3  decimal.Decimal `json:"weight_per_m3"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// CostBreakdown is the cost per cubic metre of a mix design
type CostBreakdown struct {
	MixDesign      *models.MixDesign `json:"mix_design"`
	TotalCostPerM3 decimal.Decimal   `json:"total_cost_per_m3"`
	Breakdown      []CostLine        `json:"cost_breakdown"`
}

// MixDesignStatistics summarises the mix design catalog
type MixDesignStatistics struct {
	Total            int64            `json:"total_mix_designs"`
	Active           int64            `json:"active_mix_designs"`
	ByStrengthClass  map[string]int64 `json:"by_strength_class"`
	AverageCostPerM3 decimal.Decimal  `json:"average_cost_per_m3"`
}

// Classes returns the accepted classification values
func (s *MixDesignService) Classes() MixDesignClasses {
	return MixDesignClasses{
		StrengthClasses: models.StrengthClasses,
		SlumpClasses:    models.SlumpClasses,
		ExposureClasses: models.ExposureClasses,
		MaterialTypes:   models.MaterialTypes,
	}
}

func (s *MixDesignService) List(ctx context.Context, query *repository.ListQuery) ([]models.MixDesign, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *MixDesignService) Get(ctx context.Context, id uuid.UUID) (*models.MixDesign, error) {
	mix, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return mix, nil
}

// Create stores a mix design with its compositions
func (s *MixDesignService) Create(ctx context.Context, input CreateMixDesignInput) (*models.MixDesign, error) {
	err := multierr.Combine(
		validateClasses(input.StrengthClass, input.SlumpClass, input.ExposureClass),
		validateCompositions(input.Compositions),
	)
	if err != nil {
		return nil, err
	}

	mix := &models.MixDesign{
		Code:             strings.ToUpper(strings.TrimSpace(input.Code)),
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		StrengthClass:    input.StrengthClass,
		SlumpClass:       input.SlumpClass,
		ExposureClass:    input.ExposureClass,
		WaterCementRatio: input.WaterCementRatio.Round(models.PercentagePlaces),
		IsActive:         true,
		CreatedBy:        actorID(ctx),
		Compositions:     buildCompositions(input.Compositions),
	}
	if err := s.repo.Create(ctx, mix); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: mix design code %s is already in use", ErrDuplicate, mix.Code)
		}
		return nil, err
	}

	s.auditSvc.LogCreated(ctx, Subject{Type: "mix_design", ID: mix.ID}, mix)
	return mix, nil
}

// Update changes the header of a mix design
func (s *MixDesignService) Update(ctx context.Context, id uuid.UUID, input UpdateMixDesignInput) (*models.MixDesign, error) {
	mix, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *mix
	before.Compositions = nil

	if input.Name != nil {
		mix.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		mix.Description = input.Description
	}
	if input.StrengthClass != nil {
		mix.StrengthClass = *input.StrengthClass
	}
	if input.SlumpClass != nil {
		mix.SlumpClass = input.SlumpClass
	}
	if input.ExposureClass != nil {
		mix.ExposureClass = input.ExposureClass
	}
	if input.WaterCementRatio != nil {
		mix.WaterCementRatio = input.WaterCementRatio.Round(models.PercentagePlaces)
	}
	if input.IsActive != nil {
		mix.IsActive = *input.IsActive
	}
	if err := validateClasses(mix.StrengthClass, mix.SlumpClass, mix.ExposureClass); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, mix); err != nil {
		return nil, err
	}
	after := *mix
	after.Compositions = nil
	s.auditSvc.LogUpdated(ctx, Subject{Type: "mix_design", ID: mix.ID}, before, after)
	return mix, nil
}

// ReplaceCompositions swaps the material list of a mix design
func (s *MixDesignService) ReplaceCompositions(ctx context.Context, id uuid.UUID, inputs []CompositionInput) (*models.MixDesign, error) {
	mix, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one composition is required", ErrInvalidInput)
	}
	if err := validateCompositions(inputs); err != nil {
		return nil, err
	}

	before := mix.CostPerM3()
	compositions := buildCompositions(inputs)
	if err := s.repo.ReplaceCompositions(ctx, mix.ID, compositions); err != nil {
		return nil, err
	}
	mix.Compositions = compositions

	s.auditSvc.LogUpdated(ctx, Subject{Type: "mix_design", ID: mix.ID},
		map[string]any{"cost_per_m3": before.StringFixed(models.MoneyPlaces)},
		map[string]any{"cost_per_m3": mix.CostPerM3().StringFixed(models.MoneyPlaces)})
	return mix, nil
}

// Approve records the acting user as approver
func (s *MixDesignService) Approve(ctx context.Context, id uuid.UUID) (*models.MixDesign, error) {
	mix, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if mix.ApprovedAt != nil {
		return nil, fmt.Errorf("%w: mix design %s is already approved", ErrInvalidState, mix.Code)
	}

	approver := actorID(ctx)
	now := s.now()
	mix.ApprovedBy = &approver
	mix.ApprovedAt = &now
	if err := s.repo.Update(ctx, mix); err != nil {
		return nil, err
	}

	s.auditSvc.LogUpdated(ctx, Subject{Type: "mix_design", ID: mix.ID},
		map[string]any{"approved_at": nil},
		map[string]any{"approved_at": now})
	return mix, nil
}

// Delete removes a mix design and its compositions
func (s *MixDesignService) Delete(ctx context.Context, id uuid.UUID) error {
	mix, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditSvc.LogDeleted(ctx, Subject{Type: "mix_design", ID: mix.ID}, map[string]any{"code": mix.Code, "name": mix.Name})
	return nil
}

// Cost computes the cost per cubic metre with a per-material breakdown
func (s *MixDesignService) Cost(ctx context.Context, id uuid.UUID) (*CostBreakdown, error) {
	mix, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	breakdown := make([]CostLine, 0, len(mix.Compositions))
	for i := range mix.Compositions {
		c := &mix.Compositions[i]
		breakdown = append(breakdown, CostLine{
			MaterialType: c.MaterialType,
			MaterialName: c.MaterialName,
			WeightPerM3:  c.WeightPerM3,
			UnitCost:     c.UnitCost,
			TotalCost:    c.Cost(),
		})
	}
	return &CostBreakdown{MixDesign: mix, TotalCostPerM3: mix.CostPerM3(), Breakdown: breakdown}, nil
}

// Statistics counts mix designs and averages their cost per cubic metre
func (s *MixDesignService) Statistics(ctx context.Context) (*MixDesignStatistics, error) {
	mixes, total, err := s.repo.List(ctx, &repository.ListQuery{Filters: map[string]string{}})
	if err != nil {
		return nil, err
	}

	stats := &MixDesignStatistics{Total: total, ByStrengthClass: map[string]int64{}}
	sum := decimal.Zero
	for i := range mixes {
		if mixes[i].IsActive {
			stats.Active++
		}
		stats.ByStrengthClass[mixes[i].StrengthClass]++
		sum = sum.Add(mixes[i].CostPerM3())
	}
	if len(mixes) > 0 {
		stats.AverageCostPerM3 = sum.Div(decimal.NewFromInt(int64(len(mixes)))).Round(models.MoneyPlaces)
	}
	return stats, nil
}

func validateClasses(strength string, slump, exposure *string) error {
	var errs error
	if !slices.Contains(models.StrengthClasses, strength) {
		errs = multierr.Append(errs, fmt.Errorf("%w: unknown strength class %q", ErrInvalidInput, strength))
	}
	if slump != nil && *slump != "" && !slices.Contains(models.SlumpClasses, *slump) {
		errs = multierr.Append(errs, fmt.Errorf("%w: unknown slump class %q", ErrInvalidInput, *slump))
	}
	if exposure != nil && *exposure != "" && !slices.Contains(models.ExposureClasses, *exposure) {
		errs = multierr.Append(errs, fmt.Errorf("%w: unknown exposure class %q", ErrInvalidInput, *exposure))
	}
	return errs
}

func validateCompositions(inputs []CompositionInput) error {
	var errs error
	total := decimal.Zero
	for i, c := range inputs {
		if !slices.Contains(models.MaterialTypes, c.MaterialType) {
			errs = multierr.Append(errs, fmt.Errorf("%w: composition %d: unknown material type %q", ErrInvalidInput, i+1, c.MaterialType))
		}
		if c.Percentage.IsNegative() || c.Percentage.GreaterThan(hundred) {
			errs = multierr.Append(errs, fmt.Errorf("%w: composition %d: percentage must be between 0 and 100", ErrInvalidInput, i+1))
		}
		if c.WeightPerM3.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("%w: composition %d: weight_per_m3 cannot be negative", ErrInvalidInput, i+1))
		}
		if c.UnitCost.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("%w: composition %d: unit_cost cannot be negative", ErrInvalidInput, i+1))
		}
		total = total.Add(c.Percentage)
	}
	if total.GreaterThan(hundred) {
		errs = multierr.Append(errs, fmt.Errorf("%w: composition percentages add up to %s", ErrInvalidInput, total.String()))
	}
	return errs
}

func buildCompositions(inputs []CompositionInput) []models.MixDesignComposition {
	out := make([]models.MixDesignComposition, 0, len(inputs))
	for _, c := range inputs {
		out = append(out, models.MixDesignComposition{
			MaterialType:  c.MaterialType,
			MaterialName:  strings.TrimSpace(c.MaterialName),
			Percentage:    c.Percentage.Round(models.PercentagePlaces),
			WeightPerM3:   c.WeightPerM3.Round(models.MoneyPlaces),
			UnitCost:      c.UnitCost.Round(models.PercentagePlaces),
			AggregateSize: c.AggregateSize,
			Notes:         c.Notes,
		})
	}
	return out
}
