package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ModuleService exposes the module catalog, business types and per-user activations
type ModuleService struct {
	repo     repository.ModuleRepository
	auditSvc *AuditService
	now      func() time.Time
}

func NewModuleService(repo repository.ModuleRepository, auditSvc *AuditService) *ModuleService {
	return &ModuleService{repo: repo, auditSvc: auditSvc, now: time.Now}
}

// ModuleFilter narrows the module listing
type ModuleFilter struct {
	Category string
	Core     *bool
}

// ModuleCategory is one entry of the category list
type ModuleCategory struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// ModuleStatistics summarises the catalog and its adoption
type ModuleStatistics struct {
	TotalModules      int64            `json:"total_modules"`
	ActiveModules     int64            `json:"active_modules"`
	CoreModules       int64            `json:"core_modules"`
	ByCategory        map[string]int64 `json:"by_category"`
	ActiveUserModules int64            `json:"active_user_modules"`
}

// BusinessTypeModules lists the modules suggested for one business type
type BusinessTypeModules struct {
	BusinessType *models.BusinessType          `json:"business_type"`
	Recommended  []models.ModuleRecommendation `json:"recommended_modules"`
	AllModules   []models.Module               `json:"all_modules"`
	Counts       BusinessTypeModuleCounts      `json:"counts"`
}

// BusinessTypeModuleCounts holds the totals shown next to a business type's modules
type BusinessTypeModuleCounts struct {
	Recommended int `json:"recommended"`
	Required    int `json:"required"`
	Total       int `json:"total"`
}

// BulkActivation reports which modules a bulk request activated
type BulkActivation struct {
	Activated []models.UserModule `json:"activated"`
	Skipped   []uuid.UUID         `json:"skipped"`
}

// List returns active modules ordered by sort order and name
func (s *ModuleService) List(ctx context.Context, filter ModuleFilter) ([]models.Module, error) {
	modules, err := s.repo.ListModules(ctx, filter.Category, true)
	if err != nil {
		return nil, err
	}
	if filter.Core == nil {
		return modules, nil
	}
	out := modules[:0]
	for _, m := range modules {
		if m.IsCore == *filter.Core {
			out = append(out, m)
		}
	}
	return out, nil
}

// Get returns a module by slug
func (s *ModuleService) Get(ctx context.Context, slug string) (*models.Module, error) {
	module, err := s.repo.FindModuleBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	return module, nil
}

// Categories lists the known module categories ordered by slug
func (s *ModuleService) Categories() []ModuleCategory {
	out := make([]ModuleCategory, 0, len(models.ModuleCategories))
	for slug, name := range models.ModuleCategories {
		out = append(out, ModuleCategory{Slug: slug, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// Statistics counts catalog and activation figures concurrently
func (s *ModuleService) Statistics(ctx context.Context) (*ModuleStatistics, error) {
	stats := &ModuleStatistics{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.TotalModules, err = s.repo.CountModules(ctx, false)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveModules, err = s.repo.CountModules(ctx, true)
		return err
	})
	g.Go(func() (err error) {
		stats.CoreModules, err = s.repo.CountCoreModules(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ByCategory, err = s.repo.CountModulesByCategory(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveUserModules, err = s.repo.CountActiveUserModules(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// BusinessTypes lists business types ordered by sort order
func (s *ModuleService) BusinessTypes(ctx context.Context, activeOnly bool) ([]models.BusinessType, error) {
	return s.repo.ListBusinessTypes(ctx, activeOnly)
}

// BusinessType returns a business type with its recommendations
func (s *ModuleService) BusinessType(ctx context.Context, slug string) (*models.BusinessType, error) {
	bt, err := s.repo.FindBusinessTypeBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	recs, err := s.repo.Recommendations(ctx, bt.ID)
	if err != nil {
		return nil, err
	}
	bt.Recommendations = recs
	return bt, nil
}

// Recommendations returns the modules recommended for a business type, by priority
func (s *ModuleService) Recommendations(ctx context.Context, slug string) ([]models.ModuleRecommendation, error) {
	bt, err := s.repo.FindBusinessTypeBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	return s.repo.Recommendations(ctx, bt.ID)
}

// ForBusinessType returns the recommended modules next to the full active catalog
func (s *ModuleService) ForBusinessType(ctx context.Context, slug string) (*BusinessTypeModules, error) {
	bt, err := s.repo.FindBusinessTypeBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}

	result := &BusinessTypeModules{BusinessType: bt}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result.Recommended, err = s.repo.Recommendations(gctx, bt.ID)
		return err
	})
	g.Go(func() (err error) {
		result.AllModules, err = s.repo.ListModules(gctx, "", true)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Counts.Recommended = len(result.Recommended)
	result.Counts.Total = len(result.AllModules)
	for _, r := range result.Recommended {
		if r.IsRequired {
			result.Counts.Required++
		}
	}
	return result, nil
}

// UserModules lists a user's module activations
func (s *ModuleService) UserModules(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.UserModule, error) {
	return s.repo.ListUserModules(ctx, userID, activeOnly)
}

// Activate turns a module on for a user. The returned flag reports whether a new
// activation record was created rather than an inactive one reactivated.
func (s *ModuleService) Activate(ctx context.Context, userID, moduleID uuid.UUID) (*models.UserModule, bool, error) {
	module, err := s.repo.FindModuleByID(ctx, moduleID)
	if err != nil {
		return nil, false, notFound(err)
	}
	if !module.IsActive {
		return nil, false, fmt.Errorf("%w: module %s is not available", ErrInvalidState, module.Slug)
	}

	now := s.now()
	um, err := s.repo.FindUserModule(ctx, userID, moduleID)
	switch {
	case err == nil:
		if um.IsActive {
			return nil, false, ErrModuleAlreadyActive
		}
		um.Activate(now)
		if err := s.repo.UpdateUserModule(ctx, um); err != nil {
			return nil, false, err
		}
		um.Module = module
		s.auditSvc.LogModuleActivated(ctx, module)
		return um, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, err
	}

	um = &models.UserModule{UserID: userID, ModuleID: moduleID, Configuration: map[string]any{}}
	um.Activate(now)
	if err := s.repo.CreateUserModule(ctx, um); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, false, ErrModuleAlreadyActive
		}
		return nil, false, err
	}
	um.Module = module
	s.auditSvc.LogModuleActivated(ctx, module)
	return um, true, nil
}

// BulkActivate activates several modules, skipping those already active
func (s *ModuleService) BulkActivate(ctx context.Context, userID uuid.UUID, moduleIDs []uuid.UUID) (*BulkActivation, error) {
	result := &BulkActivation{Activated: []models.UserModule{}, Skipped: []uuid.UUID{}}
	seen := make(map[uuid.UUID]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		um, _, err := s.Activate(ctx, userID, id)
		switch {
		case errors.Is(err, ErrModuleAlreadyActive):
			result.Skipped = append(result.Skipped, id)
		case err != nil:
			return nil, fmt.Errorf("module %s: %w", id, err)
		default:
			result.Activated = append(result.Activated, *um)
		}
	}
	return result, nil
}

// Deactivate turns a module off for a user
func (s *ModuleService) Deactivate(ctx context.Context, userID, moduleID uuid.UUID) (*models.UserModule, error) {
	um, err := s.findUserModule(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	if !um.IsActive {
		return nil, ErrModuleAlreadyInactive
	}
	um.Deactivate()
	if err := s.repo.UpdateUserModule(ctx, um); err != nil {
		return nil, err
	}
	s.auditSvc.LogModuleDeactivated(ctx, um.Module)
	return um, nil
}

// UpdateConfiguration replaces the configuration of a user's module
func (s *ModuleService) UpdateConfiguration(ctx context.Context, userID, moduleID uuid.UUID, configuration map[string]any) (*models.UserModule, error) {
	um, err := s.findUserModule(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	before := um.Configuration
	um.Configuration = configuration
	if err := s.repo.UpdateUserModule(ctx, um); err != nil {
		return nil, err
	}
	s.auditSvc.LogUpdated(ctx, Subject{Type: "user_module", ID: um.ID},
		map[string]any{"configuration": before},
		map[string]any{"configuration": configuration})
	return um, nil
}

func (s *ModuleService) findUserModule(ctx context.Context, userID, moduleID uuid.UUID) (*models.UserModule, error) {
	module, err := s.repo.FindModuleByID(ctx, moduleID)
	if err != nil {
		return nil, notFound(err)
	}
	um, err := s.repo.FindUserModule(ctx, userID, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotActivated
		}
		return nil, err
	}
	um.Module = module
	return um, nil
}
