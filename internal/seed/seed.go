// Package seed loads the reference data a fresh installation needs:
// business types, the module catalog with its recommendations, the
// default chart of accounts and an initial administrator.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/internal/services"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Seeder writes reference data through the repositories
type Seeder struct {
	modules repository.ModuleRepository
	ledger  repository.LedgerRepository
	users   repository.UserRepository
}

// NewSeeder creates a new seeder
func NewSeeder(repos *repository.Repositories) *Seeder {
	return &Seeder{modules: repos.Module, ledger: repos.Ledger, users: repos.User}
}

// Admin describes the administrator created on first run
type Admin struct {
	Name     string
	Email    string
	Password string
}

// Run seeds everything. Each step is idempotent; failures are collected
// so one bad record does not hide the rest.
func (s *Seeder) Run(ctx context.Context, admin *Admin) error {
	var err error
	err = multierr.Append(err, s.Catalog(ctx))
	err = multierr.Append(err, s.ChartOfAccounts(ctx))
	if admin != nil {
		err = multierr.Append(err, s.Admin(ctx, *admin))
	}
	return err
}

// Catalog upserts business types, modules and recommendations
func (s *Seeder) Catalog(ctx context.Context) error {
	var errs error

	typeIDs := make(map[string]uuid.UUID, len(businessTypes))
	for i, bt := range businessTypes {
		record := &models.BusinessType{
			Name:        bt.Name,
			Slug:        bt.Slug,
			Description: ptr(bt.Description),
			Icon:        ptr(bt.Icon),
			Color:       ptr(bt.Color),
			IsActive:    true,
			SortOrder:   i + 1,
		}
		if err := s.modules.UpsertBusinessType(ctx, record); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("business type %s: %w", bt.Slug, err))
			continue
		}
		stored, err := s.modules.FindBusinessTypeBySlug(ctx, bt.Slug)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("business type %s: %w", bt.Slug, err))
			continue
		}
		typeIDs[bt.Slug] = stored.ID
	}

	moduleIDs := make(map[string]uuid.UUID, len(modules))
	for _, m := range modules {
		record := &models.Module{
			Name:        m.Name,
			Slug:        m.Slug,
			Description: ptr(m.Description),
			Category:    m.Category,
			Icon:        ptr(m.Icon),
			Version:     "1.0.0",
			IsCore:      m.IsCore,
			IsActive:    true,
			SortOrder:   m.SortOrder,
		}
		if err := s.modules.UpsertModule(ctx, record); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("module %s: %w", m.Slug, err))
			continue
		}
		stored, err := s.modules.FindModuleBySlug(ctx, m.Slug)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("module %s: %w", m.Slug, err))
			continue
		}
		moduleIDs[m.Slug] = stored.ID
	}

	count := 0
	for typeSlug, recs := range recommendations {
		typeID, ok := typeIDs[typeSlug]
		if !ok {
			continue
		}
		for _, rec := range recs {
			moduleID, ok := moduleIDs[rec.Module]
			if !ok {
				continue
			}
			err := s.modules.UpsertRecommendation(ctx, &models.ModuleRecommendation{
				BusinessTypeID: typeID,
				ModuleID:       moduleID,
				Priority:       rec.Priority,
				IsRequired:     rec.IsRequired,
			})
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("recommendation %s/%s: %w", typeSlug, rec.Module, err))
				continue
			}
			count++
		}
	}

	logger.Info("Seeded module catalog",
		"business_types", len(typeIDs),
		"modules", len(moduleIDs),
		"recommendations", count)
	return errs
}

// ChartOfAccounts creates the default system accounts that do not exist yet
func (s *Seeder) ChartOfAccounts(ctx context.Context) error {
	var errs error
	byCode := make(map[string]*models.Account, len(chartOfAccounts))
	created := 0

	for _, a := range chartOfAccounts {
		existing, err := s.ledger.FindAccountByCode(ctx, a.Code)
		switch {
		case err == nil:
			byCode[a.Code] = existing
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			errs = multierr.Append(errs, fmt.Errorf("account %s: %w", a.Code, err))
			continue
		}

		account := &models.Account{
			Code:          a.Code,
			Name:          a.Name,
			Type:          a.Type,
			SubType:       a.SubType,
			IsActive:      true,
			IsSystem:      true,
			NormalBalance: a.NormalBalance,
		}
		if a.Parent != "" {
			parent, ok := byCode[a.Parent]
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("account %s: parent %s is missing", a.Code, a.Parent))
				continue
			}
			account.ParentID = &parent.ID
			account.Level = parent.Level + 1
		}
		if err := s.ledger.CreateAccount(ctx, account); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("account %s: %w", a.Code, err))
			continue
		}
		byCode[a.Code] = account
		created++
	}

	logger.Info("Seeded chart of accounts", "created", created, "total", len(byCode))
	return errs
}

// Admin creates the administrator unless a user with the e-mail exists
func (s *Seeder) Admin(ctx context.Context, admin Admin) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		return fmt.Errorf("admin e-mail and password are required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		logger.Info("Admin user already exists", "email", email)
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := services.HashPassword(admin.Password)
	if err != nil {
		return err
	}
	name := admin.Name
	if name == "" {
		name = "Administrator"
	}
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
		Status:   models.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("admin %s: %w", email, err)
	}
	logger.Info("Created admin user", "email", email, "user_id", user.ID)
	return nil
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
