package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeModuleRepo struct {
	repository.ModuleRepository
	types   map[string]*models.BusinessType
	modules map[string]*models.Module
	recs    map[[2]uuid.UUID]*models.ModuleRecommendation
	failOn  string
}

func newFakeModuleRepo() *fakeModuleRepo {
	return &fakeModuleRepo{
		types:   map[string]*models.BusinessType{},
		modules: map[string]*models.Module{},
		recs:    map[[2]uuid.UUID]*models.ModuleRecommendation{},
	}
}

func (f *fakeModuleRepo) UpsertBusinessType(ctx context.Context, bt *models.BusinessType) error {
	if existing, ok := f.types[bt.Slug]; ok {
		bt.ID = existing.ID
	} else {
		bt.ID = uuid.New()
	}
	copied := *bt
	f.types[bt.Slug] = &copied
	return nil
}

func (f *fakeModuleRepo) FindBusinessTypeBySlug(ctx context.Context, slug string) (*models.BusinessType, error) {
	bt, ok := f.types[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return bt, nil
}

func (f *fakeModuleRepo) UpsertModule(ctx context.Context, m *models.Module) error {
	if m.Slug == f.failOn {
		return errors.New("write failed")
	}
	if existing, ok := f.modules[m.Slug]; ok {
		m.ID = existing.ID
	} else {
		m.ID = uuid.New()
	}
	copied := *m
	f.modules[m.Slug] = &copied
	return nil
}

func (f *fakeModuleRepo) FindModuleBySlug(ctx context.Context, slug string) (*models.Module, error) {
	m, ok := f.modules[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (f *fakeModuleRepo) UpsertRecommendation(ctx context.Context, rec *models.ModuleRecommendation) error {
	copied := *rec
	f.recs[[2]uuid.UUID{rec.BusinessTypeID, rec.ModuleID}] = &copied
	return nil
}

type fakeLedgerRepo struct {
	repository.LedgerRepository
	accounts map[string]*models.Account
}

func (f *fakeLedgerRepo) FindAccountByCode(ctx context.Context, code string) (*models.Account, error) {
	a, ok := f.accounts[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeLedgerRepo) CreateAccount(ctx context.Context, a *models.Account) error {
	a.ID = uuid.New()
	f.accounts[a.Code] = a
	return nil
}

type fakeUserRepo struct {
	repository.UserRepository
	users map[string]*models.User
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	u.ID = uuid.New()
	f.users[u.Email] = u
	return nil
}

func newSeeder() (*Seeder, *fakeModuleRepo, *fakeLedgerRepo, *fakeUserRepo) {
	catalog := newFakeModuleRepo()
	ledger := &fakeLedgerRepo{accounts: map[string]*models.Account{}}
	users := &fakeUserRepo{users: map[string]*models.User{}}
	return NewSeeder(&repository.Repositories{Module: catalog, Ledger: ledger, User: users}), catalog, ledger, users
}

func TestCatalog_IsIdempotent(t *testing.T) {
	s, catalog, _, _ := newSeeder()
	ctx := context.Background()

	require.NoError(t, s.Catalog(ctx))
	firstAccounting := catalog.modules["accounting"].ID
	recCount := len(catalog.recs)

	require.NoError(t, s.Catalog(ctx))

	assert.Len(t, catalog.types, len(businessTypes))
	assert.Len(t, catalog.modules, len(modules))
	assert.Equal(t, firstAccounting, catalog.modules["accounting"].ID)
	assert.Equal(t, recCount, len(catalog.recs))

	concrete := catalog.types["concrete-factory"].ID
	mixDesign := catalog.modules["mix-design"].ID
	rec, ok := catalog.recs[[2]uuid.UUID{concrete, mixDesign}]
	require.True(t, ok)
	assert.Equal(t, 1, rec.Priority)
	assert.False(t, rec.IsRequired)

	core := catalog.recs[[2]uuid.UUID{concrete, firstAccounting}]
	require.NotNil(t, core)
	assert.True(t, core.IsRequired)
}

func TestCatalog_CategoriesAreKnown(t *testing.T) {
	for _, m := range modules {
		_, ok := models.ModuleCategories[m.Category]
		assert.True(t, ok, "module %s has unknown category %s", m.Slug, m.Category)
	}
	for typeSlug, recs := range recommendations {
		for _, rec := range recs {
			found := false
			for _, m := range modules {
				if m.Slug == rec.Module {
					found = true
					break
				}
			}
			assert.True(t, found, "%s recommends unknown module %s", typeSlug, rec.Module)
		}
	}
}

func TestCatalog_CollectsErrors(t *testing.T) {
	s, catalog, _, _ := newSeeder()
	catalog.failOn = "inventory"

	err := s.Catalog(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "module inventory")
	assert.NotContains(t, catalog.modules, "inventory")
	assert.Contains(t, catalog.modules, "sales")
}

func TestChartOfAccounts(t *testing.T) {
	s, _, ledger, _ := newSeeder()
	ctx := context.Background()

	require.NoError(t, s.ChartOfAccounts(ctx))
	require.Len(t, ledger.accounts, len(chartOfAccounts))

	cash := ledger.accounts["1111"]
	require.NotNil(t, cash.ParentID)
	assert.Equal(t, ledger.accounts["1110"].ID, *cash.ParentID)
	assert.Equal(t, 3, cash.Level)
	assert.True(t, cash.IsSystem)

	assert.Nil(t, ledger.accounts["4000"].ParentID)
	assert.Equal(t, 0, ledger.accounts["4000"].Level)
	assert.Equal(t, models.NormalBalanceCredit, ledger.accounts["1211"].NormalBalance)

	for _, a := range ledger.accounts {
		if a.Type == models.AccountTypeAsset || a.Type == models.AccountTypeExpense {
			if a.Code == "1211" {
				continue
			}
			assert.Equal(t, models.NormalBalanceDebit, a.NormalBalance, a.Code)
		}
	}

	ids := map[string]uuid.UUID{}
	for code, a := range ledger.accounts {
		ids[code] = a.ID
	}
	require.NoError(t, s.ChartOfAccounts(ctx))
	for code, a := range ledger.accounts {
		assert.Equal(t, ids[code], a.ID)
	}
}

func TestAdmin(t *testing.T) {
	s, _, _, users := newSeeder()
	ctx := context.Background()

	require.NoError(t, s.Admin(ctx, Admin{Email: " Admin@Example.com ", Password: "Sup3rSecret!"}))
	admin := users.users["admin@example.com"]
	require.NotNil(t, admin)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, "Administrator", admin.Name)
	assert.True(t, services.VerifyPassword("Sup3rSecret!", admin.Password))

	first := admin.ID
	require.NoError(t, s.Admin(ctx, Admin{Email: "admin@example.com", Password: "other"}))
	assert.Equal(t, first, users.users["admin@example.com"].ID)

	assert.Error(t, s.Admin(ctx, Admin{Email: "", Password: "x"}))
}
