package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockModuleRepo struct {
	repository.ModuleRepository
	mu            sync.Mutex
	modules       []models.Module
	businessTypes []models.BusinessType
	recs          []models.ModuleRecommendation
	userModules   map[uuid.UUID]models.UserModule
}

func (m *mockModuleRepo) ListModules(ctx context.Context, category string, activeOnly bool) ([]models.Module, error) {
	var out []models.Module
	for _, mod := range m.modules {
		if (category != "" && mod.Category != category) || (activeOnly && !mod.IsActive) {
			continue
		}
		out = append(out, mod)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *mockModuleRepo) FindModuleBySlug(ctx context.Context, slug string) (*models.Module, error) {
	for _, mod := range m.modules {
		if mod.Slug == slug {
			return &mod, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) FindModuleByID(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	for _, mod := range m.modules {
		if mod.ID == id {
			return &mod, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) CountModules(ctx context.Context, activeOnly bool) (int64, error) {
	mods, _ := m.ListModules(ctx, "", activeOnly)
	return int64(len(mods)), nil
}

func (m *mockModuleRepo) CountCoreModules(ctx context.Context) (int64, error) {
	var n int64
	for _, mod := range m.modules {
		if mod.IsCore && mod.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *mockModuleRepo) CountModulesByCategory(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, mod := range m.modules {
		if mod.IsActive {
			out[mod.Category]++
		}
	}
	return out, nil
}

func (m *mockModuleRepo) CountActiveUserModules(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, um := range m.userModules {
		if um.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *mockModuleRepo) FindBusinessTypeBySlug(ctx context.Context, slug string) (*models.BusinessType, error) {
	for _, bt := range m.businessTypes {
		if bt.Slug == slug {
			return &bt, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) Recommendations(ctx context.Context, businessTypeID uuid.UUID) ([]models.ModuleRecommendation, error) {
	var out []models.ModuleRecommendation
	for _, r := range m.recs {
		if r.BusinessTypeID == businessTypeID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (m *mockModuleRepo) ListUserModules(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.UserModule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UserModule
	for _, um := range m.userModules {
		if um.UserID == userID && (!activeOnly || um.IsActive) {
			out = append(out, um)
		}
	}
	return out, nil
}

func (m *mockModuleRepo) FindUserModule(ctx context.Context, userID, moduleID uuid.UUID) (*models.UserModule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, um := range m.userModules {
		if um.UserID == userID && um.ModuleID == moduleID {
			return &um, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) CreateUserModule(ctx context.Context, um *models.UserModule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if um.ID == uuid.Nil {
		um.ID = uuid.New()
	}
	m.userModules[um.ID] = *um
	return nil
}

func (m *mockModuleRepo) UpdateUserModule(ctx context.Context, um *models.UserModule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userModules[um.ID] = *um
	return nil
}

type moduleFixture struct {
	svc      *ModuleService
	repo     *mockModuleRepo
	activity *fakeActivityRepo
	ledger   models.Module
	sales    models.Module
	retired  models.Module
	user     uuid.UUID
}

func newModuleFixture(t *testing.T) *moduleFixture {
	t.Helper()
	ledger := models.Module{ID: uuid.New(), Name: "General Ledger", Slug: "general-ledger", Category: "core", IsCore: true, IsActive: true, SortOrder: 1}
	sales := models.Module{ID: uuid.New(), Name: "Point of Sale", Slug: "point-of-sale", Category: "retail", IsActive: true, SortOrder: 2}
	retired := models.Module{ID: uuid.New(), Name: "Legacy", Slug: "legacy", Category: "retail", IsActive: false, SortOrder: 3}
	shop := models.BusinessType{ID: uuid.New(), Name: "Retail Store", Slug: "retail-store", IsActive: true}

	repo := &mockModuleRepo{
		modules:       []models.Module{sales, ledger, retired},
		businessTypes: []models.BusinessType{shop},
		recs: []models.ModuleRecommendation{
			{ID: uuid.New(), BusinessTypeID: shop.ID, ModuleID: sales.ID, Priority: 2},
			{ID: uuid.New(), BusinessTypeID: shop.ID, ModuleID: ledger.ID, Priority: 1, IsRequired: true},
		},
		userModules: map[uuid.UUID]models.UserModule{},
	}
	activity := &fakeActivityRepo{}
	svc := NewModuleService(repo, NewAuditService(activity))
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return &moduleFixture{svc: svc, repo: repo, activity: activity, ledger: ledger, sales: sales, retired: retired, user: uuid.New()}
}

func TestModuleService_ListFiltersCore(t *testing.T) {
	f := newModuleFixture(t)
	ctx := context.Background()

	all, err := f.svc.List(ctx, ModuleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "general-ledger", all[0].Slug)

	core := false
	nonCore, err := f.svc.List(ctx, ModuleFilter{Core: &core})
	require.NoError(t, err)
	require.Len(t, nonCore, 1)
	assert.Equal(t, "point-of-sale", nonCore[0].Slug)

	_, err = f.svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModuleService_Categories(t *testing.T) {
	f := newModuleFixture(t)
	cats := f.svc.Categories()
	require.Len(t, cats, len(models.ModuleCategories))
	assert.Equal(t, "construction", cats[0].Slug)
	assert.Equal(t, "Construction", cats[0].Name)
}

func TestModuleService_Statistics(t *testing.T) {
	f := newModuleFixture(t)
	_, _, err := f.svc.Activate(context.Background(), f.user, f.sales.ID)
	require.NoError(t, err)

	stats, err := f.svc.Statistics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalModules)
	assert.Equal(t, int64(2), stats.ActiveModules)
	assert.Equal(t, int64(1), stats.CoreModules)
	assert.Equal(t, int64(1), stats.ByCategory["retail"])
	assert.Equal(t, int64(1), stats.ActiveUserModules)
}

func TestModuleService_ForBusinessType(t *testing.T) {
	f := newModuleFixture(t)

	result, err := f.svc.ForBusinessType(context.Background(), "retail-store")

	require.NoError(t, err)
	require.Len(t, result.Recommended, 2)
	assert.Equal(t, f.ledger.ID, result.Recommended[0].ModuleID)
	assert.Equal(t, BusinessTypeModuleCounts{Recommended: 2, Required: 1, Total: 2}, result.Counts)

	_, err = f.svc.ForBusinessType(context.Background(), "bakery")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModuleService_ActivateLifecycle(t *testing.T) {
	f := newModuleFixture(t)
	ctx := context.Background()

	um, created, err := f.svc.Activate(ctx, f.user, f.sales.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, um.IsActive)
	require.NotNil(t, um.ActivatedAt)

	_, _, err = f.svc.Activate(ctx, f.user, f.sales.ID)
	assert.ErrorIs(t, err, ErrModuleAlreadyActive)

	um, err = f.svc.Deactivate(ctx, f.user, f.sales.ID)
	require.NoError(t, err)
	assert.False(t, um.IsActive)

	_, err = f.svc.Deactivate(ctx, f.user, f.sales.ID)
	assert.ErrorIs(t, err, ErrModuleAlreadyInactive)

	um, created, err = f.svc.Activate(ctx, f.user, f.sales.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, um.IsActive)
	assert.Len(t, f.repo.userModules, 1)

	assert.Equal(t, []string{
		models.ActivityModuleActivated,
		models.ActivityModuleDeactivated,
		models.ActivityModuleActivated,
	}, f.activity.events())
}

func TestModuleService_ActivateRejectsUnavailable(t *testing.T) {
	f := newModuleFixture(t)

	_, _, err := f.svc.Activate(context.Background(), f.user, f.retired.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, _, err = f.svc.Activate(context.Background(), f.user, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModuleService_DeactivateNeverActivated(t *testing.T) {
	f := newModuleFixture(t)
	_, err := f.svc.Deactivate(context.Background(), f.user, f.ledger.ID)
	assert.ErrorIs(t, err, ErrModuleNotActivated)
}

func TestModuleService_BulkActivateSkipsActive(t *testing.T) {
	f := newModuleFixture(t)
	ctx := context.Background()
	_, _, err := f.svc.Activate(ctx, f.user, f.ledger.ID)
	require.NoError(t, err)

	result, err := f.svc.BulkActivate(ctx, f.user, []uuid.UUID{f.ledger.ID, f.sales.ID, f.sales.ID})

	require.NoError(t, err)
	require.Len(t, result.Activated, 1)
	assert.Equal(t, f.sales.ID, result.Activated[0].ModuleID)
	assert.Equal(t, []uuid.UUID{f.ledger.ID}, result.Skipped)
}

func TestModuleService_UpdateConfiguration(t *testing.T) {
	f := newModuleFixture(t)
	ctx := context.Background()
	_, _, err := f.svc.Activate(ctx, f.user, f.sales.ID)
	require.NoError(t, err)

	um, err := f.svc.UpdateConfiguration(ctx, f.user, f.sales.ID, map[string]any{"tax_rate": 0.15})

	require.NoError(t, err)
	assert.Equal(t, 0.15, um.ConfigValue("tax_rate", nil))
	assert.Equal(t, "USD", um.ConfigValue("currency", "USD"))
}

func (m *mockModuleRepo) FindBusinessTypeByID(ctx context.Context, id uuid.UUID) (*models.BusinessType, error) {
	for _, bt := range m.businessTypes {
		if bt.ID == id {
			return &bt, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
