package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockModuleRepo struct {
	repository.ModuleRepository
	modules     []models.Module
	userModules map[uuid.UUID]*models.UserModule
}

func (m *mockModuleRepo) FindModuleByID(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	for i := range m.modules {
		if m.modules[i].ID == id {
			return &m.modules[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) FindModuleBySlug(ctx context.Context, slug string) (*models.Module, error) {
	for i := range m.modules {
		if m.modules[i].Slug == slug {
			return &m.modules[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) FindUserModule(ctx context.Context, userID, moduleID uuid.UUID) (*models.UserModule, error) {
	for _, um := range m.userModules {
		if um.UserID == userID && um.ModuleID == moduleID {
			copied := *um
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockModuleRepo) CreateUserModule(ctx context.Context, um *models.UserModule) error {
	um.ID = uuid.New()
	copied := *um
	m.userModules[um.ID] = &copied
	return nil
}

func (m *mockModuleRepo) UpdateUserModule(ctx context.Context, um *models.UserModule) error {
	copied := *um
	m.userModules[um.ID] = &copied
	return nil
}

func newUserModuleRouter(t *testing.T) (*gin.Engine, *mockModuleRepo, *mockActivityRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &mockModuleRepo{
		modules: []models.Module{
			{ID: uuid.New(), Name: "Accounting", Slug: "accounting", Category: "finance", IsActive: true},
			{ID: uuid.New(), Name: "Legacy Fleet", Slug: "fleet", Category: "operations", IsActive: false},
		},
		userModules: map[uuid.UUID]*models.UserModule{},
	}
	audit := &mockActivityRepo{}
	handler := NewUserModuleHandler(services.NewModuleService(repo, services.NewAuditService(audit)))

	userID := uuid.New()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.POST("/user-modules/activate", handler.Activate)
	r.POST("/user-modules/bulk-activate", handler.BulkActivate)
	r.DELETE("/user-modules/:slug/deactivate", handler.Deactivate)
	r.PUT("/user-modules/:slug/configuration", handler.UpdateConfiguration)
	return r, repo, audit
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestUserModuleHandler_ActivateLifecycle(t *testing.T) {
	r, repo, audit := newUserModuleRouter(t)
	accounting := repo.modules[0]
	body := `{"module_id": "` + accounting.ID.String() + `"}`

	w := perform(r, http.MethodPost, "/user-modules/activate", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)

	w = perform(r, http.MethodPost, "/user-modules/activate", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodDelete, "/user-modules/accounting/deactivate", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodDelete, "/user-modules/accounting/deactivate", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// reactivation reuses the existing record
	w = perform(r, http.MethodPost, "/user-modules/activate", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, repo.userModules, 1)

	var events []string
	for _, entry := range audit.logs {
		events = append(events, entry.EventType)
	}
	assert.Equal(t, []string{models.ActivityModuleActivated, models.ActivityModuleDeactivated, models.ActivityModuleActivated}, events)
}

func TestUserModuleHandler_ActivateErrors(t *testing.T) {
	r, repo, _ := newUserModuleRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing module", `{}`, http.StatusUnprocessableEntity},
		{"unknown module", `{"module_id": "` + uuid.NewString() + `"}`, http.StatusNotFound},
		{"unavailable module", `{"module_id": "` + repo.modules[1].ID.String() + `"}`, http.StatusConflict},
		{"malformed body", `{"module_id": `, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodPost, "/user-modules/activate", tt.body)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestUserModuleHandler_DeactivateNotActivated(t *testing.T) {
	r, _, _ := newUserModuleRouter(t)

	w := perform(r, http.MethodDelete, "/user-modules/accounting/deactivate", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(r, http.MethodDelete, "/user-modules/unknown/deactivate", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserModuleHandler_BulkActivateSkipsActive(t *testing.T) {
	r, repo, _ := newUserModuleRouter(t)
	id := repo.modules[0].ID.String()

	require.Equal(t, http.StatusCreated, perform(r, http.MethodPost, "/user-modules/activate", `{"module_id": "`+id+`"}`).Code)

	w := perform(r, http.MethodPost, "/user-modules/bulk-activate", `{"module_ids": ["`+id+`"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"skipped":["`+id+`"]`)
}

func TestUserModuleHandler_UpdateConfiguration(t *testing.T) {
	r, repo, _ := newUserModuleRouter(t)
	id := repo.modules[0].ID.String()
	require.Equal(t, http.StatusCreated, perform(r, http.MethodPost, "/user-modules/activate", `{"module_id": "`+id+`"}`).Code)

	w := perform(r, http.MethodPut, "/user-modules/accounting/configuration", `{"configuration": {"fiscal_year_start": "01-01"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	for _, um := range repo.userModules {
		assert.Equal(t, "01-01", um.Configuration["fiscal_year_start"])
	}

	w = perform(r, http.MethodPut, "/user-modules/accounting/configuration", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
