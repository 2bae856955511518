package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/middleware"
	"github.com/sjperalta/modular-erp-api/internal/services"
)

type UserModuleHandler struct {
	moduleService *services.ModuleService
}

func NewUserModuleHandler(moduleService *services.ModuleService) *UserModuleHandler {
	return &UserModuleHandler{moduleService: moduleService}
}

type ActivateModuleRequest struct {
	ModuleID uuid.UUID `json:"module_id" binding:"required"`
}

type BulkActivateRequest struct {
	ModuleIDs []uuid.UUID `json:"module_ids" binding:"required,min=1,dive,required"`
}

type ModuleConfigurationRequest struct {
	Configuration map[string]any `json:"configuration" binding:"required"`
}

// @Summary List my modules
// @Tags User Modules
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.UserModule}
// @Router /user-modules [get]
func (h *UserModuleHandler) Index(c *gin.Context) {
	h.list(c, false, "User modules retrieved successfully")
}

// @Summary List my active modules
// @Tags User Modules
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.UserModule}
// @Router /user-modules/active [get]
func (h *UserModuleHandler) Active(c *gin.Context) {
	h.list(c, true, "Active modules retrieved successfully")
}

func (h *UserModuleHandler) list(c *gin.Context, activeOnly bool, message string) {
	modules, err := h.moduleService.UserModules(c.Request.Context(), middleware.GetUserID(c), activeOnly)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, modules, message)
}

// @Summary Activate module
// @Description Creates the activation (201) or reactivates an inactive one (200)
// @Tags User Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ActivateModuleRequest true "Module"
// @Success 200 {object} Response{data=models.UserModule}
// @Success 201 {object} Response{data=models.UserModule}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /user-modules/activate [post]
func (h *UserModuleHandler) Activate(c *gin.Context) {
	var req ActivateModuleRequest
	if !bindJSON(c, &req) {
		return
	}

	um, created, err := h.moduleService.Activate(c.Request.Context(), middleware.GetUserID(c), req.ModuleID)
	if err != nil {
		handleError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond(c, status, um, "Module activated successfully")
}

// @Summary Bulk activate modules
// @Description Activates several modules; already active ones are reported as skipped
// @Tags User Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkActivateRequest true "Modules"
// @Success 200 {object} Response{data=services.BulkActivation}
// @Router /user-modules/bulk-activate [post]
func (h *UserModuleHandler) BulkActivate(c *gin.Context) {
	var req BulkActivateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.moduleService.BulkActivate(c.Request.Context(), middleware.GetUserID(c), req.ModuleIDs)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, result, "Modules activated successfully")
}

// @Summary Deactivate module
// @Tags User Modules
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Module slug"
// @Success 200 {object} Response{data=models.UserModule}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Router /user-modules/{slug}/deactivate [delete]
func (h *UserModuleHandler) Deactivate(c *gin.Context) {
	module, err := h.moduleService.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}

	um, err := h.moduleService.Deactivate(c.Request.Context(), middleware.GetUserID(c), module.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, um, "Module deactivated successfully")
}

// @Summary Update module configuration
// @Tags User Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Module slug"
// @Param request body ModuleConfigurationRequest true "Configuration object"
// @Success 200 {object} Response{data=models.UserModule}
// @Failure 404 {object} Response
// @Router /user-modules/{slug}/configuration [put]
func (h *UserModuleHandler) UpdateConfiguration(c *gin.Context) {
	var req ModuleConfigurationRequest
	if !bindJSON(c, &req) {
		return
	}

	module, err := h.moduleService.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}

	um, err := h.moduleService.UpdateConfiguration(c.Request.Context(), middleware.GetUserID(c), module.ID, req.Configuration)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, um, "Module configuration updated successfully")
}
