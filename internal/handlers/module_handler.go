package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/modular-erp-api/internal/services"
)

type ModuleHandler struct {
	moduleService *services.ModuleService
}

func NewModuleHandler(moduleService *services.ModuleService) *ModuleHandler {
	return &ModuleHandler{moduleService: moduleService}
}

// @Summary List modules
// @Description Active modules ordered by sort order and name
// @Tags Modules
// @Produce json
// @Param category query string false "Category slug"
// @Param core query bool false "Only core (true) or optional (false) modules"
// @Success 200 {object} Response{data=[]models.Module}
// @Router /modules [get]
func (h *ModuleHandler) Index(c *gin.Context) {
	filter := services.ModuleFilter{Category: c.Query("category")}
	if raw, ok := c.GetQuery("core"); ok {
		core, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "core must be true or false")
			return
		}
		filter.Core = &core
	}

	modules, err := h.moduleService.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, modules, "Modules retrieved successfully")
}

// @Summary Show module
// @Tags Modules
// @Produce json
// @Param slug path string true "Module slug"
// @Success 200 {object} Response{data=models.Module}
// @Failure 404 {object} Response
// @Router /modules/{slug} [get]
func (h *ModuleHandler) Show(c *gin.Context) {
	module, err := h.moduleService.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, module, "Module retrieved successfully")
}

// @Summary Modules by category
// @Tags Modules
// @Produce json
// @Param category path string true "Category slug"
// @Success 200 {object} Response{data=[]models.Module}
// @Router /modules/category/{category} [get]
func (h *ModuleHandler) ByCategory(c *gin.Context) {
	category := c.Param("category")
	modules, err := h.moduleService.List(c.Request.Context(), services.ModuleFilter{Category: category})
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, modules, "Modules for category '"+category+"' retrieved successfully")
}

// @Summary Module categories
// @Tags Modules
// @Produce json
// @Success 200 {object} Response{data=[]services.ModuleCategory}
// @Router /modules/categories/list [get]
func (h *ModuleHandler) Categories(c *gin.Context) {
	respond(c, http.StatusOK, h.moduleService.Categories(), "Module categories retrieved successfully")
}

// @Summary Modules for a business type
// @Description Recommended modules, all active modules and counts for one business type
// @Tags Modules
// @Produce json
// @Param slug path string true "Business type slug"
// @Success 200 {object} Response{data=services.BusinessTypeModules}
// @Failure 404 {object} Response
// @Router /modules/business-type/{slug} [get]
func (h *ModuleHandler) ForBusinessType(c *gin.Context) {
	result, err := h.moduleService.ForBusinessType(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, result, "Modules for business type retrieved successfully")
}

// @Summary Module statistics
// @Tags Modules
// @Produce json
// @Success 200 {object} Response{data=services.ModuleStatistics}
// @Router /modules/statistics [get]
func (h *ModuleHandler) Statistics(c *gin.Context) {
	stats, err := h.moduleService.Statistics(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, stats, "Module statistics retrieved successfully")
}

// @Summary List business types
// @Tags Business Types
// @Produce json
// @Param all query bool false "Include inactive business types"
// @Success 200 {object} Response{data=[]models.BusinessType}
// @Router /business-types [get]
func (h *ModuleHandler) BusinessTypes(c *gin.Context) {
	activeOnly := c.Query("all") != "true"
	types, err := h.moduleService.BusinessTypes(c.Request.Context(), activeOnly)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, types, "Business types retrieved successfully")
}

// @Summary Show business type
// @Tags Business Types
// @Produce json
// @Param slug path string true "Business type slug"
// @Success 200 {object} Response{data=models.BusinessType}
// @Failure 404 {object} Response
// @Router /business-types/{slug} [get]
func (h *ModuleHandler) BusinessType(c *gin.Context) {
	businessType, err := h.moduleService.BusinessType(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, businessType, "Business type retrieved successfully")
}

// @Summary Module recommendations
// @Description Modules recommended for a business type, ordered by priority
// @Tags Business Types
// @Produce json
// @Param slug path string true "Business type slug"
// @Success 200 {object} Response{data=[]models.ModuleRecommendation}
// @Failure 404 {object} Response
// @Router /business-types/{slug}/module-recommendations [get]
func (h *ModuleHandler) Recommendations(c *gin.Context) {
	recs, err := h.moduleService.Recommendations(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, recs, "Module recommendations retrieved successfully")
}
