package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/modular-erp-api/internal/services"
)

type MixDesignHandler struct {
	mixDesignService *services.MixDesignService
}

func NewMixDesignHandler(mixDesignService *services.MixDesignService) *MixDesignHandler {
	return &MixDesignHandler{mixDesignService: mixDesignService}
}

type CompositionsRequest struct {
	Compositions []services.CompositionInput `json:"compositions" binding:"required,min=1,dive"`
}

// @Summary List mix designs
// @Tags Mix Designs
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param per_page query int false "Items per page"
// @Param search_term query string false "Search by code or name"
// @Param strength_class query string false "Strength class filter"
// @Param is_active query bool false "Active filter"
// @Success 200 {object} Response{data=[]models.MixDesign}
// @Router /mix-designs [get]
func (h *MixDesignHandler) Index(c *gin.Context) {
	query := listQuery(c)
	if strength := c.Query("strength_class"); strength != "" {
		query.Filters["strength_class"] = strength
	}
	if active := c.Query("is_active"); active != "" {
		query.Filters["is_active"] = active
	}

	mixes, total, err := h.mixDesignService.List(c.Request.Context(), query)
	if err != nil {
		handleError(c, err)
		return
	}
	respondPage(c, mixes, total, query, "Mix designs retrieved successfully")
}

// @Summary Classification values
// @Description Accepted strength, slump and exposure classes and material types
// @Tags Mix Designs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=services.MixDesignClasses}
// @Router /mix-designs/classes [get]
func (h *MixDesignHandler) Classes(c *gin.Context) {
	respond(c, http.StatusOK, h.mixDesignService.Classes(), "Classes retrieved successfully")
}

// @Summary Show mix design
// @Tags Mix Designs
// @Produce json
// @Security BearerAuth
// @Param mix_design_id path string true "Mix design ID"
// @Success 200 {object} Response{data=models.MixDesign}
// @Failure 404 {object} Response
// @Router /mix-designs/{mix_design_id} [get]
func (h *MixDesignHandler) Show(c *gin.Context) {
	id, ok := uuidParam(c, "mix_design_id")
	if !ok {
		return
	}
	mix, err := h.mixDesignService.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, mix, "Mix design retrieved successfully")
}

// @Summary Create mix design
// @Tags Mix Designs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateMixDesignInput true "Mix design with compositions"
// @Success 201 {object} Response{data=models.MixDesign}
// @Failure 409 {object} Response
// @Failure 422 {object} Response
// @Router /mix-designs [post]
func (h *MixDesignHandler) Create(c *gin.Context) {
	var req services.CreateMixDesignInput
	if !bindNested(c, "mix_design", &req) {
		return
	}
	mix, err := h.mixDesignService.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, mix, "Mix design created successfully")
}

// @Summary Update mix design
// @Tags Mix Designs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param mix_design_id path string true "Mix design ID"
// @Param request body services.UpdateMixDesignInput true "Fields to change"
// @Success 200 {object} Response{data=models.MixDesign}
// @Failure 422 {object} Response
// @Router /mix-designs/{mix_design_id} [put]
func (h *MixDesignHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "mix_design_id")
	if !ok {
		return
	}
	var req services.UpdateMixDesignInput
	if !bindNested(c, "mix_design", &req) {
		return
	}
	mix, err := h.mixDesignService.Update(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, mix, "Mix design updated successfully")
}

// @Summary Replace compositions
// @Tags Mix Designs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param mix_design_id path string true "Mix design ID"
// @Param request body CompositionsRequest true "Compositions"
// @Success 200 {object} Response{data=models.MixDesign}
// @Failure 422 {object} Response
// @Router /mix-designs/{mix_design_id}/compositions [put]
func (h *MixDesignHandler) ReplaceCompositions(c *gin.Context) {
	id, ok := uuidParam(c, "mix_design_id")
	if !ok {
		return
	}
	var req CompositionsRequest
	if !bindJSON(c, &req) {
		return
	}
	mix, err := h.mixDesignService.ReplaceCompositions(c.Request.Context(), id, req.Compositions)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, mix, "Compositions updated successfully")
}

// @Summary Approve mix design
// @Tags Mix Designs
// @Produce json
// @Security BearerAuth
// @Param mix_design_id path string true "Mix design ID"
// @Success 200 {object} Response{data=models.MixDesign}
// @Failure 409 {object} Response
// @Router /mix-designs/{mix_design_id}/approve [post]
func (h *MixDesignHandler) Approve(c *gin.Context) {
	id, ok := uuidParam(c, "mix_design_id")
	if !ok {
		return
	}
	mix, err := h.mixDesignService.Approve(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, mix, "Mix design approved successfully")
}

// @Summary Delete mix design
// @Tags Mix Designs
// @Produce json
// @Security BearerAuth
// @Param mix_design_id path string true "Mix design ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /mix-designs/{mix_design_id} [delete]
func (h *MixDesignHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "mix_design_id")
	if !ok {
		return
	}
	if err := h.mixDesignService.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Mix design deleted successfully")
}

// @Summary Mix design cost
// @Description Cost per cubic metre with a per-material breakdown
// @Tags Mix Designs
// @Produce json
// @Security BearerAuth
// @Param mix_design_id path string true "Mix design ID"
// @Success 200 {object} Response{data=services.CostBreakdown}
// @Router /mix-designs/{mix_design_id}/cost [get]
func (h *MixDesignHandler) Cost(c *gin.Context) {
	id, ok := uuidParam(c, "mix_design_id")
	if !ok {
		return
	}
	cost, err := h.mixDesignService.Cost(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, cost, "Cost calculation completed successfully")
}

// @Summary Mix design statistics
// @Tags Mix Designs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=services.MixDesignStatistics}
// @Router /mix-designs/statistics [get]
func (h *MixDesignHandler) Statistics(c *gin.Context) {
	stats, err := h.mixDesignService.Statistics(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, stats, "Statistics retrieved successfully")
}
