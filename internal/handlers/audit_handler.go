package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/modular-erp-api/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
	authService  *services.AuthService
}

func NewAuditHandler(auditService *services.AuditService, authService *services.AuthService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		authService:  authService,
	}
}

// @Summary List activity logs
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param per_page query int false "Items per page"
// @Param search_term query string false "Search in descriptions"
// @Param event_type query string false "Event type filter"
// @Param model_type query string false "Subject type filter (e.g. journal_entry)"
// @Param user_id query string false "Acting user filter"
// @Success 200 {object} Response{data=[]models.ActivityLog}
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	query := listQuery(c)
	for _, key := range []string{"event_type", "model_type", "user_id"} {
		if v := c.Query(key); v != "" {
			query.Filters[key] = v
		}
	}

	logs, total, err := h.auditService.List(c.Request.Context(), query)
	if err != nil {
		handleError(c, err)
		return
	}
	respondPage(c, logs, total, query, "Activity logs retrieved successfully")
}

// @Summary Subject history
// @Description Every activity log recorded for one record
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param model_type path string true "Subject type (e.g. account, journal_entry, user)"
// @Param model_id path string true "Subject ID"
// @Success 200 {object} Response{data=[]models.ActivityLog}
// @Router /audits/{model_type}/{model_id} [get]
func (h *AuditHandler) History(c *gin.Context) {
	id, ok := uuidParam(c, "model_id")
	if !ok {
		return
	}
	logs, err := h.auditService.History(c.Request.Context(), services.Subject{Type: c.Param("model_type"), ID: id})
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, logs, "History retrieved successfully")
}

// @Summary List security events
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param per_page query int false "Items per page"
// @Param event_type query string false "Event type filter"
// @Param severity query string false "low, medium, high or critical"
// @Param user_id query string false "User filter"
// @Param resolved query bool false "Resolved filter"
// @Success 200 {object} Response{data=[]models.SecurityEvent}
// @Router /security-events [get]
func (h *AuditHandler) SecurityEvents(c *gin.Context) {
	query := listQuery(c)
	for _, key := range []string{"event_type", "severity", "user_id", "resolved"} {
		if v := c.Query(key); v != "" {
			query.Filters[key] = v
		}
	}

	events, total, err := h.authService.SecurityEvents(c.Request.Context(), query)
	if err != nil {
		handleError(c, err)
		return
	}
	respondPage(c, events, total, query, "Security events retrieved successfully")
}

// @Summary Resolve security event
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param event_id path string true "Security event ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /security-events/{event_id}/resolve [post]
func (h *AuditHandler) ResolveSecurityEvent(c *gin.Context) {
	id, ok := uuidParam(c, "event_id")
	if !ok {
		return
	}
	if err := h.authService.ResolveSecurityEvent(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Security event resolved")
}
