package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/modular-erp-api/internal/middleware"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/services"
)

type UserHandler struct {
	userService  *services.UserService
	auditService *services.AuditService
}

func NewUserHandler(userService *services.UserService, auditService *services.AuditService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		auditService: auditService,
	}
}

func userResponses(users []models.User) []models.UserResponse {
	out := make([]models.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToResponse())
	}
	return out
}

// @Summary List users
// @Description Lists users. Status defaults to active; pass status=all to include every status.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param per_page query int false "Items per page"
// @Param search_term query string false "Search by name, e-mail or company"
// @Param role query string false "Role filter"
// @Param status query string false "Status filter (active, inactive, all)"
// @Param business_type_id query string false "Business type filter"
// @Success 200 {object} Response{data=[]models.UserResponse}
// @Router /users [get]
func (h *UserHandler) Index(c *gin.Context) {
	query := listQuery(c)

	switch status := c.Query("status"); status {
	case "":
		query.Filters["status"] = models.StatusActive
	case "all":
	default:
		query.Filters["status"] = status
	}
	if role := c.Query("role"); role != "" {
		query.Filters["role"] = role
	}
	if businessType := c.Query("business_type_id"); businessType != "" {
		query.Filters["business_type_id"] = businessType
	}

	users, total, err := h.userService.List(c.Request.Context(), query)
	if err != nil {
		handleError(c, err)
		return
	}

	respondPage(c, userResponses(users), total, query, "Users retrieved successfully")
}

// @Summary Show user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Success 200 {object} Response{data=models.UserResponse}
// @Failure 404 {object} Response
// @Router /users/{user_id} [get]
func (h *UserHandler) Show(c *gin.Context) {
	id, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	user, err := h.userService.FindByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, user.ToResponse(), "User retrieved successfully")
}

// @Summary Update user
// @Description Administrator update of a user account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Param request body services.UserUpdate true "Fields to change"
// @Success 200 {object} Response{data=models.UserResponse}
// @Failure 409 {object} Response
// @Failure 422 {object} Response
// @Router /users/{user_id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	var req services.UserUpdate
	if !bindNested(c, "user", &req) {
		return
	}
	user, err := h.userService.Update(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, user.ToResponse(), "User updated successfully")
}

// @Summary Activate user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Success 200 {object} Response{data=models.UserResponse}
// @Router /users/{user_id}/activate [post]
func (h *UserHandler) Activate(c *gin.Context) {
	id, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	user, err := h.userService.Activate(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, user.ToResponse(), "User activated successfully")
}

// @Summary Deactivate user
// @Description Disables the account and ends all of its sessions
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Success 200 {object} Response{data=models.UserResponse}
// @Failure 409 {object} Response
// @Router /users/{user_id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	user, err := h.userService.Deactivate(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, user.ToResponse(), "User deactivated successfully")
}

// @Summary User activity
// @Description Latest audit log entries recorded for a user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Param limit query int false "Maximum entries (default 50)"
// @Success 200 {object} Response{data=[]models.ActivityLog}
// @Router /users/{user_id}/activity [get]
func (h *UserHandler) Activity(c *gin.Context) {
	id, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	logs, err := h.auditService.UserActivity(c.Request.Context(), id, min(limit, 200))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, logs, "User activity retrieved successfully")
}

// @Summary Current profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.UserResponse}
// @Router /profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.userService.FindByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, user.ToResponse(), "Profile retrieved successfully")
}

// @Summary Update profile
// @Description Changing the password requires current_password
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.ProfileUpdate true "Fields to change"
// @Success 200 {object} Response{data=models.UserResponse}
// @Failure 422 {object} Response
// @Router /profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.ProfileUpdate
	if !bindNested(c, "user", &req) {
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, user.ToResponse(), "Profile updated successfully")
}
