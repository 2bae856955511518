package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/modular-erp-api/internal/services"
)

type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// @Summary List invitations
// @Tags Invitations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param per_page query int false "Items per page"
// @Param status query string false "pending, accepted, expired or cancelled"
// @Param business_type_id query string false "Business type filter"
// @Param search_term query string false "Search by e-mail or name"
// @Success 200 {object} Response{data=[]models.UserInvitation}
// @Router /invitations [get]
func (h *InvitationHandler) Index(c *gin.Context) {
	query := listQuery(c)
	if status := c.Query("status"); status != "" {
		query.Filters["status"] = status
	}
	if businessType := c.Query("business_type_id"); businessType != "" {
		query.Filters["business_type_id"] = businessType
	}

	invitations, total, err := h.invitationService.List(c.Request.Context(), query)
	if err != nil {
		handleError(c, err)
		return
	}
	respondPage(c, invitations, total, query, "Invitations retrieved successfully")
}

// @Summary Send invitation
// @Description Records a pending invitation and e-mails its acceptance link
// @Tags Invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateInvitationInput true "Invitation"
// @Success 201 {object} Response{data=models.UserInvitation}
// @Failure 409 {object} Response
// @Failure 422 {object} Response
// @Router /invitations [post]
func (h *InvitationHandler) Create(c *gin.Context) {
	var req services.CreateInvitationInput
	if !bindNested(c, "invitation", &req) {
		return
	}

	invitation, err := h.invitationService.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, invitation, "Invitation sent successfully")
}

// @Summary Show invitation
// @Tags Invitations
// @Produce json
// @Security BearerAuth
// @Param invitation_id path string true "Invitation ID"
// @Success 200 {object} Response{data=models.UserInvitation}
// @Failure 404 {object} Response
// @Router /invitations/{invitation_id} [get]
func (h *InvitationHandler) Show(c *gin.Context) {
	id, ok := uuidParam(c, "invitation_id")
	if !ok {
		return
	}
	invitation, err := h.invitationService.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, invitation, "Invitation retrieved successfully")
}

// @Summary Resend invitation
// @Description Extends a pending invitation and e-mails it again
// @Tags Invitations
// @Produce json
// @Security BearerAuth
// @Param invitation_id path string true "Invitation ID"
// @Success 200 {object} Response{data=models.UserInvitation}
// @Failure 422 {object} Response
// @Router /invitations/{invitation_id}/resend [post]
func (h *InvitationHandler) Resend(c *gin.Context) {
	id, ok := uuidParam(c, "invitation_id")
	if !ok {
		return
	}
	invitation, err := h.invitationService.Resend(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, invitation, "Invitation resent successfully")
}

// @Summary Cancel invitation
// @Tags Invitations
// @Produce json
// @Security BearerAuth
// @Param invitation_id path string true "Invitation ID"
// @Success 200 {object} Response{data=models.UserInvitation}
// @Failure 422 {object} Response
// @Router /invitations/{invitation_id}/cancel [post]
func (h *InvitationHandler) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "invitation_id")
	if !ok {
		return
	}
	invitation, err := h.invitationService.Cancel(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, invitation, "Invitation cancelled successfully")
}

// @Summary Accept invitation
// @Description Creates the invited user's account. Public endpoint reached from the e-mail link.
// @Tags Invitations
// @Accept json
// @Produce json
// @Param request body services.AcceptInvitationInput true "Token and password"
// @Success 201 {object} Response{data=models.UserResponse}
// @Failure 404 {object} Response
// @Failure 422 {object} Response
// @Router /invitations/accept [post]
func (h *InvitationHandler) Accept(c *gin.Context) {
	var req services.AcceptInvitationInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.invitationService.Accept(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, user.ToResponse(), "Account created successfully")
}
