package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/modular-erp-api/internal/middleware"
	"github.com/sjperalta/modular-erp-api/internal/services"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// @Summary Health Check
// @Description Checks if the API is running
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "modular-erp-api",
		"version": "1.0.0",
	})
}

type AuthHandler struct {
	authService *services.AuthService
	recovery    *services.RecoveryService
}

func NewAuthHandler(authService *services.AuthService, recovery *services.RecoveryService) *AuthHandler {
	return &AuthHandler{authService: authService, recovery: recovery}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary Login
// @Description Authenticates a user and opens a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login Credentials"
// @Success 200 {object} Response{data=services.LoginResult}
// @Failure 401 {object} Response
// @Failure 403 {object} Response
// @Failure 422 {object} Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, result, "Login successful")
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// @Summary Refresh Token
// @Description Rotates the refresh token and issues a new access token for the same session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh Token"
// @Success 200 {object} Response{data=services.LoginResult}
// @Failure 401 {object} Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, result, "Token refreshed successfully")
}

// @Summary Logout
// @Description Revokes the refresh token and ends its session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh Token"
// @Success 200 {object} Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "Logged out successfully")
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// @Summary Forgot password
// @Description E-mails a single-use reset link. The response is the same whether or not the address belongs to an account.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account e-mail"
// @Success 200 {object} Response
// @Failure 422 {object} Response
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.recovery.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "If the address belongs to an account, a reset link has been sent")
}

// @Summary Reset password
// @Description Sets a new password with an e-mailed reset token and signs out every session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body services.ResetPasswordInput true "Reset token and new password"
// @Success 200 {object} Response
// @Failure 403 {object} Response
// @Failure 422 {object} Response
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var input services.ResetPasswordInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.recovery.ResetPassword(c.Request.Context(), input); err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "Password has been reset")
}

// @Summary List sessions
// @Description Lists the active sessions of the current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]services.SessionInfo}
// @Router /auth/sessions [get]
func (h *AuthHandler) Sessions(c *gin.Context) {
	sessions, err := h.authService.Sessions(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, sessions, "Sessions retrieved successfully")
}

// @Summary Revoke session
// @Description Ends one of the current user's sessions
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /auth/sessions/{session_id} [delete]
func (h *AuthHandler) RevokeSession(c *gin.Context) {
	sessionID, ok := uuidParam(c, "session_id")
	if !ok {
		return
	}
	if err := h.authService.RevokeSession(c.Request.Context(), middleware.GetUserID(c), sessionID); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Session revoked successfully")
}

// @Summary Revoke other sessions
// @Description Ends every session of the current user except this one
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /auth/sessions/revoke-others [post]
func (h *AuthHandler) RevokeOtherSessions(c *gin.Context) {
	count, err := h.authService.RevokeOtherSessions(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"revoked": count}, "All other sessions revoked successfully")
}

// @Summary Change password
// @Description Changes the current user's password and signs out other sessions
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.ChangePasswordInput true "Passwords"
// @Success 200 {object} Response
// @Failure 422 {object} Response
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordInput
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), req); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Password changed successfully")
}
