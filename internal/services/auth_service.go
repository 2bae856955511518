package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/config"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// failedLoginWindow and failedLoginThreshold flag repeated failures from one address
	failedLoginWindow    = 15 * time.Minute
	failedLoginThreshold = 5
	// sessionTouchInterval limits last_activity_at writes to one per interval
	sessionTouchInterval = time.Minute
)

// AuthService handles authentication, sessions and security events
type AuthService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	sessionRepo      repository.SessionRepository
	securityRepo     repository.SecurityEventRepository
	auditSvc         *AuditService
	cfg              *config.Config
	onAlert          func(ctx context.Context, event models.SecurityEvent)
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	sessionRepo repository.SessionRepository,
	securityRepo repository.SecurityEventRepository,
	auditSvc *AuditService,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: rtRepo,
		sessionRepo:      sessionRepo,
		securityRepo:     securityRepo,
		auditSvc:         auditSvc,
		cfg:              cfg,
		now:              time.Now,
	}
}

// LoginResult represents the result of a login attempt
type LoginResult struct {
	Token        string              `json:"token"`
	RefreshToken string              `json:"refresh_token"`
	ExpiresAt    time.Time           `json:"expires_at"`
	SessionID    uuid.UUID           `json:"session_id"`
	User         models.UserResponse `json:"user"`
}

// SessionInfo is an active session as shown to its owner
type SessionInfo struct {
	models.UserSession
	Current bool `json:"is_current"`
}

// ChangePasswordInput holds the fields for a password change
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,nefield=CurrentPassword"`
}

// Login authenticates a user, opens a session and returns tokens
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		s.failedLogin(ctx, nil, fmt.Sprintf("Login attempt for unknown e-mail %s", email))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.failedLogin(ctx, &user.ID, "Invalid password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		s.securityEvent(ctx, &user.ID, models.SecurityEventInactiveLogin, models.SeverityMedium, "Login attempt on an inactive account")
		return nil, ErrAccountInactive
	}

	actor := ActorFromContext(ctx)
	now := s.now()
	device := ParseDevice(actor.UserAgent)
	session := &models.UserSession{
		UserID:         user.ID,
		DeviceName:     device.Name,
		DeviceType:     device.Type,
		Browser:        device.Browser,
		OS:             device.OS,
		IPAddress:      actor.IPAddress,
		UserAgent:      truncate(actor.UserAgent, 255),
		LastActivityAt: now,
		ExpiresAt:      now.Add(time.Duration(s.cfg.SessionTTLHours) * time.Hour),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	result, err := s.issueTokens(ctx, user, session.ID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now
	result.User = user.ToResponse()

	ctx = WithActor(ctx, Actor{UserID: &user.ID, IPAddress: actor.IPAddress, UserAgent: actor.UserAgent, SessionID: &session.ID})
	s.auditSvc.Log(ctx, models.ActivityLogin, "User logged in", &Subject{Type: "user", ID: user.ID}, map[string]any{
		"session_id": session.ID,
		"device":     device.Name,
	})
	return result, nil
}

// Refresh rotates a refresh token and returns a new access token for the same session
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	rt, err := s.refreshTokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	now := s.now()
	if rt.ExpiresAt != nil && now.After(*rt.ExpiresAt) {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return nil, ErrTokenExpired
	}

	if rt.SessionID == nil {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return nil, ErrSessionRevoked
	}
	session, err := s.sessionRepo.FindByID(ctx, *rt.SessionID)
	if err != nil || !session.IsActive(now) {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return nil, ErrSessionRevoked
	}

	user, err := s.userRepo.FindByID(ctx, rt.UserID)
	if err != nil {
		return nil, notFound(err)
	}
	if !user.IsActive() {
		return nil, ErrAccountInactive
	}

	if err := s.refreshTokenRepo.Delete(ctx, refreshToken); err != nil {
		return nil, err
	}
	result, err := s.issueTokens(ctx, user, session.ID)
	if err != nil {
		return nil, err
	}
	_ = s.sessionRepo.Touch(ctx, session.ID, now)
	result.User = user.ToResponse()
	return result, nil
}

// Logout invalidates a refresh token and revokes its session
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	rt, err := s.refreshTokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if err := s.refreshTokenRepo.Delete(ctx, refreshToken); err != nil {
		return err
	}
	if rt.SessionID != nil {
		if err := s.sessionRepo.Revoke(ctx, *rt.SessionID, s.now()); err != nil {
			return err
		}
	}
	s.auditSvc.Log(ctx, models.ActivityLogout, "User logged out", &Subject{Type: "user", ID: rt.UserID}, nil)
	return nil
}

// Sessions lists the active sessions of a user, most recent first
func (s *AuthService) Sessions(ctx context.Context, userID uuid.UUID) ([]SessionInfo, error) {
	sessions, err := s.sessionRepo.ListActiveByUser(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	current := ActorFromContext(ctx).SessionID
	out := make([]SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, SessionInfo{
			UserSession: session,
			Current:     current != nil && *current == session.ID,
		})
	}
	return out, nil
}

// RevokeSession ends one session of a user and drops its refresh tokens
func (s *AuthService) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return notFound(err)
	}
	if session.UserID != userID {
		return ErrNotFound
	}
	if session.RevokedAt != nil {
		return fmt.Errorf("%w: session already revoked", ErrInvalidState)
	}
	if err := s.endSession(ctx, session.ID); err != nil {
		return err
	}
	s.securityEvent(ctx, &userID, models.SecurityEventSessionRevoked, models.SeverityLow, "Session revoked: "+session.ID.String())
	return nil
}

// RevokeOtherSessions ends every session of a user except the current one
func (s *AuthService) RevokeOtherSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.revokeOthers(ctx, userID, ActorFromContext(ctx).SessionID)
}

// ValidateSession checks that a session is still usable and records activity on it
func (s *AuthService) ValidateSession(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionRevoked
		}
		return err
	}
	now := s.now()
	if !session.IsActive(now) {
		return ErrSessionRevoked
	}
	if now.Sub(session.LastActivityAt) >= sessionTouchInterval {
		if err := s.sessionRepo.Touch(ctx, sessionID, now); err != nil {
			logger.Warn("failed to touch session", "session_id", sessionID, "error", err)
		}
	}
	return nil
}

// ChangePassword verifies the current password, stores the new hash and signs out other sessions
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return notFound(err)
	}
	if !VerifyPassword(input.CurrentPassword, user.Password) {
		s.securityEvent(ctx, &userID, models.SecurityEventFailedLogin, models.SeverityMedium, "Invalid current password on password change")
		return ErrInvalidPassword
	}

	hash, err := HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if _, err := s.revokeOthers(ctx, userID, ActorFromContext(ctx).SessionID); err != nil {
		return err
	}
	s.securityEvent(ctx, &userID, models.SecurityEventPasswordChanged, models.SeverityLow, "Password changed")
	return nil
}

// PruneExpired deletes expired refresh tokens and sessions
func (s *AuthService) PruneExpired(ctx context.Context) (tokens, sessions int64, err error) {
	now := s.now()
	if tokens, err = s.refreshTokenRepo.DeleteExpired(ctx, now); err != nil {
		return 0, 0, err
	}
	if sessions, err = s.sessionRepo.DeleteExpired(ctx, now); err != nil {
		return tokens, 0, err
	}
	return tokens, sessions, nil
}

// SecurityEvents lists recorded security events
func (s *AuthService) SecurityEvents(ctx context.Context, query *repository.ListQuery) ([]models.SecurityEvent, int64, error) {
	return s.securityRepo.List(ctx, query)
}

// ResolveSecurityEvent marks an event as handled by the acting user
func (s *AuthService) ResolveSecurityEvent(ctx context.Context, id uuid.UUID) error {
	return notFound(s.securityRepo.Resolve(ctx, id, actorID(ctx), s.now()))
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, sessionID uuid.UUID) (*LoginResult, error) {
	now := s.now()
	expiresAt := now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)
	token, err := s.generateJWT(user, sessionID, now, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	refreshToken, err := s.generateRefreshToken(ctx, user.ID, sessionID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}
	return &LoginResult{
		Token:        token,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		SessionID:    sessionID,
	}, nil
}

func (s *AuthService) generateJWT(user *models.User, sessionID uuid.UUID, now, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"role":    user.Role,
		"sid":     sessionID.String(),
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, userID, sessionID uuid.UUID, now time.Time) (string, error) {
	token, err := randomToken(32)
	if err != nil {
		return "", err
	}

	expiresAt := now.Add(time.Duration(s.cfg.RefreshTokenTTLHours) * time.Hour)
	rt := &models.RefreshToken{
		UserID:    userID,
		SessionID: &sessionID,
		Token:     token,
		ExpiresAt: &expiresAt,
	}
	if err := s.refreshTokenRepo.Create(ctx, rt); err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) endSession(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessionRepo.Revoke(ctx, sessionID, s.now()); err != nil {
		return err
	}
	return s.refreshTokenRepo.DeleteBySession(ctx, sessionID)
}

func (s *AuthService) revokeOthers(ctx context.Context, userID uuid.UUID, keep *uuid.UUID) (int, error) {
	sessions, err := s.sessionRepo.ListActiveByUser(ctx, userID, s.now())
	if err != nil {
		return 0, err
	}
	revoked := 0
	for _, session := range sessions {
		if keep != nil && session.ID == *keep {
			continue
		}
		if err := s.endSession(ctx, session.ID); err != nil {
			return revoked, err
		}
		revoked++
	}
	return revoked, nil
}

// failedLogin records the failure and escalates when one address keeps failing
func (s *AuthService) failedLogin(ctx context.Context, userID *uuid.UUID, description string) {
	s.securityEvent(ctx, userID, models.SecurityEventFailedLogin, models.SeverityMedium, description)

	ip := ActorFromContext(ctx).IPAddress
	count, err := s.securityRepo.CountSince(ctx, models.SecurityEventFailedLogin, ip, s.now().Add(-failedLoginWindow))
	if err != nil {
		logger.Error("failed to count login failures", "error", err)
		return
	}
	if count >= failedLoginThreshold {
		s.securityEvent(ctx, userID, models.SecurityEventSuspiciousAccess, models.SeverityHigh,
			fmt.Sprintf("Multiple failed login attempts: %d in %s", count, failedLoginWindow))
	}
}

func (s *AuthService) securityEvent(ctx context.Context, userID *uuid.UUID, eventType, severity, description string) {
	actor := ActorFromContext(ctx)
	event := &models.SecurityEvent{
		UserID:      userID,
		EventType:   eventType,
		Severity:    severity,
		Description: description,
		IPAddress:   actor.IPAddress,
		UserAgent:   truncate(actor.UserAgent, 255),
		CreatedAt:   s.now(),
	}
	if err := s.securityRepo.Create(ctx, event); err != nil {
		logger.Error("failed to record security event", "event_type", eventType, "error", err)
		return
	}
	if s.onAlert != nil && (severity == models.SeverityHigh || severity == models.SeverityCritical) {
		s.onAlert(ctx, *event)
	}
}

// OnSecurityAlert registers fn to be called for every high or critical security event
func (s *AuthService) OnSecurityAlert(fn func(ctx context.Context, event models.SecurityEvent)) {
	s.onAlert = fn
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// VerifyPassword compares a password with a hash
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func randomToken(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
