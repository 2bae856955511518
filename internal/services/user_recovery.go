package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sjperalta/modular-erp-api/internal/jobs"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
	"gorm.io/gorm"
)

// RecoveryService runs the forgot-password flow on top of AuthService
type RecoveryService struct {
	auth   *AuthService
	resets repository.PasswordResetRepository
	mailer Mailer
	worker *jobs.Worker
	ttl    time.Duration
}

// NewRecoveryService creates a new recovery service
func NewRecoveryService(auth *AuthService, resets repository.PasswordResetRepository, mailer Mailer, worker *jobs.Worker, ttl time.Duration) *RecoveryService {
	return &RecoveryService{auth: auth, resets: resets, mailer: mailer, worker: worker, ttl: ttl}
}

// ResetPasswordInput holds the fields for redeeming a reset token
type ResetPasswordInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// hashResetToken returns the stored form of a reset token
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ForgotPassword issues a reset token and e-mails it to the account owner.
// Unknown or inactive addresses return nil.
func (s *RecoveryService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.auth.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		s.auth.securityEvent(ctx, nil, models.SecurityEventResetUnknown, models.SeverityMedium,
			fmt.Sprintf("Forgot password attempt for unknown e-mail %s", email))
		return nil
	}
	if !user.IsActive() {
		s.auth.securityEvent(ctx, &user.ID, models.SecurityEventInactiveLogin, models.SeverityMedium, "Password reset requested for an inactive account")
		return nil
	}

	token, err := randomToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	now := s.auth.now()
	if err := s.resets.InvalidateForEmail(ctx, user.Email, now); err != nil {
		return err
	}
	actor := ActorFromContext(ctx)
	reset := &models.PasswordReset{
		Email:     user.Email,
		TokenHash: hashResetToken(token),
		ExpiresAt: now.Add(s.ttl),
		IPAddress: actor.IPAddress,
		UserAgent: truncate(actor.UserAgent, 255),
		CreatedAt: now,
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}
	logger.Info("[Recovery] Reset token issued", "user_id", user.ID)

	recipient := *user
	expiresAt := reset.ExpiresAt
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.mailer.SendPasswordReset(ctx, &recipient, token, expiresAt)
	})

	s.auth.securityEvent(ctx, &user.ID, models.SecurityEventResetRequested, models.SeverityLow, "Password reset e-mail sent")
	return nil
}

// ResetPassword redeems a reset token, stores the new password and signs the user out everywhere
func (s *RecoveryService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	now := s.auth.now()
	reset, err := s.resets.FindUsableByHash(ctx, hashResetToken(strings.TrimSpace(input.Token)), now)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		s.auth.securityEvent(ctx, nil, models.SecurityEventInvalidReset, models.SeverityMedium, "Invalid or expired password reset token used")
		return ErrInvalidResetToken
	}

	user, err := s.auth.userRepo.FindByEmail(ctx, reset.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if !user.IsActive() {
		return ErrAccountInactive
	}

	redeemed, err := s.resets.MarkUsed(ctx, reset.ID, now)
	if err != nil {
		return err
	}
	if !redeemed {
		return ErrInvalidResetToken
	}

	hash, err := HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	if err := s.auth.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if _, err := s.auth.sessionRepo.RevokeAllForUser(ctx, user.ID, nil, now); err != nil {
		return err
	}
	if err := s.auth.refreshTokenRepo.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}
	s.auth.securityEvent(ctx, &user.ID, models.SecurityEventPasswordReset, models.SeverityLow, "Password reset with e-mailed token")
	return nil
}

// PruneResets deletes used and expired reset tokens
func (s *RecoveryService) PruneResets(ctx context.Context) (int64, error) {
	return s.resets.DeleteExpired(ctx, s.auth.now())
}
