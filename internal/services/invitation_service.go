package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/config"
	"github.com/sjperalta/modular-erp-api/internal/jobs"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/internal/statemachine"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
	"gorm.io/gorm"
)

// Mailer sends the transactional e-mails of the application
type Mailer interface {
	SendInvitation(ctx context.Context, invitation *models.UserInvitation, inviterName string) error
	SendWelcome(ctx context.Context, user *models.User) error
	SendSecurityAlert(ctx context.Context, admin *models.User, event *models.SecurityEvent) error
	SendPasswordReset(ctx context.Context, user *models.User, token string, expiresAt time.Time) error
}

// InvitationService manages invitations to join the tenant
type InvitationService struct {
	repo       repository.InvitationRepository
	userRepo   repository.UserRepository
	moduleRepo repository.ModuleRepository
	auditSvc   *AuditService
	mailer     Mailer
	worker     *jobs.Worker
	ttl        time.Duration
	now        func() time.Time
}

func NewInvitationService(
	repo repository.InvitationRepository,
	userRepo repository.UserRepository,
	moduleRepo repository.ModuleRepository,
	auditSvc *AuditService,
	mailer Mailer,
	worker *jobs.Worker,
	cfg *config.Config,
) *InvitationService {
	return &InvitationService{
		repo:       repo,
		userRepo:   userRepo,
		moduleRepo: moduleRepo,
		auditSvc:   auditSvc,
		mailer:     mailer,
		worker:     worker,
		ttl:        time.Duration(cfg.InvitationTTLHours) * time.Hour,
		now:        time.Now,
	}
}

// CreateInvitationInput is the payload of a new invitation
type CreateInvitationInput struct {
	Email          string    `json:"email" binding:"required,email,max=255"`
	Name           string    `json:"name" binding:"required,max=255"`
	CompanyName    string    `json:"company_name" binding:"required,max=255"`
	BusinessTypeID uuid.UUID `json:"business_type_id" binding:"required"`
	Phone          *string   `json:"phone" binding:"omitempty,max=20"`
	Role           string    `json:"role" binding:"required,oneof=admin manager user"`
	Message        *string   `json:"message" binding:"omitempty,max=500"`
}

// AcceptInvitationInput is the payload used to accept an invitation
type AcceptInvitationInput struct {
	Token                string `json:"token" binding:"required"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

// Create records a pending invitation and e-mails its link
func (s *InvitationService) Create(ctx context.Context, input CreateInvitationInput) (*models.UserInvitation, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: %s is already registered", ErrDuplicate, email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.repo.FindPendingByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyInvited
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.moduleRepo.FindBusinessTypeByID(ctx, input.BusinessTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown business type", ErrInvalidInput)
		}
		return nil, err
	}

	token, err := randomToken(32)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	company := strings.TrimSpace(input.CompanyName)
	businessTypeID := input.BusinessTypeID

	invitation := &models.UserInvitation{
		Email:          email,
		Name:           &name,
		CompanyName:    &company,
		Phone:          input.Phone,
		BusinessTypeID: &businessTypeID,
		Role:           input.Role,
		Message:        input.Message,
		Token:          token,
		Status:         models.InvitationStatusPending,
		InvitedBy:      actorID(ctx),
		ExpiresAt:      s.now().Add(s.ttl),
		SentCount:      1,
	}
	if err := s.repo.Create(ctx, invitation); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, models.ActivityInvitationSent,
		fmt.Sprintf("Invited %s as %s", email, invitation.Role),
		&Subject{Type: "user_invitation", ID: invitation.ID},
		map[string]any{"email": email, "role": invitation.Role})
	s.deliver(ctx, invitation)

	return invitation, nil
}

// List returns invitations, newest first
func (s *InvitationService) List(ctx context.Context, query *repository.ListQuery) ([]models.UserInvitation, int64, error) {
	return s.repo.List(ctx, query)
}

// Get returns an invitation by id
func (s *InvitationService) Get(ctx context.Context, id uuid.UUID) (*models.UserInvitation, error) {
	invitation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return invitation, nil
}

// Resend extends a pending invitation and e-mails it again
func (s *InvitationService) Resend(ctx context.Context, id uuid.UUID) (*models.UserInvitation, error) {
	invitation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if invitation.Status != models.InvitationStatusPending {
		return nil, ErrInvitationNotPending
	}

	invitation.ExpiresAt = s.now().Add(s.ttl)
	invitation.SentCount++
	if err := s.repo.Update(ctx, invitation); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, models.ActivityInvitationSent,
		fmt.Sprintf("Resent invitation to %s", invitation.Email),
		&Subject{Type: "user_invitation", ID: invitation.ID},
		map[string]any{"email": invitation.Email, "sent_count": invitation.SentCount})
	s.deliver(ctx, invitation)

	return invitation, nil
}

// Cancel withdraws a pending invitation
func (s *InvitationService) Cancel(ctx context.Context, id uuid.UUID) (*models.UserInvitation, error) {
	invitation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := invitation.Status

	if err := statemachine.NewInvitationFSM(invitation).Cancel(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, invitation); err != nil {
		return nil, err
	}

	s.auditSvc.LogUpdated(ctx, Subject{Type: "user_invitation", ID: invitation.ID},
		map[string]any{"status": before},
		map[string]any{"status": invitation.Status})
	return invitation, nil
}

// Accept creates the invited user's account and closes the invitation
func (s *InvitationService) Accept(ctx context.Context, input AcceptInvitationInput) (*models.User, error) {
	invitation, err := s.repo.FindByToken(ctx, input.Token)
	if err != nil {
		return nil, notFound(err)
	}

	now := s.now()
	if err := statemachine.NewInvitationFSM(invitation).Accept(ctx, now); err != nil {
		if errors.Is(err, ErrInvitationExpired) {
			if uerr := s.repo.Update(ctx, invitation); uerr != nil {
				logger.Error("Failed to mark invitation expired", "invitation_id", invitation.ID, "error", uerr)
			}
		}
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	inviter := invitation.InvitedBy
	user := &models.User{
		Name:            getStringValue(invitation.Name),
		Email:           invitation.Email,
		Password:        hash,
		Role:            invitation.Role,
		Status:          models.StatusActive,
		Phone:           invitation.Phone,
		CompanyName:     invitation.CompanyName,
		BusinessTypeID:  invitation.BusinessTypeID,
		EmailVerifiedAt: &now,
		InvitedBy:       &inviter,
	}
	if user.Name == "" {
		user.Name = invitation.Email
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return nil, err
	}

	invitation.UserID = &user.ID
	if err := s.repo.Update(ctx, invitation); err != nil {
		return nil, err
	}

	actor := ActorFromContext(ctx)
	actor.UserID = &user.ID
	ctx = WithActor(ctx, actor)
	s.auditSvc.Log(ctx, models.ActivityInvitationAccept,
		fmt.Sprintf("%s accepted the invitation", user.Email),
		&Subject{Type: "user_invitation", ID: invitation.ID},
		map[string]any{"user_id": user.ID.String()})

	welcome := *user
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.mailer.SendWelcome(ctx, &welcome)
	})
	return user, nil
}

// ExpireStale marks pending invitations past their expiry as expired
func (s *InvitationService) ExpireStale(ctx context.Context) (int64, error) {
	return s.repo.ExpireStale(ctx, s.now())
}

// deliver queues the invitation e-mail
func (s *InvitationService) deliver(ctx context.Context, invitation *models.UserInvitation) {
	inviterName := ""
	if inviter, err := s.userRepo.FindByID(ctx, invitation.InvitedBy); err == nil {
		inviterName = inviter.Name
	}
	msg := *invitation
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.mailer.SendInvitation(ctx, &msg, inviterName)
	})
}
