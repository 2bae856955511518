package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
)

// UserService handles user-related business logic
type UserService struct {
	repo        repository.UserRepository
	sessionRepo repository.SessionRepository
	tokenRepo   repository.RefreshTokenRepository
	auditSvc    *AuditService
	now         func() time.Time
}

func NewUserService(repo repository.UserRepository, sessionRepo repository.SessionRepository, tokenRepo repository.RefreshTokenRepository, auditSvc *AuditService) *UserService {
	return &UserService{
		repo:        repo,
		sessionRepo: sessionRepo,
		tokenRepo:   tokenRepo,
		auditSvc:    auditSvc,
		now:         time.Now,
	}
}

// UserUpdate holds the fields an administrator may change
type UserUpdate struct {
	Name           *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Email          *string    `json:"email" binding:"omitempty,email,max=255"`
	Phone          *string    `json:"phone" binding:"omitempty,max=20"`
	CompanyName    *string    `json:"company_name" binding:"omitempty,max=255"`
	Role           *string    `json:"role" binding:"omitempty,oneof=admin manager user"`
	BusinessTypeID *uuid.UUID `json:"business_type_id"`
	Password       *string    `json:"password" binding:"omitempty,min=8"`
}

// ProfileUpdate holds the fields a user may change on their own account
type ProfileUpdate struct {
	Name            *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Email           *string    `json:"email" binding:"omitempty,email,max=255"`
	Phone           *string    `json:"phone" binding:"omitempty,max=20"`
	CompanyName     *string    `json:"company_name" binding:"omitempty,max=255"`
	BusinessTypeID  *uuid.UUID `json:"business_type_id"`
	CurrentPassword *string    `json:"current_password" binding:"required_with=Password"`
	Password        *string    `json:"password" binding:"omitempty,min=8"`
}

func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.repo.List(ctx, query)
}

// Update applies an administrator's changes to a user
func (s *UserService) Update(ctx context.Context, id uuid.UUID, input UserUpdate) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := user.ToResponse()

	applyUserFields(user, input.Name, input.Email, input.Phone, input.CompanyName, input.BusinessTypeID)
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Password != nil {
		if err := setPassword(user, *input.Password); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	s.auditSvc.LogUpdated(ctx, Subject{Type: "user", ID: user.ID}, before, user.ToResponse())
	return user, nil
}

// UpdateProfile applies a user's changes to their own account.
// Changing the password requires the current one.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileUpdate) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := user.ToResponse()

	if input.Password != nil {
		if input.CurrentPassword == nil || !VerifyPassword(*input.CurrentPassword, user.Password) {
			return nil, ErrInvalidPassword
		}
		if err := setPassword(user, *input.Password); err != nil {
			return nil, err
		}
	}
	applyUserFields(user, input.Name, input.Email, input.Phone, input.CompanyName, input.BusinessTypeID)

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	s.auditSvc.LogUpdated(ctx, Subject{Type: "user", ID: user.ID}, before, user.ToResponse())
	return user, nil
}

// Activate re-enables a user account
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.setStatus(ctx, id, models.StatusActive)
}

// Deactivate disables a user account and ends all of its sessions
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == actorID(ctx) {
		return nil, fmt.Errorf("%w: you cannot deactivate your own account", ErrInvalidState)
	}
	user, err := s.setStatus(ctx, id, models.StatusInactive)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessionRepo.RevokeAllForUser(ctx, id, nil, s.now()); err != nil {
		return nil, err
	}
	if err := s.tokenRepo.DeleteByUser(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) setStatus(ctx context.Context, id uuid.UUID, status string) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status == status {
		return user, nil
	}
	before := user.ToResponse()
	user.Status = status
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	s.auditSvc.LogUpdated(ctx, Subject{Type: "user", ID: user.ID}, before, user.ToResponse())
	return user, nil
}

func (s *UserService) save(ctx context.Context, user *models.User) error {
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return notFound(err)
	}
	return nil
}

func applyUserFields(user *models.User, name, email, phone, company *string, businessTypeID *uuid.UUID) {
	if name != nil {
		user.Name = strings.TrimSpace(*name)
	}
	if email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*email))
	}
	if phone != nil {
		user.Phone = phone
	}
	if company != nil {
		user.CompanyName = company
	}
	if businessTypeID != nil {
		user.BusinessTypeID = businessTypeID
	}
}

func setPassword(user *models.User, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hash
	return nil
}
