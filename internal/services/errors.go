package services

import (
	"errors"

	"github.com/sjperalta/modular-erp-api/internal/statemachine"
	"gorm.io/gorm"
)

// Common service errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidState    = errors.New("invalid state transition")
	ErrDuplicate       = errors.New("duplicate record")
	ErrInvalidInput    = errors.New("invalid input")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive or suspended")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrSessionRevoked     = errors.New("session has been revoked")
	ErrInvalidResetToken  = errors.New("password reset token is invalid or has expired")
)

// Ledger errors
var (
	ErrNotBalanced   = statemachine.ErrNotBalanced
	ErrNotDraft      = statemachine.ErrNotDraft
	ErrNotPosted     = statemachine.ErrNotPosted
	ErrSystemAccount = errors.New("system accounts cannot be modified or deleted")
	ErrAccountCycle  = errors.New("account hierarchy contains a cycle")
	ErrAccountInUse  = errors.New("account has journal lines or child accounts")
	ErrEntryLocked   = errors.New("journal entry can only be changed while in draft")
	ErrCodeTaken     = errors.New("account code is already in use")
)

// Module errors
var (
	ErrModuleAlreadyActive   = errors.New("module is already active")
	ErrModuleAlreadyInactive = errors.New("module is already inactive")
	ErrModuleNotActivated    = errors.New("module is not activated for this user")
)

// Invitation errors
var (
	ErrInvitationNotPending = statemachine.ErrInvitationNotPending
	ErrInvitationExpired    = statemachine.ErrInvitationExpired
	ErrAlreadyInvited       = errors.New("a pending invitation already exists for this email")
)

// notFound maps gorm's missing-row error to ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
