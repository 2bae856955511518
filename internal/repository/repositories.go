package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User          UserRepository
	RefreshToken  RefreshTokenRepository
	Session       SessionRepository
	SecurityEvent SecurityEventRepository
	PasswordReset PasswordResetRepository
	ActivityLog   ActivityLogRepository
	Module        ModuleRepository
	Invitation    InvitationRepository
	MixDesign     MixDesignRepository
	Ledger        LedgerRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		RefreshToken:  NewRefreshTokenRepository(db),
		Session:       NewSessionRepository(db),
		SecurityEvent: NewSecurityEventRepository(db),
		PasswordReset: NewPasswordResetRepository(db),
		ActivityLog:   NewActivityLogRepository(db),
		Module:        NewModuleRepository(db),
		Invitation:    NewInvitationRepository(db),
		MixDesign:     NewMixDesignRepository(db),
		Ledger:        NewLedgerRepository(db),
	}
}
