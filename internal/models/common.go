package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshToken represents an opaque refresh token bound to a session
type RefreshToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionID *uuid.UUID `gorm:"type:uuid;index" json:"session_id"`
	Token     string     `gorm:"uniqueIndex;not null" json:"token"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Associations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for RefreshToken
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// BeforeCreate assigns a UUID when none was provided
func (r *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsExpired returns true if the refresh token has expired
func (r *RefreshToken) IsExpired() bool {
	if r.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*r.ExpiresAt)
}

// UserSession tracks a signed-in device
type UserSession struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	DeviceName     string     `gorm:"size:100" json:"device_name"`
	DeviceType     string     `gorm:"size:20" json:"device_type"`
	Browser        string     `gorm:"size:50" json:"browser"`
	OS             string     `gorm:"column:os;size:50" json:"os"`
	IPAddress      string     `gorm:"size:45" json:"ip_address"`
	UserAgent      string     `gorm:"size:255" json:"user_agent"`
	LastActivityAt time.Time  `gorm:"index" json:"last_activity_at"`
	ExpiresAt      time.Time  `gorm:"index" json:"expires_at"`
	RevokedAt      *time.Time `json:"revoked_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName specifies the table name for UserSession
func (UserSession) TableName() string {
	return "user_sessions"
}

// BeforeCreate assigns a UUID when none was provided
func (s *UserSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsActive returns true if the session is neither revoked nor expired at now
func (s *UserSession) IsActive(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Security event severities
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Security event types
const (
	SecurityEventFailedLogin      = "failed_login"
	SecurityEventInactiveLogin    = "inactive_account_login"
	SecurityEventPasswordChanged  = "password_changed"
	SecurityEventPasswordReset    = "password_reset"
	SecurityEventResetRequested   = "forgot_password_sent"
	SecurityEventResetUnknown     = "forgot_password_attempt"
	SecurityEventInvalidReset     = "invalid_reset_token"
	SecurityEventSessionRevoked   = "session_revoked"
	SecurityEventSuspiciousAccess = "suspicious_access"
)

// SecurityEvent records an authentication-related incident
type SecurityEvent struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	EventType   string     `gorm:"size:50;not null;index" json:"event_type"`
	Severity    string     `gorm:"size:20;not null;default:medium" json:"severity"`
	Description string     `gorm:"type:text" json:"description"`
	IPAddress   string     `gorm:"size:45" json:"ip_address"`
	UserAgent   string     `gorm:"size:255" json:"user_agent"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	ResolvedBy  *uuid.UUID `gorm:"type:uuid" json:"resolved_by"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for SecurityEvent
func (SecurityEvent) TableName() string {
	return "security_events"
}

// BeforeCreate assigns a UUID when none was provided
func (e *SecurityEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Severity == "" {
		e.Severity = SeverityMedium
	}
	return nil
}

// PasswordReset is a single-use password reset request. Only the SHA-256
// of the e-mailed token is stored.
type PasswordReset struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string     `gorm:"size:255;not null;index" json:"email"`
	TokenHash string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"index" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	IPAddress string     `gorm:"size:45" json:"ip_address"`
	UserAgent string     `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName specifies the table name for PasswordReset
func (PasswordReset) TableName() string {
	return "password_resets"
}

// BeforeCreate assigns a UUID when none was provided
func (p *PasswordReset) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsUsable reports whether the reset can still be redeemed at now
func (p *PasswordReset) IsUsable(now time.Time) bool {
	return p.UsedAt == nil && now.Before(p.ExpiresAt)
}
