package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserInvitation is a pending invite to join the tenant
type UserInvitation struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string     `gorm:"not null;index" json:"email"`
	Name           *string    `json:"name"`
	CompanyName    *string    `json:"company_name"`
	Phone          *string    `json:"phone"`
	BusinessTypeID *uuid.UUID `gorm:"type:uuid" json:"business_type_id"`
	Role           string     `gorm:"size:20;not null;default:user" json:"role"`
	Token          string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Status         string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	InvitedBy      uuid.UUID  `gorm:"type:uuid;not null" json:"invited_by"`
	Message        *string    `gorm:"type:text" json:"message"`
	ExpiresAt      time.Time  `json:"expires_at"`
	AcceptedAt     *time.Time `json:"accepted_at"`
	UserID         *uuid.UUID `gorm:"type:uuid" json:"user_id"`
	SentCount      int        `gorm:"not null;default:1" json:"sent_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Inviter      *User         `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
	BusinessType *BusinessType `gorm:"foreignKey:BusinessTypeID" json:"business_type,omitempty"`
}

// TableName specifies the table name for UserInvitation
func (UserInvitation) TableName() string {
	return "user_invitations"
}

// BeforeCreate assigns a UUID and the pending status
func (i *UserInvitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = InvitationStatusPending
	}
	return nil
}

// Invitation status constants
const (
	InvitationStatusPending   = "pending"
	InvitationStatusAccepted  = "accepted"
	InvitationStatusCancelled = "cancelled"
	InvitationStatusExpired   = "expired"
)

// IsExpired returns true if the invitation can no longer be accepted
func (i *UserInvitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
