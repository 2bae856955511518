package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLog represents a write-only audit entry
type ActivityLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	EventType   string         `gorm:"size:50;not null;index" json:"event_type"` // created, updated, deleted, login, posted...
	ModelType   *string        `gorm:"size:50;index:idx_activity_logs_model" json:"model_type"`
	ModelID     *uuid.UUID     `gorm:"type:uuid;index:idx_activity_logs_model" json:"model_id"`
	Description string         `gorm:"type:text" json:"description"`
	Properties  map[string]any `gorm:"type:jsonb;serializer:json" json:"properties"`
	IPAddress   string         `gorm:"size:45" json:"ip_address"`
	UserAgent   string         `gorm:"size:255" json:"user_agent"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for ActivityLog
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// BeforeCreate assigns a UUID when none was provided
func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Activity event types
const (
	ActivityCreated           = "created"
	ActivityUpdated           = "updated"
	ActivityDeleted           = "deleted"
	ActivityLogin             = "login"
	ActivityLogout            = "logout"
	ActivityPosted            = "posted"
	ActivityReversed          = "reversed"
	ActivityModuleActivated   = "module_activated"
	ActivityModuleDeactivated = "module_deactivated"
	ActivityInvitationSent    = "invitation_sent"
	ActivityInvitationAccept  = "invitation_accepted"
)
