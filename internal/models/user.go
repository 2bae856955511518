package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a user in the system
type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string     `gorm:"not null" json:"name"`
	Email           string     `gorm:"uniqueIndex;not null" json:"email"`
	Password        string     `gorm:"column:password;not null" json:"-"`
	Role            string     `gorm:"size:20;default:user" json:"role"`
	Status          string     `gorm:"size:20;default:active" json:"status"`
	Phone           *string    `json:"phone"`
	CompanyName     *string    `json:"company_name"`
	BusinessTypeID  *uuid.UUID `gorm:"type:uuid;index" json:"business_type_id"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLoginAt     *time.Time `json:"last_login_at"`
	InvitedBy       *uuid.UUID `gorm:"type:uuid" json:"invited_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Associations
	BusinessType *BusinessType `gorm:"foreignKey:BusinessTypeID" json:"business_type,omitempty"`
	UserModules  []UserModule  `gorm:"foreignKey:UserID" json:"user_modules,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return nil
}

// IsAdmin returns true if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive returns true if user status is active
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// Role constants
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// UserResponse is the JSON response format for users
type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	Phone          *string    `json:"phone"`
	CompanyName    *string    `json:"company_name"`
	BusinessTypeID *uuid.UUID `json:"business_type_id"`
	LastLoginAt    *time.Time `json:"last_login_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		Status:         u.Status,
		Phone:          u.Phone,
		CompanyName:    u.CompanyName,
		BusinessTypeID: u.BusinessTypeID,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
