package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

// User represents the canonical identity entity.
type User struct {
	ID             uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email          string                 `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash   string                 `gorm:"column:password_hash;not null"`
	FirstName      string                 `gorm:"column:first_name;not null"`
	LastName       string                 `gorm:"column:last_name;not null"`
	Phone          *string                `gorm:"column:phone"`
	Role           enums.Role             `gorm:"column:role;type:text;not null;default:'customer'"`
	IsActive       bool                   `gorm:"column:is_active;not null"`
	LastLoginAt    *time.Time             `gorm:"column:last_login_at"`
	DefaultAddress *types.DeliveryAddress `gorm:"column:default_address;type:jsonb;serializer:json"`
	DeviceToken    *string                `gorm:"column:device_token"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins first and last name for display.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
