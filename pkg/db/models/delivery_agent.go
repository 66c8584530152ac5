package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
)

// DeliveryAgent represents a courier who fulfills subscription orders.
type DeliveryAgent struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Status           enums.AgentStatus `gorm:"column:status;type:text;not null;default:'pending_approval'"`
	Phone            string            `gorm:"column:phone;not null"`
	VehicleNumber    *string           `gorm:"column:vehicle_number"`
	PhotoPath        *string           `gorm:"column:photo_path"`
	MaxDeliveries    *int              `gorm:"column:max_deliveries"`
	ActiveOrderCount int               `gorm:"column:active_order_count;not null;default:0"`
	ApprovedAt       *time.Time        `gorm:"column:approved_at"`
	RejectedAt       *time.Time        `gorm:"column:rejected_at"`
	User             *User             `gorm:"foreignKey:UserID"`
	Areas            []ServiceableArea `gorm:"many2many:agent_areas;joinForeignKey:AgentID;joinReferences:AreaID"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// Capacity resolves the effective delivery cap, falling back when unset.
func (a DeliveryAgent) Capacity(fallback int) int {
	if a.MaxDeliveries != nil {
		return *a.MaxDeliveries
	}
	return fallback
}
