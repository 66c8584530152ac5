package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceableArea is a delivery zone agents can be assigned to. Orders
// reference areas by ID, so renaming an area never breaks matching.
type ServiceableArea struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string          `gorm:"column:name;type:text;not null;uniqueIndex"`
	City      string          `gorm:"column:city;not null"`
	Pincodes  []string        `gorm:"column:pincodes;type:jsonb;serializer:json"`
	IsActive  bool            `gorm:"column:is_active;not null"`
	Agents    []DeliveryAgent `gorm:"many2many:agent_areas;joinForeignKey:AreaID;joinReferences:AgentID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// AgentArea is the join row linking agents to the areas they cover.
type AgentArea struct {
	AgentID   uuid.UUID `gorm:"column:agent_id;type:uuid;primaryKey"`
	AreaID    uuid.UUID `gorm:"column:area_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
