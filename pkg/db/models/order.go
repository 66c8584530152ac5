package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

// Order is a subscription order with its delivery schedule snapshot.
type Order struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber       int64                  `gorm:"column:order_number;not null;uniqueIndex"`
	UserID            uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	CustomerName      string                 `gorm:"column:customer_name;not null"`
	CustomerPhone     *string                `gorm:"column:customer_phone"`
	Status            enums.OrderStatus      `gorm:"column:status;type:text;not null;default:'pending';index"`
	DeliveryAddress   types.DeliveryAddress  `gorm:"column:delivery_address;type:jsonb;not null"`
	Schedule          types.DeliverySchedule `gorm:"column:schedule;type:jsonb;not null"`
	Subtotal          decimal.Decimal        `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingCharge    decimal.Decimal        `gorm:"column:shipping_charge;type:numeric(12,2);not null;default:0"`
	Total             decimal.Decimal        `gorm:"column:total;type:numeric(12,2);not null"`
	AssignedAgentID   *uuid.UUID             `gorm:"column:assigned_agent_id;type:uuid;index"`
	AssignedAgentName *string                `gorm:"column:assigned_agent_name"`
	AssignedAt        *time.Time             `gorm:"column:assigned_at"`
	DeliveredAt       *time.Time             `gorm:"column:delivered_at"`
	Items             []OrderLineItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// IsAssigned reports whether the order has an agent attached.
func (o Order) IsAssigned() bool {
	return o.AssignedAgentID != nil
}
