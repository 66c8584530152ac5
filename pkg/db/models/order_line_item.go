package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
)

// OrderLineItem snapshots a cart line at checkout time. Product name and
// price are copied so later catalog edits do not rewrite order history.
type OrderLineItem struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID              `gorm:"column:product_id;type:uuid;not null"`
	ProductName string                 `gorm:"column:product_name;not null"`
	Plan        enums.SubscriptionPlan `gorm:"column:plan;type:text;not null"`
	Quantity    int                    `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal        `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal   decimal.Decimal        `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
