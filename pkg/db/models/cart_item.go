package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
)

// CartItem is a product a customer has staged for checkout.
type CartItem struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index;uniqueIndex:idx_cart_user_product"`
	ProductID uuid.UUID              `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int                    `gorm:"column:quantity;not null;default:1"`
	Plan      enums.SubscriptionPlan `gorm:"column:plan;type:text;not null"`
	Product   *Product               `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
