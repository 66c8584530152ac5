package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
)

// Repository defines the persistence operations the fulfillment flows need
// across orders, carts, agents and settings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAreaByID(ctx context.Context, id uuid.UUID) (*models.ServiceableArea, error)
	FindEligibleAgents(ctx context.Context, areaID uuid.UUID) ([]models.DeliveryAgent, error)
	ClaimAgentSlot(ctx context.Context, agentID uuid.UUID, capacity int) (bool, error)
	ReleaseAgentSlot(ctx context.Context, agentID uuid.UUID) error
	FindCartItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	DeleteCartItems(ctx context.Context, userID uuid.UUID) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ShippingCharge(ctx context.Context) (decimal.Decimal, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindUnassignedPendingIDs(ctx context.Context) ([]uuid.UUID, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
