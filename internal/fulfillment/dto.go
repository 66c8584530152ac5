package fulfillment

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

// CreateOrderInput carries everything checkout needs to place an order.
type CreateOrderInput struct {
	UserID          uuid.UUID
	DeliveryAddress types.DeliveryAddress
}

// CreateOrderResult reports the committed order back to the caller.
type CreateOrderResult struct {
	OrderID     uuid.UUID
	OrderNumber int64
	Total       string
	Assigned    bool
}

// CompleteDeliveriesInput is an agent's batch of today's finished stops.
type CompleteDeliveriesInput struct {
	AgentID  uuid.UUID
	OrderIDs []uuid.UUID
}

// CompleteDeliveriesResult summarizes what the batch changed.
type CompleteDeliveriesResult struct {
	EntriesDelivered int
	OrdersCompleted  int
	SkippedOrderIDs  []uuid.UUID
}

// UpdateOrderStatusInput is the single-order agent dashboard action.
type UpdateOrderStatusInput struct {
	AgentID uuid.UUID
	OrderID uuid.UUID
	Status  enums.OrderStatus
}

// assignmentSource labels where an assignment originated for events and
// metrics.
const (
	assignmentSourceCheckout  = "checkout"
	assignmentSourceReconcile = "reconcile"
)

// placeholderCustomerName stands in when the profile row is gone; checkout
// must not fail over a missing display name.
const placeholderCustomerName = "GreenBasket Customer"

// nowFunc lets tests pin the clock.
type nowFunc func() time.Time
