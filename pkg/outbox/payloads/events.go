package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/enums"
)

// OrderCreatedEvent signals a new subscription order from checkout.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	UserID      uuid.UUID `json:"user_id"`
	AreaID      uuid.UUID `json:"area_id"`
	Total       string    `json:"total"`
	Assigned    bool      `json:"assigned"`
}

// OrderAssignedEvent is emitted when an order is matched to an agent,
// either at checkout or by the reconcile sweep.
type OrderAssignedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	AgentID    uuid.UUID `json:"agent_id"`
	AreaID     uuid.UUID `json:"area_id"`
	Source     string    `json:"source"`
	AssignedAt time.Time `json:"assigned_at"`
}

// OrderOutForDeliveryEvent signals the agent has started the order's route.
type OrderOutForDeliveryEvent struct {
	OrderID  uuid.UUID `json:"order_id"`
	AgentID  uuid.UUID `json:"agent_id"`
	AreaID   uuid.UUID `json:"area_id"`
	MarkedAt time.Time `json:"marked_at"`
}

// OrderDeliveredEvent fires when every schedule entry has been delivered.
type OrderDeliveredEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	AgentID     uuid.UUID `json:"agent_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// AgentDecisionEvent reports an onboarding approval or rejection.
type AgentDecisionEvent struct {
	AgentID uuid.UUID         `json:"agent_id"`
	UserID  uuid.UUID         `json:"user_id"`
	Status  enums.AgentStatus `json:"status"`
}

// NotificationRequestedEvent tells downstream systems to alert a user.
type NotificationRequestedEvent struct {
	UserID uuid.UUID              `json:"user_id"`
	Type   enums.NotificationType `json:"type"`
	Title  string                 `json:"title"`
	Body   string                 `json:"body"`
}
