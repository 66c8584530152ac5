package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	"github.com/greenbasket/greenbasket-backend/pkg/types"
)

// OrderSummaryDTO is the list-row shape shared by customer and agent views.
type OrderSummaryDTO struct {
	ID                uuid.UUID              `json:"id"`
	OrderNumber       int64                  `json:"order_number"`
	Status            enums.OrderStatus      `json:"status"`
	Total             string                 `json:"total"`
	DeliveryAddress   types.DeliveryAddress  `json:"delivery_address"`
	Schedule          types.DeliverySchedule `json:"schedule"`
	AssignedAgentName *string                `json:"assigned_agent_name,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

// OrderDetailDTO adds line items and amounts to the summary.
type OrderDetailDTO struct {
	OrderSummaryDTO
	CustomerName   string        `json:"customer_name"`
	CustomerPhone  *string       `json:"customer_phone,omitempty"`
	Subtotal       string        `json:"subtotal"`
	ShippingCharge string        `json:"shipping_charge"`
	DeliveredAt    *time.Time    `json:"delivered_at,omitempty"`
	Items          []LineItemDTO `json:"items"`
}

// LineItemDTO is one snapshotted product line.
type LineItemDTO struct {
	ProductID   uuid.UUID              `json:"product_id"`
	ProductName string                 `json:"product_name"`
	Plan        enums.SubscriptionPlan `json:"plan"`
	Quantity    int                    `json:"quantity"`
	UnitPrice   string                 `json:"unit_price"`
	LineTotal   string                 `json:"line_total"`
}

// CalendarEntryDTO is one upcoming delivery on the customer's calendar.
type CalendarEntryDTO struct {
	Date        types.CivilDate      `json:"date"`
	OrderID     uuid.UUID            `json:"order_id"`
	OrderNumber int64                `json:"order_number"`
	Status      enums.DeliveryStatus `json:"status"`
}

// RouteStopDTO is one stop on an agent's route for a given day.
type RouteStopDTO struct {
	OrderID         uuid.UUID             `json:"order_id"`
	OrderNumber     int64                 `json:"order_number"`
	CustomerName    string                `json:"customer_name"`
	CustomerPhone   *string               `json:"customer_phone,omitempty"`
	DeliveryAddress types.DeliveryAddress `json:"delivery_address"`
	Status          enums.OrderStatus     `json:"status"`
}

// OrderListDTO is one cursor page of the admin order list.
type OrderListDTO struct {
	Orders     []OrderSummaryDTO `json:"orders"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// DashboardStatsDTO is the admin overview.
type DashboardStatsDTO struct {
	TotalRevenue     string `json:"total_revenue"`
	ActiveOrders     int64  `json:"active_orders"`
	DeliveredOrders  int64  `json:"delivered_orders"`
	UnassignedOrders int64  `json:"unassigned_orders"`
	PendingAgents    int64  `json:"pending_agents"`
	ApprovedAgents   int64  `json:"approved_agents"`
}

func summaryFromModel(order *models.Order) OrderSummaryDTO {
	return OrderSummaryDTO{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		Status:            order.Status,
		Total:             order.Total.StringFixed(2),
		DeliveryAddress:   order.DeliveryAddress,
		Schedule:          order.Schedule,
		AssignedAgentName: order.AssignedAgentName,
		CreatedAt:         order.CreatedAt,
	}
}

func detailFromModel(order *models.Order) *OrderDetailDTO {
	items := make([]LineItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Plan:        item.Plan,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			LineTotal:   item.LineTotal.StringFixed(2),
		})
	}
	return &OrderDetailDTO{
		OrderSummaryDTO: summaryFromModel(order),
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		Subtotal:        order.Subtotal.StringFixed(2),
		ShippingCharge:  order.ShippingCharge.StringFixed(2),
		DeliveredAt:     order.DeliveredAt,
		Items:           items,
	}
}
