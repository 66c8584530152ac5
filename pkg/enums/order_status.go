package enums

import "fmt"

// OrderStatus tracks the delivery lifecycle of a subscription order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
)

// legacyOrderStatusProcessing was written by an earlier release and is
// treated as pending everywhere.
const legacyOrderStatusProcessing = "processing"

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusOutForDelivery},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
	OrderStatusDelivered:      {},
}

var orderStatusDisplay = map[OrderStatus]string{
	OrderStatusPending:        "Pending",
	OrderStatusOutForDelivery: "Out for Delivery",
	OrderStatusDelivered:      "Delivered",
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// Display returns the customer-facing label for the status.
func (o OrderStatus) Display() string {
	if label, ok := orderStatusDisplay[o]; ok {
		return label
	}
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (o OrderStatus) IsTerminal() bool {
	return len(orderStatusTransitions[o]) == 0 && o.IsValid()
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (o OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range orderStatusTransitions[o] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus. Rows written by
// older releases may carry the legacy processing value, which maps to pending.
func ParseOrderStatus(value string) (OrderStatus, error) {
	if value == legacyOrderStatusProcessing {
		return OrderStatusPending, nil
	}
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
