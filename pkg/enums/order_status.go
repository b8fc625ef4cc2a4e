package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order.
type OrderStatus string

const (
	OrderStatusPendingPayment  OrderStatus = "pending_payment"
	OrderStatusPaymentVerified OrderStatus = "payment_verified"
	OrderStatusInProgress      OrderStatus = "in_progress"
	OrderStatusQualityCheck    OrderStatus = "quality_check"
	OrderStatusDispatched      OrderStatus = "dispatched"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusRefunded        OrderStatus = "refunded"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusPaymentVerified,
	OrderStatusInProgress,
	OrderStatusQualityCheck,
	OrderStatusDispatched,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

// orderStatusRank orders the forward path. Higher rank means further along;
// cancelled and refunded sit outside the path.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPendingPayment:  0,
	OrderStatusPaymentVerified: 1,
	OrderStatusInProgress:      2,
	OrderStatusQualityCheck:    3,
	OrderStatusDispatched:      4,
	OrderStatusDelivered:       5,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
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

// IsTerminal reports whether no further transitions may leave this status.
func (o OrderStatus) IsTerminal() bool {
	switch o {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another.
// Forward moves may skip intermediate steps but never run backwards, and
// cancelled/refunded branch off from any state before delivery.
func (o OrderStatus) CanTransition(to OrderStatus) bool {
	if !o.IsValid() || !to.IsValid() || o == to {
		return false
	}
	if o.IsTerminal() {
		return false
	}
	if to == OrderStatusCancelled || to == OrderStatusRefunded {
		return true
	}
	fromRank, ok := orderStatusRank[o]
	if !ok {
		return false
	}
	toRank, ok := orderStatusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// CustomerCancellable reports whether a customer may self-cancel from this
// status. Later states require an admin.
func (o OrderStatus) CustomerCancellable() bool {
	return o == OrderStatusPendingPayment || o == OrderStatusPaymentVerified
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
