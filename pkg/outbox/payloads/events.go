package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
)

// OrderCreatedEvent announces a freshly placed order awaiting payment.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID           `json:"orderId"`
	OrderNumber   string              `json:"orderNumber"`
	UserID        *uuid.UUID          `json:"userId,omitempty"`
	GuestEmail    *string             `json:"guestEmail,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	TotalPaisa    int64               `json:"totalPaisa"`
	ItemCount     int                 `json:"itemCount"`
}

// PaymentVerifiedEvent is emitted when an admin approves a payment receipt.
type PaymentVerifiedEvent struct {
	OrderID     uuid.UUID           `json:"orderId"`
	OrderNumber string              `json:"orderNumber"`
	Method      enums.PaymentMethod `json:"method"`
	VerifiedBy  uuid.UUID           `json:"verifiedBy"`
	VerifiedAt  time.Time           `json:"verifiedAt"`
}

// PaymentRejectedEvent is emitted when an admin rejects a payment receipt.
// The order stays in pending payment so the customer can resubmit.
type PaymentRejectedEvent struct {
	OrderID     uuid.UUID           `json:"orderId"`
	OrderNumber string              `json:"orderNumber"`
	Method      enums.PaymentMethod `json:"method"`
	Note        string              `json:"note,omitempty"`
	RejectedAt  time.Time           `json:"rejectedAt"`
}

// ReceiptSubmittedEvent is emitted when a customer uploads proof of payment.
type ReceiptSubmittedEvent struct {
	OrderID       uuid.UUID           `json:"orderId"`
	OrderNumber   string              `json:"orderNumber"`
	Method        enums.PaymentMethod `json:"method"`
	ReceiptRef    string              `json:"receiptRef"`
	TransactionID *string             `json:"transactionId,omitempty"`
}

// OrderStatusChangedEvent carries a fulfillment status transition.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	FromStatus  enums.OrderStatus `json:"fromStatus"`
	ToStatus    enums.OrderStatus `json:"toStatus"`
	Note        *string           `json:"note,omitempty"`
	ChangedAt   time.Time         `json:"changedAt"`
}

// OrderCancelledEvent is emitted once per order on cancellation.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Reason      string    `json:"reason,omitempty"`
	Restocked   bool      `json:"restocked"`
	CancelledAt time.Time `json:"cancelledAt"`
}

// OrderRefundedEvent is emitted when an admin marks an order refunded.
type OrderRefundedEvent struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Note        string    `json:"note,omitempty"`
	RefundedAt  time.Time `json:"refundedAt"`
}

// PaymentReminderEvent nudges customers whose orders sat unpaid past the window.
type PaymentReminderEvent struct {
	OrderID      uuid.UUID `json:"orderId"`
	OrderNumber  string    `json:"orderNumber"`
	PlacedAt     time.Time `json:"placedAt"`
	HoursPending int       `json:"hoursPending"`
}

// CartAbandonedEvent flags carts with no activity inside the idle window.
type CartAbandonedEvent struct {
	CartID         uuid.UUID  `json:"cartId"`
	UserID         *uuid.UUID `json:"userId,omitempty"`
	GuestToken     *string    `json:"guestToken,omitempty"`
	ItemCount      int        `json:"itemCount"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
}
