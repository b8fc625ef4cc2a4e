package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
)

// ListFilters narrow the admin order listing.
type ListFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	PlacedFrom    *time.Time
	PlacedTo      *time.Time
}

// OrderSummary is the list-view projection of an order.
type OrderSummary struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"orderNumber"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"paymentStatus,omitempty"`
	TotalPaisa    int64               `json:"totalPaisa"`
	ItemCount     int                 `json:"itemCount"`
	PlacedAt      time.Time           `json:"placedAt"`
}

// OrderList wraps one page of summaries plus the cursor for the next page.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

func summarize(order models.Order) OrderSummary {
	summary := OrderSummary{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalPaisa:  order.TotalPaisa,
		ItemCount:   len(order.Items),
		PlacedAt:    order.PlacedAt,
	}
	if order.Payment != nil {
		summary.PaymentStatus = order.Payment.Status
	}
	return summary
}
