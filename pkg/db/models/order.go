package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

// Order is the immutable record produced at checkout. Item snapshots, pricing
// and the shipping address are frozen at creation; only status, payment and
// tracking move afterwards. Orders are never deleted.
type Order struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string     `gorm:"column:order_number;not null;uniqueIndex"`
	UserID      *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	GuestEmail  *string    `gorm:"column:guest_email;index"`
	GuestPhone  *string    `gorm:"column:guest_phone"`

	Status enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending_payment'"`

	SubtotalPaisa     int64   `gorm:"column:subtotal_paisa;not null"`
	StitchingFeePaisa int64   `gorm:"column:stitching_fee_paisa;not null;default:0"`
	ShippingFeePaisa  int64   `gorm:"column:shipping_fee_paisa;not null;default:0"`
	DiscountPaisa     int64   `gorm:"column:discount_paisa;not null;default:0"`
	TotalPaisa        int64   `gorm:"column:total_paisa;not null"`
	PromoCode         *string `gorm:"column:promo_code"`

	ShippingAddress types.Address `gorm:"column:shipping_address;type:jsonb;serializer:json"`

	TrackingCourier *string    `gorm:"column:tracking_courier"`
	TrackingNumber  *string    `gorm:"column:tracking_number"`
	RestockedAt     *time.Time `gorm:"column:restocked_at"`
	PlacedAt        time.Time  `gorm:"column:placed_at;not null"`

	Items        []OrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment      *OrderPayment      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusEvents []OrderStatusEvent `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsGuest reports whether the order belongs to an unauthenticated buyer.
func (o Order) IsGuest() bool {
	return o.UserID == nil
}
