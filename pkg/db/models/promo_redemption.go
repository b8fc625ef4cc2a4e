package models

import (
	"time"

	"github.com/google/uuid"
)

// PromoRedemption records one promo use against one order. It backs the
// per-user limit check and survives order cancellation as the audit trail.
type PromoRedemption struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PromoID    uuid.UUID  `gorm:"column:promo_id;type:uuid;not null;uniqueIndex:idx_promo_redemptions_order"`
	OrderID    uuid.UUID  `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_promo_redemptions_order"`
	UserID     *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	GuestEmail *string    `gorm:"column:guest_email;index"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}
