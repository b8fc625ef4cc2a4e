package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
)

// Cart holds the open basket for either a signed-in user or a guest token.
// Exactly one of UserID/GuestToken is set.
type Cart struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     *uuid.UUID       `gorm:"column:user_id;type:uuid;index"`
	GuestToken *string          `gorm:"column:guest_token;index"`
	Status     enums.CartStatus `gorm:"column:status;type:cart_status;not null;default:'active'"`
	PromoCode  *string          `gorm:"column:promo_code"`
	Items      []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
