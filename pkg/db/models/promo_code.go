package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
)

// PromoCode is a marketing discount. Percent applies for percentage promos,
// AmountPaisa for fixed promos. Zero-valued caps mean "unlimited".
type PromoCode struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code             string          `gorm:"column:code;not null;uniqueIndex"`
	Kind             enums.PromoKind `gorm:"column:kind;type:promo_kind;not null"`
	Percent          int64           `gorm:"column:percent;not null;default:0"`
	AmountPaisa      int64           `gorm:"column:amount_paisa;not null;default:0"`
	MaxDiscountPaisa int64           `gorm:"column:max_discount_paisa;not null;default:0"`
	MinSubtotalPaisa int64           `gorm:"column:min_subtotal_paisa;not null;default:0"`
	StartsAt         time.Time       `gorm:"column:starts_at;not null"`
	EndsAt           *time.Time      `gorm:"column:ends_at"`
	MaxUses          int             `gorm:"column:max_uses;not null;default:0"`
	PerUserLimit     int             `gorm:"column:per_user_limit;not null;default:0"`
	UsedCount        int             `gorm:"column:used_count;not null;default:0"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
