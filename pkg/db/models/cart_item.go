package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

// CartItem is one cart line. IdentityKey fingerprints (product, variant,
// stitching, measurements, customization) so equal configurations collapse
// into a single line. Prices are pinned at add time and never refreshed.
type CartItem struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID            uuid.UUID           `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_identity"`
	ProductID         uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	VariantID         string              `gorm:"column:variant_id;not null;default:''"`
	IdentityKey       string              `gorm:"column:identity_key;not null;uniqueIndex:idx_cart_items_identity"`
	Qty               int                 `gorm:"column:qty;not null"`
	PriceAtAddPaisa   int64               `gorm:"column:price_at_add_paisa;not null"`
	StitchingFeePaisa int64               `gorm:"column:stitching_fee_paisa;not null;default:0"`
	IsStitched        bool                `gorm:"column:is_stitched;not null;default:false"`
	Measurements      types.Measurements  `gorm:"column:measurements;type:jsonb;serializer:json"`
	Customization     types.Customization `gorm:"column:customization;type:jsonb;serializer:json"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
