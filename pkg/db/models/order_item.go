package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

// OrderItem snapshots one purchased line. Title, image and prices are copied
// from the catalog at checkout so later product edits never alter the record.
// Rows are written once and never updated.
type OrderItem struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID         uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	VariantID         string              `gorm:"column:variant_id;not null;default:''"`
	Title             string              `gorm:"column:title;not null"`
	ImageURL          *string             `gorm:"column:image_url"`
	UnitPricePaisa    int64               `gorm:"column:unit_price_paisa;not null"`
	StitchingFeePaisa int64               `gorm:"column:stitching_fee_paisa;not null;default:0"`
	Qty               int                 `gorm:"column:qty;not null"`
	IsStitched        bool                `gorm:"column:is_stitched;not null;default:false"`
	Measurements      types.Measurements  `gorm:"column:measurements;type:jsonb;serializer:json"`
	Customization     types.Customization `gorm:"column:customization;type:jsonb;serializer:json"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
}
