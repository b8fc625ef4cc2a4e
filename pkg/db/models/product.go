package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a storefront listing: ready-to-wear pieces, unstitched fabric, or
// made-to-order suits that can be stitched to the buyer's measurements.
type Product struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU                string    `gorm:"column:sku;not null;uniqueIndex"`
	Title              string    `gorm:"column:title;not null"`
	ImageURL           *string   `gorm:"column:image_url"`
	Category           string    `gorm:"column:category;not null;default:''"`
	PricePaisa         int64     `gorm:"column:price_paisa;not null"`
	StitchingFeePaisa  int64     `gorm:"column:stitching_fee_paisa;not null;default:0"`
	StitchingAvailable bool      `gorm:"column:stitching_available;not null;default:false"`
	IsActive           bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
