package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem tracks sellable stock per product variant. VariantID is the
// empty string for products sold without variants.
type InventoryItem struct {
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	VariantID    string    `gorm:"column:variant_id;not null;default:'';primaryKey"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
