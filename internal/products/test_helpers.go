package product

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
)

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:                 uuid.New(),
		SKU:                fmt.Sprintf("SKU-%s", uuid.NewString()),
		Title:              "Lawn Suit 3pc",
		Category:           "unstitched",
		PricePaisa:         450000,
		StitchingFeePaisa:  150000,
		StitchingAvailable: true,
		IsActive:           active,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func mustSetStock(t *testing.T, tx *gorm.DB, productID uuid.UUID, variantID string, qty int) {
	t.Helper()
	item := &models.InventoryItem{
		ProductID:    productID,
		VariantID:    variantID,
		AvailableQty: qty,
	}
	if err := tx.Save(item).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
}
