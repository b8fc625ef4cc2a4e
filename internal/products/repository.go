package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
)

// Repository wires together catalog and inventory persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product regardless of active state.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindActiveByIDs loads the active products among the given ids.
func (r *Repository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&rows).
		Error
	return rows, err
}

// DecrementStock runs the guarded atomic decrement and reports how many rows
// it touched. Zero means the variant had less stock than requested (or no
// inventory row at all).
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, variantID string, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ? AND variant_id = ? AND available_qty >= ?", productID, variantID, qty).
		Update("available_qty", gorm.Expr("available_qty - ?", qty))
	return res.RowsAffected, res.Error
}

// IncrementStock adds qty back to the variant's inventory row and reports how
// many rows it touched.
func (r *Repository) IncrementStock(ctx context.Context, productID uuid.UUID, variantID string, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ? AND variant_id = ?", productID, variantID).
		Update("available_qty", gorm.Expr("available_qty + ?", qty))
	return res.RowsAffected, res.Error
}

// GetInventory returns the inventory row for the product variant.
func (r *Repository) GetInventory(ctx context.Context, productID uuid.UUID, variantID string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		First(&item, "product_id = ? AND variant_id = ?", productID, variantID).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertInventory creates or replaces the inventory row for a product variant.
func (r *Repository) UpsertInventory(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}
