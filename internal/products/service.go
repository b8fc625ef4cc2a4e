package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
)

// StockLine names one unit of stock movement: a decrement at order creation or
// the matching restore on cancellation. Qty is always the exact quantity
// recorded on the order line.
type StockLine struct {
	ProductID uuid.UUID
	VariantID string
	Qty       int
}

// Service exposes catalog reads and the all-or-nothing stock guard.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	Reserve(ctx context.Context, tx *gorm.DB, lines []StockLine) error
	Restore(ctx context.Context, tx *gorm.DB, lines []StockLine) error
	SetStock(ctx context.Context, productID uuid.UUID, variantID string, qty int) (*models.InventoryItem, error)
	AvailableStock(ctx context.Context, productID uuid.UUID, variantID string) (int, error)
}

// service implements the product service.
type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// GetProduct returns the product when it exists and is active.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not available")
	}
	return product, nil
}

// GetProducts returns the active products among ids, keyed by product ID.
// Missing or inactive products are simply absent; callers decide whether that
// is an error.
func (s *service) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	rows, err := s.repo.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	return byID, nil
}

// Reserve decrements stock for every line inside the caller's transaction.
// Each line is one guarded statement; the first line that cannot be satisfied
// fails the whole call with CodeOutOfStock and the caller's rollback undoes
// the lines already decremented.
func (s *service) Reserve(ctx context.Context, tx *gorm.DB, lines []StockLine) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	repo := s.repo.WithTx(tx)
	for _, line := range lines {
		if line.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity must be positive").WithDetails(map[string]any{
				"productId": line.ProductID,
				"variantId": line.VariantID,
				"requested": line.Qty,
			})
		}
		affected, err := repo.DecrementStock(ctx, line.ProductID, line.VariantID, line.Qty)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
		}
		if affected == 0 {
			available := 0
			item, err := repo.GetInventory(ctx, line.ProductID, line.VariantID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory")
			}
			if item != nil {
				available = item.AvailableQty
			}
			return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock").WithDetails(map[string]any{
				"productId": line.ProductID,
				"variantId": line.VariantID,
				"requested": line.Qty,
				"available": available,
			})
		}
	}
	return nil
}

// Restore adds back the exact quantities recorded on the order lines, inside
// the caller's transaction. If the inventory row disappeared the units are
// re-created rather than lost.
func (s *service) Restore(ctx context.Context, tx *gorm.DB, lines []StockLine) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	repo := s.repo.WithTx(tx)
	for _, line := range lines {
		if line.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity must be positive").WithDetails(map[string]any{
				"productId": line.ProductID,
				"variantId": line.VariantID,
				"requested": line.Qty,
			})
		}
		affected, err := repo.IncrementStock(ctx, line.ProductID, line.VariantID, line.Qty)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increment stock")
		}
		if affected == 0 {
			item := &models.InventoryItem{
				ProductID:    line.ProductID,
				VariantID:    line.VariantID,
				AvailableQty: line.Qty,
			}
			if _, err := repo.UpsertInventory(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: recreate inventory")
			}
		}
	}
	return nil
}

// SetStock sets the absolute available quantity for a product variant.
func (s *service) SetStock(ctx context.Context, productID uuid.UUID, variantID string, qty int) (*models.InventoryItem, error) {
	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "available_qty must be non-negative")
	}
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	item := &models.InventoryItem{
		ProductID:    productID,
		VariantID:    variantID,
		AvailableQty: qty,
	}
	if _, err := s.repo.UpsertInventory(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert inventory")
	}
	return item, nil
}

// AvailableStock reports the current available quantity; a missing inventory
// row reads as zero.
func (s *service) AvailableStock(ctx context.Context, productID uuid.UUID, variantID string) (int, error) {
	item, err := s.repo.GetInventory(ctx, productID, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory")
	}
	return item.AvailableQty, nil
}
