package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindActiveByGuest(ctx context.Context, token string) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	FindItemByIdentity(ctx context.Context, cartID uuid.UUID, identityKey string) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	IncrementItemQty(ctx context.Context, itemID uuid.UUID, delta int) error
	SetItemQty(ctx context.Context, cartID, itemID uuid.UUID, qty int) (int64, error)
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) (int64, error)
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
	SetPromoCode(ctx context.Context, cartID uuid.UUID, code *string) error
	UpdateStatusIf(ctx context.Context, cartID uuid.UUID, from, to enums.CartStatus) (int64, error)
}
