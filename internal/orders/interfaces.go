package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/pagination"
)

// Repository defines persistence for orders and their child rows. Status
// moves run as guarded updates so concurrent writers never clobber each
// other; history rows are append-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error
	CreatePayment(ctx context.Context, payment *models.OrderPayment) (*models.OrderPayment, error)
	AppendStatusEvent(ctx context.Context, event *models.OrderStatusEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, *pagination.Cursor, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, *pagination.Cursor, error)
	UpdateStatusIf(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (int64, error)
	UpdatePayment(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	SetTracking(ctx context.Context, orderID uuid.UUID, courier, trackingNumber string) error
	MarkRestocked(ctx context.Context, orderID uuid.UUID, at time.Time) (int64, error)
	FindPendingPaymentBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}
