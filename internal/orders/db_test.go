package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	product "github.com/Kaashmalik/laraibcreative-platform-sub000/internal/products"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			order_number TEXT NOT NULL,
			user_id TEXT,
			guest_email TEXT,
			guest_phone TEXT,
			status TEXT NOT NULL DEFAULT 'pending_payment',
			subtotal_paisa INTEGER NOT NULL CHECK (subtotal_paisa >= 0),
			stitching_fee_paisa INTEGER NOT NULL DEFAULT 0 CHECK (stitching_fee_paisa >= 0),
			shipping_fee_paisa INTEGER NOT NULL DEFAULT 0 CHECK (shipping_fee_paisa >= 0),
			discount_paisa INTEGER NOT NULL DEFAULT 0 CHECK (discount_paisa >= 0),
			total_paisa INTEGER NOT NULL CHECK (total_paisa >= 0),
			promo_code TEXT,
			shipping_address TEXT,
			tracking_courier TEXT,
			tracking_number TEXT,
			restocked_at DATETIME,
			placed_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_order_number ON orders (order_number)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			variant_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			image_url TEXT,
			unit_price_paisa INTEGER NOT NULL CHECK (unit_price_paisa >= 0),
			stitching_fee_paisa INTEGER NOT NULL DEFAULT 0 CHECK (stitching_fee_paisa >= 0),
			qty INTEGER NOT NULL CHECK (qty > 0),
			is_stitched INTEGER NOT NULL DEFAULT 0,
			measurements TEXT,
			customization TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id)`,
		`CREATE TABLE IF NOT EXISTS order_status_events (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			status TEXT NOT NULL,
			note TEXT,
			actor_kind TEXT NOT NULL,
			actor_id TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_status_events_order_id ON order_status_events (order_id)`,
		`CREATE TABLE IF NOT EXISTS order_payments (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			method TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			receipt_ref TEXT,
			transaction_id TEXT,
			note TEXT,
			verified_at DATETIME,
			verified_by TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_order_payments_order_id ON order_payments (order_id)`,
	}
	for _, stmt := range ddl {
		require.NoError(t, gormDB.Exec(stmt).Error)
	}
	return gormDB
}

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// recordingOutbox captures emitted events so tests can assert on them without
// an outbox table.
type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (o *recordingOutbox) Emit(_ context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	o.events = append(o.events, event)
	return nil
}

func (o *recordingOutbox) eventTypes() []enums.OutboxEventType {
	kinds := make([]enums.OutboxEventType, 0, len(o.events))
	for _, event := range o.events {
		kinds = append(kinds, event.EventType)
	}
	return kinds
}

// recordingStock counts restore calls and remembers the lines it was handed.
type recordingStock struct {
	restores [][]product.StockLine
	fail     error
}

func (s *recordingStock) Restore(_ context.Context, tx *gorm.DB, lines []product.StockLine) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if s.fail != nil {
		return s.fail
	}
	s.restores = append(s.restores, lines)
	return nil
}

type ordersFixture struct {
	db     *gorm.DB
	repo   Repository
	outbox *recordingOutbox
	stock  *recordingStock
	svc    *service
	now    time.Time
}

func newOrdersFixture(t *testing.T) *ordersFixture {
	t.Helper()

	gormDB := setupOrdersTestDB(t)
	f := &ordersFixture{
		db:     gormDB,
		repo:   NewRepository(gormDB),
		outbox: &recordingOutbox{},
		stock:  &recordingStock{},
		now:    time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC),
	}
	f.svc = &service{
		repo:   f.repo,
		tx:     sqliteTxRunner{db: gormDB},
		outbox: f.outbox,
		stock:  f.stock,
		now:    func() time.Time { return f.now },
	}
	return f
}

func newOrderNumber() string {
	return "LC-20250610-" + strings.ToUpper(uuid.New().String()[:6])
}

type orderSeed struct {
	userID     *uuid.UUID
	guestEmail *string
	guestPhone *string
	status     enums.OrderStatus
	method     enums.PaymentMethod
	payStatus  enums.PaymentStatus
	items      []models.OrderItem
	placedAt   time.Time
}

func (f *ordersFixture) seedOrder(t *testing.T, seed orderSeed) *models.Order {
	t.Helper()
	ctx := context.Background()

	if seed.status == "" {
		seed.status = enums.OrderStatusPendingPayment
	}
	if seed.method == "" {
		seed.method = enums.PaymentMethodBankTransfer
	}
	if seed.payStatus == "" {
		seed.payStatus = enums.PaymentStatusPending
	}
	if seed.placedAt.IsZero() {
		seed.placedAt = f.now.Add(-2 * time.Hour)
	}
	if len(seed.items) == 0 {
		seed.items = []models.OrderItem{{
			ProductID:      uuid.New(),
			Title:          "Embroidered Lawn 3pc",
			UnitPricePaisa: 500000,
			Qty:            2,
		}}
	}

	var subtotal, stitching int64
	for _, item := range seed.items {
		subtotal += item.UnitPricePaisa * int64(item.Qty)
		if item.IsStitched {
			stitching += item.StitchingFeePaisa * int64(item.Qty)
		}
	}
	order := &models.Order{
		OrderNumber:       newOrderNumber(),
		UserID:            seed.userID,
		GuestEmail:        seed.guestEmail,
		GuestPhone:        seed.guestPhone,
		Status:            seed.status,
		SubtotalPaisa:     subtotal,
		StitchingFeePaisa: stitching,
		ShippingFeePaisa:  20000,
		TotalPaisa:        subtotal + stitching + 20000,
		ShippingAddress: types.Address{
			Name:     "Amna Khalid",
			Phone:    "0300 1234567",
			Line1:    "House 12, Street 4",
			City:     "Lahore",
			Province: "Punjab",
			Country:  "PK",
		},
		PlacedAt: seed.placedAt,
	}
	_, err := f.repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	for i := range seed.items {
		seed.items[i].OrderID = order.ID
	}
	require.NoError(t, f.repo.CreateItems(ctx, seed.items))

	_, err = f.repo.CreatePayment(ctx, &models.OrderPayment{
		OrderID: order.ID,
		Method:  seed.method,
		Status:  seed.payStatus,
	})
	require.NoError(t, err)

	require.NoError(t, f.repo.AppendStatusEvent(ctx, &models.OrderStatusEvent{
		OrderID:   order.ID,
		Status:    enums.OrderStatusPendingPayment,
		ActorKind: enums.ActorKindCustomer,
		ActorID:   seed.userID,
	}))

	loaded, err := f.repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	return loaded
}

func (f *ordersFixture) reloadOrder(t *testing.T, id uuid.UUID) *models.Order {
	t.Helper()
	order, err := f.repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return order
}

func adminActor(id uuid.UUID) Actor {
	return Actor{Kind: enums.ActorKindAdmin, ID: &id}
}

func customerActor(id uuid.UUID) Actor {
	return Actor{Kind: enums.ActorKindCustomer, ID: &id}
}

func guestActor(email string) Actor {
	return Actor{Kind: enums.ActorKindCustomer, GuestEmail: &email}
}
