package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/cart"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/orders"
	product "github.com/Kaashmalik/laraibcreative-platform-sub000/internal/products"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/promo"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/config"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/pricing"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

// The checkout tests run the real cart, product, promo, orders, and outbox
// stacks over one database so a placement exercises the same transaction the
// production wiring does.
func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			sku TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			image_url TEXT,
			category TEXT NOT NULL DEFAULT '',
			price_paisa INTEGER NOT NULL,
			stitching_fee_paisa INTEGER NOT NULL DEFAULT 0,
			stitching_available INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS inventory_items (
			product_id TEXT NOT NULL,
			variant_id TEXT NOT NULL DEFAULT '',
			available_qty INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME,
			PRIMARY KEY (product_id, variant_id),
			CHECK (available_qty >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS carts (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			guest_token TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			promo_code TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_active_user ON carts (user_id)
			WHERE status = 'active' AND user_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_active_guest ON carts (guest_token)
			WHERE status = 'active' AND guest_token IS NOT NULL`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			id TEXT PRIMARY KEY,
			cart_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			variant_id TEXT NOT NULL DEFAULT '',
			identity_key TEXT NOT NULL,
			qty INTEGER NOT NULL CHECK (qty > 0),
			price_at_add_paisa INTEGER NOT NULL,
			stitching_fee_paisa INTEGER NOT NULL DEFAULT 0,
			is_stitched INTEGER NOT NULL DEFAULT 0,
			measurements TEXT,
			customization TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_identity ON cart_items (cart_id, identity_key)`,
		`CREATE TABLE IF NOT EXISTS promo_codes (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			kind TEXT NOT NULL,
			percent INTEGER NOT NULL DEFAULT 0,
			amount_paisa INTEGER NOT NULL DEFAULT 0,
			max_discount_paisa INTEGER NOT NULL DEFAULT 0,
			min_subtotal_paisa INTEGER NOT NULL DEFAULT 0,
			starts_at DATETIME NOT NULL,
			ends_at DATETIME,
			max_uses INTEGER NOT NULL DEFAULT 0,
			per_user_limit INTEGER NOT NULL DEFAULT 0,
			used_count INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_promo_codes_code ON promo_codes (code)`,
		`CREATE TABLE IF NOT EXISTS promo_redemptions (
			id TEXT PRIMARY KEY,
			promo_id TEXT NOT NULL,
			order_id TEXT NOT NULL,
			user_id TEXT,
			guest_email TEXT,
			created_at DATETIME
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_promo_redemptions_order ON promo_redemptions (promo_id, order_id)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			order_number TEXT NOT NULL,
			user_id TEXT,
			guest_email TEXT,
			guest_phone TEXT,
			status TEXT NOT NULL DEFAULT 'pending_payment',
			subtotal_paisa INTEGER NOT NULL,
			stitching_fee_paisa INTEGER NOT NULL DEFAULT 0,
			shipping_fee_paisa INTEGER NOT NULL DEFAULT 0,
			discount_paisa INTEGER NOT NULL DEFAULT 0,
			total_paisa INTEGER NOT NULL,
			promo_code TEXT,
			shipping_address TEXT,
			tracking_courier TEXT,
			tracking_number TEXT,
			restocked_at DATETIME,
			placed_at DATETIME NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_order_number ON orders (order_number)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			variant_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			image_url TEXT,
			unit_price_paisa INTEGER NOT NULL,
			stitching_fee_paisa INTEGER NOT NULL DEFAULT 0,
			qty INTEGER NOT NULL CHECK (qty > 0),
			is_stitched INTEGER NOT NULL DEFAULT 0,
			measurements TEXT,
			customization TEXT,
			created_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS order_status_events (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			status TEXT NOT NULL,
			note TEXT,
			actor_kind TEXT NOT NULL,
			actor_id TEXT,
			created_at DATETIME
		)`,
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
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_order_payments_order_id ON order_payments (order_id)`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			aggregate_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at DATETIME,
			published_at DATETIME,
			attempt_count INTEGER NOT NULL DEFAULT 0,
			last_error TEXT
		)`,
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

var testCheckoutConfig = config.CheckoutConfig{
	ShippingFeePaisa:     50000,
	FreeShippingMinPaisa: 2000000,
	OrderNumberAttempts:  5,
}

type checkoutFixture struct {
	db       *gorm.DB
	cartRepo *cart.Repository
	carts    cart.Service
	products product.Service
	promos   promo.Service
	orders   orders.Repository
	svc      *service
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	gormDB := setupCheckoutTestDB(t)
	tx := sqliteTxRunner{db: gormDB}

	products, err := product.NewService(product.NewRepository(gormDB))
	require.NoError(t, err)
	promos, err := promo.NewService(promo.NewRepository(gormDB))
	require.NoError(t, err)

	shipping := pricing.ShippingRule{
		FlatFeePaisa:         testCheckoutConfig.ShippingFeePaisa,
		FreeShippingMinPaisa: testCheckoutConfig.FreeShippingMinPaisa,
	}
	cartRepo := cart.NewRepository(gormDB)
	carts, err := cart.NewService(cartRepo, tx, products, promos, shipping)
	require.NoError(t, err)

	ordersRepo := orders.NewRepository(gormDB)
	publisher := outbox.NewService(outbox.NewRepository(gormDB), nil)

	svc, err := NewService(carts, products, products, promos, ordersRepo, publisher, tx, testCheckoutConfig)
	require.NoError(t, err)

	return &checkoutFixture{
		db:       gormDB,
		cartRepo: cartRepo,
		carts:    carts,
		products: products,
		promos:   promos,
		orders:   ordersRepo,
		svc:      svc.(*service),
	}
}

type productSpec struct {
	pricePaisa   int64
	stitchingFee int64
	stitchable   bool
	stock        int
	inactive     bool
}

func (f *checkoutFixture) seedProduct(t *testing.T, spec productSpec) *models.Product {
	t.Helper()
	row := &models.Product{
		ID:                 uuid.New(),
		SKU:                "SKU-" + uuid.New().String()[:8],
		Title:              "Chiffon Suit 3pc",
		PricePaisa:         spec.pricePaisa,
		StitchingFeePaisa:  spec.stitchingFee,
		StitchingAvailable: spec.stitchable,
		IsActive:           !spec.inactive,
	}
	require.NoError(t, f.db.Create(row).Error)
	require.NoError(t, f.db.Create(&models.InventoryItem{
		ProductID:    row.ID,
		AvailableQty: spec.stock,
	}).Error)
	return row
}

type cartLine struct {
	product    *models.Product
	qty        int
	isStitched bool
}

func (f *checkoutFixture) seedCart(t *testing.T, owner cart.Owner, promoCode *string, lines ...cartLine) *models.Cart {
	t.Helper()
	ctx := context.Background()

	row := &models.Cart{
		UserID:     owner.UserID,
		GuestToken: owner.GuestToken,
		PromoCode:  promoCode,
	}
	_, err := f.cartRepo.Create(ctx, row)
	require.NoError(t, err)
	for _, line := range lines {
		var fee int64
		if line.isStitched {
			fee = line.product.StitchingFeePaisa
		}
		item := &models.CartItem{
			CartID:          row.ID,
			ProductID:       line.product.ID,
			IdentityKey:     cart.IdentityKey(line.product.ID, "", line.isStitched, nil, types.Customization{}),
			Qty:             line.qty,
			PriceAtAddPaisa: line.product.PricePaisa,
			IsStitched:      line.isStitched,
		}
		item.StitchingFeePaisa = fee
		require.NoError(t, f.cartRepo.CreateItem(ctx, item))
	}
	loaded, err := f.cartRepo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	return loaded
}

func (f *checkoutFixture) seedPercentPromo(t *testing.T, code string, percent, minSubtotalPaisa int64, maxUses int) *models.PromoCode {
	t.Helper()
	row := &models.PromoCode{
		ID:               uuid.New(),
		Code:             code,
		Kind:             enums.PromoKindPercentage,
		Percent:          percent,
		MinSubtotalPaisa: minSubtotalPaisa,
		StartsAt:         time.Now().Add(-time.Hour),
		MaxUses:          maxUses,
		IsActive:         true,
	}
	require.NoError(t, f.db.Create(row).Error)
	return row
}

func (f *checkoutFixture) availableQty(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var item models.InventoryItem
	require.NoError(t, f.db.Where("product_id = ? AND variant_id = ''", productID).First(&item).Error)
	return item.AvailableQty
}

func (f *checkoutFixture) cartStatus(t *testing.T, cartID uuid.UUID) enums.CartStatus {
	t.Helper()
	var row models.Cart
	require.NoError(t, f.db.Where("id = ?", cartID).First(&row).Error)
	return row.Status
}

func (f *checkoutFixture) outboxCount(t *testing.T, aggregateID uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.OutboxEvent{}).Where("aggregate_id = ?", aggregateID).Count(&count).Error)
	return count
}

func (f *checkoutFixture) orderCountFor(t *testing.T, userID uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func shipTo() types.Address {
	return types.Address{
		Name:     "Amna Khalid",
		Phone:    "0300 1234567",
		Line1:    "House 12, Street 4, DHA Phase 5",
		City:     "Lahore",
		Province: "Punjab",
	}
}

func userOwner(id uuid.UUID) cart.Owner {
	return cart.Owner{UserID: &id}
}

func guestOwner(token string) cart.Owner {
	return cart.Owner{GuestToken: &token}
}
