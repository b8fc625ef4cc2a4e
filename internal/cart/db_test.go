package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/promo"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/pricing"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  guest_token TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  promo_code TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	activeUserIndex := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_active_user
ON carts (user_id) WHERE status = 'active' AND user_id IS NOT NULL;`
	activeGuestIndex := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_active_guest
ON carts (guest_token) WHERE status = 'active' AND guest_token IS NOT NULL;`
	items := `
CREATE TABLE IF NOT EXISTS cart_items (
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
);`
	identityIndex := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_items_identity ON cart_items (cart_id, identity_key);`

	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(activeUserIndex).Error)
	require.NoError(t, db.Exec(activeGuestIndex).Error)
	require.NoError(t, db.Exec(items).Error)
	require.NoError(t, db.Exec(identityIndex).Error)

	return db
}

// testShipping charges a flat Rs 500 with no free-shipping threshold, so
// quote assertions stay deterministic.
var testShipping = pricing.ShippingRule{FlatFeePaisa: 50000}

// sqliteTxRunner satisfies the service's txRunner over the test database.
type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// fakeCatalog hands out fixture products by ID.
type fakeCatalog map[uuid.UUID]*models.Product

func (f fakeCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := f[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// fakePromoEntry is one configurable promo fixture. A non-empty reason forces
// rejection; otherwise the entry rejects below minSubtotal and validates above.
type fakePromoEntry struct {
	valuation   *promo.Valuation
	minSubtotal int64
	reason      string
}

type fakePromos map[string]*fakePromoEntry

func (f fakePromos) Validate(ctx context.Context, code string, subtotalPaisa int64, who promo.Identity) (*promo.Valuation, error) {
	normalized := promo.NormalizeCode(code)
	entry, ok := f[normalized]
	if !ok {
		return nil, promoRejection(normalized, promo.ReasonNotFound)
	}
	if entry.reason != "" {
		return nil, promoRejection(normalized, entry.reason)
	}
	if subtotalPaisa < entry.minSubtotal {
		return nil, promoRejection(normalized, promo.ReasonMinimumNotMet)
	}
	return entry.valuation, nil
}

func promoRejection(code, reason string) error {
	return pkgerrors.New(pkgerrors.CodeInvalidPromo, "promo code rejected").WithDetails(map[string]any{
		"code":   code,
		"reason": reason,
	})
}

// cartFixture wires a real repository over sqlite with fake catalog and promo
// collaborators.
type cartFixture struct {
	db      *gorm.DB
	catalog fakeCatalog
	promos  fakePromos
	svc     Service
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()

	db := setupCartTestDB(t)
	catalog := fakeCatalog{}
	promos := fakePromos{}
	svc, err := NewService(NewRepository(db), sqliteTxRunner{db: db}, catalog, promos, testShipping)
	require.NoError(t, err)

	return &cartFixture{db: db, catalog: catalog, promos: promos, svc: svc}
}

func (f *cartFixture) addProduct(t *testing.T, pricePaisa, stitchingFeePaisa int64, stitchable bool) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:                 uuid.New(),
		SKU:                "SKU-" + uuid.NewString(),
		Title:              "Chiffon Suit 3pc",
		Category:           "unstitched",
		PricePaisa:         pricePaisa,
		StitchingFeePaisa:  stitchingFeePaisa,
		StitchingAvailable: stitchable,
		IsActive:           true,
	}
	f.catalog[product.ID] = product
	return product
}

func (f *cartFixture) addPercentPromo(code string, percent, minSubtotalPaisa int64) *fakePromoEntry {
	normalized := promo.NormalizeCode(code)
	entry := &fakePromoEntry{
		valuation: &promo.Valuation{
			Promo: &models.PromoCode{
				ID:       uuid.New(),
				Code:     normalized,
				Kind:     enums.PromoKindPercentage,
				Percent:  percent,
				IsActive: true,
			},
			Discount: pricing.Discount{Kind: enums.PromoKindPercentage, Percent: percent},
		},
		minSubtotal: minSubtotalPaisa,
	}
	f.promos[normalized] = entry
	return entry
}

func userOwner(id uuid.UUID) Owner {
	return Owner{UserID: &id}
}

func guestOwner(token string) Owner {
	return Owner{GuestToken: &token}
}

func (f *cartFixture) reloadCart(t *testing.T, id uuid.UUID) *models.Cart {
	t.Helper()
	cart, err := NewRepository(f.db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return cart
}
