package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/cart"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/orders"
	product "github.com/Kaashmalik/laraibcreative-platform-sub000/internal/products"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/promo"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/config"
	dbpkg "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox/payloads"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/pricing"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

type cartSource interface {
	ActiveCart(ctx context.Context, owner cart.Owner) (*models.Cart, error)
	MarkConverted(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

type catalog interface {
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type stockReserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, lines []product.StockLine) error
}

type promoGate interface {
	Validate(ctx context.Context, code string, subtotalPaisa int64, who promo.Identity) (*promo.Valuation, error)
	Redeem(ctx context.Context, tx *gorm.DB, promoID, orderID uuid.UUID, who promo.Identity) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PlaceOrderInput is the checkout payload. Guest checkouts (Owner carries a
// guest token) must supply the contact fields; account checkouts ignore them.
type PlaceOrderInput struct {
	Owner           cart.Owner
	GuestEmail      string
	GuestPhone      string
	Method          enums.PaymentMethod
	ShippingAddress types.Address
}

// Service converts the active cart into an order.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
}

type service struct {
	carts    cartSource
	products catalog
	stock    stockReserver
	promos   promoGate
	orders   orders.Repository
	outbox   outboxPublisher
	tx       txRunner
	shipping pricing.ShippingRule
	attempts int
	now      func() time.Time
}

// NewService builds the checkout service.
func NewService(
	carts cartSource,
	products catalog,
	stock stockReserver,
	promos promoGate,
	ordersRepo orders.Repository,
	publisher outboxPublisher,
	tx txRunner,
	cfg config.CheckoutConfig,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart source required")
	}
	if products == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock reserver required")
	}
	if promos == nil {
		return nil, fmt.Errorf("promo gate required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	attempts := cfg.OrderNumberAttempts
	if attempts <= 0 {
		attempts = 5
	}
	return &service{
		carts:    carts,
		products: products,
		stock:    stock,
		promos:   promos,
		orders:   ordersRepo,
		outbox:   publisher,
		tx:       tx,
		shipping: pricing.ShippingRule{
			FlatFeePaisa:         cfg.ShippingFeePaisa,
			FreeShippingMinPaisa: cfg.FreeShippingMinPaisa,
		},
		attempts: attempts,
		now:      time.Now,
	}, nil
}

// PlaceOrder snapshots the active cart into an order inside one transaction:
// the cart is consumed, stock reserved, the promo redeemed, and the order
// with its payment and history rows inserted. Any failure rolls the whole
// placement back. An order-number collision retries the placement with a
// fresh number.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	guestEmail, guestPhone, err := s.validateContact(input)
	if err != nil {
		return nil, err
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	address := input.ShippingAddress
	address.Normalize()
	if err := address.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}

	cartRow, err := s.carts.ActiveCart(ctx, input.Owner)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, err
	}
	if len(cartRow.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	byID, err := s.loadCatalog(ctx, cartRow)
	if err != nil {
		return nil, err
	}

	who := promo.Identity{UserID: input.Owner.UserID, GuestEmail: guestEmail}
	valuation, err := s.valuate(ctx, cartRow, who)
	if err != nil {
		return nil, err
	}

	quote, err := s.quote(cartRow, valuation)
	if err != nil {
		return nil, err
	}

	var orderID uuid.UUID
	for attempt := 0; attempt < s.attempts; attempt++ {
		orderID, err = s.placeOnce(ctx, cartRow, byID, valuation, quote, address, guestEmail, guestPhone, who, input)
		if err == nil {
			break
		}
		if dbpkg.IsUniqueViolation(err, "idx_orders_order_number") {
			continue
		}
		return nil, err
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: allocate order number")
	}

	placed, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load placed order")
	}
	return placed, nil
}

func (s *service) validateContact(input PlaceOrderInput) (*string, *string, error) {
	if input.Owner.UserID != nil {
		return nil, nil, nil
	}
	email := strings.ToLower(strings.TrimSpace(input.GuestEmail))
	phone := strings.TrimSpace(input.GuestPhone)
	if email == "" || phone == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "guest checkout requires an email and phone")
	}
	if !strings.Contains(email, "@") {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}
	return &email, &phone, nil
}

// loadCatalog resolves every cart line against the live catalog. A product
// that vanished or went inactive since it was added fails the checkout.
func (s *service) loadCatalog(ctx context.Context, cartRow *models.Cart) (map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(cartRow.Items))
	seen := make(map[uuid.UUID]bool, len(cartRow.Items))
	for _, item := range cartRow.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	byID, err := s.products.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range cartRow.Items {
		if _, ok := byID[item.ProductID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available").WithDetails(map[string]any{
				"productId": item.ProductID,
			})
		}
	}
	return byID, nil
}

// valuate revalidates the stored promo against the pinned subtotal. Checkout
// never drops an invalid promo silently; the customer is told before money
// moves.
func (s *service) valuate(ctx context.Context, cartRow *models.Cart, who promo.Identity) (*promo.Valuation, error) {
	if cartRow.PromoCode == nil {
		return nil, nil
	}
	return s.promos.Validate(ctx, *cartRow.PromoCode, subtotal(cartRow.Items), who)
}

func (s *service) quote(cartRow *models.Cart, valuation *promo.Valuation) (pricing.Quote, error) {
	lines := make([]pricing.LineInput, 0, len(cartRow.Items))
	for _, item := range cartRow.Items {
		line := pricing.LineInput{
			ProductID:      item.ProductID,
			UnitPricePaisa: item.PriceAtAddPaisa,
			Qty:            item.Qty,
		}
		if item.IsStitched {
			line.StitchingFeePaisa = item.StitchingFeePaisa
		}
		lines = append(lines, line)
	}
	fee := pricing.ShippingFee(s.shipping, pricing.Subtotal(lines))
	var discount *pricing.Discount
	if valuation != nil {
		discount = &valuation.Discount
	}
	return pricing.ComputeQuote(lines, fee, discount)
}

func (s *service) placeOnce(
	ctx context.Context,
	cartRow *models.Cart,
	byID map[uuid.UUID]models.Product,
	valuation *promo.Valuation,
	quote pricing.Quote,
	address types.Address,
	guestEmail, guestPhone *string,
	who promo.Identity,
	input PlaceOrderInput,
) (uuid.UUID, error) {
	number, err := newOrderNumber(s.now())
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint order number")
	}

	order := &models.Order{
		OrderNumber:       number,
		UserID:            input.Owner.UserID,
		GuestEmail:        guestEmail,
		GuestPhone:        guestPhone,
		Status:            enums.OrderStatusPendingPayment,
		SubtotalPaisa:     quote.SubtotalPaisa,
		StitchingFeePaisa: quote.StitchingFeePaisa,
		ShippingFeePaisa:  quote.ShippingFeePaisa,
		DiscountPaisa:     quote.DiscountPaisa,
		TotalPaisa:        quote.TotalPaisa,
		ShippingAddress:   address,
		PlacedAt:          s.now(),
	}
	if valuation != nil {
		order.PromoCode = &valuation.Promo.Code
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		// Consuming the cart first makes a raced double-checkout fail before
		// it touches inventory.
		if err := s.carts.MarkConverted(ctx, tx, cartRow.ID); err != nil {
			return err
		}
		if err := s.stock.Reserve(ctx, tx, stockLines(cartRow.Items)); err != nil {
			return err
		}

		repo := s.orders.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			if dbpkg.IsUniqueViolation(err, "idx_orders_order_number") {
				return err
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create order")
		}
		if err := repo.CreateItems(ctx, snapshotItems(order.ID, cartRow.Items, byID)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create order items")
		}
		if _, err := repo.CreatePayment(ctx, &models.OrderPayment{
			OrderID: order.ID,
			Method:  input.Method,
			Status:  enums.PaymentStatusPending,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create payment")
		}
		if err := repo.AppendStatusEvent(ctx, &models.OrderStatusEvent{
			OrderID:   order.ID,
			Status:    enums.OrderStatusPendingPayment,
			ActorKind: enums.ActorKindCustomer,
			ActorID:   input.Owner.UserID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append status event")
		}

		if valuation != nil {
			if err := s.promos.Redeem(ctx, tx, valuation.Promo.ID, order.ID, who); err != nil {
				return err
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.Owner.UserID, Kind: enums.ActorKindCustomer},
			Version:       1,
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				UserID:        order.UserID,
				GuestEmail:    order.GuestEmail,
				PaymentMethod: input.Method,
				TotalPaisa:    order.TotalPaisa,
				ItemCount:     len(cartRow.Items),
			},
		})
	})
	if err != nil {
		return uuid.Nil, err
	}
	return order.ID, nil
}

func subtotal(items []models.CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.PriceAtAddPaisa * int64(item.Qty)
	}
	return total
}

func stockLines(items []models.CartItem) []product.StockLine {
	lines := make([]product.StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, product.StockLine{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Qty:       item.Qty,
		})
	}
	return lines
}

// snapshotItems freezes the purchased lines: title and image from the catalog
// as it stands now, prices from the cart as pinned at add time.
func snapshotItems(orderID uuid.UUID, items []models.CartItem, byID map[uuid.UUID]models.Product) []models.OrderItem {
	rows := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		listing := byID[item.ProductID]
		row := models.OrderItem{
			OrderID:        orderID,
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Title:          listing.Title,
			ImageURL:       listing.ImageURL,
			UnitPricePaisa: item.PriceAtAddPaisa,
			Qty:            item.Qty,
			IsStitched:     item.IsStitched,
			Measurements:   item.Measurements,
			Customization:  item.Customization,
		}
		if item.IsStitched {
			row.StitchingFeePaisa = item.StitchingFeePaisa
		}
		rows = append(rows, row)
	}
	return rows
}
