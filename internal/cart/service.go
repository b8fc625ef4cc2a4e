package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/promo"
	dbpkg "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/pricing"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

// Owner identifies whose cart is being acted on: exactly one of UserID or
// GuestToken is set.
type Owner struct {
	UserID     *uuid.UUID
	GuestToken *string
}

func (o Owner) validate() error {
	hasUser := o.UserID != nil && *o.UserID != uuid.Nil
	hasGuest := o.GuestToken != nil && *o.GuestToken != ""
	if hasUser == hasGuest {
		return pkgerrors.New(pkgerrors.CodeValidation, "exactly one of user id or guest token is required")
	}
	return nil
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productCatalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type promoValidator interface {
	Validate(ctx context.Context, code string, subtotalPaisa int64, who promo.Identity) (*promo.Valuation, error)
}

// CartView is a cart plus its priced quote. Warnings carry non-fatal drops,
// like a promo that stopped being valid.
type CartView struct {
	Cart     *models.Cart
	Quote    pricing.Quote
	Warnings []string
}

// AddItemInput captures one line to add to the cart.
type AddItemInput struct {
	ProductID     uuid.UUID
	VariantID     string
	Qty           int
	IsStitched    bool
	Measurements  types.Measurements
	Customization types.Customization
}

// Service exposes cart operations for users and guests.
type Service interface {
	GetCart(ctx context.Context, owner Owner) (*CartView, error)
	AddItem(ctx context.Context, owner Owner, input AddItemInput) (*CartView, error)
	UpdateItemQty(ctx context.Context, owner Owner, itemID uuid.UUID, qty int) (*CartView, error)
	RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*CartView, error)
	Clear(ctx context.Context, owner Owner) (*CartView, error)
	ApplyPromo(ctx context.Context, owner Owner, code string) (*CartView, error)
	RemovePromo(ctx context.Context, owner Owner) (*CartView, error)
	MergeGuestCart(ctx context.Context, userID uuid.UUID, guestToken string) (*CartView, error)

	// Checkout hooks.
	ActiveCart(ctx context.Context, owner Owner) (*models.Cart, error)
	MarkConverted(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

// service implements the cart service.
type service struct {
	repo     CartRepository
	tx       txRunner
	products productCatalog
	promos   promoValidator
	shipping pricing.ShippingRule
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productCatalog, promos promoValidator, shipping pricing.ShippingRule) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if promos == nil {
		return nil, fmt.Errorf("promo validator required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		promos:   promos,
		shipping: shipping,
	}, nil
}

// GetCart returns the owner's active cart, creating an empty one on first
// touch. The quote revalidates any stored promo; a promo that stopped being
// valid is dropped with a warning rather than failing the read.
func (s *service) GetCart(ctx context.Context, owner Owner) (*CartView, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	cart, err := s.ensureActiveCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// AddItem validates the line and folds it into the owner's active cart. Equal
// configurations collapse into one line; new lines pin the catalog price at
// add time. Stock is deliberately not checked here - checkout owns that.
func (s *service) AddItem(ctx context.Context, owner Owner, input AddItemInput) (*CartView, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if input.Qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be at least 1")
	}

	product, err := s.products.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if err := validateStitching(product, input); err != nil {
		return nil, err
	}

	customization := input.Customization
	customization.Normalize()

	cart, err := s.ensureActiveCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	identityKey := IdentityKey(input.ProductID, input.VariantID, input.IsStitched, input.Measurements, customization)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		existing, err := txRepo.FindItemByIdentity(ctx, cart.ID, identityKey)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil {
			return txRepo.IncrementItemQty(ctx, existing.ID, input.Qty)
		}

		stitchingFee := int64(0)
		if input.IsStitched {
			stitchingFee = product.StitchingFeePaisa
		}
		return txRepo.CreateItem(ctx, &models.CartItem{
			CartID:            cart.ID,
			ProductID:         product.ID,
			VariantID:         input.VariantID,
			IdentityKey:       identityKey,
			Qty:               input.Qty,
			PriceAtAddPaisa:   product.PricePaisa,
			StitchingFeePaisa: stitchingFee,
			IsStitched:        input.IsStitched,
			Measurements:      input.Measurements,
			Customization:     customization,
		})
	}); err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_cart_items_identity") {
			return nil, pkgerrors.New(pkgerrors.CodeConcurrentEdit, "cart was modified concurrently, retry")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}

	return s.freshView(ctx, cart.ID)
}

// UpdateItemQty sets an absolute quantity on a line. Removal is explicit, so
// zero or negative quantities are rejected.
func (s *service) UpdateItemQty(ctx context.Context, owner Owner, itemID uuid.UUID, qty int) (*CartView, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be at least 1; remove the item instead")
	}
	cart, err := s.ActiveCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	affected, err := s.repo.SetItemQty(ctx, cart.ID, itemID, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return s.freshView(ctx, cart.ID)
}

// RemoveItem deletes one line from the owner's active cart.
func (s *service) RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*CartView, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	cart, err := s.ActiveCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	affected, err := s.repo.DeleteItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart item")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return s.freshView(ctx, cart.ID)
}

// Clear removes every line from the owner's active cart.
func (s *service) Clear(ctx context.Context, owner Owner) (*CartView, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	cart, err := s.ActiveCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItems(ctx, cart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
	}
	return s.freshView(ctx, cart.ID)
}

// ApplyPromo validates the code against the current cart subtotal and stores
// it. Usage counts are untouched until checkout redeems the code.
func (s *service) ApplyPromo(ctx context.Context, owner Owner, code string) (*CartView, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	cart, err := s.ensureActiveCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	valuation, err := s.promos.Validate(ctx, code, pricing.Subtotal(quoteLines(cart.Items)), cartIdentity(cart))
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetPromoCode(ctx, cart.ID, &valuation.Promo.Code); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: set promo code")
	}
	return s.freshView(ctx, cart.ID)
}

// RemovePromo clears the stored promo code.
func (s *service) RemovePromo(ctx context.Context, owner Owner) (*CartView, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	cart, err := s.ActiveCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPromoCode(ctx, cart.ID, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear promo code")
	}
	return s.freshView(ctx, cart.ID)
}

// MergeGuestCart folds the guest cart into the user's active cart in one
// transaction. Replays are no-ops: once the guest cart left the active state
// there is nothing to fold.
func (s *service) MergeGuestCart(ctx context.Context, userID uuid.UUID, guestToken string) (*CartView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if guestToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest token is required")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		guest, err := txRepo.FindActiveByGuest(ctx, guestToken)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		user, err := txRepo.FindActiveByUser(ctx, userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			user, err = txRepo.Create(ctx, &models.Cart{UserID: &userID})
			if err != nil {
				return err
			}
		}

		// Consume the guest cart first: the loser of a concurrent merge
		// sees zero rows and backs off without touching any lines.
		affected, err := txRepo.UpdateStatusIf(ctx, guest.ID, enums.CartStatusActive, enums.CartStatusMerged)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}

		merged := make(map[string]*models.CartItem, len(user.Items))
		mergedLines := make([]models.CartItem, 0, len(user.Items)+len(guest.Items))
		for i := range user.Items {
			merged[user.Items[i].IdentityKey] = &user.Items[i]
			mergedLines = append(mergedLines, user.Items[i])
		}
		for _, guestItem := range guest.Items {
			if target, ok := merged[guestItem.IdentityKey]; ok {
				if err := txRepo.IncrementItemQty(ctx, target.ID, guestItem.Qty); err != nil {
					return err
				}
				for i := range mergedLines {
					if mergedLines[i].ID == target.ID {
						mergedLines[i].Qty += guestItem.Qty
					}
				}
				continue
			}
			item := models.CartItem{
				CartID:            user.ID,
				ProductID:         guestItem.ProductID,
				VariantID:         guestItem.VariantID,
				IdentityKey:       guestItem.IdentityKey,
				Qty:               guestItem.Qty,
				PriceAtAddPaisa:   guestItem.PriceAtAddPaisa,
				StitchingFeePaisa: guestItem.StitchingFeePaisa,
				IsStitched:        guestItem.IsStitched,
				Measurements:      guestItem.Measurements,
				Customization:     guestItem.Customization,
			}
			if err := txRepo.CreateItem(ctx, &item); err != nil {
				return err
			}
			mergedLines = append(mergedLines, item)
		}

		if err := txRepo.DeleteItems(ctx, guest.ID); err != nil {
			return err
		}

		// User's promo wins; a guest promo only survives if the user had
		// none. Whatever survives is revalidated against the merged cart
		// and silently dropped when no longer valid.
		surviving := user.PromoCode
		if surviving == nil {
			surviving = guest.PromoCode
		}
		if surviving == nil {
			return nil
		}
		subtotal := pricing.Subtotal(quoteLines(mergedLines))
		_, err = s.promos.Validate(ctx, *surviving, subtotal, promo.Identity{UserID: &userID})
		switch {
		case err == nil:
			return txRepo.SetPromoCode(ctx, user.ID, surviving)
		case pkgerrors.HasCode(err, pkgerrors.CodeInvalidPromo):
			return txRepo.SetPromoCode(ctx, user.ID, nil)
		default:
			return err
		}
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge guest cart")
	}

	return s.GetCart(ctx, Owner{UserID: &userID})
}

// ActiveCart loads the owner's active cart without creating one.
func (s *service) ActiveCart(ctx context.Context, owner Owner) (*models.Cart, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	cart, err := s.findActiveCart(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "active cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	return cart, nil
}

// MarkConverted consumes the cart at checkout commit. Zero rows affected
// means another checkout already converted it.
func (s *service) MarkConverted(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	affected, err := s.repo.WithTx(tx).UpdateStatusIf(ctx, cartID, enums.CartStatusActive, enums.CartStatusConverted)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: convert cart")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cart was already checked out")
	}
	return nil
}

func (s *service) findActiveCart(ctx context.Context, owner Owner) (*models.Cart, error) {
	if owner.UserID != nil {
		return s.repo.FindActiveByUser(ctx, *owner.UserID)
	}
	return s.repo.FindActiveByGuest(ctx, *owner.GuestToken)
}

func (s *service) ensureActiveCart(ctx context.Context, owner Owner) (*models.Cart, error) {
	cart, err := s.findActiveCart(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}

	created, err := s.repo.Create(ctx, &models.Cart{
		UserID:     owner.UserID,
		GuestToken: owner.GuestToken,
	})
	if err != nil {
		// A concurrent first touch may have created the cart already.
		if dbpkg.IsUniqueViolation(err, "") {
			cart, findErr := s.findActiveCart(ctx, owner)
			if findErr == nil {
				return cart, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create cart")
	}
	return created, nil
}

func (s *service) freshView(ctx context.Context, cartID uuid.UUID) (*CartView, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload cart")
	}
	return s.view(ctx, cart)
}

func (s *service) view(ctx context.Context, cart *models.Cart) (*CartView, error) {
	view := &CartView{Cart: cart}

	lines := quoteLines(cart.Items)
	var discount *pricing.Discount
	if cart.PromoCode != nil {
		valuation, err := s.promos.Validate(ctx, *cart.PromoCode, pricing.Subtotal(lines), cartIdentity(cart))
		switch {
		case err == nil:
			discount = &valuation.Discount
		case pkgerrors.HasCode(err, pkgerrors.CodeInvalidPromo):
			if err := s.repo.SetPromoCode(ctx, cart.ID, nil); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: drop promo code")
			}
			view.Warnings = append(view.Warnings, fmt.Sprintf("promo %s removed: no longer valid", *cart.PromoCode))
			cart.PromoCode = nil
		default:
			return nil, err
		}
	}

	shippingFee := int64(0)
	if len(lines) > 0 {
		shippingFee = pricing.ShippingFee(s.shipping, pricing.Subtotal(lines))
	}
	quote, err := pricing.ComputeQuote(lines, shippingFee, discount)
	if err != nil {
		return nil, err
	}
	view.Quote = quote
	return view, nil
}

func cartIdentity(cart *models.Cart) promo.Identity {
	return promo.Identity{UserID: cart.UserID}
}

func quoteLines(items []models.CartItem) []pricing.LineInput {
	lines := make([]pricing.LineInput, 0, len(items))
	for _, item := range items {
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
	return lines
}

func validateStitching(product *models.Product, input AddItemInput) error {
	if input.IsStitched {
		if !product.StitchingAvailable {
			return pkgerrors.New(pkgerrors.CodeValidation, "stitching is not offered for this product")
		}
		if len(input.Measurements) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "measurements are required for stitched items")
		}
		if err := input.Measurements.Validate(); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		return nil
	}
	if len(input.Measurements) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "measurements only apply to stitched items")
	}
	return nil
}
