package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/middleware"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/responses"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/validators"
	cartsvc "github.com/Kaashmalik/laraibcreative-platform-sub000/internal/cart"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/pricing"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

// CartFetch returns the caller's active cart, creating the view lazily for
// owners that have no cart yet.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetCart(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartViewResponse(view))
	}
}

// CartAddItem adds one line to the cart, merging into an existing line when
// the configuration matches.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.AddItem(r.Context(), owner, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartViewResponse(view))
	}
}

// CartUpdateItem changes the quantity of one cart line.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.UpdateItemQty(r.Context(), owner, itemID, payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartViewResponse(view))
	}
}

// CartRemoveItem drops one line from the cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RemoveItem(r.Context(), owner, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartViewResponse(view))
	}
}

// CartClear empties the cart and drops any applied promo.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Clear(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartViewResponse(view))
	}
}

// CartApplyPromo validates a promo code against the live cart and pins it.
func CartApplyPromo(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload applyPromoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ApplyPromo(r.Context(), owner, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartViewResponse(view))
	}
}

// CartRemovePromo clears the pinned promo code.
func CartRemovePromo(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RemovePromo(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartViewResponse(view))
	}
}

// CartMerge folds a guest cart into the signed-in caller's cart. The guest
// token travels in the body because the Authorization header already carries
// the user credential.
func CartMerge(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload mergeCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.MergeGuestCart(r.Context(), userID, payload.GuestToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartViewResponse(view))
	}
}

func cartOwnerFromContext(r *http.Request) (cartsvc.Owner, error) {
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return cartsvc.Owner{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
		}
		return cartsvc.Owner{UserID: &id}, nil
	}
	if token := middleware.GuestTokenFromContext(r.Context()); token != "" {
		return cartsvc.Owner{GuestToken: &token}, nil
	}
	return cartsvc.Owner{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
}

func userIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func parseItemID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "itemId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	itemID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
	}
	return itemID, nil
}

type addCartItemRequest struct {
	ProductID     uuid.UUID           `json:"productId" validate:"required"`
	VariantID     string              `json:"variantId"`
	Qty           int                 `json:"qty" validate:"required,min=1"`
	IsStitched    bool                `json:"isStitched"`
	Measurements  types.Measurements  `json:"measurements"`
	Customization types.Customization `json:"customization"`
}

func (p addCartItemRequest) toInput() cartsvc.AddItemInput {
	return cartsvc.AddItemInput{
		ProductID:     p.ProductID,
		VariantID:     strings.TrimSpace(p.VariantID),
		Qty:           p.Qty,
		IsStitched:    p.IsStitched,
		Measurements:  p.Measurements,
		Customization: p.Customization,
	}
}

type updateCartItemRequest struct {
	Qty int `json:"qty" validate:"required,min=1"`
}

type applyPromoRequest struct {
	Code string `json:"code" validate:"required,min=1,max=64"`
}

type mergeCartRequest struct {
	GuestToken string `json:"guestToken" validate:"required,min=1,max=128"`
}

type cartViewResponse struct {
	ID        uuid.UUID          `json:"id"`
	Status    string             `json:"status"`
	PromoCode *string            `json:"promoCode,omitempty"`
	Items     []cartItemResponse `json:"items"`
	Quote     pricing.Quote      `json:"quote"`
	Warnings  []string           `json:"warnings,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type cartItemResponse struct {
	ID                uuid.UUID           `json:"id"`
	ProductID         uuid.UUID           `json:"productId"`
	VariantID         string              `json:"variantId,omitempty"`
	Qty               int                 `json:"qty"`
	PriceAtAddPaisa   int64               `json:"priceAtAddPaisa"`
	StitchingFeePaisa int64               `json:"stitchingFeePaisa"`
	IsStitched        bool                `json:"isStitched"`
	Measurements      types.Measurements  `json:"measurements,omitempty"`
	Customization     types.Customization `json:"customization"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

func newCartViewResponse(view *cartsvc.CartView) cartViewResponse {
	if view == nil || view.Cart == nil {
		return cartViewResponse{Items: []cartItemResponse{}}
	}

	items := make([]cartItemResponse, 0, len(view.Cart.Items))
	for _, item := range view.Cart.Items {
		items = append(items, cartItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			VariantID:         item.VariantID,
			Qty:               item.Qty,
			PriceAtAddPaisa:   item.PriceAtAddPaisa,
			StitchingFeePaisa: item.StitchingFeePaisa,
			IsStitched:        item.IsStitched,
			Measurements:      item.Measurements,
			Customization:     item.Customization,
			CreatedAt:         item.CreatedAt,
			UpdatedAt:         item.UpdatedAt,
		})
	}

	return cartViewResponse{
		ID:        view.Cart.ID,
		Status:    string(view.Cart.Status),
		PromoCode: view.Cart.PromoCode,
		Items:     items,
		Quote:     view.Quote,
		Warnings:  view.Warnings,
		UpdatedAt: view.Cart.UpdatedAt,
	}
}
