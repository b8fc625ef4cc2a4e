package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/responses"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/validators"
	products "github.com/Kaashmalik/laraibcreative-platform-sub000/internal/products"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
)

// AdminInventorySet overwrites the available quantity for a product variant.
// The new count takes effect for the next reservation; carts holding the item
// revalidate at checkout.
func AdminInventorySet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		var payload setInventoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		item, err := svc.SetStock(r.Context(), productID, strings.TrimSpace(payload.VariantID), payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inventoryResponse{
			ProductID:    item.ProductID,
			VariantID:    item.VariantID,
			AvailableQty: item.AvailableQty,
			UpdatedAt:    item.UpdatedAt,
		})
	}
}

type setInventoryRequest struct {
	ProductID string `json:"productId" validate:"required"`
	VariantID string `json:"variantId"`
	Qty       int    `json:"qty" validate:"min=0"`
}

type inventoryResponse struct {
	ProductID    uuid.UUID `json:"productId"`
	VariantID    string    `json:"variantId,omitempty"`
	AvailableQty int       `json:"availableQty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
