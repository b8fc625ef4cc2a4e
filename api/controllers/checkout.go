package controllers

import (
	"net/http"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/responses"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/validators"
	checkoutsvc "github.com/Kaashmalik/laraibcreative-platform-sub000/internal/checkout"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

// Checkout converts the caller's active cart into an order. Guests must
// supply contact details; signed-in customers only send the payment method
// and shipping address.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		owner, err := cartOwnerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		order, err := svc.PlaceOrder(r.Context(), checkoutsvc.PlaceOrderInput{
			Owner:           owner,
			GuestEmail:      payload.GuestEmail,
			GuestPhone:      payload.GuestPhone,
			Method:          method,
			ShippingAddress: payload.ShippingAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

type checkoutRequest struct {
	GuestEmail      string        `json:"guestEmail" validate:"omitempty,email"`
	GuestPhone      string        `json:"guestPhone" validate:"omitempty,max=32"`
	Method          string        `json:"method" validate:"required"`
	ShippingAddress types.Address `json:"shippingAddress"`
}
