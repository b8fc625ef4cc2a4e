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
	internalorders "github.com/Kaashmalik/laraibcreative-platform-sub000/internal/orders"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/pagination"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

// OrdersList returns the signed-in customer's order history, newest first.
func OrdersList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForUser(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// OrderDetail returns one order. Customers only see their own; admins see
// everything.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetByID(r.Context(), orderID, actorFromRequest(r, nil))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderGuestLookup fetches a guest order by the number plus the contact
// details given at checkout.
func OrderGuestLookup(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload guestLookupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GuestLookup(r.Context(), payload.OrderNumber, payload.Email, payload.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderCancel lets the owner cancel while the order is still cancellable.
// Guests prove ownership with the checkout email.
func OrderCancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), orderID, actorFromRequest(r, payload.GuestEmail), payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderReceipt records the customer's proof of payment for manual review.
func OrderReceipt(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload receiptRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SubmitReceipt(r.Context(), orderID, actorFromRequest(r, payload.GuestEmail), internalorders.ReceiptInput{
			ReceiptRef:    payload.ReceiptRef,
			TransactionID: payload.TransactionID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// actorFromRequest maps the request identity onto an order actor. The guest
// email parameter comes from write bodies; bare guest-token callers carry no
// proof and fail the ownership check downstream.
func actorFromRequest(r *http.Request, guestEmail *string) internalorders.Actor {
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			kind := enums.ActorKindCustomer
			if middleware.RoleFromContext(r.Context()) == string(enums.ActorKindAdmin) {
				kind = enums.ActorKindAdmin
			}
			return internalorders.Actor{Kind: kind, ID: &id}
		}
	}
	return internalorders.Actor{Kind: enums.ActorKindCustomer, GuestEmail: guestEmail}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

type guestLookupRequest struct {
	OrderNumber string `json:"orderNumber" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
}

type cancelOrderRequest struct {
	Reason     string  `json:"reason" validate:"omitempty,max=500"`
	GuestEmail *string `json:"guestEmail" validate:"omitempty,email"`
}

type receiptRequest struct {
	ReceiptRef    string  `json:"receiptRef" validate:"required,max=128"`
	TransactionID *string `json:"transactionId" validate:"omitempty,max=128"`
	GuestEmail    *string `json:"guestEmail" validate:"omitempty,email"`
}

type orderResponse struct {
	ID                uuid.UUID             `json:"id"`
	OrderNumber       string                `json:"orderNumber"`
	Status            enums.OrderStatus     `json:"status"`
	GuestEmail        *string               `json:"guestEmail,omitempty"`
	GuestPhone        *string               `json:"guestPhone,omitempty"`
	SubtotalPaisa     int64                 `json:"subtotalPaisa"`
	StitchingFeePaisa int64                 `json:"stitchingFeePaisa"`
	ShippingFeePaisa  int64                 `json:"shippingFeePaisa"`
	DiscountPaisa     int64                 `json:"discountPaisa"`
	TotalPaisa        int64                 `json:"totalPaisa"`
	PromoCode         *string               `json:"promoCode,omitempty"`
	ShippingAddress   types.Address         `json:"shippingAddress"`
	TrackingCourier   *string               `json:"trackingCourier,omitempty"`
	TrackingNumber    *string               `json:"trackingNumber,omitempty"`
	PlacedAt          time.Time             `json:"placedAt"`
	Items             []orderItemResponse   `json:"items"`
	Payment           *orderPaymentResponse `json:"payment,omitempty"`
	StatusEvents      []orderEventResponse  `json:"statusEvents,omitempty"`
}

type orderItemResponse struct {
	ID                uuid.UUID           `json:"id"`
	ProductID         uuid.UUID           `json:"productId"`
	VariantID         string              `json:"variantId,omitempty"`
	Title             string              `json:"title"`
	ImageURL          *string             `json:"imageUrl,omitempty"`
	UnitPricePaisa    int64               `json:"unitPricePaisa"`
	StitchingFeePaisa int64               `json:"stitchingFeePaisa"`
	Qty               int                 `json:"qty"`
	IsStitched        bool                `json:"isStitched"`
	Measurements      types.Measurements  `json:"measurements,omitempty"`
	Customization     types.Customization `json:"customization"`
}

type orderPaymentResponse struct {
	Method        enums.PaymentMethod `json:"method"`
	Status        enums.PaymentStatus `json:"status"`
	ReceiptRef    *string             `json:"receiptRef,omitempty"`
	TransactionID *string             `json:"transactionId,omitempty"`
	Note          *string             `json:"note,omitempty"`
	VerifiedAt    *time.Time          `json:"verifiedAt,omitempty"`
}

type orderEventResponse struct {
	Status    enums.OrderStatus `json:"status"`
	Note      *string           `json:"note,omitempty"`
	ActorKind enums.ActorKind   `json:"actorKind"`
	CreatedAt time.Time         `json:"createdAt"`
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		return orderResponse{}
	}

	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:                item.ID,
			ProductID:         item.ProductID,
			VariantID:         item.VariantID,
			Title:             item.Title,
			ImageURL:          item.ImageURL,
			UnitPricePaisa:    item.UnitPricePaisa,
			StitchingFeePaisa: item.StitchingFeePaisa,
			Qty:               item.Qty,
			IsStitched:        item.IsStitched,
			Measurements:      item.Measurements,
			Customization:     item.Customization,
		})
	}

	var payment *orderPaymentResponse
	if order.Payment != nil {
		payment = &orderPaymentResponse{
			Method:        order.Payment.Method,
			Status:        order.Payment.Status,
			ReceiptRef:    order.Payment.ReceiptRef,
			TransactionID: order.Payment.TransactionID,
			Note:          order.Payment.Note,
			VerifiedAt:    order.Payment.VerifiedAt,
		}
	}

	events := make([]orderEventResponse, 0, len(order.StatusEvents))
	for _, event := range order.StatusEvents {
		events = append(events, orderEventResponse{
			Status:    event.Status,
			Note:      event.Note,
			ActorKind: event.ActorKind,
			CreatedAt: event.CreatedAt,
		})
	}

	return orderResponse{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		Status:            order.Status,
		GuestEmail:        order.GuestEmail,
		GuestPhone:        order.GuestPhone,
		SubtotalPaisa:     order.SubtotalPaisa,
		StitchingFeePaisa: order.StitchingFeePaisa,
		ShippingFeePaisa:  order.ShippingFeePaisa,
		DiscountPaisa:     order.DiscountPaisa,
		TotalPaisa:        order.TotalPaisa,
		PromoCode:         order.PromoCode,
		ShippingAddress:   order.ShippingAddress,
		TrackingCourier:   order.TrackingCourier,
		TrackingNumber:    order.TrackingNumber,
		PlacedAt:          order.PlacedAt,
		Items:             items,
		Payment:           payment,
		StatusEvents:      events,
	}
}
