package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/middleware"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/responses"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/validators"
	internalorders "github.com/Kaashmalik/laraibcreative-platform-sub000/internal/orders"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
)

// AdminOrdersList pages through every order, filterable by lifecycle status,
// payment status and placement window.
func AdminOrdersList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := buildOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// AdminOrderDetail returns the full order record including payment and the
// status trail.
func AdminOrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

// AdminVerifyPayment settles the manual review of a submitted receipt.
// Approval moves the order into processing; rejection sends it back for the
// customer to retry.
func AdminVerifyPayment(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		adminID, err := adminIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := enums.ParsePaymentDecision(payload.Decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision"))
			return
		}

		order, err := svc.VerifyPayment(r.Context(), orderID, internalorders.VerifyPaymentInput{
			Decision:      decision,
			AdminID:       adminID,
			TransactionID: payload.TransactionID,
			Note:          payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminOrderStatus moves an order along the fulfillment lane.
func AdminOrderStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.Transition(r.Context(), orderID, status, actorFromRequest(r, nil), payload.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminOrderTracking attaches courier details, optionally dispatching in the
// same call.
func AdminOrderTracking(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload trackingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SetTracking(r.Context(), orderID, internalorders.TrackingInput{
			Courier:        payload.Courier,
			TrackingNumber: payload.TrackingNumber,
			MarkDispatched: payload.MarkDispatched,
		}, actorFromRequest(r, nil))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminOrderRefund marks a verified order refunded and restocks it.
func AdminOrderRefund(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload refundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Refund(r.Context(), orderID, actorFromRequest(r, nil), payload.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func adminIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required")
	}
	adminID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid credentials")
	}
	return adminID, nil
}

func buildOrderFilters(r *http.Request) (internalorders.ListFilters, error) {
	var filters internalorders.ListFilters

	status, err := parseOrderStatusParam(r, "status")
	if err != nil {
		return filters, err
	}
	filters.Status = status

	paymentStatus, err := parsePaymentStatusParam(r, "paymentStatus")
	if err != nil {
		return filters, err
	}
	filters.PaymentStatus = paymentStatus

	from, err := parseDateParam(r, "placedFrom")
	if err != nil {
		return filters, err
	}
	filters.PlacedFrom = from

	to, err := parseDateParam(r, "placedTo")
	if err != nil {
		return filters, err
	}
	filters.PlacedTo = to

	return filters, nil
}

func parseOrderStatusParam(r *http.Request, key string) (*enums.OrderStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return &status, nil
}

func parsePaymentStatusParam(r *http.Request, key string) (*enums.PaymentStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParsePaymentStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return &status, nil
}

func parseDateParam(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		ts, err = time.Parse(time.RFC3339, raw)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return &ts, nil
}

type verifyPaymentRequest struct {
	Decision      string  `json:"decision" validate:"required"`
	TransactionID *string `json:"transactionId" validate:"omitempty,max=128"`
	Note          *string `json:"note" validate:"omitempty,max=500"`
}

type orderStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note" validate:"omitempty,max=500"`
}

type trackingRequest struct {
	Courier        string `json:"courier" validate:"required,max=100"`
	TrackingNumber string `json:"trackingNumber" validate:"required,max=100"`
	MarkDispatched bool   `json:"markDispatched"`
}

type refundRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}
