package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/responses"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/validators"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/promo"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
)

// AdminPromoCreate registers a promo code. StartsAt defaults to now when
// omitted so a code goes live immediately.
func AdminPromoCreate(svc promo.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promo service unavailable"))
			return
		}

		var payload createPromoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParsePromoKind(payload.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid promo kind"))
			return
		}

		startsAt := time.Now().UTC()
		if payload.StartsAt != nil {
			startsAt = *payload.StartsAt
		}

		created, err := svc.Create(r.Context(), promo.CreatePromoInput{
			Code:             payload.Code,
			Kind:             kind,
			Percent:          payload.Percent,
			AmountPaisa:      payload.AmountPaisa,
			MaxDiscountPaisa: payload.MaxDiscountPaisa,
			MinSubtotalPaisa: payload.MinSubtotalPaisa,
			StartsAt:         startsAt,
			EndsAt:           payload.EndsAt,
			MaxUses:          payload.MaxUses,
			PerUserLimit:     payload.PerUserLimit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newPromoResponse(created))
	}
}

// AdminPromoList returns every promo code, active or not.
func AdminPromoList(svc promo.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promo service unavailable"))
			return
		}

		promos, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]promoResponse, 0, len(promos))
		for i := range promos {
			out = append(out, newPromoResponse(&promos[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminPromoDeactivate retires a code. Orders that already redeemed it keep
// their discount.
func AdminPromoDeactivate(svc promo.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promo service unavailable"))
			return
		}

		promoID, err := parsePromoID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), promoID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

func parsePromoID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "promoId")
	promoID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid promo id")
	}
	return promoID, nil
}

type createPromoRequest struct {
	Code             string     `json:"code" validate:"required,min=1,max=64"`
	Kind             string     `json:"kind" validate:"required"`
	Percent          int64      `json:"percent" validate:"omitempty,min=0,max=100"`
	AmountPaisa      int64      `json:"amountPaisa" validate:"omitempty,min=0"`
	MaxDiscountPaisa int64      `json:"maxDiscountPaisa" validate:"omitempty,min=0"`
	MinSubtotalPaisa int64      `json:"minSubtotalPaisa" validate:"omitempty,min=0"`
	StartsAt         *time.Time `json:"startsAt"`
	EndsAt           *time.Time `json:"endsAt"`
	MaxUses          int        `json:"maxUses" validate:"omitempty,min=0"`
	PerUserLimit     int        `json:"perUserLimit" validate:"omitempty,min=0"`
}

type promoResponse struct {
	ID               uuid.UUID       `json:"id"`
	Code             string          `json:"code"`
	Kind             enums.PromoKind `json:"kind"`
	Percent          int64           `json:"percent"`
	AmountPaisa      int64           `json:"amountPaisa"`
	MaxDiscountPaisa int64           `json:"maxDiscountPaisa"`
	MinSubtotalPaisa int64           `json:"minSubtotalPaisa"`
	StartsAt         time.Time       `json:"startsAt"`
	EndsAt           *time.Time      `json:"endsAt,omitempty"`
	MaxUses          int             `json:"maxUses"`
	PerUserLimit     int             `json:"perUserLimit"`
	UsedCount        int             `json:"usedCount"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func newPromoResponse(p *models.PromoCode) promoResponse {
	if p == nil {
		return promoResponse{}
	}
	return promoResponse{
		ID:               p.ID,
		Code:             p.Code,
		Kind:             p.Kind,
		Percent:          p.Percent,
		AmountPaisa:      p.AmountPaisa,
		MaxDiscountPaisa: p.MaxDiscountPaisa,
		MinSubtotalPaisa: p.MinSubtotalPaisa,
		StartsAt:         p.StartsAt,
		EndsAt:           p.EndsAt,
		MaxUses:          p.MaxUses,
		PerUserLimit:     p.PerUserLimit,
		UsedCount:        p.UsedCount,
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
	}
}
