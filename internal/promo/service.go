package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/pricing"
)

// Rejection reasons carried in the `reason` detail of CodeInvalidPromo errors.
const (
	ReasonNotFound            = "NOT_FOUND"
	ReasonNotYetActive        = "NOT_YET_ACTIVE"
	ReasonExpired             = "EXPIRED"
	ReasonUsageLimitReached   = "USAGE_LIMIT_REACHED"
	ReasonPerUserLimitReached = "PER_USER_LIMIT_REACHED"
	ReasonMinimumNotMet       = "MINIMUM_NOT_MET"
)

// Identity names who is trying to use a promo. Logged-in users carry UserID;
// guests are identified by checkout email. Both nil means the per-user limit
// cannot be checked yet (a guest browsing with no email), so that check is
// deferred to checkout.
type Identity struct {
	UserID     *uuid.UUID
	GuestEmail *string
}

// Valuation is a successful validation: the promo row plus the discount the
// pricing calculator should apply.
type Valuation struct {
	Promo    *models.PromoCode
	Discount pricing.Discount
}

// CreatePromoInput holds the validated payload to create a promo code.
type CreatePromoInput struct {
	Code             string
	Kind             enums.PromoKind
	Percent          int64
	AmountPaisa      int64
	MaxDiscountPaisa int64
	MinSubtotalPaisa int64
	StartsAt         time.Time
	EndsAt           *time.Time
	MaxUses          int
	PerUserLimit     int
}

// Service exposes promo validation, redemption, and admin management.
type Service interface {
	Validate(ctx context.Context, code string, subtotalPaisa int64, who Identity) (*Valuation, error)
	Redeem(ctx context.Context, tx *gorm.DB, promoID, orderID uuid.UUID, who Identity) error
	Create(ctx context.Context, input CreatePromoInput) (*models.PromoCode, error)
	List(ctx context.Context) ([]models.PromoCode, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// service implements the promo service.
type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService constructs a promo service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promo repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// NormalizeCode canonicalizes user-supplied promo codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks the code against the subtotal and identity without touching
// used_count. Rejections are CodeInvalidPromo with a reason detail; success
// returns the discount to feed into the pricing calculator.
func (s *service) Validate(ctx context.Context, code string, subtotalPaisa int64, who Identity) (*Valuation, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, rejection(ReasonNotFound, normalized)
	}

	promo, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rejection(ReasonNotFound, normalized)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load promo")
	}
	if !promo.IsActive {
		return nil, rejection(ReasonNotFound, normalized)
	}

	now := s.now()
	if now.Before(promo.StartsAt) {
		return nil, rejection(ReasonNotYetActive, normalized)
	}
	if promo.EndsAt != nil && now.After(*promo.EndsAt) {
		return nil, rejection(ReasonExpired, normalized)
	}
	if promo.MaxUses > 0 && promo.UsedCount >= promo.MaxUses {
		return nil, rejection(ReasonUsageLimitReached, normalized)
	}

	if promo.PerUserLimit > 0 {
		used, err := s.redemptionCount(ctx, promo.ID, who)
		if err != nil {
			return nil, err
		}
		if used >= int64(promo.PerUserLimit) {
			return nil, rejection(ReasonPerUserLimitReached, normalized)
		}
	}

	if subtotalPaisa < promo.MinSubtotalPaisa {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidPromo, "promo code rejected").WithDetails(map[string]any{
			"code":             normalized,
			"reason":           ReasonMinimumNotMet,
			"minSubtotalPaisa": promo.MinSubtotalPaisa,
		})
	}

	return &Valuation{
		Promo: promo,
		Discount: pricing.Discount{
			Kind:             promo.Kind,
			Percent:          promo.Percent,
			AmountPaisa:      promo.AmountPaisa,
			MaxDiscountPaisa: promo.MaxDiscountPaisa,
		},
	}, nil
}

// Redeem increments used_count under the global cap and records the
// redemption, inside the caller's checkout transaction. Zero rows from the
// guarded update means the cap was taken by a concurrent checkout; the caller
// rolls the whole order back.
func (s *service) Redeem(ctx context.Context, tx *gorm.DB, promoID, orderID uuid.UUID, who Identity) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	repo := s.repo.WithTx(tx)

	affected, err := repo.IncrementUsage(ctx, promoID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increment promo usage")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidPromo, "promo code rejected").WithDetails(map[string]any{
			"reason": ReasonUsageLimitReached,
		})
	}

	redemption := &models.PromoRedemption{
		PromoID: promoID,
		OrderID: orderID,
		UserID:  who.UserID,
	}
	if who.GuestEmail != nil {
		email := normalizeEmail(*who.GuestEmail)
		redemption.GuestEmail = &email
	}
	if err := repo.InsertRedemption(ctx, redemption); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert promo redemption")
	}
	return nil
}

// Create registers a new promo code.
func (s *service) Create(ctx context.Context, input CreatePromoInput) (*models.PromoCode, error) {
	code := NormalizeCode(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown promo kind")
	}
	switch input.Kind {
	case enums.PromoKindPercentage:
		if input.Percent <= 0 || input.Percent > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent must be between 1 and 100")
		}
	case enums.PromoKindFixed:
		if input.AmountPaisa <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount_paisa must be positive")
		}
	}
	if input.MaxDiscountPaisa < 0 || input.MinSubtotalPaisa < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paisa amounts must be non-negative")
	}
	if input.MaxUses < 0 || input.PerUserLimit < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage limits must be non-negative")
	}
	if input.StartsAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "starts_at is required")
	}
	if input.EndsAt != nil && !input.EndsAt.After(input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ends_at must be after starts_at")
	}

	promo := &models.PromoCode{
		Code:             code,
		Kind:             input.Kind,
		Percent:          input.Percent,
		AmountPaisa:      input.AmountPaisa,
		MaxDiscountPaisa: input.MaxDiscountPaisa,
		MinSubtotalPaisa: input.MinSubtotalPaisa,
		StartsAt:         input.StartsAt,
		EndsAt:           input.EndsAt,
		MaxUses:          input.MaxUses,
		PerUserLimit:     input.PerUserLimit,
		IsActive:         true,
	}
	created, err := s.repo.Create(ctx, promo)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_promo_codes_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "promo code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert promo")
	}
	return created, nil
}

// List returns all promo codes, newest first.
func (s *service) List(ctx context.Context) ([]models.PromoCode, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list promos")
	}
	return rows, nil
}

// Deactivate turns a promo off; validation then reports NOT_FOUND.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.SetActive(ctx, id, false)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate promo")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "promo not found")
	}
	return nil
}

func (s *service) redemptionCount(ctx context.Context, promoID uuid.UUID, who Identity) (int64, error) {
	switch {
	case who.UserID != nil:
		count, err := s.repo.CountRedemptionsByUser(ctx, promoID, *who.UserID)
		if err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count redemptions")
		}
		return count, nil
	case who.GuestEmail != nil:
		count, err := s.repo.CountRedemptionsByGuest(ctx, promoID, normalizeEmail(*who.GuestEmail))
		if err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count redemptions")
		}
		return count, nil
	default:
		return 0, nil
	}
}

func rejection(reason, code string) error {
	return pkgerrors.New(pkgerrors.CodeInvalidPromo, "promo code rejected").WithDetails(map[string]any{
		"code":   code,
		"reason": reason,
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
