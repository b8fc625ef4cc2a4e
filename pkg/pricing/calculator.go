package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
)

// LineInput describes one cart or order line for pricing purposes. All money
// values are integer paisa. StitchingFeePaisa is the per-unit stitching charge
// and is zero for lines sold unstitched.
type LineInput struct {
	ProductID         uuid.UUID
	UnitPricePaisa    int64
	StitchingFeePaisa int64
	Qty               int
}

// Discount describes a promo that has already been validated against the cart.
// Percentage promos use Percent (1-100) with an optional MaxDiscountPaisa cap;
// fixed promos use AmountPaisa.
type Discount struct {
	Kind             enums.PromoKind
	Percent          int64
	AmountPaisa      int64
	MaxDiscountPaisa int64
}

// Quote is the pricing breakdown for a cart or order. The same inputs always
// produce the same quote.
type Quote struct {
	SubtotalPaisa     int64 `json:"subtotalPaisa"`
	StitchingFeePaisa int64 `json:"stitchingFeePaisa"`
	ShippingFeePaisa  int64 `json:"shippingFeePaisa"`
	DiscountPaisa     int64 `json:"discountPaisa"`
	TotalPaisa        int64 `json:"totalPaisa"`
}

// ShippingRule configures the flat delivery fee and the subtotal threshold
// above which delivery is free. FreeShippingMinPaisa of zero disables the
// threshold.
type ShippingRule struct {
	FlatFeePaisa         int64
	FreeShippingMinPaisa int64
}

// LineViolationDetail exposes the offending line returned when pricing input
// fails validation.
type LineViolationDetail struct {
	Index     int       `json:"index"`
	ProductID uuid.UUID `json:"product_id"`
	Field     string    `json:"field"`
	Value     int64     `json:"value"`
}

// Subtotal returns the merchandise subtotal across all lines, excluding
// stitching, shipping, and discounts.
func Subtotal(lines []LineInput) int64 {
	var total int64
	for _, line := range lines {
		total += line.UnitPricePaisa * int64(line.Qty)
	}
	return total
}

// StitchingTotal returns the aggregate stitching charge across all lines.
func StitchingTotal(lines []LineInput) int64 {
	var total int64
	for _, line := range lines {
		total += line.StitchingFeePaisa * int64(line.Qty)
	}
	return total
}

// ShippingFee returns the delivery fee owed for a merchandise subtotal under
// the given rule.
func ShippingFee(rule ShippingRule, subtotalPaisa int64) int64 {
	if rule.FreeShippingMinPaisa > 0 && subtotalPaisa >= rule.FreeShippingMinPaisa {
		return 0
	}
	return rule.FlatFeePaisa
}

// ComputeQuote prices a set of lines with the given shipping fee and optional
// discount. The discount applies to the merchandise subtotal for percentage
// promos (rounded down to whole paisa) and is capped so the total never goes
// negative. Invalid input fails with a CodeValidation error before anything is
// computed.
func ComputeQuote(lines []LineInput, shippingFeePaisa int64, discount *Discount) (Quote, error) {
	if err := validateLines(lines); err != nil {
		return Quote{}, err
	}
	if shippingFeePaisa < 0 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping fee must not be negative").WithDetails(map[string]any{
			"shipping_fee_paisa": shippingFeePaisa,
		})
	}

	subtotal := Subtotal(lines)
	stitching := StitchingTotal(lines)

	amount, err := discountAmount(discount, subtotal, stitching)
	if err != nil {
		return Quote{}, err
	}
	if ceiling := subtotal + stitching + shippingFeePaisa; amount > ceiling {
		amount = ceiling
	}

	return Quote{
		SubtotalPaisa:     subtotal,
		StitchingFeePaisa: stitching,
		ShippingFeePaisa:  shippingFeePaisa,
		DiscountPaisa:     amount,
		TotalPaisa:        subtotal + stitching + shippingFeePaisa - amount,
	}, nil
}

// Display converts integer paisa into a rupee amount with two decimal places.
func Display(paisa int64) decimal.Decimal {
	return decimal.NewFromInt(paisa).Shift(-2)
}

func validateLines(lines []LineInput) error {
	var violations []LineViolationDetail
	for i, line := range lines {
		if line.Qty <= 0 {
			violations = append(violations, LineViolationDetail{
				Index:     i,
				ProductID: line.ProductID,
				Field:     "qty",
				Value:     int64(line.Qty),
			})
		}
		if line.UnitPricePaisa < 0 {
			violations = append(violations, LineViolationDetail{
				Index:     i,
				ProductID: line.ProductID,
				Field:     "unit_price_paisa",
				Value:     line.UnitPricePaisa,
			})
		}
		if line.StitchingFeePaisa < 0 {
			violations = append(violations, LineViolationDetail{
				Index:     i,
				ProductID: line.ProductID,
				Field:     "stitching_fee_paisa",
				Value:     line.StitchingFeePaisa,
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid pricing input for %d line(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}

func discountAmount(discount *Discount, subtotalPaisa, stitchingPaisa int64) (int64, error) {
	if discount == nil {
		return 0, nil
	}
	switch discount.Kind {
	case enums.PromoKindPercentage:
		if discount.Percent <= 0 || discount.Percent > 100 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 1 and 100").WithDetails(map[string]any{
				"percent": discount.Percent,
			})
		}
		amount := subtotalPaisa * discount.Percent / 100
		if discount.MaxDiscountPaisa > 0 && amount > discount.MaxDiscountPaisa {
			amount = discount.MaxDiscountPaisa
		}
		return amount, nil
	case enums.PromoKindFixed:
		if discount.AmountPaisa < 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "discount amount must not be negative").WithDetails(map[string]any{
				"amount_paisa": discount.AmountPaisa,
			})
		}
		amount := discount.AmountPaisa
		if eligible := subtotalPaisa + stitchingPaisa; amount > eligible {
			amount = eligible
		}
		return amount, nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "unknown discount kind").WithDetails(map[string]any{
			"kind": discount.Kind.String(),
		})
	}
}
