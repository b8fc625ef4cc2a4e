package enums

import "fmt"

// PromoKind distinguishes percentage promos from fixed-amount promos.
type PromoKind string

const (
	PromoKindPercentage PromoKind = "percentage"
	PromoKindFixed      PromoKind = "fixed"
)

var validPromoKinds = []PromoKind{
	PromoKindPercentage,
	PromoKindFixed,
}

// String implements fmt.Stringer.
func (p PromoKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PromoKind.
func (p PromoKind) IsValid() bool {
	for _, candidate := range validPromoKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePromoKind converts raw input into a PromoKind.
func ParsePromoKind(value string) (PromoKind, error) {
	for _, candidate := range validPromoKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promo kind %q", value)
}
