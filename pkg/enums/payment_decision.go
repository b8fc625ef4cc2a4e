package enums

import "fmt"

// PaymentDecision is the admin ruling on a submitted payment.
type PaymentDecision string

const (
	PaymentDecisionApprove PaymentDecision = "approve"
	PaymentDecisionReject  PaymentDecision = "reject"
)

var validPaymentDecisions = []PaymentDecision{
	PaymentDecisionApprove,
	PaymentDecisionReject,
}

// String implements fmt.Stringer.
func (p PaymentDecision) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentDecision.
func (p PaymentDecision) IsValid() bool {
	for _, candidate := range validPaymentDecisions {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentDecision converts raw input into a PaymentDecision.
func ParsePaymentDecision(value string) (PaymentDecision, error) {
	for _, candidate := range validPaymentDecisions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment decision %q", value)
}
