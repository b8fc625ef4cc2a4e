package enums

import "testing"

func TestOrderStatusForwardTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPendingPayment, OrderStatusPaymentVerified, true},
		{OrderStatusPaymentVerified, OrderStatusInProgress, true},
		{OrderStatusInProgress, OrderStatusQualityCheck, true},
		{OrderStatusQualityCheck, OrderStatusDispatched, true},
		{OrderStatusDispatched, OrderStatusDelivered, true},

		// skips forward are fine
		{OrderStatusPaymentVerified, OrderStatusQualityCheck, true},
		{OrderStatusPendingPayment, OrderStatusDispatched, true},

		// regressions are not
		{OrderStatusDispatched, OrderStatusInProgress, false},
		{OrderStatusDelivered, OrderStatusQualityCheck, false},
		{OrderStatusQualityCheck, OrderStatusPendingPayment, false},

		// same state is not a transition
		{OrderStatusInProgress, OrderStatusInProgress, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.allowed {
			t.Fatalf("%s -> %s: expected %v got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestOrderStatusBranchTransitions(t *testing.T) {
	preDelivery := []OrderStatus{
		OrderStatusPendingPayment,
		OrderStatusPaymentVerified,
		OrderStatusInProgress,
		OrderStatusQualityCheck,
		OrderStatusDispatched,
	}
	for _, from := range preDelivery {
		if !from.CanTransition(OrderStatusCancelled) {
			t.Fatalf("%s should allow cancellation", from)
		}
		if !from.CanTransition(OrderStatusRefunded) {
			t.Fatalf("%s should allow refund", from)
		}
	}

	for _, terminal := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded} {
		if !terminal.IsTerminal() {
			t.Fatalf("%s should be terminal", terminal)
		}
		for _, to := range validOrderStatuses {
			if terminal.CanTransition(to) {
				t.Fatalf("%s -> %s should be rejected", terminal, to)
			}
		}
	}
}

func TestOrderStatusCustomerCancellable(t *testing.T) {
	if !OrderStatusPendingPayment.CustomerCancellable() {
		t.Fatal("pending_payment should be customer cancellable")
	}
	if !OrderStatusPaymentVerified.CustomerCancellable() {
		t.Fatal("payment_verified should be customer cancellable")
	}
	for _, s := range []OrderStatus{OrderStatusInProgress, OrderStatusQualityCheck, OrderStatusDispatched, OrderStatusDelivered} {
		if s.CustomerCancellable() {
			t.Fatalf("%s should require an admin to cancel", s)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	if got, err := ParseOrderStatus("quality_check"); err != nil || got != OrderStatusQualityCheck {
		t.Fatalf("parse quality_check: got %q err %v", got, err)
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
