package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/Kaashmalik/laraibcreative-platform-sub000/internal/products"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox/payloads"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type stockRestorer interface {
	Restore(ctx context.Context, tx *gorm.DB, lines []product.StockLine) error
}

// Actor identifies who is acting on an order. Customers carry their user ID,
// or, for guest orders, the checkout email the guest already proved through
// the order lookup. Admin and system actors skip ownership checks.
type Actor struct {
	Kind       enums.ActorKind
	ID         *uuid.UUID
	GuestEmail *string
}

func (a Actor) ref() *outbox.ActorRef {
	return &outbox.ActorRef{UserID: a.ID, Kind: a.Kind}
}

// VerifyPaymentInput is the admin ruling on a pending payment.
type VerifyPaymentInput struct {
	Decision      enums.PaymentDecision
	AdminID       uuid.UUID
	TransactionID *string
	Note          *string
}

// ReceiptInput carries the customer's proof of payment.
type ReceiptInput struct {
	ReceiptRef    string
	TransactionID *string
}

// TrackingInput sets courier details, optionally moving the order to
// dispatched in the same call.
type TrackingInput struct {
	Courier        string
	TrackingNumber string
	MarkDispatched bool
}

// Service owns the order lifecycle after checkout: fulfillment transitions,
// the manual payment gate, cancellation and refunds, plus the read surface.
type Service interface {
	GetByID(ctx context.Context, orderID uuid.UUID, viewer Actor) (*models.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	GuestLookup(ctx context.Context, orderNumber, email, phone string) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
	Transition(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, actor Actor, note *string) (*models.Order, error)
	VerifyPayment(ctx context.Context, orderID uuid.UUID, input VerifyPaymentInput) (*models.Order, error)
	SubmitReceipt(ctx context.Context, orderID uuid.UUID, by Actor, input ReceiptInput) (*models.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actor Actor, reason string) (*models.Order, error)
	Refund(ctx context.Context, orderID uuid.UUID, actor Actor, note string) (*models.Order, error)
	SetTracking(ctx context.Context, orderID uuid.UUID, input TrackingInput, actor Actor) (*models.Order, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	stock  stockRestorer
	now    func() time.Time
}

// NewService builds the order lifecycle service.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, stock stockRestorer) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock restorer required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: publisher,
		stock:  stock,
		now:    time.Now,
	}, nil
}

func (s *service) GetByID(ctx context.Context, orderID uuid.UUID, viewer Actor) (*models.Order, error) {
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if !owns(order, viewer) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to you")
	}
	return order, nil
}

func (s *service) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	order, err := s.repo.FindByNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}

// GuestLookup authenticates a guest by the three things only they know
// together: the order number plus the email and phone given at checkout.
// Any mismatch reads as not found so the endpoint cannot be used to probe
// which part was wrong.
func (s *service) GuestLookup(ctx context.Context, orderNumber, email, phone string) (*models.Order, error) {
	number := strings.TrimSpace(orderNumber)
	normalizedEmail := normalizeEmail(email)
	normalizedPhone := normalizePhone(phone)
	if number == "" || normalizedEmail == "" || normalizedPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number, email and phone are required")
	}

	order, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	if !order.IsGuest() || order.GuestEmail == nil || order.GuestPhone == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if normalizeEmail(*order.GuestEmail) != normalizedEmail || normalizePhone(*order.GuestPhone) != normalizedPhone {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	orders, next, err := s.repo.ListForUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return buildList(orders, next), nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	orders, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return buildList(orders, next), nil
}

// Transition moves fulfillment forward. Steps may be skipped but never run
// backwards; cancellation and refunds have their own operations because they
// carry restock side effects.
func (s *service) Transition(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, actor Actor, note *string) (*models.Order, error) {
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if to == enums.OrderStatusCancelled || to == enums.OrderStatusRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the cancel or refund operation")
	}
	if actor.Kind != enums.ActorKindAdmin && actor.Kind != enums.ActorKindSystem {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff can move fulfillment")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.Status == to {
			return nil
		}
		if !order.Status.CanTransition(to) {
			return pkgerrors.New(pkgerrors.CodeInvalidStatus, fmt.Sprintf("order cannot move from %s to %s", order.Status, to)).
				WithDetails(map[string]any{"from": order.Status, "to": to})
		}
		if err := s.moveStatus(ctx, tx, repo, order, to, note, actor); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, orderID)
}

// VerifyPayment is the admin gate on manual settlements. An order that
// already left pending payment makes the call an idempotent no-op, so a
// double-submitted review never fires twice.
func (s *service) VerifyPayment(ctx context.Context, orderID uuid.UUID, input VerifyPaymentInput) (*models.Order, error) {
	if !input.Decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment decision must be approve or reject")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.Payment == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "order has no payment record")
		}
		if order.Status != enums.OrderStatusPendingPayment {
			return nil
		}

		if input.Decision == enums.PaymentDecisionApprove {
			return s.approvePayment(ctx, tx, repo, order, input)
		}
		return s.rejectPayment(ctx, tx, repo, order, input)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, orderID)
}

func (s *service) approvePayment(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, input VerifyPaymentInput) error {
	now := s.now()
	updates := map[string]any{
		"status":      enums.PaymentStatusVerified,
		"verified_at": now,
		"verified_by": input.AdminID,
	}
	if input.TransactionID != nil {
		updates["transaction_id"] = *input.TransactionID
	}
	if input.Note != nil {
		updates["note"] = *input.Note
	}
	if err := repo.UpdatePayment(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update payment")
	}

	actor := Actor{Kind: enums.ActorKindAdmin, ID: &input.AdminID}
	if err := s.moveStatus(ctx, tx, repo, order, enums.OrderStatusPaymentVerified, input.Note, actor); err != nil {
		return err
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderPaymentVerified,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor.ref(),
		Version:       1,
		Data: payloads.PaymentVerifiedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Method:      order.Payment.Method,
			VerifiedBy:  input.AdminID,
			VerifiedAt:  now,
		},
	})
}

func (s *service) rejectPayment(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, input VerifyPaymentInput) error {
	// Re-rejecting an already rejected payment changes nothing.
	if order.Payment.Status == enums.PaymentStatusRejected {
		return nil
	}

	reason := "payment rejected"
	if input.Note != nil && strings.TrimSpace(*input.Note) != "" {
		reason = fmt.Sprintf("payment rejected: %s", strings.TrimSpace(*input.Note))
	}
	updates := map[string]any{
		"status": enums.PaymentStatusRejected,
		"note":   reason,
	}
	if err := repo.UpdatePayment(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update payment")
	}

	// The order stays in pending payment; the rejection is recorded in the
	// history so the customer-facing timeline explains the stall.
	actor := Actor{Kind: enums.ActorKindAdmin, ID: &input.AdminID}
	if err := s.appendEvent(ctx, repo, order.ID, order.Status, &reason, actor); err != nil {
		return err
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderPaymentRejected,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor.ref(),
		Version:       1,
		Data: payloads.PaymentRejectedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Method:      order.Payment.Method,
			Note:        reason,
			RejectedAt:  s.now(),
		},
	})
}

// SubmitReceipt attaches or replaces the customer's payment proof while the
// order waits for review. Resubmitting after a rejection resets the payment
// back to pending.
func (s *service) SubmitReceipt(ctx context.Context, orderID uuid.UUID, by Actor, input ReceiptInput) (*models.Order, error) {
	receiptRef := strings.TrimSpace(input.ReceiptRef)
	if receiptRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt reference is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if !owns(order, by) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to you")
		}
		if order.Payment == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "order has no payment record")
		}
		if !order.Payment.Method.RequiresReceipt() {
			return pkgerrors.New(pkgerrors.CodeValidation, "cash on delivery orders settle with the rider")
		}
		if order.Status != enums.OrderStatusPendingPayment {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "receipts can only be submitted while payment is pending")
		}

		updates := map[string]any{
			"receipt_ref": receiptRef,
			"status":      enums.PaymentStatusPending,
			"note":        nil,
		}
		if input.TransactionID != nil {
			updates["transaction_id"] = *input.TransactionID
		}
		if err := repo.UpdatePayment(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update payment")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderReceiptSubmitted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         by.ref(),
			Version:       1,
			Data: payloads.ReceiptSubmittedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				Method:        order.Payment.Method,
				ReceiptRef:    receiptRef,
				TransactionID: input.TransactionID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, orderID)
}

// Cancel closes the order and returns its stock exactly once. Customers can
// only pull out before work starts; later states need an admin. Cancelling a
// cancelled order is a no-op.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, actor Actor, reason string) (*models.Order, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCancelled {
			return nil
		}
		if actor.Kind != enums.ActorKindAdmin && actor.Kind != enums.ActorKindSystem {
			if !owns(order, actor) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to you")
			}
			if !order.Status.CustomerCancellable() {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order is already in progress; contact support to cancel")
			}
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
		}

		if err := s.casStatus(ctx, repo, order, enums.OrderStatusCancelled); err != nil {
			return err
		}
		restocked, err := s.restockOnce(ctx, tx, repo, order)
		if err != nil {
			return err
		}

		var note *string
		if trimmed := strings.TrimSpace(reason); trimmed != "" {
			note = &trimmed
		}
		if err := s.appendEvent(ctx, repo, order.ID, enums.OrderStatusCancelled, note, actor); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor.ref(),
			Version:       1,
			Data: payloads.OrderCancelledEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Reason:      strings.TrimSpace(reason),
				Restocked:   restocked,
				CancelledAt: s.now(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, orderID)
}

// Refund is the admin-side terminal branch for orders that were paid but
// will not be delivered. It shares the restock-once guard with Cancel.
func (s *service) Refund(ctx context.Context, orderID uuid.UUID, actor Actor, note string) (*models.Order, error) {
	if actor.Kind != enums.ActorKindAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only an admin can refund an order")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusRefunded {
			return nil
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be refunded")
		}

		if err := s.casStatus(ctx, repo, order, enums.OrderStatusRefunded); err != nil {
			return err
		}
		if _, err := s.restockOnce(ctx, tx, repo, order); err != nil {
			return err
		}

		trimmed := strings.TrimSpace(note)
		if trimmed != "" {
			if err := repo.UpdatePayment(ctx, order.ID, map[string]any{
				"note": fmt.Sprintf("refunded: %s", trimmed),
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update payment")
			}
		}

		var eventNote *string
		if trimmed != "" {
			eventNote = &trimmed
		}
		if err := s.appendEvent(ctx, repo, order.ID, enums.OrderStatusRefunded, eventNote, actor); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderRefunded,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor.ref(),
			Version:       1,
			Data: payloads.OrderRefundedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Note:        trimmed,
				RefundedAt:  s.now(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, orderID)
}

// SetTracking stores courier details and, when asked, moves the order to
// dispatched in the same transaction.
func (s *service) SetTracking(ctx context.Context, orderID uuid.UUID, input TrackingInput, actor Actor) (*models.Order, error) {
	courier := strings.TrimSpace(input.Courier)
	trackingNumber := strings.TrimSpace(input.TrackingNumber)
	if courier == "" || trackingNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "courier and tracking number are required")
	}
	if actor.Kind != enums.ActorKindAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff can set tracking")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "tracking cannot change on a closed order")
		}
		if err := repo.SetTracking(ctx, order.ID, courier, trackingNumber); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: set tracking")
		}

		if !input.MarkDispatched || order.Status == enums.OrderStatusDispatched {
			return nil
		}
		if !order.Status.CanTransition(enums.OrderStatusDispatched) {
			return pkgerrors.New(pkgerrors.CodeInvalidStatus, fmt.Sprintf("order cannot move from %s to dispatched", order.Status))
		}
		note := fmt.Sprintf("dispatched via %s, tracking %s", courier, trackingNumber)
		return s.moveStatus(ctx, tx, repo, order, enums.OrderStatusDispatched, &note, actor)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, orderID)
}

// moveStatus runs the CAS transition, appends the history row, and emits the
// status change event. The caller has already validated the move.
func (s *service) moveStatus(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, to enums.OrderStatus, note *string, actor Actor) error {
	if err := s.casStatus(ctx, repo, order, to); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, repo, order.ID, to, note, actor); err != nil {
		return err
	}
	from := order.Status
	order.Status = to
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor.ref(),
		Version:       1,
		Data: payloads.OrderStatusChangedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			FromStatus:  from,
			ToStatus:    to,
			Note:        note,
			ChangedAt:   s.now(),
		},
	})
}

func (s *service) casStatus(ctx context.Context, repo Repository, order *models.Order, to enums.OrderStatus) error {
	affected, err := repo.UpdateStatusIf(ctx, order.ID, order.Status, to)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeConcurrentEdit, "order was updated concurrently, retry")
	}
	return nil
}

func (s *service) restockOnce(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order) (bool, error) {
	affected, err := repo.MarkRestocked(ctx, order.ID, s.now())
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark restocked")
	}
	if affected == 0 {
		return false, nil
	}
	if err := s.stock.Restore(ctx, tx, restockLines(order.Items)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) appendEvent(ctx context.Context, repo Repository, orderID uuid.UUID, status enums.OrderStatus, note *string, actor Actor) error {
	event := &models.OrderStatusEvent{
		OrderID:   orderID,
		Status:    status,
		Note:      note,
		ActorKind: actor.Kind,
		ActorID:   actor.ID,
	}
	if err := repo.AppendStatusEvent(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append status event")
	}
	return nil
}

func (s *service) loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}

func (s *service) reload(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload order")
	}
	return order, nil
}

func owns(order *models.Order, actor Actor) bool {
	switch actor.Kind {
	case enums.ActorKindAdmin, enums.ActorKindSystem:
		return true
	case enums.ActorKindCustomer:
		if order.UserID != nil {
			return actor.ID != nil && *actor.ID == *order.UserID
		}
		if order.GuestEmail == nil || actor.GuestEmail == nil {
			return false
		}
		return normalizeEmail(*order.GuestEmail) == normalizeEmail(*actor.GuestEmail)
	}
	return false
}

func buildList(orders []models.Order, next *pagination.Cursor) *OrderList {
	list := &OrderList{Orders: make([]OrderSummary, 0, len(orders))}
	for _, order := range orders {
		list.Orders = append(list.Orders, summarize(order))
	}
	if next != nil {
		list.NextCursor = next.Encode()
	}
	return list
}

func restockLines(items []models.OrderItem) []product.StockLine {
	lines := make([]product.StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, product.StockLine{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Qty:       item.Qty,
		})
	}
	return lines
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizePhone(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "")
	return replacer.Replace(strings.TrimSpace(phone))
}
