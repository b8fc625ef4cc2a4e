package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox/idempotency"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox/payloads"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox/registry"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/pricing"
)

const orderNotificationConsumer = "order-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type orderSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// Consumer turns committed order events into customer notifications. Every
// order carries a shipping phone, so WhatsApp is the primary channel; guest
// orders additionally get an email copy. Delivery is at-least-once: a failed
// send nacks the message and the next delivery records a fresh attempt.
type Consumer struct {
	repo         repository
	orders       orderSource
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	decoders     *registry.DecoderRegistry
	senders      map[enums.NotificationChannel]Sender
	logg         *logger.Logger
	now          func() time.Time
}

// NewConsumer builds the notification consumer over the order event subscription.
func NewConsumer(repo repository, orders orderSource, subscription *pubsub.Subscriber, manager *idempotency.Manager, senders map[enums.NotificationChannel]Sender, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order source required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("event subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if len(senders) == 0 {
		return nil, fmt.Errorf("at least one sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		orders:       orders,
		subscription: subscription,
		idempotency:  manager,
		decoders:     newPayloadDecoders(),
		senders:      senders,
		logg:         logg,
		now:          time.Now,
	}, nil
}

func newPayloadDecoders() *registry.DecoderRegistry {
	reg := registry.NewDecoderRegistry()
	registry.RegisterJSON[payloads.OrderCreatedEvent](reg, enums.EventOrderCreated, 1)
	registry.RegisterJSON[payloads.PaymentVerifiedEvent](reg, enums.EventOrderPaymentVerified, 1)
	registry.RegisterJSON[payloads.PaymentRejectedEvent](reg, enums.EventOrderPaymentRejected, 1)
	registry.RegisterJSON[payloads.ReceiptSubmittedEvent](reg, enums.EventOrderReceiptSubmitted, 1)
	registry.RegisterJSON[payloads.OrderStatusChangedEvent](reg, enums.EventOrderStatusChanged, 1)
	registry.RegisterJSON[payloads.OrderCancelledEvent](reg, enums.EventOrderCancelled, 1)
	registry.RegisterJSON[payloads.OrderRefundedEvent](reg, enums.EventOrderRefunded, 1)
	registry.RegisterJSON[payloads.PaymentReminderEvent](reg, enums.EventOrderPaymentReminder, 1)
	registry.RegisterJSON[payloads.CartAbandonedEvent](reg, enums.EventCartAbandoned, 1)
	return reg
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}
	logCtx = c.logg.WithField(logCtx, "event_id", envelope.EventID)

	state, err := c.idempotency.Claim(ctx, orderNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency claim failed", err)
		return processResult{nack: true}
	}
	switch state {
	case idempotency.StateProcessed:
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	case idempotency.StateInFlight:
		// Another worker holds the claim, or one died holding it. Nack so
		// the redelivery lands after the claim settles or expires.
		c.logg.Info(logCtx, "event claim held elsewhere")
		return processResult{nack: true}
	}

	payload, err := c.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if errors.Is(err, registry.ErrUnregistered) {
		// Not an event this consumer handles. Retrying cannot change
		// that, so drop it.
		c.logg.Info(logCtx, "skipping event without decoder")
		return processResult{ack: true}
	}
	if err != nil {
		c.logg.Error(logCtx, "failed to decode payload", err)
		_ = c.idempotency.Release(ctx, orderNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	if err := c.dispatch(ctx, logCtx, eventType, payload); err != nil {
		c.logg.Error(logCtx, "notification dispatch failed", err)
		_ = c.idempotency.Release(ctx, orderNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	if err := c.idempotency.Confirm(ctx, orderNotificationConsumer, eventID); err != nil {
		// The work is done, so ack regardless; the unconfirmed claim
		// simply expires.
		c.logg.Error(logCtx, "idempotency confirm failed", err)
	}
	return processResult{ack: true}
}

func (c *Consumer) dispatch(ctx context.Context, logCtx context.Context, eventType enums.OutboxEventType, payload interface{}) error {
	if _, ok := payload.(*payloads.CartAbandonedEvent); ok {
		// Carts store no contact details; the event stays on the topic for
		// future re-engagement consumers.
		c.logg.Info(logCtx, "abandoned cart has no reachable contact")
		return nil
	}

	orderID, err := orderIDOf(payload)
	if err != nil {
		return err
	}

	order, err := c.orders.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", orderID, err)
	}

	subject, body, ok := composeMessage(payload, order)
	if !ok {
		c.logg.Info(logCtx, "event needs no customer message")
		return nil
	}

	var failures []string
	for _, draft := range fanOut(order, eventType, subject, body) {
		notification := draft
		if err := c.repo.Create(ctx, &notification); err != nil {
			return fmt.Errorf("record notification: %w", err)
		}

		sender, ok := c.senders[notification.Channel]
		if !ok {
			reason := fmt.Sprintf("no sender configured for channel %s", notification.Channel)
			if err := c.repo.MarkFailed(ctx, notification.ID, reason); err != nil {
				return fmt.Errorf("mark notification failed: %w", err)
			}
			c.logg.Warn(c.logg.WithField(logCtx, "channel", notification.Channel), "notification channel unconfigured")
			continue
		}

		if err := sender.Send(ctx, notification); err != nil {
			if markErr := c.repo.MarkFailed(ctx, notification.ID, err.Error()); markErr != nil {
				return fmt.Errorf("mark notification failed: %w", markErr)
			}
			failures = append(failures, fmt.Sprintf("%s: %v", notification.Channel, err))
			continue
		}
		if err := c.repo.MarkSent(ctx, notification.ID, c.now().UTC()); err != nil {
			return fmt.Errorf("mark notification sent: %w", err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("send failed: %s", strings.Join(failures, "; "))
	}
	return nil
}

// fanOut addresses one message per reachable channel. The shipping phone is
// always present; guest orders also carry an email.
func fanOut(order *models.Order, eventType enums.OutboxEventType, subject, body string) []models.Notification {
	base := models.Notification{
		OrderID:   &order.ID,
		EventType: eventType,
		Subject:   subject,
		Body:      body,
		Status:    enums.NotificationStatusPending,
	}

	var drafts []models.Notification
	if phone := strings.TrimSpace(order.ShippingAddress.Phone); phone != "" {
		whatsapp := base
		whatsapp.Channel = enums.NotificationChannelWhatsApp
		whatsapp.Recipient = phone
		drafts = append(drafts, whatsapp)
	}
	if order.GuestEmail != nil && strings.TrimSpace(*order.GuestEmail) != "" {
		email := base
		email.Channel = enums.NotificationChannelEmail
		email.Recipient = strings.TrimSpace(*order.GuestEmail)
		drafts = append(drafts, email)
	}
	return drafts
}

func orderIDOf(payload interface{}) (uuid.UUID, error) {
	switch p := payload.(type) {
	case *payloads.OrderCreatedEvent:
		return p.OrderID, nil
	case *payloads.PaymentVerifiedEvent:
		return p.OrderID, nil
	case *payloads.PaymentRejectedEvent:
		return p.OrderID, nil
	case *payloads.ReceiptSubmittedEvent:
		return p.OrderID, nil
	case *payloads.OrderStatusChangedEvent:
		return p.OrderID, nil
	case *payloads.OrderCancelledEvent:
		return p.OrderID, nil
	case *payloads.OrderRefundedEvent:
		return p.OrderID, nil
	case *payloads.PaymentReminderEvent:
		return p.OrderID, nil
	default:
		return uuid.Nil, fmt.Errorf("unsupported payload type %T", payload)
	}
}

// composeMessage writes the customer-facing copy for one event. The third
// return is false when the event should not message the customer (for example
// the payment_verified hop of a status change, which the richer payment event
// already covers).
func composeMessage(payload interface{}, order *models.Order) (string, string, bool) {
	switch p := payload.(type) {
	case *payloads.OrderCreatedEvent:
		total := pricing.Display(p.TotalPaisa).StringFixed(2)
		if p.PaymentMethod.RequiresReceipt() {
			return fmt.Sprintf("Order %s received", p.OrderNumber),
				fmt.Sprintf("Thank you for your order %s. The total is Rs %s. Please share your payment receipt so we can confirm it.", p.OrderNumber, total),
				true
		}
		return fmt.Sprintf("Order %s confirmed", p.OrderNumber),
			fmt.Sprintf("Thank you for your order %s. The total is Rs %s, payable in cash on delivery.", p.OrderNumber, total),
			true

	case *payloads.ReceiptSubmittedEvent:
		return fmt.Sprintf("Receipt received for order %s", p.OrderNumber),
			fmt.Sprintf("We received your payment receipt for order %s and will verify it shortly.", p.OrderNumber),
			true

	case *payloads.PaymentVerifiedEvent:
		return fmt.Sprintf("Payment confirmed for order %s", p.OrderNumber),
			fmt.Sprintf("Your payment for order %s has been verified. We have started preparing it.", p.OrderNumber),
			true

	case *payloads.PaymentRejectedEvent:
		body := fmt.Sprintf("We could not verify the payment for order %s. Please submit a new receipt.", p.OrderNumber)
		if p.Note != "" {
			body = fmt.Sprintf("We could not verify the payment for order %s (%s). Please submit a new receipt.", p.OrderNumber, p.Note)
		}
		return fmt.Sprintf("Payment issue with order %s", p.OrderNumber), body, true

	case *payloads.OrderStatusChangedEvent:
		return composeStatusChange(p, order)

	case *payloads.OrderCancelledEvent:
		body := fmt.Sprintf("Your order %s has been cancelled.", p.OrderNumber)
		if p.Reason != "" {
			body = fmt.Sprintf("Your order %s has been cancelled: %s.", p.OrderNumber, strings.TrimSuffix(p.Reason, "."))
		}
		return fmt.Sprintf("Order %s cancelled", p.OrderNumber), body, true

	case *payloads.OrderRefundedEvent:
		return fmt.Sprintf("Order %s refunded", p.OrderNumber),
			fmt.Sprintf("Your order %s has been refunded. The amount should reach you within 5 to 7 working days.", p.OrderNumber),
			true

	case *payloads.PaymentReminderEvent:
		return fmt.Sprintf("Payment reminder for order %s", p.OrderNumber),
			fmt.Sprintf("Your order %s has been awaiting payment for %d hours. Share your receipt to keep your pieces reserved.", p.OrderNumber, p.HoursPending),
			true
	}
	return "", "", false
}

func composeStatusChange(p *payloads.OrderStatusChangedEvent, order *models.Order) (string, string, bool) {
	subject := fmt.Sprintf("Order %s update", p.OrderNumber)
	switch p.ToStatus {
	case enums.OrderStatusPaymentVerified:
		return "", "", false
	case enums.OrderStatusInProgress:
		return subject, fmt.Sprintf("Your order %s is now being prepared.", p.OrderNumber), true
	case enums.OrderStatusQualityCheck:
		return subject, fmt.Sprintf("Your order %s is going through its final quality check.", p.OrderNumber), true
	case enums.OrderStatusDispatched:
		body := fmt.Sprintf("Your order %s has been dispatched.", p.OrderNumber)
		if order.TrackingCourier != nil && order.TrackingNumber != nil {
			body = fmt.Sprintf("Your order %s has been dispatched via %s. Track it with %s.", p.OrderNumber, *order.TrackingCourier, *order.TrackingNumber)
		}
		return subject, body, true
	case enums.OrderStatusDelivered:
		return subject, fmt.Sprintf("Your order %s has been delivered. Thank you for shopping with Laraib Creative.", p.OrderNumber), true
	default:
		return "", "", false
	}
}
