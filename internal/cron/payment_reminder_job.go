package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox/payloads"
)

const defaultReminderAfter = 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type pendingPaymentReader interface {
	FindPendingPaymentBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

// PaymentReminderJobParams configure the unpaid-order reminder job.
type PaymentReminderJobParams struct {
	Logger *logger.Logger
	DB     txRunner
	Orders pendingPaymentReader
	Outbox outboxEmitter
	After  time.Duration
}

// NewPaymentReminderJob builds the cron job that nudges customers whose
// orders sat in pending_payment past the configured window. EmitIfNotExists
// keeps it to one reminder per order across re-runs.
func NewPaymentReminderJob(params PaymentReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	after := params.After
	if after <= 0 {
		after = defaultReminderAfter
	}
	return &paymentReminderJob{
		logg:   params.Logger,
		db:     params.DB,
		orders: params.Orders,
		outbox: params.Outbox,
		after:  after,
		now:    time.Now,
	}, nil
}

type paymentReminderJob struct {
	logg   *logger.Logger
	db     txRunner
	orders pendingPaymentReader
	outbox outboxEmitter
	after  time.Duration
	now    func() time.Time
}

func (j *paymentReminderJob) Name() string { return "payment-reminder" }

func (j *paymentReminderJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-j.after)
	unpaid, err := j.orders.FindPendingPaymentBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query unpaid orders: %w", err)
	}

	reminded := 0
	var errs []error
	for _, order := range unpaid {
		if err := j.remind(ctx, order, now); err != nil {
			errs = append(errs, fmt.Errorf("order %s: %w", order.OrderNumber, err))
			continue
		}
		reminded++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"eligible": len(unpaid),
		"reminded": reminded,
	})
	j.logg.Info(logCtx, "payment reminder loop complete")
	return multierr.Combine(errs...)
}

func (j *paymentReminderJob) remind(ctx context.Context, order models.Order, now time.Time) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		return j.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaymentReminder,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{Kind: enums.ActorKindSystem},
			Version:       1,
			OccurredAt:    now,
			Data: payloads.PaymentReminderEvent{
				OrderID:      order.ID,
				OrderNumber:  order.OrderNumber,
				PlacedAt:     order.PlacedAt,
				HoursPending: int(now.Sub(order.PlacedAt).Hours()),
			},
		})
	})
}
