package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox/payloads"
)

func TestPaymentReminderJobEmitsForStaleOrders(t *testing.T) {
	now := time.Date(2026, 6, 12, 9, 0, 0, 0, time.UTC)
	stale := models.Order{
		ID:          uuid.New(),
		OrderNumber: "LC-20260611-000042",
		Status:      enums.OrderStatusPendingPayment,
		PlacedAt:    now.Add(-30 * time.Hour),
	}
	reader := &fakePendingPaymentReader{orders: []models.Order{stale}}
	job, outboxSvc := newPaymentReminderJobTest(t, reader)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expectedCutoff := now.Add(-defaultReminderAfter)
	if !reader.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, reader.lastCutoff)
	}
	if len(outboxSvc.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(outboxSvc.events))
	}
	event := outboxSvc.events[0]
	if event.EventType != enums.EventOrderPaymentReminder {
		t.Fatalf("unexpected event type: %s", event.EventType)
	}
	if event.AggregateID != stale.ID {
		t.Fatalf("unexpected aggregate id: %s", event.AggregateID)
	}
	if event.Actor == nil || event.Actor.Kind != enums.ActorKindSystem {
		t.Fatalf("expected system actor, got %+v", event.Actor)
	}
	payload, ok := event.Data.(payloads.PaymentReminderEvent)
	if !ok {
		t.Fatalf("expected reminder payload, got %T", event.Data)
	}
	if payload.OrderNumber != stale.OrderNumber {
		t.Fatalf("unexpected order number: %s", payload.OrderNumber)
	}
	if payload.HoursPending != 30 {
		t.Fatalf("expected 30 hours pending, got %d", payload.HoursPending)
	}
}

func TestPaymentReminderJobRemindsEachOrderOnce(t *testing.T) {
	now := time.Date(2026, 6, 12, 9, 0, 0, 0, time.UTC)
	already := models.Order{
		ID:          uuid.New(),
		OrderNumber: "LC-20260610-000007",
		Status:      enums.OrderStatusPendingPayment,
		PlacedAt:    now.Add(-48 * time.Hour),
	}
	reader := &fakePendingPaymentReader{orders: []models.Order{already}}
	job, outboxSvc := newPaymentReminderJobTest(t, reader)
	job.now = func() time.Time { return now }
	outboxSvc.existing = map[uuid.UUID]bool{already.ID: true}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outboxSvc.events) != 0 {
		t.Fatalf("expected no events for already-reminded order, got %d", len(outboxSvc.events))
	}
}

func TestPaymentReminderJobKeepsGoingPastFailures(t *testing.T) {
	now := time.Date(2026, 6, 12, 9, 0, 0, 0, time.UTC)
	first := models.Order{ID: uuid.New(), OrderNumber: "LC-20260611-000001", PlacedAt: now.Add(-26 * time.Hour)}
	second := models.Order{ID: uuid.New(), OrderNumber: "LC-20260611-000002", PlacedAt: now.Add(-27 * time.Hour)}
	reader := &fakePendingPaymentReader{orders: []models.Order{first, second}}
	job, outboxSvc := newPaymentReminderJobTest(t, reader)
	job.now = func() time.Time { return now }
	outboxSvc.err = errors.New("outbox insert failed")

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected combined error")
	}
	if !strings.Contains(err.Error(), first.OrderNumber) || !strings.Contains(err.Error(), second.OrderNumber) {
		t.Fatalf("expected both order numbers in error, got %v", err)
	}
	if outboxSvc.attempts != 2 {
		t.Fatalf("expected both orders attempted, got %d", outboxSvc.attempts)
	}
}

func newPaymentReminderJobTest(t *testing.T, reader *fakePendingPaymentReader) (*paymentReminderJob, *fakeOutboxService) {
	t.Helper()
	outboxSvc := &fakeOutboxService{}
	jobIface, err := NewPaymentReminderJob(PaymentReminderJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		DB:     fakeTxRunner{},
		Orders: reader,
		Outbox: outboxSvc,
	})
	if err != nil {
		t.Fatalf("NewPaymentReminderJob: %v", err)
	}
	job, ok := jobIface.(*paymentReminderJob)
	if !ok {
		t.Fatalf("expected paymentReminderJob, got %T", jobIface)
	}
	return job, outboxSvc
}

type fakePendingPaymentReader struct {
	lastCutoff time.Time
	orders     []models.Order
	err        error
}

func (f *fakePendingPaymentReader) FindPendingPaymentBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	f.lastCutoff = cutoff
	return f.orders, f.err
}

type fakeOutboxService struct {
	events   []outbox.DomainEvent
	existing map[uuid.UUID]bool
	attempts int
	err      error
}

func (f *fakeOutboxService) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.attempts++
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxService) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.attempts++
	if f.err != nil {
		return f.err
	}
	if f.existing[event.AggregateID] {
		return nil
	}
	f.events = append(f.events, event)
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
