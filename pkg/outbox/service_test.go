package outbox

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/db/models"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/outbox/payloads"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	events := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	eventsIndex := `
CREATE UNIQUE INDEX IF NOT EXISTS ux_outbox_events_event_aggregate
ON outbox_events (event_type, aggregate_type, aggregate_id)
WHERE published_at IS NULL
  AND event_type IN ('order_payment_reminder', 'cart_abandoned');`
	dlq := `
CREATE TABLE IF NOT EXISTS outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(events).Error)
	require.NoError(t, db.Exec(eventsIndex).Error)
	require.NoError(t, db.Exec(dlq).Error)
	return db
}

func reminderEvent(orderID uuid.UUID) DomainEvent {
	return DomainEvent{
		EventType:     enums.EventOrderPaymentReminder,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Data: payloads.PaymentReminderEvent{
			OrderID:      orderID,
			OrderNumber:  "LC-20250314-284913",
			PlacedAt:     time.Now().Add(-30 * time.Hour),
			HoursPending: 30,
		},
		Version: 1,
	}
}

func TestEmitWritesEnvelope(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)

	orderID := uuid.New()
	userID := uuid.New()
	event := reminderEvent(orderID)
	event.Actor = &ActorRef{UserID: &userID, Kind: enums.ActorKindAdmin}

	require.NoError(t, svc.Emit(context.Background(), db, event))

	var row models.OutboxEvent
	require.NoError(t, db.Where("aggregate_id = ?", orderID).First(&row).Error)
	assert.Equal(t, enums.EventOrderPaymentReminder, row.EventType)
	assert.Equal(t, enums.AggregateOrder, row.AggregateType)
	assert.Nil(t, row.PublishedAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(row.Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)
	assert.False(t, envelope.OccurredAt.IsZero())
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, enums.ActorKindAdmin, envelope.Actor.Kind)

	var payload payloads.PaymentReminderEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, orderID, payload.OrderID)
	assert.Equal(t, 30, payload.HoursPending)
}

func TestEmitRejectsMalformedEvents(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)
	ctx := context.Background()

	missingAggregate := reminderEvent(uuid.New())
	missingAggregate.AggregateID = uuid.Nil
	require.Error(t, svc.Emit(ctx, db, missingAggregate))

	missingType := reminderEvent(uuid.New())
	missingType.EventType = ""
	require.Error(t, svc.Emit(ctx, db, missingType))

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestEmitDefaultsVersion(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)

	orderID := uuid.New()
	event := reminderEvent(orderID)
	event.Version = 0
	require.NoError(t, svc.Emit(context.Background(), db, event))

	var row models.OutboxEvent
	require.NoError(t, db.Where("aggregate_id = ?", orderID).First(&row).Error)
	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(row.Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
}

func TestEmitIfNotExistsDedupes(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)

	orderID := uuid.New()
	require.NoError(t, svc.EmitIfNotExists(context.Background(), db, reminderEvent(orderID)))
	require.NoError(t, svc.EmitIfNotExists(context.Background(), db, reminderEvent(orderID)))

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ?", orderID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFetchUnpublishedSkipsExhausted(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)

	freshID := uuid.New()
	exhaustedID := uuid.New()
	require.NoError(t, svc.Emit(context.Background(), db, reminderEvent(freshID)))
	require.NoError(t, svc.Emit(context.Background(), db, reminderEvent(exhaustedID)))
	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ?", exhaustedID).
		Update("attempt_count", 10).Error)

	rows, err := repo.FetchUnpublishedForPublish(db, 100, 10)
	require.NoError(t, err)

	seen := map[uuid.UUID]bool{}
	for _, row := range rows {
		seen[row.AggregateID] = true
	}
	assert.True(t, seen[freshID])
	assert.False(t, seen[exhaustedID])
}

func TestMarkPublishedAndFailed(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)

	orderID := uuid.New()
	require.NoError(t, svc.Emit(context.Background(), db, reminderEvent(orderID)))

	var row models.OutboxEvent
	require.NoError(t, db.Where("aggregate_id = ?", orderID).First(&row).Error)

	require.NoError(t, repo.MarkFailedTx(db, row.ID, assert.AnError))
	require.NoError(t, db.Where("id = ?", row.ID).First(&row).Error)
	assert.Equal(t, 1, row.AttemptCount)
	require.NotNil(t, row.LastError)
	assert.True(t, row.Publishable(10), "one failure must leave attempts to spend")

	require.NoError(t, repo.MarkPublishedTx(db, row.ID))
	require.NoError(t, db.Where("id = ?", row.ID).First(&row).Error)
	require.NotNil(t, row.PublishedAt)
	assert.False(t, row.Publishable(10))

	rows, err := repo.FetchUnpublishedForPublish(db, 100, 10)
	require.NoError(t, err)
	for _, fetched := range rows {
		assert.NotEqual(t, row.ID, fetched.ID)
	}
}

func TestMarkTerminalExcludesFromFetch(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)

	orderID := uuid.New()
	require.NoError(t, svc.Emit(context.Background(), db, reminderEvent(orderID)))

	var row models.OutboxEvent
	require.NoError(t, db.Where("aggregate_id = ?", orderID).First(&row).Error)
	require.NoError(t, repo.MarkTerminalTx(db, row.ID, assert.AnError, 10))

	require.NoError(t, db.Where("id = ?", row.ID).First(&row).Error)
	assert.Nil(t, row.PublishedAt, "retired rows are pinned, not published")
	assert.False(t, row.Publishable(10))

	rows, err := repo.FetchUnpublishedForPublish(db, 100, 10)
	require.NoError(t, err)
	for _, fetched := range rows {
		assert.NotEqual(t, row.ID, fetched.ID)
	}
}

func TestDeletePublishedBefore(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)

	prunedID := uuid.New()
	keptID := uuid.New()
	require.NoError(t, svc.Emit(context.Background(), db, reminderEvent(prunedID)))
	require.NoError(t, svc.Emit(context.Background(), db, reminderEvent(keptID)))

	old := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ?", prunedID).
		Update("published_at", old).Error)

	deleted, err := repo.DeletePublishedBefore(context.Background(), db, time.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ?", prunedID).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)

	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ?", keptID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDLQInsertAndFind(t *testing.T) {
	db := setupOutboxTestDB(t)
	dlqRepo := NewDLQRepository(db)

	eventID := uuid.New()
	msg := "publisher exploded"
	entry := models.OutboxDLQ{
		EventID:       eventID,
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
		ErrorReason:   enums.OutboxDLQReasonNonRetryable,
		ErrorMessage:  &msg,
		AttemptCount:  3,
		FailedAt:      time.Now().UTC(),
	}
	require.NoError(t, dlqRepo.InsertTx(db, entry))

	found, err := dlqRepo.FindByEventID(context.Background(), eventID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, enums.EventOrderCreated, found.EventType)
	require.NotNil(t, found.ErrorMessage)
	assert.Equal(t, msg, *found.ErrorMessage)

	missing, err := dlqRepo.FindByEventID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDLQErrorTruncationKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("ل", 600) // 2 bytes per rune, 1200 bytes total
	cut := truncateDLQError(long)
	assert.LessOrEqual(t, len(cut), maxDLQErrorLen)
	assert.True(t, utf8.ValidString(cut))

	short := "publisher exploded"
	assert.Equal(t, short, truncateDLQError(short))
}
