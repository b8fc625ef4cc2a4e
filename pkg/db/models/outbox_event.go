package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
)

// OutboxEvent is an append-only row written in the same transaction as the
// state change it announces. The publisher stamps published_at on success.
// Rows that exhaust their attempts are copied to the DLQ and pinned at the
// attempt ceiling so the poller skips them from then on.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;type:event_type_enum;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;type:aggregate_type_enum;not null"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
	PublishedAt   *time.Time                `gorm:"column:published_at"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	LastError     *string                   `gorm:"column:last_error"`
}

// Publishable mirrors the poller's selection predicate: unpublished and
// still below the attempt ceiling. Retired rows fail the second condition
// even though published_at stays NULL.
func (e OutboxEvent) Publishable(maxAttempts int) bool {
	return e.PublishedAt == nil && e.AttemptCount < maxAttempts
}
