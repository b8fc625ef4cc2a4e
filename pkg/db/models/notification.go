package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
)

// Notification records one customer-facing message produced from an order
// event. Delivery failures never feed back into order state.
type Notification struct {
	ID        uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   *uuid.UUID                `gorm:"column:order_id;type:uuid;index"`
	Recipient string                    `gorm:"column:recipient;not null"`
	Channel   enums.NotificationChannel `gorm:"column:channel;type:notification_channel;not null"`
	EventType enums.OutboxEventType     `gorm:"column:event_type;type:event_type_enum;not null"`
	Subject   string                    `gorm:"column:subject;not null"`
	Body      string                    `gorm:"column:body;not null"`
	Status    enums.NotificationStatus  `gorm:"column:status;type:notification_status;not null;default:'pending'"`
	Error     *string                   `gorm:"column:error"`
	SentAt    *time.Time                `gorm:"column:sent_at"`
	CreatedAt time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
