package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/enums"
)

// OrderPayment tracks the manual settlement of one order: the chosen method,
// the customer-submitted receipt reference, and the admin review outcome.
type OrderPayment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Method        enums.PaymentMethod `gorm:"column:method;type:payment_method;not null"`
	Status        enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'"`
	ReceiptRef    *string             `gorm:"column:receipt_ref"`
	TransactionID *string             `gorm:"column:transaction_id"`
	Note          *string             `gorm:"column:note"`
	VerifiedAt    *time.Time          `gorm:"column:verified_at"`
	VerifiedBy    *uuid.UUID          `gorm:"column:verified_by;type:uuid"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
