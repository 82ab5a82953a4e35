package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laundryease/backend/pkg/enums"
)

// Payment is one gateway attempt against an order.
type Payment struct {
	ID            uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Method        enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Status        enums.PaymentStatus `gorm:"type:text;not null;default:'pending'"`
	Pidx          *string             `gorm:"column:pidx;type:text;uniqueIndex:payments_pidx_key"`
	TransactionID *string             `gorm:"column:transaction_id;type:text"`
	FailureReason *string             `gorm:"column:failure_reason;type:text"`
	Order         *Order              `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
