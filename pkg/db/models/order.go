package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laundryease/backend/pkg/enums"
)

// Order is a customer's laundry order with its fulfilment rollup.
type Order struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status          enums.OrderStatus   `gorm:"type:text;not null;default:'pending'"`
	TotalAmount     decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'cash_on_delivery'"`
	PickupAddress   string              `gorm:"column:pickup_address;type:text;not null"`
	PickupLongitude float64             `gorm:"column:pickup_longitude;not null;default:0"`
	PickupLatitude  float64             `gorm:"column:pickup_latitude;not null;default:0"`
	PickupDate      time.Time           `gorm:"column:pickup_date;not null"`
	DeliveryDate    *time.Time          `gorm:"column:delivery_date"`
	SpecialNotes    *string             `gorm:"column:special_notes;type:text"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusEvents    []OrderStatusEvent  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	User            *User               `gorm:"foreignKey:UserID"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is one garment line captured at order time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ServiceID uuid.UUID       `gorm:"column:service_id;type:uuid;not null"`
	ItemName  string          `gorm:"column:item_name;type:text;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// OrderStatusEvent is an append-only record of a status change.
type OrderStatusEvent struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"type:text;not null"`
	Note      string            `gorm:"type:text;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
