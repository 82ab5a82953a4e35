package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laundryease/backend/pkg/enums"
)

// ServiceItem is a priced garment type offered under a service.
type ServiceItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Service is a catalog entry customers order against.
type Service struct {
	ID                 uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string                `gorm:"type:text;not null"`
	Description        string                `gorm:"type:text;not null"`
	Category           enums.ServiceCategory `gorm:"type:text;not null"`
	BasePrice          decimal.Decimal       `gorm:"column:base_price;type:numeric(12,2);not null"`
	EstimatedTimeHours int                   `gorm:"column:estimated_time_hours;not null"`
	ImageURL           *string               `gorm:"column:image_url;type:text"`
	Items              []ServiceItem         `gorm:"column:items;type:jsonb;serializer:json"`
	// No gorm-side default: with one, inserts omit a zero-value false and
	// the column falls back to the migration's TRUE. Create always sets it.
	IsActive  bool      `gorm:"column:is_active;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
