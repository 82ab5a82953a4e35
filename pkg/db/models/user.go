package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/laundryease/backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string     `gorm:"type:text;not null"`
	Email        string     `gorm:"type:text;not null;uniqueIndex:users_email_key"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Phone        string     `gorm:"column:phone;type:text;not null"`
	Address      *string    `gorm:"column:address;type:text"`
	Longitude    float64    `gorm:"column:longitude;not null;default:0"`
	Latitude     float64    `gorm:"column:latitude;not null;default:0"`
	Role         enums.Role `gorm:"type:text;not null;default:'user'"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
