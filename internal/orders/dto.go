package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laundryease/backend/pkg/db/models"
	"github.com/laundryease/backend/pkg/enums"
)

// Actor identifies the caller of an order operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

func (a Actor) isAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// OrderItemInput is one garment line in a create payload. Unit prices are
// taken from the client's price list snapshot, not re-read from the catalog.
type OrderItemInput struct {
	ServiceID uuid.UUID       `json:"serviceId" validate:"required"`
	ItemName  string          `json:"itemName" validate:"required,min=1,max=100"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"required"`
}

// CreateOrderInput holds the fields for a new order.
type CreateOrderInput struct {
	Items         []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	PickupAddress string           `json:"pickupAddress" validate:"required,max=255"`
	PickupDate    time.Time        `json:"pickupDate" validate:"required"`
	SpecialNotes  *string          `json:"specialNotes" validate:"omitempty,max=500"`
}

// UpdateStatusInput carries a target status and an optional note.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"omitempty,max=500"`
}

// HistoryFilter narrows a customer's order listing.
type HistoryFilter struct {
	Status string
}

// AdminListFilter narrows the admin order listing.
type AdminListFilter struct {
	Status string
	UserID *uuid.UUID
}

// RevenueStats is the delivered-and-paid revenue rollup.
type RevenueStats struct {
	AllTime decimal.Decimal `json:"allTime"`
	Today   decimal.Decimal `json:"today"`
	Month   decimal.Decimal `json:"month"`
}

// DashboardStats is the admin dashboard rollup, recomputed per call.
type DashboardStats struct {
	TotalOrders  int64                       `json:"totalOrders"`
	TodayOrders  int64                       `json:"todayOrders"`
	MonthOrders  int64                       `json:"monthOrders"`
	StatusCounts map[enums.OrderStatus]int64 `json:"statusCounts"`
	Revenue      RevenueStats                `json:"revenue"`
	RecentOrders []models.Order              `json:"recentOrders"`
}
