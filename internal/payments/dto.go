package payments

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laundryease/backend/pkg/db/models"
	"github.com/laundryease/backend/pkg/enums"
)

// Actor identifies the caller of a payment operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

func (a Actor) isAdmin() bool {
	return a.Role == enums.RoleAdmin
}

// InitiateInput starts a payment attempt for an order.
type InitiateInput struct {
	OrderID       uuid.UUID `json:"orderId" validate:"required"`
	PaymentMethod string    `json:"paymentMethod" validate:"required"`
}

// InitiateResult carries the created payment plus, for gateway payments,
// the hosted checkout URL the client must redirect to.
type InitiateResult struct {
	Payment    *models.Payment `json:"payment"`
	Pidx       string          `json:"pidx,omitempty"`
	PaymentURL string          `json:"paymentUrl,omitempty"`
}

// VerifyInput reconciles a gateway payment after the client returns.
type VerifyInput struct {
	Pidx    string    `json:"pidx" validate:"required"`
	OrderID uuid.UUID `json:"orderId" validate:"required"`
}

// CallbackInput mirrors the query parameters of the gateway redirect.
type CallbackInput struct {
	Pidx            string
	PurchaseOrderID string
	Status          string
	TransactionID   string
}

// CallbackResult reports what the callback reconciliation concluded.
type CallbackResult struct {
	Status  string `json:"status"`
	OrderID string `json:"orderId,omitempty"`
}

// HistoryFilter narrows a payment listing. UserID is honored for admins only.
type HistoryFilter struct {
	UserID *uuid.UUID
}

// MonthlyRevenue is one month's completed payment volume.
type MonthlyRevenue struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// Stats is the admin payments rollup.
type Stats struct {
	TotalPayments  int64                         `json:"totalPayments"`
	TotalCollected decimal.Decimal               `json:"totalCollected"`
	StatusCounts   map[enums.PaymentStatus]int64 `json:"statusCounts"`
	MethodCounts   map[enums.PaymentMethod]int64 `json:"methodCounts"`
	Monthly        []MonthlyRevenue              `json:"monthly"`
	RecentPayments []models.Payment              `json:"recentPayments"`
}
