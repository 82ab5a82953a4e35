package khalti

import (
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/laundryease/backend/pkg/errors"
)

// PaymentRequest is the payload sent to the ePayment initiate API.
// Amounts are in paisa.
type PaymentRequest struct {
	ReturnURL         string           `json:"return_url"`
	WebsiteURL        string           `json:"website_url"`
	Amount            int64            `json:"amount"`
	PurchaseOrderID   string           `json:"purchase_order_id"`
	PurchaseOrderName string           `json:"purchase_order_name"`
	CustomerInfo      CustomerInfo     `json:"customer_info"`
	AmountBreakdown   []AmountLine     `json:"amount_breakdown,omitempty"`
	ProductDetails    []ProductDetail  `json:"product_details,omitempty"`
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type AmountLine struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

type ProductDetail struct {
	Identity   string `json:"identity"`
	Name       string `json:"name"`
	TotalPrice int64  `json:"total_price"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}

// ToPaisa converts an NPR amount to the gateway's integer paisa unit.
func ToPaisa(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromPaisa converts the gateway's paisa unit back to NPR.
func FromPaisa(paisa int64) decimal.Decimal {
	return decimal.NewFromInt(paisa).Div(decimal.NewFromInt(100))
}

func (r PaymentRequest) validate() error {
	if strings.TrimSpace(r.ReturnURL) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "return_url is required")
	}
	if strings.TrimSpace(r.WebsiteURL) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "website_url is required")
	}
	if r.Amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if strings.TrimSpace(r.PurchaseOrderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase_order_id is required")
	}
	if strings.TrimSpace(r.PurchaseOrderName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase_order_name is required")
	}
	return nil
}
