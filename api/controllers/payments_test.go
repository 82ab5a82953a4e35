package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/laundryease/backend/internal/payments"
	"github.com/laundryease/backend/pkg/db/models"
	pkgerrors "github.com/laundryease/backend/pkg/errors"
	"github.com/laundryease/backend/pkg/pagination"
)

type testPaymentsService struct {
	initiateFn func(ctx context.Context, actor payments.Actor, input payments.InitiateInput) (*payments.InitiateResult, error)
	verifyFn   func(ctx context.Context, actor payments.Actor, input payments.VerifyInput) (*models.Payment, error)
	callbackFn func(ctx context.Context, input payments.CallbackInput) (*payments.CallbackResult, error)
	historyFn  func(ctx context.Context, actor payments.Actor, filter payments.HistoryFilter, params pagination.Params) ([]models.Payment, int64, error)
	statsFn    func(ctx context.Context) (*payments.Stats, error)
}

func (s *testPaymentsService) Initiate(ctx context.Context, actor payments.Actor, input payments.InitiateInput) (*payments.InitiateResult, error) {
	if s.initiateFn != nil {
		return s.initiateFn(ctx, actor, input)
	}
	return nil, nil
}

func (s *testPaymentsService) Verify(ctx context.Context, actor payments.Actor, input payments.VerifyInput) (*models.Payment, error) {
	if s.verifyFn != nil {
		return s.verifyFn(ctx, actor, input)
	}
	return nil, nil
}

func (s *testPaymentsService) Callback(ctx context.Context, input payments.CallbackInput) (*payments.CallbackResult, error) {
	if s.callbackFn != nil {
		return s.callbackFn(ctx, input)
	}
	return nil, nil
}

func (s *testPaymentsService) History(ctx context.Context, actor payments.Actor, filter payments.HistoryFilter, params pagination.Params) ([]models.Payment, int64, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx, actor, filter, params)
	}
	return nil, 0, nil
}

func (s *testPaymentsService) AdminStats(ctx context.Context) (*payments.Stats, error) {
	if s.statsFn != nil {
		return s.statsFn(ctx)
	}
	return nil, nil
}

func TestInitiatePaymentReturnsCheckoutURL(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	svc := &testPaymentsService{
		initiateFn: func(ctx context.Context, actor payments.Actor, input payments.InitiateInput) (*payments.InitiateResult, error) {
			if actor.UserID != userID {
				t.Fatalf("unexpected actor %s", actor.UserID)
			}
			if input.OrderID != orderID || input.PaymentMethod != "khalti" {
				t.Fatalf("unexpected input %+v", input)
			}
			return &payments.InitiateResult{Pidx: "pidx-123", PaymentURL: "https://khalti.example/checkout"}, nil
		},
	}

	body := `{"orderId":"` + orderID.String() + `","paymentMethod":"khalti"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/initiate", strings.NewReader(body))
	req = asUser(req, userID)
	resp := httptest.NewRecorder()
	InitiatePayment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data payments.InitiateResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.PaymentURL != "https://khalti.example/checkout" {
		t.Fatalf("unexpected payment url %q", envelope.Data.PaymentURL)
	}
}

func TestVerifyPaymentMapsGatewayFailure(t *testing.T) {
	svc := &testPaymentsService{
		verifyFn: func(ctx context.Context, actor payments.Actor, input payments.VerifyInput) (*models.Payment, error) {
			return nil, pkgerrors.New(pkgerrors.CodeGateway, "payment not completed: Expired")
		},
	}

	body := `{"pidx":"pidx-123","orderId":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify", strings.NewReader(body))
	req = asUser(req, uuid.New())
	resp := httptest.NewRecorder()
	VerifyPayment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPaymentCallbackParsesQuery(t *testing.T) {
	orderID := uuid.New()
	svc := &testPaymentsService{
		callbackFn: func(ctx context.Context, input payments.CallbackInput) (*payments.CallbackResult, error) {
			if input.Pidx != "pidx-123" {
				t.Fatalf("unexpected pidx %q", input.Pidx)
			}
			if input.PurchaseOrderID != orderID.String() {
				t.Fatalf("unexpected purchase order %q", input.PurchaseOrderID)
			}
			if input.Status != "Completed" || input.TransactionID != "txn-9" {
				t.Fatalf("unexpected query passthrough %+v", input)
			}
			return &payments.CallbackResult{Status: "completed", OrderID: orderID.String()}, nil
		},
	}

	target := "/api/v1/payments/khalti/callback?pidx=pidx-123&purchase_order_id=" + orderID.String() +
		"&status=Completed&transaction_id=txn-9"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp := httptest.NewRecorder()
	PaymentCallback(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data payments.CallbackResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Status != "completed" {
		t.Fatalf("unexpected callback status %q", envelope.Data.Status)
	}
}

func TestPaymentHistoryForwardsAdminScope(t *testing.T) {
	adminID := uuid.New()
	customerID := uuid.New()
	svc := &testPaymentsService{
		historyFn: func(ctx context.Context, actor payments.Actor, filter payments.HistoryFilter, params pagination.Params) ([]models.Payment, int64, error) {
			if actor.UserID != adminID {
				t.Fatalf("unexpected actor %s", actor.UserID)
			}
			if filter.UserID == nil || *filter.UserID != customerID {
				t.Fatalf("unexpected filter %+v", filter.UserID)
			}
			return nil, 0, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/history?userId="+customerID.String(), nil)
	req = asAdmin(req, adminID)
	resp := httptest.NewRecorder()
	PaymentHistory(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPaymentStats(t *testing.T) {
	svc := &testPaymentsService{
		statsFn: func(ctx context.Context) (*payments.Stats, error) {
			return &payments.Stats{TotalPayments: 7}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/stats", nil)
	req = asAdmin(req, uuid.New())
	resp := httptest.NewRecorder()
	PaymentStats(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data payments.Stats `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.TotalPayments != 7 {
		t.Fatalf("expected 7 payments got %d", envelope.Data.TotalPayments)
	}
}
