package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/laundryease/backend/internal/notifications"
	"github.com/laundryease/backend/pkg/db/models"
	"github.com/laundryease/backend/pkg/enums"
	pkgerrors "github.com/laundryease/backend/pkg/errors"
	"github.com/laundryease/backend/pkg/khalti"
	"github.com/laundryease/backend/pkg/logger"
	"github.com/laundryease/backend/pkg/pagination"
)

// Gateway is the slice of the Khalti client the payment flow needs.
type Gateway interface {
	Initiate(ctx context.Context, req khalti.PaymentRequest) (*khalti.InitiateResponse, error)
	Lookup(ctx context.Context, pidx string) (*khalti.LookupResponse, error)
}

// Config carries the URLs embedded into gateway payloads.
type Config struct {
	FrontendURL string
	WebsiteURL  string
	MerchantTag string
}

func (c Config) returnURL() string {
	return strings.TrimRight(c.FrontendURL, "/") + "/payment/callback"
}

// Service reconciles gateway payments into order and payment records.
type Service interface {
	Initiate(ctx context.Context, actor Actor, input InitiateInput) (*InitiateResult, error)
	Verify(ctx context.Context, actor Actor, input VerifyInput) (*models.Payment, error)
	Callback(ctx context.Context, input CallbackInput) (*CallbackResult, error)
	History(ctx context.Context, actor Actor, filter HistoryFilter, params pagination.Params) ([]models.Payment, int64, error)
	AdminStats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo     Repository
	gateway  Gateway
	notifier notifications.Service
	cfg      Config
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires payment dependencies. The gateway is optional; without
// one only cash-on-delivery payments can be initiated.
func NewService(repo Repository, gateway Gateway, notifier notifications.Service, cfg Config, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments repository required")
	}
	return &service{
		repo:     repo,
		gateway:  gateway,
		notifier: notifier,
		cfg:      cfg,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Initiate(ctx context.Context, actor Actor, input InitiateInput) (*InitiateResult, error) {
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]any{"paymentMethod": input.PaymentMethod})
	}

	order, err := s.getOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID && !actor.isAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not your order")
	}
	if order.PaymentStatus == enums.PaymentCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already paid")
	}
	if _, err := s.repo.FindProcessingByOrder(ctx, order.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a payment for this order is already in progress")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending payments")
	}

	payment := &models.Payment{
		OrderID: order.ID,
		UserID:  order.UserID,
		Amount:  order.TotalAmount,
		Method:  method,
	}

	result := &InitiateResult{Payment: payment}
	switch method {
	case enums.MethodKhalti:
		if s.gateway == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway not configured")
		}
		resp, err := s.gateway.Initiate(ctx, s.buildGatewayRequest(order))
		if err != nil {
			return nil, err
		}
		pidx := resp.Pidx
		payment.Status = enums.PaymentProcessing
		payment.Pidx = &pidx
		result.Pidx = resp.Pidx
		result.PaymentURL = resp.PaymentURL
	case enums.MethodCashOnDelivery:
		payment.Status = enums.PaymentPending
	}

	if err := s.repo.CreateWithOrderUpdate(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"method":   string(method),
		}), "payment.initiated")
	}
	return result, nil
}

func (s *service) Verify(ctx context.Context, actor Actor, input VerifyInput) (*models.Payment, error) {
	payment, err := s.findByPidx(ctx, input.Pidx)
	if err != nil {
		return nil, err
	}
	if input.OrderID != uuid.Nil && payment.OrderID != input.OrderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order does not match this payment")
	}
	if payment.UserID != actor.UserID && !actor.isAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not your payment")
	}

	// Re-verifying a settled payment is a no-op so gateway redirects and
	// client retries cannot duplicate history entries or notifications.
	if payment.Status == enums.PaymentCompleted {
		return payment, nil
	}

	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway not configured")
	}
	lookup, err := s.gateway.Lookup(ctx, input.Pidx)
	if err != nil {
		return nil, err
	}

	if !lookup.Completed() {
		if err := s.repo.Fail(ctx, payment.ID, payment.OrderID, lookup.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record failed payment")
		}
		return nil, pkgerrors.New(pkgerrors.CodeGateway, fmt.Sprintf("payment not completed: %s", lookup.Status)).
			WithDetails(map[string]any{"status": lookup.Status})
	}

	if err := s.settle(ctx, payment, lookup.TransactionID); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) Callback(ctx context.Context, input CallbackInput) (*CallbackResult, error) {
	if strings.TrimSpace(input.Pidx) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pidx is required")
	}
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway not configured")
	}

	// The redirect's status parameter is advisory; the lookup endpoint is
	// the authority on settlement.
	lookup, err := s.gateway.Lookup(ctx, input.Pidx)
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.FindByPidx(ctx, input.Pidx)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find payment")
	}

	orderID := uuid.Nil
	if payment != nil {
		orderID = payment.OrderID
	} else if parsed, parseErr := uuid.Parse(strings.TrimSpace(input.PurchaseOrderID)); parseErr == nil {
		orderID = parsed
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot resolve the order for this callback")
	}

	result := &CallbackResult{Status: lookup.Status, OrderID: orderID.String()}

	if !lookup.Completed() {
		if payment != nil && payment.Status == enums.PaymentProcessing {
			if err := s.repo.Fail(ctx, payment.ID, orderID, lookup.Status); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record failed payment")
			}
		}
		return result, nil
	}

	if payment != nil {
		if payment.Status == enums.PaymentCompleted {
			return result, nil
		}
		if err := s.settle(ctx, payment, lookup.TransactionID); err != nil {
			return nil, err
		}
		return result, nil
	}

	// No payment row survived for this pidx; the order rollup is still
	// reconciled so the customer is not left unpaid-but-charged.
	if err := s.repo.Complete(ctx, completionParams{
		OrderID:       orderID,
		TransactionID: lookup.TransactionID,
		Note:          "Order confirmed after payment",
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reconcile order payment")
	}
	s.notifyPaid(ctx, orderID)
	return result, nil
}

func (s *service) History(ctx context.Context, actor Actor, filter HistoryFilter, params pagination.Params) ([]models.Payment, int64, error) {
	userID := &actor.UserID
	if actor.isAdmin() {
		userID = filter.UserID
	}

	n := params.Normalize()
	rows, total, err := s.repo.List(ctx, listPaymentsParams{
		UserID: userID,
		Offset: n.Offset(),
		Limit:  n.Limit,
	})
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return rows, total, nil
}

func (s *service) AdminStats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute payment stats")
	}
	return stats, nil
}

// settle marks the payment and its order as completed and raises the
// payment notification.
func (s *service) settle(ctx context.Context, payment *models.Payment, transactionID string) error {
	if err := s.repo.Complete(ctx, completionParams{
		PaymentID:     &payment.ID,
		OrderID:       payment.OrderID,
		TransactionID: transactionID,
		Note:          "Order confirmed after payment",
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record completed payment")
	}

	payment.Status = enums.PaymentCompleted
	if transactionID != "" {
		payment.TransactionID = &transactionID
	}

	s.notifyPaid(ctx, payment.OrderID)
	return nil
}

func (s *service) notifyPaid(ctx context.Context, orderID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "payment.notify_lookup_failed", err)
		}
		return
	}
	email := ""
	if order.User != nil {
		email = order.User.Email
	}
	id := order.ID
	s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  order.UserID,
		OrderID: &id,
		Type:    enums.NotifPayment,
		Title:   "Payment received",
		Message: "Your payment was successful. Thank you!",
		Email:   email,
	})
}

func (s *service) buildGatewayRequest(order *models.Order) khalti.PaymentRequest {
	req := khalti.PaymentRequest{
		ReturnURL:         s.cfg.returnURL(),
		WebsiteURL:        s.cfg.WebsiteURL,
		Amount:            khalti.ToPaisa(order.TotalAmount),
		PurchaseOrderID:   order.ID.String(),
		PurchaseOrderName: fmt.Sprintf("%s laundry order", s.cfg.MerchantTag),
	}
	if order.User != nil {
		req.CustomerInfo = khalti.CustomerInfo{
			Name:  order.User.Name,
			Email: order.User.Email,
			Phone: order.User.Phone,
		}
	}
	for _, item := range order.Items {
		req.ProductDetails = append(req.ProductDetails, khalti.ProductDetail{
			Identity:   item.ID.String(),
			Name:       item.ItemName,
			TotalPrice: khalti.ToPaisa(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))),
			Quantity:   item.Quantity,
			UnitPrice:  khalti.ToPaisa(item.UnitPrice),
		})
	}
	return req
}

func (s *service) getOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}
	return order, nil
}

func (s *service) findByPidx(ctx context.Context, pidx string) (*models.Payment, error) {
	if strings.TrimSpace(pidx) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pidx is required")
	}
	payment, err := s.repo.FindByPidx(ctx, pidx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find payment")
	}
	return payment, nil
}
