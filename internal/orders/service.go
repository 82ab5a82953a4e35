package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/laundryease/backend/internal/notifications"
	"github.com/laundryease/backend/pkg/db"
	"github.com/laundryease/backend/pkg/db/models"
	"github.com/laundryease/backend/pkg/enums"
	pkgerrors "github.com/laundryease/backend/pkg/errors"
	"github.com/laundryease/backend/pkg/geocode"
	"github.com/laundryease/backend/pkg/logger"
	"github.com/laundryease/backend/pkg/pagination"
)

// Service manages the order lifecycle.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	History(ctx context.Context, userID uuid.UUID, filter HistoryFilter, params pagination.Params) ([]models.Order, int64, error)
	AdminList(ctx context.Context, filter AdminListFilter, params pagination.Params) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error)
	Dashboard(ctx context.Context) (*DashboardStats, error)
}

type service struct {
	repo     Repository
	users    UserLookup
	geocoder geocode.Geocoder
	notifier notifications.Service
	logg     *logger.Logger
	now      func() time.Time
}

// UserLookup resolves order owners for notification delivery.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// NewService wires order dependencies. Geocoder and notifier are optional;
// without them orders carry zero coordinates and raise no notifications.
func NewService(repo Repository, users UserLookup, geocoder geocode.Geocoder, notifier notifications.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user lookup required")
	}
	return &service{
		repo:     repo,
		users:    users,
		geocoder: geocoder,
		notifier: notifier,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive").
				WithDetails(map[string]any{"item": item.ItemName})
		}
		if item.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative").
				WithDetails(map[string]any{"item": item.ItemName})
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		items = append(items, models.OrderItem{
			ServiceID: item.ServiceID,
			ItemName:  item.ItemName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	coords := s.resolveCoordinates(ctx, input.PickupAddress)

	order := &models.Order{
		UserID:          userID,
		Status:          enums.OrderPending,
		TotalAmount:     total,
		PaymentStatus:   enums.PaymentPending,
		PaymentMethod:   enums.MethodCashOnDelivery,
		PickupAddress:   input.PickupAddress,
		PickupLongitude: coords.Longitude,
		PickupLatitude:  coords.Latitude,
		PickupDate:      input.PickupDate,
		SpecialNotes:    input.SpecialNotes,
		Items:           items,
		StatusEvents: []models.OrderStatusEvent{
			{Status: enums.OrderPending, Note: "Order placed"},
		},
	}
	if err := s.repo.Create(ctx, order); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown service reference")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.dispatch(ctx, order, enums.NotifOrderConfirmed, "Order placed",
		"Your order has been placed successfully. We will confirm it shortly.")
	return order, nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID && !actor.isAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not your order")
	}
	return order, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, filter HistoryFilter, params pagination.Params) ([]models.Order, int64, error) {
	if userID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	status, err := parseStatusFilter(filter.Status)
	if err != nil {
		return nil, 0, err
	}

	n := params.Normalize()
	rows, total, err := s.repo.List(ctx, listOrdersParams{
		UserID: &userID,
		Status: status,
		Offset: n.Offset(),
		Limit:  n.Limit,
	})
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, total, nil
}

func (s *service) AdminList(ctx context.Context, filter AdminListFilter, params pagination.Params) ([]models.Order, int64, error) {
	status, err := parseStatusFilter(filter.Status)
	if err != nil {
		return nil, 0, err
	}

	n := params.Normalize()
	rows, total, err := s.repo.List(ctx, listOrdersParams{
		UserID:   filter.UserID,
		Status:   status,
		Offset:   n.Offset(),
		Limit:    n.Limit,
		WithUser: true,
	})
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, total, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error) {
	if !actor.isAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	next, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": input.Status})
	}

	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	note := input.Note
	if note == "" {
		note = fmt.Sprintf("Status updated to %s", next)
	}

	params := statusUpdateParams{
		OrderID:  orderID,
		Expected: order.Status,
		Next:     next,
		Note:     note,
	}
	if next == enums.OrderDelivered && order.DeliveryDate == nil {
		deliveredAt := s.now()
		params.DeliveredAt = &deliveredAt
	}

	applied, err := s.repo.UpdateStatusCAS(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently, retry")
	}

	if notifType, ok := enums.NotificationTypeForStatus(next); ok {
		s.dispatch(ctx, order, notifType, "Order update", statusMessage(next))
	}

	return s.find(ctx, orderID)
}

func (s *service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats, err := s.repo.Stats(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute dashboard stats")
	}
	return stats, nil
}

func (s *service) find(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}
	return order, nil
}

func (s *service) resolveCoordinates(ctx context.Context, address string) geocode.Coordinates {
	if s.geocoder == nil || address == "" {
		return geocode.Coordinates{}
	}
	coords, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "geocode_error", err.Error()), "order.geocode_failed")
		}
		return geocode.Coordinates{}
	}
	return coords
}

func (s *service) dispatch(ctx context.Context, order *models.Order, notifType enums.NotificationType, title, message string) {
	if s.notifier == nil {
		return
	}
	email := ""
	if order.User != nil {
		email = order.User.Email
	} else if owner, err := s.users.FindByID(ctx, order.UserID); err == nil {
		email = owner.Email
	}

	orderID := order.ID
	s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  order.UserID,
		OrderID: &orderID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Email:   email,
	})
}

func parseStatusFilter(value string) (enums.OrderStatus, error) {
	if value == "" {
		return "", nil
	}
	status, err := enums.ParseOrderStatus(value)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": value})
	}
	return status, nil
}

func statusMessage(status enums.OrderStatus) string {
	switch status {
	case enums.OrderConfirmed:
		return "Your order has been confirmed and is scheduled for pickup."
	case enums.OrderWashing:
		return "Your laundry is being washed."
	case enums.OrderDrying:
		return "Your laundry is drying."
	case enums.OrderOutForDelivery:
		return "Your laundry is out for delivery."
	case enums.OrderDelivered:
		return "Your laundry has been delivered. Thank you!"
	case enums.OrderCancelled:
		return "Your order has been cancelled. Any completed payment will be refunded."
	}
	return fmt.Sprintf("Your order status is now %s.", status)
}
