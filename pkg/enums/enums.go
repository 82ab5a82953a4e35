package enums

import "fmt"

// Role is the access level carried in JWT claims.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func ParseRole(value string) (Role, error) {
	r := Role(value)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role %q", value)
	}
	return r, nil
}

// OrderStatus tracks an order through its fulfilment lifecycle.
type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderWashing        OrderStatus = "washing"
	OrderDrying         OrderStatus = "drying"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderWashing, OrderDrying,
		OrderOutForDelivery, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	s := OrderStatus(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid order status %q", value)
	}
	return s, nil
}

// OrderStatuses lists every lifecycle status in display order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderPending, OrderConfirmed, OrderWashing, OrderDrying,
		OrderOutForDelivery, OrderDelivered, OrderCancelled,
	}
}

// PaymentStatus is shared by payments and the order's payment rollup.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	s := PaymentStatus(value)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid payment status %q", value)
	}
	return s, nil
}

type PaymentMethod string

const (
	MethodKhalti         PaymentMethod = "khalti"
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodKhalti, MethodCashOnDelivery:
		return true
	}
	return false
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	m := PaymentMethod(value)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid payment method %q", value)
	}
	return m, nil
}

// NotificationType categorizes in-app notifications for client rendering.
type NotificationType string

const (
	NotifOrderConfirmed NotificationType = "order_confirmed"
	NotifWashing        NotificationType = "washing"
	NotifDrying         NotificationType = "drying"
	NotifOutForDelivery NotificationType = "out_for_delivery"
	NotifDelivered      NotificationType = "delivered"
	NotifPayment        NotificationType = "payment"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotifOrderConfirmed, NotifWashing, NotifDrying,
		NotifOutForDelivery, NotifDelivered, NotifPayment:
		return true
	}
	return false
}

func ParseNotificationType(value string) (NotificationType, error) {
	t := NotificationType(value)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid notification type %q", value)
	}
	return t, nil
}

type ServiceCategory string

const (
	CategoryWashing     ServiceCategory = "washing"
	CategoryDryCleaning ServiceCategory = "dry_cleaning"
	CategoryIroning     ServiceCategory = "ironing"
	CategorySpecialized ServiceCategory = "specialized"
)

func (c ServiceCategory) IsValid() bool {
	switch c {
	case CategoryWashing, CategoryDryCleaning, CategoryIroning, CategorySpecialized:
		return true
	}
	return false
}

func ParseServiceCategory(value string) (ServiceCategory, error) {
	c := ServiceCategory(value)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid service category %q", value)
	}
	return c, nil
}

// NotificationTypeForStatus maps a fulfilment status to the notification
// type raised when an order enters it. Cancellations surface through the
// payment channel so refund messaging lands in one place.
func NotificationTypeForStatus(status OrderStatus) (NotificationType, bool) {
	switch status {
	case OrderConfirmed:
		return NotifOrderConfirmed, true
	case OrderWashing:
		return NotifWashing, true
	case OrderDrying:
		return NotifDrying, true
	case OrderOutForDelivery:
		return NotifOutForDelivery, true
	case OrderDelivered:
		return NotifDelivered, true
	case OrderCancelled:
		return NotifPayment, true
	}
	return "", false
}
