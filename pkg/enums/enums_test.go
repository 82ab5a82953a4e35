package enums

import "testing"

func TestOrderStatusIsValid(t *testing.T) {
	for _, s := range OrderStatuses() {
		if !s.IsValid() {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if OrderStatus("shipped").IsValid() {
		t.Fatal("expected unknown status to be invalid")
	}
	if OrderStatus("").IsValid() {
		t.Fatal("expected empty status to be invalid")
	}
}

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus("out_for_delivery")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != OrderOutForDelivery {
		t.Fatalf("unexpected status %s", got)
	}
	if _, err := ParseOrderStatus("Pending"); err == nil {
		t.Fatal("expected case-sensitive parse to fail")
	}
}

func TestParsePaymentMethod(t *testing.T) {
	if _, err := ParsePaymentMethod("khalti"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParsePaymentMethod("esewa"); err == nil {
		t.Fatal("expected unsupported method to fail")
	}
}

func TestParseRole(t *testing.T) {
	if _, err := ParseRole("admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatal("expected unknown role to fail")
	}
}

func TestNotificationTypeForStatus(t *testing.T) {
	cases := map[OrderStatus]NotificationType{
		OrderConfirmed:      NotifOrderConfirmed,
		OrderWashing:        NotifWashing,
		OrderDrying:         NotifDrying,
		OrderOutForDelivery: NotifOutForDelivery,
		OrderDelivered:      NotifDelivered,
		OrderCancelled:      NotifPayment,
	}
	for status, want := range cases {
		got, ok := NotificationTypeForStatus(status)
		if !ok || got != want {
			t.Fatalf("NotificationTypeForStatus(%s) = %s/%v, want %s", status, got, ok, want)
		}
	}
	if _, ok := NotificationTypeForStatus(OrderPending); ok {
		t.Fatal("pending must not raise a notification")
	}
}

func TestParseServiceCategory(t *testing.T) {
	if _, err := ParseServiceCategory("dry_cleaning"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseServiceCategory("folding"); err == nil {
		t.Fatal("expected unknown category to fail")
	}
}
