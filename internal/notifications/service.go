package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/laundryease/backend/pkg/db/models"
	"github.com/laundryease/backend/pkg/enums"
	pkgerrors "github.com/laundryease/backend/pkg/errors"
	"github.com/laundryease/backend/pkg/logger"
	"github.com/laundryease/backend/pkg/mail"
	"github.com/laundryease/backend/pkg/pagination"
)

// Service defines notification list/read operations plus the dispatch
// surface the order and payment flows use.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, params pagination.Params, unreadOnly bool) ([]models.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Notify(ctx context.Context, input NotifyInput)
}

// NotifyInput describes one notification to record and optionally email.
type NotifyInput struct {
	UserID  uuid.UUID
	OrderID *uuid.UUID
	Type    enums.NotificationType
	Title   string
	Message string
	Email   string
}

type service struct {
	repo   Repository
	sender mail.Sender
	logg   *logger.Logger
}

// NewService wires notifications dependencies. The mail sender is optional;
// without one notifications stay in-app only.
func NewService(repo Repository, sender mail.Sender, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, sender: sender, logg: logg}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params, unreadOnly bool) ([]models.Notification, int64, error) {
	if userID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	n := params.Normalize()
	rows, total, err := s.repo.List(ctx, listNotificationsParams{
		UserID:     userID,
		Offset:     n.Offset(),
		Limit:      n.Limit,
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return rows, total, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

// Notify records an in-app notification and fires the matching email.
// Failures are logged, never surfaced: notifications must not fail the
// order or payment mutation that triggered them.
func (s *service) Notify(ctx context.Context, input NotifyInput) {
	if input.UserID == uuid.Nil || !input.Type.IsValid() {
		return
	}

	notification := &models.Notification{
		UserID:  input.UserID,
		OrderID: input.OrderID,
		Type:    input.Type,
		Title:   input.Title,
		Message: input.Message,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "notification.create_failed", err)
		}
		return
	}

	if s.sender == nil || input.Email == "" {
		return
	}
	msg := mail.Message{
		To:      input.Email,
		Subject: subjectForType(input.Type),
		HTML:    renderEmailBody(input.Title, input.Message),
	}
	if err := s.sender.Send(ctx, msg); err != nil && s.logg != nil {
		s.logg.Error(ctx, "notification.email_failed", err)
	}
}

func subjectForType(t enums.NotificationType) string {
	switch t {
	case enums.NotifOrderConfirmed:
		return "Your laundry order is confirmed"
	case enums.NotifWashing:
		return "Your laundry is being washed"
	case enums.NotifDrying:
		return "Your laundry is drying"
	case enums.NotifOutForDelivery:
		return "Your laundry is out for delivery"
	case enums.NotifDelivered:
		return "Your laundry has been delivered"
	case enums.NotifPayment:
		return "Payment update for your laundry order"
	}
	return "LaundryEase update"
}

func renderEmailBody(title, message string) string {
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:600px;margin:0 auto">
  <h2 style="color:#2b6cb0">%s</h2>
  <p>%s</p>
  <p style="color:#718096;font-size:12px">LaundryEase &middot; this is an automated message, please do not reply.</p>
</div>`, title, message)
}
