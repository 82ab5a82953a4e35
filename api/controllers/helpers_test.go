package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/laundryease/backend/api/middleware"
	"github.com/laundryease/backend/internal/notifications"
	"github.com/laundryease/backend/pkg/db/models"
	"github.com/laundryease/backend/pkg/logger"
	"github.com/laundryease/backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func asUser(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, "user")
	return req.WithContext(ctx)
}

func asAdmin(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, "admin")
	return req.WithContext(ctx)
}

// stubNotifications satisfies notifications.Service for controllers that
// only consume listing and unread counts.
type stubNotifications struct {
	listed         []models.Notification
	listTotal      int64
	listErr        error
	unreadCount    int64
	unreadCountErr error
	markReadErr    error
	markedAll      int64
	notified       []notifications.NotifyInput
}

func (s *stubNotifications) List(_ context.Context, _ uuid.UUID, _ pagination.Params, _ bool) ([]models.Notification, int64, error) {
	return s.listed, s.listTotal, s.listErr
}

func (s *stubNotifications) UnreadCount(context.Context, uuid.UUID) (int64, error) {
	return s.unreadCount, s.unreadCountErr
}

func (s *stubNotifications) MarkRead(context.Context, uuid.UUID, uuid.UUID) error {
	return s.markReadErr
}

func (s *stubNotifications) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return s.markedAll, nil
}

func (s *stubNotifications) Notify(_ context.Context, input notifications.NotifyInput) {
	s.notified = append(s.notified, input)
}
