package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/laundryease/backend/pkg/db/models"
	pkgerrors "github.com/laundryease/backend/pkg/errors"
)

func TestListNotifications(t *testing.T) {
	svc := &stubNotifications{
		listed:    []models.Notification{{ID: uuid.New()}, {ID: uuid.New()}},
		listTotal: 2,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?unreadOnly=true", nil)
	req = asUser(req, uuid.New())
	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Count int   `json:"count"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Count != 2 || envelope.Total != 2 {
		t.Fatalf("unexpected metadata %+v", envelope)
	}
}

func TestListNotificationsRequiresAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	resp := httptest.NewRecorder()
	ListNotifications(&stubNotifications{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestUnreadNotificationCount(t *testing.T) {
	svc := &stubNotifications{unreadCount: 4}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/unread-count", nil)
	req = asUser(req, uuid.New())
	resp := httptest.NewRecorder()
	UnreadNotificationCount(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["count"] != 4 {
		t.Fatalf("expected count=4 got %d", envelope.Data["count"])
	}
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	svc := &stubNotifications{markReadErr: pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/"+uuid.NewString()+"/read", nil)
	req = asUser(req, uuid.New())
	req = addRouteParam(req, "id", uuid.NewString())
	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestMarkNotificationReadInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/invalid/read", nil)
	req = asUser(req, uuid.New())
	req = addRouteParam(req, "id", "invalid")
	resp := httptest.NewRecorder()
	MarkNotificationRead(&stubNotifications{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	svc := &stubNotifications{markedAll: 6}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/mark-all-read", nil)
	req = asUser(req, uuid.New())
	resp := httptest.NewRecorder()
	MarkAllNotificationsRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["updated"] != 6 {
		t.Fatalf("expected updated=6 got %d", envelope.Data["updated"])
	}
}
