package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/laundryease/backend/internal/catalog"
	"github.com/laundryease/backend/internal/notifications"
	"github.com/laundryease/backend/internal/orders"
	"github.com/laundryease/backend/internal/payments"
	"github.com/laundryease/backend/internal/users"
	pkgAuth "github.com/laundryease/backend/pkg/auth"
	"github.com/laundryease/backend/pkg/config"
	"github.com/laundryease/backend/pkg/db/models"
	"github.com/laundryease/backend/pkg/enums"
	"github.com/laundryease/backend/pkg/logger"
	"github.com/laundryease/backend/pkg/pagination"
	"github.com/laundryease/backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubUsersService struct{}

func (stubUsersService) Signup(context.Context, users.SignupInput) (*users.AuthResult, error) {
	return &users.AuthResult{Token: "token", User: &users.UserDTO{ID: uuid.New()}}, nil
}

func (stubUsersService) Login(context.Context, users.LoginInput) (*users.AuthResult, error) {
	return &users.AuthResult{Token: "token", User: &users.UserDTO{ID: uuid.New()}}, nil
}

func (stubUsersService) Profile(context.Context, uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: uuid.New()}, nil
}

func (stubUsersService) UpdateProfile(context.Context, uuid.UUID, users.UpdateProfileInput) (*users.UserDTO, error) {
	return &users.UserDTO{ID: uuid.New()}, nil
}

func (stubUsersService) ChangePassword(context.Context, uuid.UUID, users.ChangePasswordInput) error {
	return nil
}

func (stubUsersService) List(context.Context, pagination.Params) ([]*users.UserDTO, int64, error) {
	return nil, 0, nil
}

type stubCatalogService struct{}

func (stubCatalogService) List(context.Context, catalog.ListFilter, pagination.Params) ([]models.Service, int64, error) {
	return nil, 0, nil
}

func (stubCatalogService) Get(context.Context, uuid.UUID) (*models.Service, error) {
	return &models.Service{ID: uuid.New()}, nil
}

func (stubCatalogService) Items(context.Context, uuid.UUID) ([]models.ServiceItem, error) {
	return nil, nil
}

func (stubCatalogService) Create(context.Context, catalog.CreateServiceInput) (*models.Service, error) {
	return &models.Service{ID: uuid.New()}, nil
}

func (stubCatalogService) Update(context.Context, uuid.UUID, catalog.UpdateServiceInput) (*models.Service, error) {
	return &models.Service{ID: uuid.New()}, nil
}

func (stubCatalogService) Delete(context.Context, uuid.UUID) error {
	return nil
}

type stubOrdersService struct{}

func (stubOrdersService) Create(context.Context, uuid.UUID, orders.CreateOrderInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func (stubOrdersService) Get(context.Context, orders.Actor, uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func (stubOrdersService) History(context.Context, uuid.UUID, orders.HistoryFilter, pagination.Params) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (stubOrdersService) AdminList(context.Context, orders.AdminListFilter, pagination.Params) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (stubOrdersService) UpdateStatus(context.Context, orders.Actor, uuid.UUID, orders.UpdateStatusInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func (stubOrdersService) Dashboard(context.Context) (*orders.DashboardStats, error) {
	return &orders.DashboardStats{}, nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) Initiate(context.Context, payments.Actor, payments.InitiateInput) (*payments.InitiateResult, error) {
	return &payments.InitiateResult{}, nil
}

func (stubPaymentsService) Verify(context.Context, payments.Actor, payments.VerifyInput) (*models.Payment, error) {
	return &models.Payment{ID: uuid.New()}, nil
}

func (stubPaymentsService) Callback(context.Context, payments.CallbackInput) (*payments.CallbackResult, error) {
	return &payments.CallbackResult{Status: "completed"}, nil
}

func (stubPaymentsService) History(context.Context, payments.Actor, payments.HistoryFilter, pagination.Params) ([]models.Payment, int64, error) {
	return nil, 0, nil
}

func (stubPaymentsService) AdminStats(context.Context) (*payments.Stats, error) {
	return &payments.Stats{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(context.Context, uuid.UUID, pagination.Params, bool) ([]models.Notification, int64, error) {
	return nil, 0, nil
}

func (stubNotificationsService) UnreadCount(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) MarkRead(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) Notify(context.Context, notifications.NotifyInput) {}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0", FrontendURL: "http://localhost:3000"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		nil, // metrics
		stubUsersService{},
		stubCatalogService{},
		stubOrdersService{},
		stubPaymentsService{},
		stubNotificationsService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCatalogReadsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, target := range []string{
		"/api/v1/services",
		"/api/v1/services/" + uuid.NewString(),
		"/api/v1/services/" + uuid.NewString() + "/items",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", target, resp.Code)
		}
	}
}

func TestCatalogWritesRequireAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	anonymous := httptest.NewRequest(http.MethodDelete, "/api/v1/services/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anonymous)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	customer := httptest.NewRequest(http.MethodDelete, "/api/v1/services/"+uuid.NewString(), nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleUser))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodDelete, "/api/v1/services/"+uuid.NewString(), nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestOrderRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/history", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOrderStatusUpdateRequiresAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/orders/" + uuid.NewString() + "/status"

	customer := httptest.NewRequest(http.MethodPut, target, strings.NewReader(`{"status":"washing"}`))
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPut, target, strings.NewReader(`{"status":"washing"}`))
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestAdminListingsRequireAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	for _, target := range []string{
		"/api/v1/orders/admin",
		"/api/v1/orders/dashboard-stats",
		"/api/v1/payments/stats",
		"/api/v1/users",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleUser))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for %s got %d", target, resp.Code)
		}
	}
}

func TestPaymentCallbackIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/khalti/callback?pidx=pidx-123", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestSignupValidatesBody(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(`{"email":"bad"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestNotificationRoutesRequireAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/unread-count", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleUser))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with token got %d", resp.Code)
	}
}
