package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/laundryease/backend/api/controllers"
	"github.com/laundryease/backend/api/middleware"
	"github.com/laundryease/backend/internal/catalog"
	"github.com/laundryease/backend/internal/notifications"
	"github.com/laundryease/backend/internal/orders"
	"github.com/laundryease/backend/internal/payments"
	"github.com/laundryease/backend/internal/users"
	"github.com/laundryease/backend/pkg/config"
	"github.com/laundryease/backend/pkg/db"
	"github.com/laundryease/backend/pkg/logger"
	"github.com/laundryease/backend/pkg/metrics"
	"github.com/laundryease/backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	usersService users.Service,
	catalogService catalog.Service,
	ordersService orders.Service,
	paymentsService payments.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.FrontendURL),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})
	if httpMetrics != nil {
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/signup", controllers.Signup(usersService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.Login(usersService, notificationsService, logg))
	})

	// Catalog reads are public so the storefront can render without a session.
	r.Route("/api/v1/services", func(r chi.Router) {
		r.Get("/", controllers.ListServices(catalogService, logg))
		r.Get("/{id}", controllers.GetService(catalogService, logg))
		r.Get("/{id}/items", controllers.GetServiceItems(catalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRole("admin", logg))
			r.Post("/", controllers.CreateService(catalogService, logg))
			r.Put("/{id}", controllers.UpdateService(catalogService, logg))
			r.Delete("/{id}", controllers.DeleteService(catalogService, logg))
		})
	})

	// The gateway redirects the customer's browser here without a session.
	r.Get("/api/v1/payments/khalti/callback", controllers.PaymentCallback(paymentsService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/me", controllers.Me(usersService, notificationsService, logg))
			r.Put("/update-profile", controllers.UpdateProfile(usersService, logg))
			r.Put("/change-password", controllers.ChangePassword(usersService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersService, logg))
			r.Get("/history", controllers.OrderHistory(ordersService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin", logg))
				r.Get("/admin", controllers.AdminOrders(ordersService, logg))
				r.Get("/dashboard-stats", controllers.OrderDashboardStats(ordersService, logg))
				r.Put("/{id}/status", controllers.UpdateOrderStatus(ordersService, logg))
			})

			r.Get("/{id}", controllers.GetOrder(ordersService, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/initiate", controllers.InitiatePayment(paymentsService, logg))
			r.Post("/verify", controllers.VerifyPayment(paymentsService, logg))
			r.Get("/history", controllers.PaymentHistory(paymentsService, logg))
			r.With(middleware.RequireRole("admin", logg)).Get("/stats", controllers.PaymentStats(paymentsService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(notificationsService, logg))
			r.Put("/{id}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Put("/mark-all-read", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})

		r.With(middleware.RequireRole("admin", logg)).Get("/users", controllers.ListUsers(usersService, logg))
	})

	return r
}
