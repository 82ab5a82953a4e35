package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/laundryease/backend/api/routes"
	"github.com/laundryease/backend/internal/catalog"
	"github.com/laundryease/backend/internal/notifications"
	"github.com/laundryease/backend/internal/orders"
	"github.com/laundryease/backend/internal/payments"
	"github.com/laundryease/backend/internal/users"
	"github.com/laundryease/backend/pkg/config"
	"github.com/laundryease/backend/pkg/db"
	"github.com/laundryease/backend/pkg/geocode"
	"github.com/laundryease/backend/pkg/khalti"
	"github.com/laundryease/backend/pkg/logger"
	"github.com/laundryease/backend/pkg/mail"
	"github.com/laundryease/backend/pkg/metrics"
	"github.com/laundryease/backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	geocoder := geocode.NewClient(
		geocode.WithBaseURL(cfg.Geocoder.BaseURL),
		geocode.WithUserAgent(cfg.Geocoder.UserAgent),
		geocode.WithHTTPClient(&http.Client{Timeout: cfg.Geocoder.Timeout}),
	)

	// The mail sender is optional; without an API key notifications stay
	// in-app only.
	var sender mail.Sender
	if cfg.Mail.APIKey != "" {
		mailClient, err := mail.NewClient(cfg.Mail.APIKey, cfg.Mail.DefaultFrom,
			mail.WithHTTPClient(&http.Client{Timeout: cfg.Mail.Timeout}))
		if err != nil {
			logg.Error(context.Background(), "failed to create mail client", err)
			os.Exit(1)
		}
		sender = mailClient
	} else {
		logg.Warn(context.Background(), "sendgrid api key not set, email delivery disabled")
	}

	var gateway payments.Gateway
	if cfg.Khalti.SecretKey != "" {
		khaltiClient, err := khalti.NewClient(cfg.Khalti.SecretKey, cfg.Khalti.Environment(),
			khalti.WithHTTPClient(&http.Client{Timeout: cfg.Khalti.Timeout}))
		if err != nil {
			logg.Error(context.Background(), "failed to create khalti client", err)
			os.Exit(1)
		}
		gateway = khaltiClient
	} else {
		logg.Warn(context.Background(), "khalti secret key not set, gateway payments disabled")
	}

	usersRepo := users.NewRepository(dbClient.DB())

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), sender, logg)
	requireService(logg, "notifications", err)

	usersService, err := users.NewService(usersRepo, geocoder, cfg.JWT, cfg.Password, logg)
	requireService(logg, "users", err)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), logg)
	requireService(logg, "catalog", err)

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), usersRepo, geocoder, notificationsService, logg)
	requireService(logg, "orders", err)

	paymentsService, err := payments.NewService(
		payments.NewRepository(dbClient.DB()),
		gateway,
		notificationsService,
		payments.Config{
			FrontendURL: cfg.App.FrontendURL,
			WebsiteURL:  cfg.Khalti.WebsiteURL,
			MerchantTag: cfg.Khalti.MerchantTag,
		},
		logg,
	)
	requireService(logg, "payments", err)

	httpMetrics := metrics.NewHTTPMetrics()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			httpMetrics,
			usersService,
			catalogService,
			ordersService,
			paymentsService,
			notificationsService,
		),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	ctx := logg.WithField(context.Background(), "service", name)
	logg.Error(ctx, "failed to create service", err)
	os.Exit(1)
}
