package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/detailshop-backend/api/routes"
	"github.com/angelmondragon/detailshop-backend/internal/appointments"
	"github.com/angelmondragon/detailshop-backend/internal/auth"
	"github.com/angelmondragon/detailshop-backend/internal/bootstrap"
	checkoutsvc "github.com/angelmondragon/detailshop-backend/internal/checkout"
	"github.com/angelmondragon/detailshop-backend/internal/customers"
	"github.com/angelmondragon/detailshop-backend/internal/gallery"
	"github.com/angelmondragon/detailshop-backend/internal/notifications"
	"github.com/angelmondragon/detailshop-backend/internal/orders"
	products "github.com/angelmondragon/detailshop-backend/internal/products"
	"github.com/angelmondragon/detailshop-backend/internal/reviews"
	"github.com/angelmondragon/detailshop-backend/internal/services"
	"github.com/angelmondragon/detailshop-backend/internal/settings"
	"github.com/angelmondragon/detailshop-backend/internal/users"
	stripewebhook "github.com/angelmondragon/detailshop-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/detailshop-backend/pkg/auth/session"
	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	"github.com/angelmondragon/detailshop-backend/pkg/metrics"
	"github.com/angelmondragon/detailshop-backend/pkg/migrate"
	"github.com/angelmondragon/detailshop-backend/pkg/pubsub"
	"github.com/angelmondragon/detailshop-backend/pkg/redis"
	"github.com/angelmondragon/detailshop-backend/pkg/security"
	"github.com/angelmondragon/detailshop-backend/pkg/stripe"
)

const (
	webhookEventTTL = 72 * time.Hour
	shutdownTimeout = 20 * time.Second
)

func main() {
	cfg, logg, err := bootstrap.Load("api")
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	// money is serialized as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	var stripeClient *stripe.Client
	if cfg.Stripe.Configured() {
		stripeClient, err = stripe.NewClient(context.Background(), cfg.Stripe, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create stripe client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "stripe not configured, hosted checkout disabled")
	}
	gateway := stripe.NewGateway(stripeClient, cfg.Stripe, cfg.App.PublicBaseURL)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	notifier, closeNotifier, err := buildNotifier(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}
	dispatcher := notifications.NewDispatcher(notifier, logg, metrics.NewNotificationMetrics(registry), 0)

	conn := dbClient.DB()
	hasher := security.NewHasher(cfg.Password)
	customerRepo := customers.NewRepository(conn)
	adminRepo := users.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	productRepo := products.NewRepository(conn)

	settingsService, err := settings.NewService(settings.NewRepository(conn), cfg.Store.WhatsAppNumber)
	requireService(logg, "settings", err)

	authService, err := auth.NewService(auth.ServiceParams{
		AdminRepo:      adminRepo,
		CustomerRepo:   customerRepo,
		Hasher:         hasher,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	requireService(logg, "auth", err)

	checkoutService, err := checkoutsvc.NewService(dbClient, customerRepo, ordersRepo, settingsService, gateway, logg)
	requireService(logg, "checkout", err)

	ordersService, err := orders.NewService(ordersRepo)
	requireService(logg, "orders", err)

	appointmentService, err := appointments.NewService(appointments.ServiceParams{
		Repo:       appointments.NewRepository(conn),
		Customers:  customerRepo,
		Staff:      adminRepo,
		Settings:   settingsService,
		Dispatcher: dispatcher,
		Logger:     logg,
	})
	requireService(logg, "appointments", err)

	customerService, err := customers.NewService(customerRepo)
	requireService(logg, "customers", err)

	productService, err := products.NewService(productRepo, dbClient)
	requireService(logg, "products", err)

	reviewService, err := reviews.NewService(reviews.NewRepository(conn), productRepo, customerRepo)
	requireService(logg, "reviews", err)

	offeringService, err := services.NewService(services.NewRepository(conn))
	requireService(logg, "services", err)

	galleryService, err := gallery.NewService(gallery.NewRepository(conn), dbClient, time.Now)
	requireService(logg, "gallery", err)

	userService, err := users.NewService(adminRepo, hasher)
	requireService(logg, "users", err)

	eventGuard, err := stripewebhook.NewEventGuard(redisClient, webhookEventTTL)
	requireService(logg, "webhook guard", err)
	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Orders:  ordersRepo,
		Guard:   eventGuard,
		Metrics: metrics.NewWebhookMetrics(registry),
		Logger:  logg,
	})
	requireService(logg, "stripe webhook", err)

	handler := routes.NewRouter(routes.Dependencies{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Store:          redisClient,
		Sessions:       sessionManager,
		Gatherer:       registry,
		Metrics:        metrics.NewHTTPMetrics(registry),
		Auth:           authService,
		Checkout:       checkoutService,
		Orders:         ordersService,
		Appointments:   appointmentService,
		Customers:      customerService,
		Products:       productService,
		Reviews:        reviewService,
		Services:       offeringService,
		Gallery:        galleryService,
		Settings:       settingsService,
		Users:          userService,
		StripeWebhook:  webhookService,
		StripeVerifier: gateway,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), bootstrap.Fields(cfg, map[string]any{
		"addr":     addr,
		"instance": id,
	}))
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = multierr.Combine(
		server.Shutdown(shutdownCtx),
		dispatcher.Wait(shutdownCtx),
		closeNotifier(),
	)
	if err != nil {
		logg.Error(ctx, "api shutdown incomplete", err)
		return
	}
	logg.Info(ctx, "api server stopped")
}

// buildNotifier hands notifications to the worker through Pub/Sub when a topic
// is configured and delivers email in process otherwise.
func buildNotifier(ctx context.Context, cfg *config.Config, logg *logger.Logger) (notifications.Notifier, func() error, error) {
	noop := func() error { return nil }

	if cfg.PubSub.Enabled() {
		client, err := pubsub.NewClient(ctx, cfg.GCP, config.PubSubConfig{NotificationTopic: cfg.PubSub.NotificationTopic}, logg)
		if err != nil {
			return nil, noop, err
		}
		publisher, err := notifications.NewTopicPublisher(client.NotificationPublisher())
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		notifier, err := notifications.NewPubSubNotifier(publisher)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return notifier, client.Close, nil
	}

	mailer, err := notifications.NewMailer(cfg.Sendgrid, logg)
	if err != nil {
		return nil, noop, err
	}
	notifier, err := notifications.NewEmailNotifier(mailer, cfg.Store.Name)
	if err != nil {
		return nil, noop, err
	}
	return notifier, noop, nil
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
