package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/detailshop-backend/internal/bootstrap"
	"github.com/angelmondragon/detailshop-backend/internal/cron"
	"github.com/angelmondragon/detailshop-backend/internal/orders"
	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	"github.com/angelmondragon/detailshop-backend/pkg/metrics"
	"github.com/angelmondragon/detailshop-backend/pkg/migrate"
	"github.com/angelmondragon/detailshop-backend/pkg/redis"
	"github.com/angelmondragon/detailshop-backend/pkg/stripe"
)

func main() {
	cfg, logg, err := bootstrap.Load("cron-worker")
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = logg.WithFields(ctx, bootstrap.Fields(cfg, nil))

	err = run(ctx, cfg, logg)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

// run wires the reconcile job and blocks until ctx is canceled. Connections
// are closed on the way out.
func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	var stripeClient *stripe.Client
	if cfg.Stripe.Configured() {
		if stripeClient, err = stripe.NewClient(ctx, cfg.Stripe, logg); err != nil {
			return fmt.Errorf("stripe client: %w", err)
		}
	} else {
		logg.Warn(ctx, "stripe not configured, payment reconciliation will skip")
	}

	reconcileJob, err := cron.NewPaymentReconcileJob(cron.PaymentReconcileJobParams{
		Logger:  logg,
		Orders:  orders.NewRepository(dbClient.DB()),
		Gateway: stripe.NewGateway(stripeClient, cfg.Stripe, cfg.App.PublicBaseURL),
		MaxAge:  cfg.Cron.StaleOrderAfter,
	})
	if err != nil {
		return err
	}
	registry, err := cron.NewRegistry(reconcileJob)
	if err != nil {
		return err
	}

	env := cfg.App.Env
	if env == "" {
		env = "local"
	}
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker", env), cfg.Cron.LockTTL)
	if err != nil {
		return err
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   registry,
		Lock:       lock,
		Metrics:    metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval:   cfg.Cron.Interval,
		JobTimeout: cfg.Cron.JobTimeout,
	})
	if err != nil {
		return err
	}

	logg.Info(ctx, "starting cron worker")
	return service.Run(ctx)
}
