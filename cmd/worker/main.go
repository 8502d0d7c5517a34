package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/angelmondragon/detailshop-backend/internal/bootstrap"
	"github.com/angelmondragon/detailshop-backend/internal/notifications"
	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	"github.com/angelmondragon/detailshop-backend/pkg/pubsub"
)

func main() {
	cfg, logg, err := bootstrap.Load("worker")
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = logg.WithFields(ctx, bootstrap.Fields(cfg, map[string]any{
		"instance":     instanceID(),
		"subscription": cfg.PubSub.NotificationSubscription,
	}))

	err = run(ctx, cfg, logg)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "worker shutting down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	// the worker only reads the subscription; publishing stays with the api
	psClient, err := pubsub.NewClient(ctx, cfg.GCP, config.PubSubConfig{
		NotificationSubscription: cfg.PubSub.NotificationSubscription,
	}, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := psClient.Close(); err != nil {
			logg.Error(context.WithoutCancel(ctx), "error closing pubsub", err)
		}
	}()

	mailer, err := notifications.NewMailer(cfg.Sendgrid, logg)
	if err != nil {
		return err
	}
	notifier, err := notifications.NewEmailNotifier(mailer, cfg.Store.Name)
	if err != nil {
		return err
	}
	consumer, err := notifications.NewConsumer(psClient.NotificationSubscription(), notifier, logg)
	if err != nil {
		return err
	}

	service, err := NewService(ServiceParams{
		Config:               cfg,
		Logger:               logg,
		PubSub:               psClient,
		NotificationConsumer: consumer,
	})
	if err != nil {
		return err
	}
	logg.Info(ctx, "starting worker")
	return service.Run(ctx)
}

func instanceID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	return "worker-0"
}
