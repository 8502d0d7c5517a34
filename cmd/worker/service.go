package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

const (
	defaultMaxRestarts = 3
	defaultRestartWait = 5 * time.Second
)

type pinger interface {
	Ping(ctx context.Context) error
}

type runner interface {
	Run(ctx context.Context) error
}

type ServiceParams struct {
	Config               *config.Config
	Logger               *logger.Logger
	PubSub               pinger
	NotificationConsumer runner
	// MaxRestarts bounds consecutive consumer restarts after a receive
	// failure. Zero uses the default; negative disables restarts.
	MaxRestarts int
	RestartWait time.Duration
}

// Service drains the notification subscription. A failed receive loop is
// restarted after the subscription answers a ping again.
type Service struct {
	logg        *logger.Logger
	pubsub      pinger
	consumer    runner
	maxRestarts int
	restartWait time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Config == nil:
		return nil, errors.New("config is required")
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case params.NotificationConsumer == nil:
		return nil, errors.New("notification consumer is required")
	}
	svc := &Service{
		logg:        params.Logger,
		pubsub:      params.PubSub,
		consumer:    params.NotificationConsumer,
		maxRestarts: params.MaxRestarts,
		restartWait: params.RestartWait,
	}
	if svc.maxRestarts == 0 {
		svc.maxRestarts = defaultMaxRestarts
	}
	if svc.maxRestarts < 0 {
		svc.maxRestarts = 0
	}
	if svc.restartWait <= 0 {
		svc.restartWait = defaultRestartWait
	}
	return svc, nil
}

func (s *Service) Run(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		if err := s.pubsub.Ping(ctx); err != nil {
			s.logg.Error(ctx, "pubsub ping failed", err)
			return fmt.Errorf("pubsub ping failed: %w", err)
		}

		err := s.consumer.Run(ctx)
		if err == nil || errors.Is(err, context.Canceled) || ctx.Err() != nil {
			s.logg.Info(ctx, "notification consumer stopped")
			return err
		}
		if attempt >= s.maxRestarts {
			s.logg.Error(ctx, "notification consumer stopped unexpectedly", err)
			return err
		}

		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"attempt": attempt + 1, "error": err.Error()}), "restarting notification consumer")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.restartWait):
		}
	}
}
