package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	eventGuardProvider = "stripe"
	DefaultEventTTL    = 72 * time.Hour
)

type eventStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	WebhookEventKey(provider, eventID string) string
}

// EventGuard remembers delivered gateway event ids so redeliveries short-circuit.
type EventGuard struct {
	store eventStore
	ttl   time.Duration
}

func NewEventGuard(store eventStore, ttl time.Duration) (*EventGuard, error) {
	if store == nil {
		return nil, errors.New("event store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if ttl == 0 {
		ttl = DefaultEventTTL
	}
	return &EventGuard{store: store, ttl: ttl}, nil
}

// Claim marks the event as seen and reports whether it already was.
func (g *EventGuard) Claim(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	set, err := g.store.SetNX(ctx, g.store.WebhookEventKey(eventGuardProvider, eventID), "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set webhook event key: %w", err)
	}
	return !set, nil
}

// Release forgets the event so the gateway's retry is processed again.
func (g *EventGuard) Release(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	return g.store.Del(ctx, g.store.WebhookEventKey(eventGuardProvider, eventID))
}
