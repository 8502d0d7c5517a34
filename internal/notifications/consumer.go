package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

// Consumer delivers notifications published by the api.
type Consumer struct {
	subscription *pubsub.Subscriber
	notifier     Notifier
	logg         *logger.Logger
}

func NewConsumer(subscription *pubsub.Subscriber, notifier Notifier, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{subscription: subscription, notifier: notifier, logg: logg}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg.ID, msg.Data, msg.Attributes) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// process reports whether the message should be acked. Malformed payloads
// are acked so they do not loop forever.
func (c *Consumer) process(ctx context.Context, messageID string, data []byte, attributes map[string]string) bool {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": attributes[attrEventType],
	})

	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode notification envelope", err)
		return true
	}
	if !envelope.Data.Type.IsValid() {
		c.logg.Warn(logCtx, "skipping unknown notification type")
		return true
	}

	logCtx = c.logg.WithField(logCtx, "event_id", envelope.EventID)
	if err := c.notifier.Notify(ctx, envelope.Data); err != nil {
		c.logg.Error(logCtx, "notification delivery failed", err)
		return false
	}
	c.logg.Info(logCtx, "notification delivered")
	return true
}
