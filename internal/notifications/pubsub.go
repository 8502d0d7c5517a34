package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

const (
	attrEventType = "event_type"
	attrEventID   = "event_id"
)

// Envelope is the wire format on the notifications topic.
type Envelope struct {
	EventID    string       `json:"eventId"`
	OccurredAt time.Time    `json:"occurredAt"`
	Data       Notification `json:"data"`
}

type messagePublisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) error
}

// TopicPublisher blocks until Pub/Sub acknowledges the message.
type TopicPublisher struct {
	publisher *pubsub.Publisher
}

func NewTopicPublisher(publisher *pubsub.Publisher) (*TopicPublisher, error) {
	if publisher == nil {
		return nil, errors.New("pubsub publisher required")
	}
	return &TopicPublisher{publisher: publisher}, nil
}

func (p *TopicPublisher) Publish(ctx context.Context, data []byte, attributes map[string]string) error {
	result := p.publisher.Publish(ctx, &pubsub.Message{Data: data, Attributes: attributes})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// PubSubNotifier forwards notifications to the worker through the topic.
type PubSubNotifier struct {
	publisher messagePublisher
	now       func() time.Time
}

func NewPubSubNotifier(publisher messagePublisher) (*PubSubNotifier, error) {
	if publisher == nil {
		return nil, errors.New("message publisher required")
	}
	return &PubSubNotifier{publisher: publisher, now: time.Now}, nil
}

func (n *PubSubNotifier) Notify(ctx context.Context, notification Notification) error {
	envelope := Envelope{
		EventID:    uuid.NewString(),
		OccurredAt: n.now().UTC(),
		Data:       notification,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return n.publisher.Publish(ctx, data, map[string]string{
		attrEventType: string(notification.Type),
		attrEventID:   envelope.EventID,
	})
}
