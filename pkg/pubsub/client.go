// Package pubsub connects to the Google Cloud Pub/Sub notification topic and
// subscription. The api publishes appointment notifications and the worker
// drains them.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNothingConfigured = errors.New("pubsub notification topic or subscription is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client holds fully qualified resource names; either may be empty when the
// process only publishes or only consumes.
type Client struct {
	client       *pubsub.Client
	topic        string
	subscription string

	pubOnce   sync.Once
	publisher *pubsub.Publisher
}

func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}
	c := &Client{
		topic:        resourceName(project, "topics", cfg.NotificationTopic),
		subscription: resourceName(project, "subscriptions", cfg.NotificationSubscription),
	}
	if c.topic == "" && c.subscription == "" {
		return nil, errNothingConfigured
	}

	psClient, err := pubsub.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c.client = psClient
	if err := c.Ping(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"topic":        c.topic,
			"subscription": c.subscription,
		}), "pubsub client initialized")
	}
	return c, nil
}

// Ping checks that every configured resource still exists.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	if c.topic != "" {
		_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: c.topic})
		if err := existence("topic", c.topic, err); err != nil {
			return err
		}
	}
	if c.subscription != "" {
		_, err := c.client.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: c.subscription})
		if err := existence("subscription", c.subscription, err); err != nil {
			return err
		}
	}
	return nil
}

func existence(kind, name string, err error) error {
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("%s %q does not exist", kind, name)
	default:
		return fmt.Errorf("checking %s %q: %w", kind, name, err)
	}
}

// NotificationPublisher returns the shared publisher for the topic, or nil
// when no topic is configured.
func (c *Client) NotificationPublisher() *pubsub.Publisher {
	if c == nil || c.client == nil || c.topic == "" {
		return nil
	}
	c.pubOnce.Do(func() {
		c.publisher = c.client.Publisher(c.topic)
	})
	return c.publisher
}

// NotificationSubscription returns the subscriber the worker drains, or nil
// when no subscription is configured.
func (c *Client) NotificationSubscription() *pubsub.Subscriber {
	if c == nil || c.client == nil || c.subscription == "" {
		return nil
	}
	return c.client.Subscriber(c.subscription)
}

// Close flushes pending publishes before releasing the connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.publisher != nil {
		c.publisher.Stop()
	}
	return c.client.Close()
}

// resourceName accepts either a bare ID or a full projects/... path.
func resourceName(projectID, kind, name string) string {
	n := strings.TrimSpace(name)
	switch {
	case n == "":
		return ""
	case strings.HasPrefix(n, "projects/") && strings.Contains(n, "/"+kind+"/"):
		return n
	case projectID == "":
		return ""
	}
	return "projects/" + projectID + "/" + kind + "/" + n
}
