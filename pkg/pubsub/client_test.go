package pubsub

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
)

func TestResourceName(t *testing.T) {
	cases := []struct {
		project, kind, name, want string
	}{
		{"detailshop", "topics", "notifications", "projects/detailshop/topics/notifications"},
		{"detailshop", "subscriptions", " notifications-worker ", "projects/detailshop/subscriptions/notifications-worker"},
		{"other", "topics", "projects/detailshop/topics/full", "projects/detailshop/topics/full"},
		{"other", "topics", "projects/detailshop/subscriptions/full", "projects/other/topics/projects/detailshop/subscriptions/full"},
		{"", "topics", "notifications", ""},
		{"detailshop", "topics", "", ""},
	}
	for _, tc := range cases {
		if got := resourceName(tc.project, tc.kind, tc.name); got != tc.want {
			t.Fatalf("resourceName(%q,%q,%q) = %q, want %q", tc.project, tc.kind, tc.name, got, tc.want)
		}
	}
}

func TestNewClientValidatesBeforeDialing(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.GCPConfig{}, config.PubSubConfig{NotificationTopic: "t"}, nil); !errors.Is(err, errProjectIDRequired) {
		t.Fatalf("expected project id error, got %v", err)
	}
	if _, err := NewClient(ctx, config.GCPConfig{ProjectID: "detailshop"}, config.PubSubConfig{}, nil); !errors.Is(err, errNothingConfigured) {
		t.Fatalf("expected nothing configured error, got %v", err)
	}
}

func TestExistenceClassifiesErrors(t *testing.T) {
	if err := existence("topic", "t", nil); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	err := existence("topic", "t", status.Error(codes.NotFound, "gone"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected not found message, got %v", err)
	}
	cause := status.Error(codes.PermissionDenied, "denied")
	if err := existence("subscription", "s", cause); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestNilClientHandles(t *testing.T) {
	var c *Client
	if c.NotificationPublisher() != nil || c.NotificationSubscription() != nil {
		t.Fatalf("nil client must return nil handles")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close nil client: %v", err)
	}
	if err := c.Ping(context.Background()); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected ping error for nil client, got %v", err)
	}
}
