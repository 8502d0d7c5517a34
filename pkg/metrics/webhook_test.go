package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWebhookMetricsCountsByTypeAndOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)
	m.Observe("checkout.session.completed", OutcomeProcessed)
	m.Observe("checkout.session.completed", OutcomeProcessed)
	m.Observe("checkout.session.completed", OutcomeDuplicate)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	mf := findMetricFamily(mfs, "detailshop_webhook_events_total")
	if mf == nil {
		t.Fatalf("webhook counter not registered")
	}
	var processed, duplicate float64
	for _, metric := range mf.GetMetric() {
		switch {
		case matchesLabel(metric.GetLabel(), "outcome", OutcomeProcessed):
			processed = metric.GetCounter().GetValue()
		case matchesLabel(metric.GetLabel(), "outcome", OutcomeDuplicate):
			duplicate = metric.GetCounter().GetValue()
		}
	}
	if processed != 2 || duplicate != 1 {
		t.Fatalf("unexpected counts processed=%f duplicate=%f", processed, duplicate)
	}
}

func TestNotificationAndHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	n := NewNotificationMetrics(reg)
	n.IncSent("appointment.created")
	n.IncFailed("appointment.created")
	h := NewHTTPMetrics(reg)
	h.Observe("GET", "/health/live", 200, 5*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "detailshop_notifications_sent_total", "type", "appointment.created"); err != nil || got != 1 {
		t.Fatalf("expected one sent notification, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "detailshop_http_requests_total", "route", "/health/live"); err != nil || got != 1 {
		t.Fatalf("expected one request, got %f (%v)", got, err)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var w *WebhookMetrics
	w.Observe("x", "y")
	var n *NotificationMetrics
	n.IncSent("x")
	NewHTTPMetrics(nil).Observe("GET", "", 200, time.Second)
	NewCronJobMetrics(nil).CycleSkipped()
}
