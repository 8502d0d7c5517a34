package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotificationMetrics counts best-effort notification deliveries.
type NotificationMetrics struct {
	sent   *prometheus.CounterVec
	failed *prometheus.CounterVec
}

func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Notifications handed off successfully.",
	}, []string{"type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Notifications that could not be delivered.",
	}, []string{"type"})
	reg.MustRegister(sent, failed)
	return &NotificationMetrics{sent: sent, failed: failed}
}

func (m *NotificationMetrics) IncSent(kind string) {
	if m == nil || m.sent == nil {
		return
	}
	m.sent.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *NotificationMetrics) IncFailed(kind string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(kind)).Inc()
}
