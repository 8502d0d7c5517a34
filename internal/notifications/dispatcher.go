package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	"github.com/angelmondragon/detailshop-backend/pkg/metrics"
)

const defaultDispatchTimeout = 15 * time.Second

// Dispatcher delivers notifications off the request path. Failures are
// logged and counted, never returned.
type Dispatcher struct {
	notifier Notifier
	logg     *logger.Logger
	metrics  *metrics.NotificationMetrics
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, logg *logger.Logger, m *metrics.NotificationMetrics, timeout time.Duration) *Dispatcher {
	if logg == nil {
		logg = logger.Nop()
	}
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	return &Dispatcher{notifier: notifier, logg: logg, metrics: m, timeout: timeout}
}

// Dispatch returns immediately. The delivery outlives the caller's context.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) {
	if d == nil || d.notifier == nil {
		return
	}
	if len(n.Recipients) == 0 {
		return
	}
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()

		logCtx := d.logg.WithFields(ctx, map[string]any{
			"notification_type": string(n.Type),
			"appointment_id":    n.AppointmentID.String(),
			"recipients":        len(n.Recipients),
		})
		if err := d.notifier.Notify(ctx, n); err != nil {
			d.metrics.IncFailed(string(n.Type))
			d.logg.Warn(d.logg.WithField(logCtx, "error", err.Error()), "notification.failed")
			return
		}
		d.metrics.IncSent(string(n.Type))
		d.logg.Debug(logCtx, "notification.sent")
	}()
}

// Wait blocks until in-flight deliveries finish or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	if d == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
