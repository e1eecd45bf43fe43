package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xidik12/MiyZapis-sub005/internal/notify"
	"github.com/xidik12/MiyZapis-sub005/internal/observability/metrics"
	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

// ExpiryStore cancels stale pending-payment bookings in bulk.
type ExpiryStore interface {
	ExpireStale(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

// ExpiryWorker sweeps bookings whose payment window has lapsed. The store
// queries already exclude stale pending rows from slot and seat counts,
// so the sweep is about reclaiming rows and notifying, not correctness.
type ExpiryWorker struct {
	store          ExpiryStore
	paymentTimeout time.Duration
	clock          func() time.Time
	sink           notify.Sink
	logger         *logging.Logger
	metrics        *metrics.BookingMetrics
}

// NewExpiryWorker creates the sweep worker. store must be non-nil.
func NewExpiryWorker(store ExpiryStore, paymentTimeout time.Duration, sink notify.Sink, logger *logging.Logger, m *metrics.BookingMetrics) *ExpiryWorker {
	if store == nil {
		panic("booking: expiry worker requires a store")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if sink == nil {
		sink = notify.NewLogSink(logger)
	}
	return &ExpiryWorker{
		store:          store,
		paymentTimeout: paymentTimeout,
		clock:          func() time.Time { return time.Now().UTC() },
		sink:           sink,
		logger:         logger,
		metrics:        m,
	}
}

// WithClock overrides the time source. Test hook.
func (w *ExpiryWorker) WithClock(clock func() time.Time) *ExpiryWorker {
	w.clock = clock
	return w
}

// ProcessDue cancels every pending booking older than the payment timeout
// and returns how many were swept.
func (w *ExpiryWorker) ProcessDue(ctx context.Context) (int, error) {
	cutoff := w.clock().Add(-w.paymentTimeout)
	ids, err := w.store.ExpireStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		_ = w.sink.Notify(ctx, notify.EventBookingCancelled, map[string]any{
			"booking_id": id,
			"reason":     "payment_timeout",
		})
	}
	if len(ids) > 0 {
		w.logger.Info("expired stale pending bookings", "count", len(ids), "cutoff", cutoff)
	}
	w.metrics.ObserveExpired(len(ids))
	return len(ids), nil
}

// Run sweeps on the given interval until ctx is cancelled.
func (w *ExpiryWorker) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	w.logger.Info("expiry worker started", "every", every, "payment_timeout", w.paymentTimeout)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiry worker stopped")
			return
		case <-ticker.C:
			if _, err := w.ProcessDue(ctx); err != nil {
				w.logger.Error("expiry sweep failed", "error", err)
			}
		}
	}
}
