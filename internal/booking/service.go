package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xidik12/MiyZapis-sub005/internal/notify"
	"github.com/xidik12/MiyZapis-sub005/internal/observability/metrics"
	"github.com/xidik12/MiyZapis-sub005/internal/payments"
	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

// ErrPaymentFailed is returned when the provider declines; the booking
// stays in PENDING_PAYMENT and the customer may retry another method
// until the expiry sweep claims it.
var ErrPaymentFailed = errors.New("booking: payment failed")

// LifecycleStore is the persistence surface lifecycle transitions need.
type LifecycleStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetService(ctx context.Context, id uuid.UUID) (*Service, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, notes string) (*Booking, error)
	UpdateLocked(ctx context.Context, id uuid.UUID, fn func(b *Booking) (Status, string, error)) (*Booking, error)
}

// CancellationPolicy resolves the per-specialist cancellation window.
type CancellationPolicy interface {
	Window(ctx context.Context, specialistID uuid.UUID) (time.Duration, error)
}

// Lifecycle drives a booking through its state machine after admission.
// All transitions are validated against the lifecycle table and persisted
// with a current-status guard, so two racing callers cannot both win.
type Lifecycle struct {
	store         LifecycleStore
	gateway       payments.Gateway
	sink          notify.Sink
	clock         func() time.Time
	defaultWindow time.Duration
	windows       CancellationPolicy
	logger        *logging.Logger
	metrics       *metrics.BookingMetrics
	tracer        trace.Tracer
}

// NewLifecycle creates the booking lifecycle service. store and gateway
// must be non-nil; sink and windows may be nil.
func NewLifecycle(store LifecycleStore, gateway payments.Gateway, sink notify.Sink, defaultWindow time.Duration, windows CancellationPolicy, logger *logging.Logger, m *metrics.BookingMetrics) *Lifecycle {
	if store == nil {
		panic("booking: lifecycle requires a store")
	}
	if gateway == nil {
		panic("booking: lifecycle requires a payment gateway")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if sink == nil {
		sink = notify.NewLogSink(logger)
	}
	return &Lifecycle{
		store:         store,
		gateway:       gateway,
		sink:          sink,
		clock:         func() time.Time { return time.Now().UTC() },
		defaultWindow: defaultWindow,
		windows:       windows,
		logger:        logger,
		metrics:       m,
		tracer:        otel.Tracer("booking.lifecycle"),
	}
}

// WithClock overrides the time source. Test hook.
func (l *Lifecycle) WithClock(clock func() time.Time) *Lifecycle {
	l.clock = clock
	return l
}

// Pay collects payment for a pending booking. Confirmation happens only
// when the provider reports the amount fully covered; a hosted-checkout
// redirect leaves the booking pending with PaymentURL set on the result.
// The charge runs under a row lock on the booking, so two racing Pay
// calls cannot both debit: the loser re-reads the confirmed status and
// never reaches the gateway.
func (l *Lifecycle) Pay(ctx context.Context, bookingID uuid.UUID, method string) (*Booking, error) {
	ctx, span := l.tracer.Start(ctx, "lifecycle.pay",
		trace.WithAttributes(attribute.String("booking_id", bookingID.String())))
	defer span.End()

	b, err := l.store.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := ensureTransition(b.Status, StatusConfirmed); err != nil {
		l.metrics.ObserveTransition("pay", "rejected")
		return nil, err
	}

	svc, err := l.store.GetService(ctx, b.ServiceID)
	if err != nil {
		return nil, err
	}

	var outcome, paymentURL string
	updated, err := l.store.UpdateLocked(ctx, bookingID, func(cur *Booking) (Status, string, error) {
		// Re-check under the lock: a concurrent Pay may have confirmed,
		// or the expiry sweep cancelled, since the read above.
		if err := ensureTransition(cur.Status, StatusConfirmed); err != nil {
			outcome = "rejected"
			return "", "", err
		}

		result, err := l.gateway.CreateIntent(ctx, payments.IntentRequest{
			BookingID:   cur.ID,
			CustomerID:  cur.CustomerID,
			AmountCents: svc.PriceCents * int64(cur.ParticipantCount),
			Currency:    svc.Currency,
			Method:      method,
		})
		if err != nil {
			outcome = "error"
			return "", "", fmt.Errorf("booking: create payment intent: %w", err)
		}

		switch {
		case result.Status == payments.IntentCompleted || !result.RequiresPayment:
			outcome = "confirmed"
			return StatusConfirmed, "", nil
		case result.Status == payments.IntentPending:
			// Booking stays pending until the provider callback or a retry.
			outcome = "pending"
			paymentURL = result.PaymentURL
			return cur.Status, "", nil
		default:
			outcome = "failed"
			return "", "", ErrPaymentFailed
		}
	})
	if outcome != "" {
		l.metrics.ObserveTransition("pay", outcome)
	}
	if err != nil {
		return nil, err
	}

	if outcome == "confirmed" {
		l.emit(ctx, notify.EventBookingConfirmed, updated)
		return updated, nil
	}
	updated.PaymentURL = paymentURL
	return updated, nil
}

// Cancel cancels a booking. Pending bookings cancel freely; confirmed
// bookings are rejected inside the specialist's cancellation window.
func (l *Lifecycle) Cancel(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	ctx, span := l.tracer.Start(ctx, "lifecycle.cancel",
		trace.WithAttributes(attribute.String("booking_id", bookingID.String())))
	defer span.End()

	b, err := l.store.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := ensureTransition(b.Status, StatusCancelled); err != nil {
		l.metrics.ObserveTransition("cancel", "rejected")
		return nil, err
	}

	if b.Status == StatusConfirmed {
		window := l.cancellationWindow(ctx, b.SpecialistID)
		if l.clock().After(b.ScheduledAt.Add(-window)) {
			l.metrics.ObserveTransition("cancel", "window_violation")
			return nil, &CancellationWindowViolation{ScheduledAt: b.ScheduledAt, Window: window}
		}
	}

	cancelled, err := l.store.UpdateStatus(ctx, b.ID, b.Status, StatusCancelled, "")
	if err != nil {
		return nil, err
	}
	l.metrics.ObserveTransition("cancel", "cancelled")
	l.emit(ctx, notify.EventBookingCancelled, cancelled)
	return cancelled, nil
}

// Start marks a confirmed booking as underway.
func (l *Lifecycle) Start(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	return l.simpleTransition(ctx, bookingID, "start", StatusInProgress, "", "")
}

// Complete finishes an in-progress booking, recording the specialist's
// session notes.
func (l *Lifecycle) Complete(ctx context.Context, bookingID uuid.UUID, notes string) (*Booking, error) {
	return l.simpleTransition(ctx, bookingID, "complete", StatusCompleted, notes, notify.EventBookingCompleted)
}

// NoShow records that the customer did not appear. Only allowed once the
// scheduled time has passed.
func (l *Lifecycle) NoShow(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	ctx, span := l.tracer.Start(ctx, "lifecycle.no_show",
		trace.WithAttributes(attribute.String("booking_id", bookingID.String())))
	defer span.End()

	b, err := l.store.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := ensureTransition(b.Status, StatusNoShow); err != nil {
		l.metrics.ObserveTransition("no_show", "rejected")
		return nil, err
	}
	if l.clock().Before(b.ScheduledAt) {
		l.metrics.ObserveTransition("no_show", "rejected")
		return nil, fmt.Errorf("%w: no-show cannot be recorded before the scheduled time", ErrInvalidRequest)
	}

	updated, err := l.store.UpdateStatus(ctx, b.ID, b.Status, StatusNoShow, "")
	if err != nil {
		return nil, err
	}
	l.metrics.ObserveTransition("no_show", "applied")
	l.emit(ctx, notify.EventBookingNoShow, updated)
	return updated, nil
}

func (l *Lifecycle) simpleTransition(ctx context.Context, bookingID uuid.UUID, event string, to Status, notes, notifyEvent string) (*Booking, error) {
	ctx, span := l.tracer.Start(ctx, "lifecycle."+event,
		trace.WithAttributes(attribute.String("booking_id", bookingID.String())))
	defer span.End()

	b, err := l.store.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := ensureTransition(b.Status, to); err != nil {
		l.metrics.ObserveTransition(event, "rejected")
		return nil, err
	}
	updated, err := l.store.UpdateStatus(ctx, b.ID, b.Status, to, notes)
	if err != nil {
		return nil, err
	}
	l.metrics.ObserveTransition(event, "applied")
	if notifyEvent != "" {
		l.emit(ctx, notifyEvent, updated)
	}
	return updated, nil
}

func (l *Lifecycle) cancellationWindow(ctx context.Context, specialistID uuid.UUID) time.Duration {
	if l.windows == nil {
		return l.defaultWindow
	}
	window, err := l.windows.Window(ctx, specialistID)
	if err != nil {
		l.logger.Warn("booking: cancellation window lookup failed, using default",
			"specialist_id", specialistID, "error", err)
		return l.defaultWindow
	}
	return window
}

func (l *Lifecycle) emit(ctx context.Context, event string, b *Booking) {
	go func() {
		_ = l.sink.Notify(context.WithoutCancel(ctx), event, b)
	}()
}
