package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xidik12/MiyZapis-sub005/internal/observability/metrics"
	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

// Request is what a customer submits to reserve a slot.
type Request struct {
	ServiceID        uuid.UUID `json:"service_id"`
	CustomerID       uuid.UUID `json:"customer_id"`
	ScheduledAt      time.Time `json:"scheduled_at"`
	ParticipantCount int       `json:"participant_count"`
}

// AdmissionStore is the persistence surface admission needs.
type AdmissionStore interface {
	GetService(ctx context.Context, id uuid.UUID) (*Service, error)
	CountActiveForSlot(ctx context.Context, specialistID uuid.UUID, scheduledAt time.Time, pendingCutoff time.Time) (int, error)
	CreateIndividual(ctx context.Context, b *Booking) error
	CreateGroup(ctx context.Context, b *Booking, maxParticipants *int, pendingCutoff time.Time) error
}

// SlotChecker reports whether a specialist has an open availability block
// starting at the given instant.
type SlotChecker interface {
	HasBlock(ctx context.Context, specialistID uuid.UUID, startAt time.Time) (bool, error)
}

// AdmissionController decides whether a booking request may enter the
// system. Admitted bookings start in PENDING_PAYMENT.
type AdmissionController struct {
	store          AdmissionStore
	slots          SlotChecker
	clock          func() time.Time
	paymentTimeout time.Duration
	logger         *logging.Logger
	metrics        *metrics.BookingMetrics
	tracer         trace.Tracer
}

// NewAdmissionController creates an admission controller. store and slots
// must be non-nil.
func NewAdmissionController(store AdmissionStore, slots SlotChecker, paymentTimeout time.Duration, logger *logging.Logger, m *metrics.BookingMetrics) *AdmissionController {
	if store == nil {
		panic("booking: admission controller requires a store")
	}
	if slots == nil {
		panic("booking: admission controller requires a slot checker")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdmissionController{
		store:          store,
		slots:          slots,
		clock:          func() time.Time { return time.Now().UTC() },
		paymentTimeout: paymentTimeout,
		logger:         logger,
		metrics:        m,
		tracer:         otel.Tracer("booking.admission"),
	}
}

// WithClock overrides the time source. Test hook.
func (c *AdmissionController) WithClock(clock func() time.Time) *AdmissionController {
	c.clock = clock
	return c
}

// Admit validates a booking request and, if it wins the slot or seats,
// persists it in PENDING_PAYMENT. Rejections surface as typed errors so
// transport layers can map them precisely.
func (c *AdmissionController) Admit(ctx context.Context, req Request) (*Booking, error) {
	ctx, span := c.tracer.Start(ctx, "admission.admit",
		trace.WithAttributes(attribute.String("service_id", req.ServiceID.String())))
	defer span.End()

	start := time.Now()
	defer func() { c.metrics.ObserveAdmitDuration(time.Since(start).Seconds()) }()

	if err := validateRequest(req); err != nil {
		c.metrics.ObserveAdmission("invalid")
		return nil, err
	}

	svc, err := c.store.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	// A specialist cannot book themselves, independent of whether the
	// slot exists or is free.
	if req.CustomerID == svc.SpecialistID {
		c.metrics.ObserveAdmission("self_booking")
		return nil, &SelfBookingNotAllowedError{CustomerID: req.CustomerID}
	}

	now := c.clock()
	scheduledAt := req.ScheduledAt.UTC().Truncate(time.Second)
	if !scheduledAt.After(now) {
		c.metrics.ObserveAdmission("slot_unavailable")
		return nil, &SlotNotAvailableError{SpecialistID: svc.SpecialistID, ScheduledAt: scheduledAt}
	}
	open, err := c.slots.HasBlock(ctx, svc.SpecialistID, scheduledAt)
	if err != nil {
		return nil, err
	}
	if !open {
		c.metrics.ObserveAdmission("slot_unavailable")
		return nil, &SlotNotAvailableError{SpecialistID: svc.SpecialistID, ScheduledAt: scheduledAt}
	}

	b := &Booking{
		ID:               uuid.New(),
		SpecialistID:     svc.SpecialistID,
		ServiceID:        svc.ID,
		CustomerID:       req.CustomerID,
		ScheduledAt:      scheduledAt,
		DurationMinutes:  svc.DurationMinutes,
		Status:           StatusDraft,
		ParticipantCount: req.ParticipantCount,
	}
	if err := ensureTransition(b.Status, StatusPendingPayment); err != nil {
		return nil, err
	}
	b.Status = StatusPendingPayment

	pendingCutoff := now.Add(-c.paymentTimeout)
	if svc.IsGroupSession {
		gsid := NewGroupSessionID(svc.ID, scheduledAt)
		b.GroupSessionID = &gsid
		err = c.store.CreateGroup(ctx, b, svc.MaxParticipants, pendingCutoff)
	} else {
		if req.ParticipantCount != 1 {
			c.metrics.ObserveAdmission("invalid")
			return nil, fmt.Errorf("%w: individual services admit exactly one participant", ErrInvalidRequest)
		}
		// Cheap pre-check; the unique index in CreateIndividual is the
		// authoritative guard.
		held, countErr := c.store.CountActiveForSlot(ctx, svc.SpecialistID, scheduledAt, pendingCutoff)
		if countErr != nil {
			return nil, countErr
		}
		if held > 0 {
			c.metrics.ObserveAdmission("slot_taken")
			return nil, &SlotAlreadyBookedError{SpecialistID: svc.SpecialistID, ScheduledAt: scheduledAt}
		}
		err = c.store.CreateIndividual(ctx, b)
	}
	if err != nil {
		if IsAdmissionConflict(err) {
			c.metrics.ObserveAdmission("conflict")
		}
		return nil, err
	}

	c.metrics.ObserveAdmission("admitted")
	c.logger.Info("booking admitted",
		"booking_id", b.ID,
		"specialist_id", b.SpecialistID,
		"service_id", b.ServiceID,
		"scheduled_at", b.ScheduledAt,
		"participants", b.ParticipantCount,
		"group", svc.IsGroupSession)
	return b, nil
}

func validateRequest(req Request) error {
	if req.ServiceID == uuid.Nil {
		return fmt.Errorf("%w: service_id is required", ErrInvalidRequest)
	}
	if req.CustomerID == uuid.Nil {
		return fmt.Errorf("%w: customer_id is required", ErrInvalidRequest)
	}
	if req.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduled_at is required", ErrInvalidRequest)
	}
	if req.ParticipantCount < 1 {
		return fmt.Errorf("%w: participant_count must be at least 1", ErrInvalidRequest)
	}
	return nil
}
