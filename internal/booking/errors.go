package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrBookingNotFound is returned when a booking id resolves to nothing.
var ErrBookingNotFound = errors.New("booking: not found")

// ErrServiceNotFound is returned when a service id resolves to nothing.
var ErrServiceNotFound = errors.New("booking: service not found")

// ErrInvalidRequest wraps synchronous input-validation rejections.
// Nothing is persisted when it is returned.
var ErrInvalidRequest = errors.New("booking: invalid request")

// SlotNotAvailableError: the requested instant has no generated, non-past
// availability block.
type SlotNotAvailableError struct {
	SpecialistID uuid.UUID
	ScheduledAt  time.Time
}

func (e *SlotNotAvailableError) Error() string {
	return fmt.Sprintf("booking: no available slot for specialist %s at %s",
		e.SpecialistID, e.ScheduledAt.Format(time.RFC3339))
}

// SlotAlreadyBookedError: an individual service's slot already carries an
// active booking.
type SlotAlreadyBookedError struct {
	SpecialistID uuid.UUID
	ScheduledAt  time.Time
}

func (e *SlotAlreadyBookedError) Error() string {
	return fmt.Sprintf("booking: slot at %s for specialist %s is already booked",
		e.ScheduledAt.Format(time.RFC3339), e.SpecialistID)
}

// GroupSessionFullError: admitting the requested seats would exceed the
// session's capacity.
type GroupSessionFullError struct {
	GroupSessionID GroupSessionID
	Capacity       int
	Held           int
	Requested      int
}

func (e *GroupSessionFullError) Error() string {
	return fmt.Sprintf("booking: group session %s is full: %d of %d seats held, %d requested",
		e.GroupSessionID, e.Held, e.Capacity, e.Requested)
}

// SelfBookingNotAllowedError: a specialist tried to book their own service.
type SelfBookingNotAllowedError struct {
	CustomerID uuid.UUID
}

func (e *SelfBookingNotAllowedError) Error() string {
	return fmt.Sprintf("booking: customer %s cannot book their own service", e.CustomerID)
}

// IsAdmissionConflict reports whether err is a typed admission rejection,
// as opposed to a generic infrastructure failure. The HTTP layer uses this
// to answer 409 with a structured body.
func IsAdmissionConflict(err error) bool {
	var (
		notAvailable *SlotNotAvailableError
		booked       *SlotAlreadyBookedError
		full         *GroupSessionFullError
		self         *SelfBookingNotAllowedError
	)
	return errors.As(err, &notAvailable) ||
		errors.As(err, &booked) ||
		errors.As(err, &full) ||
		errors.As(err, &self)
}
