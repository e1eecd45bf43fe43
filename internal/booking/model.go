// Package booking implements the admission and lifecycle engine:
// validating booking requests against availability and group capacity,
// and gating confirmation behind payment completion.
package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks a booking through its lifecycle.
type Status string

const (
	StatusDraft          Status = "DRAFT"
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusConfirmed      Status = "CONFIRMED"
	StatusInProgress     Status = "IN_PROGRESS"
	StatusCompleted      Status = "COMPLETED"
	StatusCancelled      Status = "CANCELLED"
	StatusNoShow         Status = "NO_SHOW"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Active reports whether the booking still holds its slot or seats.
func (s Status) Active() bool {
	switch s {
	case StatusCancelled, StatusNoShow:
		return false
	}
	return true
}

// Booking is a customer's reservation of a specialist's time slot.
type Booking struct {
	ID              uuid.UUID       `json:"id"`
	SpecialistID    uuid.UUID       `json:"specialist_id"`
	ServiceID       uuid.UUID       `json:"service_id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	ScheduledAt     time.Time       `json:"scheduled_at"`
	DurationMinutes int             `json:"duration_minutes"`
	Status          Status          `json:"status"`
	ParticipantCount int            `json:"participant_count"`
	GroupSessionID  *GroupSessionID `json:"group_session_id,omitempty"`
	CompletionNotes string          `json:"completion_notes,omitempty"`
	// PaymentURL is transient: set when a hosted checkout is pending,
	// never persisted.
	PaymentURL string    `json:"payment_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Service is the offering a booking reserves. Group sessions let multiple
// independent bookings share one scheduled time up to MaxParticipants.
type Service struct {
	ID             uuid.UUID `json:"id"`
	SpecialistID   uuid.UUID `json:"specialist_id"`
	Name           string    `json:"name"`
	IsGroupSession bool      `json:"is_group_session"`
	// MaxParticipants caps a group session's combined seats. Nil means
	// unlimited.
	MaxParticipants *int `json:"max_participants,omitempty"`
	// MinParticipants is advisory: it informs specialist-side "proceed or
	// cancel" decisions and is never enforced at admission.
	MinParticipants int    `json:"min_participants"`
	PriceCents      int64  `json:"price_cents"`
	Currency        string `json:"currency"`
	DurationMinutes int    `json:"duration_minutes"`
}
