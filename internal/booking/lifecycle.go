package booking

import (
	"fmt"
	"time"
)

// transitions is the full legal transition table. Anything absent fails
// with InvalidTransitionError; illegal transitions are never clamped to a
// neighboring valid state.
var transitions = map[Status][]Status{
	StatusDraft:          {StatusPendingPayment, StatusNoShow},
	StatusPendingPayment: {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:      {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress:     {StatusCompleted, StatusNoShow},
}

// CanTransition reports whether from → to is in the transition table.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ensureTransition returns a typed error for illegal transitions.
func ensureTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// InvalidTransitionError reports an attempt to move a booking outside the
// transition table.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking: invalid transition from %s to %s", e.From, e.To)
}

// CancellationWindowViolation reports a confirmed-booking cancellation
// attempted inside the specialist's cancellation window.
type CancellationWindowViolation struct {
	ScheduledAt time.Time
	Window      time.Duration
}

func (e *CancellationWindowViolation) Error() string {
	return fmt.Sprintf("booking: cancellation requires at least %s notice before %s",
		e.Window, e.ScheduledAt.Format(time.RFC3339))
}
