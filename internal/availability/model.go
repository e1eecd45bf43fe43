// Package availability persists and generates the bookable slot inventory
// for specialists.
package availability

import (
	"time"

	"github.com/google/uuid"
)

// Block is a persisted bookable slot instance for a specialist.
// Generated blocks are never mutated in place and never deleted by the
// engine; bookings supersede them.
type Block struct {
	ID           uuid.UUID `json:"id"`
	SpecialistID uuid.UUID `json:"specialist_id"`
	StartAt      time.Time `json:"start_at"`
	EndAt        time.Time `json:"end_at"`
	Available    bool      `json:"available"`
	Reason       string    `json:"reason,omitempty"`
	// Recurring is always false for generated blocks; kept for manually
	// entered recurring unavailability.
	Recurring bool      `json:"recurring"`
	CreatedAt time.Time `json:"created_at"`
}
