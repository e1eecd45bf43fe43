package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WindowPolicy resolves cancellation windows from specialist profiles,
// falling back to the platform default when a specialist has none set.
type WindowPolicy struct {
	store *Store
	def   time.Duration
}

// NewWindowPolicy creates a profile-backed cancellation window policy.
func NewWindowPolicy(store *Store, def time.Duration) *WindowPolicy {
	return &WindowPolicy{store: store, def: def}
}

// Window returns the cancellation window for a specialist.
func (p *WindowPolicy) Window(ctx context.Context, specialistID uuid.UUID) (time.Duration, error) {
	sp, err := p.store.Get(ctx, specialistID)
	if err != nil {
		return 0, err
	}
	return sp.CancellationWindow(p.def), nil
}
