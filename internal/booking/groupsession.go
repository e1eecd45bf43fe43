package booking

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GroupSessionID identifies the shared session a group booking joins:
// every booking for the same service at the same instant competes for the
// same capacity. Kept as a composite value, not a free-form string, so
// capacity transactions can key a lock on it directly.
type GroupSessionID struct {
	ServiceID   uuid.UUID
	ScheduledAt time.Time
}

// NewGroupSessionID derives the session key for a service at an instant.
// The instant is normalized to UTC so equal times always produce equal keys.
func NewGroupSessionID(serviceID uuid.UUID, scheduledAt time.Time) GroupSessionID {
	return GroupSessionID{ServiceID: serviceID, ScheduledAt: scheduledAt.UTC().Truncate(time.Second)}
}

// String renders the canonical persisted form: "{serviceID}_{RFC3339 UTC}".
func (g GroupSessionID) String() string {
	return g.ServiceID.String() + "_" + g.ScheduledAt.Format(time.RFC3339)
}

// LockKey maps the session to a 64-bit advisory-lock key. Two requests for
// the same session always contend on the same key; the lock scope never
// widens past one session.
func (g GroupSessionID) LockKey() int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(g.String()))
	return int64(h.Sum64())
}

// MarshalText implements encoding.TextMarshaler for JSON round-trips.
func (g GroupSessionID) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText parses the canonical persisted form.
func (g *GroupSessionID) UnmarshalText(text []byte) error {
	parsed, err := ParseGroupSessionID(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseGroupSessionID parses "{serviceID}_{RFC3339}".
func ParseGroupSessionID(s string) (GroupSessionID, error) {
	idx := strings.Index(s, "_")
	if idx < 0 {
		return GroupSessionID{}, fmt.Errorf("booking: malformed group session id %q", s)
	}
	serviceID, err := uuid.Parse(s[:idx])
	if err != nil {
		return GroupSessionID{}, fmt.Errorf("booking: group session id %q: %w", s, err)
	}
	at, err := time.Parse(time.RFC3339, s[idx+1:])
	if err != nil {
		return GroupSessionID{}, fmt.Errorf("booking: group session id %q: %w", s, err)
	}
	return GroupSessionID{ServiceID: serviceID, ScheduledAt: at.UTC()}, nil
}
