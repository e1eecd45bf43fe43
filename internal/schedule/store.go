package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Specialist holds the scheduling profile for one specialist: who owns it,
// the declared weekly working hours (raw document, parsed on demand), and
// the cancellation policy.
type Specialist struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	// Timezone is an IANA name, e.g. "Europe/Kyiv". Empty means UTC.
	Timezone string `json:"timezone,omitempty"`
	// CancellationWindowHours is how close to the appointment a confirmed
	// booking may still be cancelled. Zero means the platform default.
	CancellationWindowHours int             `json:"cancellation_window_hours,omitempty"`
	WorkingHours            json.RawMessage `json:"working_hours"`
}

// CancellationWindow returns the specialist's configured window, or def
// when none is set.
func (s *Specialist) CancellationWindow(def time.Duration) time.Duration {
	if s == nil || s.CancellationWindowHours <= 0 {
		return def
	}
	return time.Duration(s.CancellationWindowHours) * time.Hour
}

// Location resolves the specialist's timezone, falling back to UTC.
func (s *Specialist) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Store provides persistence for specialist scheduling profiles.
type Store struct {
	redis *redis.Client
}

// NewStore creates a new specialist schedule store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) key(specialistID uuid.UUID) string {
	return "specialist:schedule:" + specialistID.String()
}

// Get loads a specialist profile. Returns (nil, nil) when none exists.
func (s *Store) Get(ctx context.Context, specialistID uuid.UUID) (*Specialist, error) {
	data, err := s.redis.Get(ctx, s.key(specialistID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: get specialist %s: %w", specialistID, err)
	}
	var sp Specialist
	if err := json.Unmarshal(data, &sp); err != nil {
		return nil, fmt.Errorf("schedule: decode specialist %s: %w", specialistID, err)
	}
	return &sp, nil
}

// ListIDs scans for every specialist with a stored schedule. Keys that do
// not carry a parseable uuid are skipped.
func (s *Store) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	iter := s.redis.Scan(ctx, 0, "specialist:schedule:*", 100).Iterator()
	for iter.Next(ctx) {
		raw := strings.TrimPrefix(iter.Val(), "specialist:schedule:")
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("schedule: list specialists: %w", err)
	}
	return ids, nil
}

// Set stores a specialist profile.
func (s *Store) Set(ctx context.Context, sp *Specialist) error {
	if sp == nil || sp.ID == uuid.Nil {
		return fmt.Errorf("schedule: specialist id required")
	}
	data, err := json.Marshal(sp)
	if err != nil {
		return fmt.Errorf("schedule: encode specialist %s: %w", sp.ID, err)
	}
	if err := s.redis.Set(ctx, s.key(sp.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("schedule: set specialist %s: %w", sp.ID, err)
	}
	return nil
}
