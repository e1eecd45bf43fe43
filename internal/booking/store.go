package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx pool interface for testing.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides persistence for bookings and services.
type Store struct {
	db DB
}

// NewStore creates a new booking store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

const bookingColumns = `id, specialist_id, service_id, customer_id, scheduled_at,
		duration_minutes, status, participant_count, group_session_id,
		completion_notes, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var groupID *string
	err := row.Scan(&b.ID, &b.SpecialistID, &b.ServiceID, &b.CustomerID, &b.ScheduledAt,
		&b.DurationMinutes, &b.Status, &b.ParticipantCount, &groupID,
		&b.CompletionNotes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if groupID != nil {
		gsid, err := ParseGroupSessionID(*groupID)
		if err != nil {
			return nil, err
		}
		b.GroupSessionID = &gsid
	}
	return &b, nil
}

// GetService loads a service offering.
func (s *Store) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	var svc Service
	err := s.db.QueryRow(ctx, `
		SELECT id, specialist_id, name, is_group_session, max_participants,
		       min_participants, price_cents, currency, duration_minutes
		FROM services WHERE id = $1`, id).
		Scan(&svc.ID, &svc.SpecialistID, &svc.Name, &svc.IsGroupSession, &svc.MaxParticipants,
			&svc.MinParticipants, &svc.PriceCents, &svc.Currency, &svc.DurationMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking: get service: %w", err)
	}
	return &svc, nil
}

// FindByID loads a booking.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking: find by id: %w", err)
	}
	return b, nil
}

// FindByGroupSession returns all bookings sharing a group session key,
// regardless of status, ordered by creation.
func (s *Store) FindByGroupSession(ctx context.Context, gsid GroupSessionID) ([]*Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings WHERE group_session_id = $1
		ORDER BY created_at ASC`, gsid.String())
	if err != nil {
		return nil, fmt.Errorf("booking: find by group session: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("booking: scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking: find by group session: %w", err)
	}
	return bookings, nil
}

// CountActiveForSlot counts bookings holding (specialistID, scheduledAt).
// Cancelled and no-show rows never count; pending-payment rows created
// before pendingCutoff are treated as released even if the expiry sweep
// has not cancelled them yet.
func (s *Store) CountActiveForSlot(ctx context.Context, specialistID uuid.UUID, scheduledAt time.Time, pendingCutoff time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE specialist_id = $1 AND scheduled_at = $2
		  AND status NOT IN ('CANCELLED', 'NO_SHOW')
		  AND NOT (status = 'PENDING_PAYMENT' AND created_at < $3)`,
		specialistID, scheduledAt, pendingCutoff).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("booking: count active for slot: %w", err)
	}
	return count, nil
}

// SeatsHeld sums participant counts over active bookings of a group
// session. See CountActiveForSlot for the pending-cutoff semantics.
func (s *Store) SeatsHeld(ctx context.Context, gsid GroupSessionID, pendingCutoff time.Time) (int, error) {
	return seatsHeld(ctx, s.db, gsid, pendingCutoff)
}

func seatsHeld(ctx context.Context, q queryRower, gsid GroupSessionID, pendingCutoff time.Time) (int, error) {
	var held int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(participant_count), 0) FROM bookings
		WHERE group_session_id = $1
		  AND status NOT IN ('CANCELLED', 'NO_SHOW')
		  AND NOT (status = 'PENDING_PAYMENT' AND created_at < $2)`,
		gsid.String(), pendingCutoff).Scan(&held)
	if err != nil {
		return 0, fmt.Errorf("booking: seats held: %w", err)
	}
	return held, nil
}

const insertBookingSQL = `
		INSERT INTO bookings (id, specialist_id, service_id, customer_id, scheduled_at,
			duration_minutes, status, participant_count, group_session_id,
			completion_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

func insertArgs(b *Booking) []any {
	var groupID *string
	if b.GroupSessionID != nil {
		s := b.GroupSessionID.String()
		groupID = &s
	}
	return []any{b.ID, b.SpecialistID, b.ServiceID, b.CustomerID, b.ScheduledAt,
		b.DurationMinutes, b.Status, b.ParticipantCount, groupID,
		b.CompletionNotes, b.CreatedAt, b.UpdatedAt}
}

// CreateIndividual inserts an individual-service booking. The partial
// unique index on (specialist_id, scheduled_at) for active individual
// bookings is the atomic double-booking guard: a concurrent winner makes
// this insert fail, surfaced as SlotAlreadyBookedError.
func (s *Store) CreateIndividual(ctx context.Context, b *Booking) error {
	stampForInsert(b)
	_, err := s.db.Exec(ctx, insertBookingSQL, insertArgs(b)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return &SlotAlreadyBookedError{SpecialistID: b.SpecialistID, ScheduledAt: b.ScheduledAt}
		}
		return fmt.Errorf("booking: create individual: %w", err)
	}
	return nil
}

// CreateGroup admits a booking into a group session inside one
// transaction. An advisory lock keyed by the session serializes racing
// requests for the last seats; the seat sum is read under that lock right
// before the insert. maxParticipants nil means unlimited.
func (s *Store) CreateGroup(ctx context.Context, b *Booking, maxParticipants *int, pendingCutoff time.Time) error {
	if b.GroupSessionID == nil {
		return fmt.Errorf("booking: create group: group session id required")
	}
	stampForInsert(b)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("booking: create group: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, b.GroupSessionID.LockKey()); err != nil {
		return fmt.Errorf("booking: create group: lock session: %w", err)
	}

	held, err := seatsHeld(ctx, tx, *b.GroupSessionID, pendingCutoff)
	if err != nil {
		return err
	}
	if maxParticipants != nil && held+b.ParticipantCount > *maxParticipants {
		return &GroupSessionFullError{
			GroupSessionID: *b.GroupSessionID,
			Capacity:       *maxParticipants,
			Held:           held,
			Requested:      b.ParticipantCount,
		}
	}

	if _, err := tx.Exec(ctx, insertBookingSQL, insertArgs(b)...); err != nil {
		return fmt.Errorf("booking: create group: insert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("booking: create group: commit: %w", err)
	}
	return nil
}

func stampForInsert(b *Booking) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = b.CreatedAt
}

// UpdateStatus moves a booking from → to with a guard on the current
// status, so a concurrent transition cannot be overwritten. Callers must
// have validated the transition against the lifecycle table first.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, notes string) (*Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx, `
		UPDATE bookings
		SET status = $1,
		    completion_notes = CASE WHEN $2 <> '' THEN $2 ELSE completion_notes END,
		    updated_at = now()
		WHERE id = $3 AND status = $4
		RETURNING `+bookingColumns, to, notes, id, from))
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost a race or the caller's view is stale: report against the
		// booking's current status.
		current, findErr := s.FindByID(ctx, id)
		if findErr != nil {
			return nil, findErr
		}
		return nil, &InvalidTransitionError{From: current.Status, To: to}
	}
	if err != nil {
		return nil, fmt.Errorf("booking: update status: %w", err)
	}
	return b, nil
}

// UpdateLocked loads a booking under a row lock, hands it to fn, and
// persists the status fn returns before the lock is released. fn
// returning the current status commits with the row untouched. Used
// where a side effect must be serialized with the status check, so two
// racing callers cannot both act on a stale row.
func (s *Store) UpdateLocked(ctx context.Context, id uuid.UUID, fn func(b *Booking) (Status, string, error)) (*Booking, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("booking: update locked: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b, err := scanBooking(tx.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings WHERE id = $1
		FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking: update locked: %w", err)
	}

	to, notes, err := fn(b)
	if err != nil {
		return nil, err
	}
	if to == b.Status && notes == "" {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("booking: update locked: commit: %w", err)
		}
		return b, nil
	}

	updated, err := scanBooking(tx.QueryRow(ctx, `
		UPDATE bookings
		SET status = $1,
		    completion_notes = CASE WHEN $2 <> '' THEN $2 ELSE completion_notes END,
		    updated_at = now()
		WHERE id = $3
		RETURNING `+bookingColumns, to, notes, id))
	if err != nil {
		return nil, fmt.Errorf("booking: update locked: update: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("booking: update locked: commit: %w", err)
	}
	return updated, nil
}

// ExpireStale cancels pending-payment bookings created before cutoff and
// returns their ids. Cancelling releases the slot or seats they held.
func (s *Store) ExpireStale(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE bookings
		SET status = 'CANCELLED', updated_at = now()
		WHERE status = 'PENDING_PAYMENT' AND created_at < $1
		RETURNING id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("booking: expire stale: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("booking: expire stale: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking: expire stale: %w", err)
	}
	return ids, nil
}
