package availability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides persistence for availability blocks.
type Store struct {
	db DB
}

// NewStore creates a new availability store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// insertBatchSize bounds the VALUES list per statement. A 4-week horizon
// tops out at 2688 blocks per specialist.
const insertBatchSize = 500

// BulkInsert inserts blocks, silently skipping rows whose exact
// (specialist_id, start_at, end_at) already exists. Returns the number of
// rows actually inserted, which makes generation re-runs idempotent.
func (s *Store) BulkInsert(ctx context.Context, blocks []Block) (int64, error) {
	var inserted int64
	for base := 0; base < len(blocks); base += insertBatchSize {
		end := base + insertBatchSize
		if end > len(blocks) {
			end = len(blocks)
		}
		batch := blocks[base:end]

		var sb strings.Builder
		sb.WriteString(`
		INSERT INTO availability_blocks (id, specialist_id, start_at, end_at, available, reason, recurring, created_at)
		VALUES `)
		args := make([]any, 0, len(batch)*8)
		for i, b := range batch {
			if i > 0 {
				sb.WriteString(", ")
			}
			n := i * 8
			fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
				n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8)
			id := b.ID
			if id == uuid.Nil {
				id = uuid.New()
			}
			createdAt := b.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now().UTC()
			}
			args = append(args, id, b.SpecialistID, b.StartAt, b.EndAt, b.Available, b.Reason, b.Recurring, createdAt)
		}
		sb.WriteString(" ON CONFLICT (specialist_id, start_at, end_at) DO NOTHING")

		tag, err := s.db.Exec(ctx, sb.String(), args...)
		if err != nil {
			return inserted, fmt.Errorf("availability: bulk insert: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// ListBlocks returns a specialist's blocks with start_at in [from, to),
// ordered by start.
func (s *Store) ListBlocks(ctx context.Context, specialistID uuid.UUID, from, to time.Time) ([]Block, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, specialist_id, start_at, end_at, available, reason, recurring, created_at
		FROM availability_blocks
		WHERE specialist_id = $1 AND start_at >= $2 AND start_at < $3
		ORDER BY start_at ASC`, specialistID, from, to)
	if err != nil {
		return nil, fmt.Errorf("availability: list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []Block
	for rows.Next() {
		var b Block
		if err := rows.Scan(&b.ID, &b.SpecialistID, &b.StartAt, &b.EndAt, &b.Available, &b.Reason, &b.Recurring, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("availability: scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("availability: list blocks: %w", err)
	}
	return blocks, nil
}

// ListOpen returns blocks in [from, to) that are still bookable: available
// and not already held by an active individual booking. Group-session
// slots stay listed while any seats remain; capacity is checked at
// admission. Pending-payment holds older than pendingCutoff do not close
// a slot.
func (s *Store) ListOpen(ctx context.Context, specialistID uuid.UUID, from, to time.Time, pendingCutoff time.Time) ([]Block, error) {
	rows, err := s.db.Query(ctx, `
		SELECT ab.id, ab.specialist_id, ab.start_at, ab.end_at, ab.available, ab.reason, ab.recurring, ab.created_at
		FROM availability_blocks ab
		WHERE ab.specialist_id = $1 AND ab.start_at >= $2 AND ab.start_at < $3
		  AND ab.available
		  AND NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.specialist_id = ab.specialist_id
			  AND b.scheduled_at = ab.start_at
			  AND b.group_session_id IS NULL
			  AND b.status NOT IN ('CANCELLED', 'NO_SHOW')
			  AND NOT (b.status = 'PENDING_PAYMENT' AND b.created_at < $4)
		  )
		ORDER BY ab.start_at ASC`, specialistID, from, to, pendingCutoff)
	if err != nil {
		return nil, fmt.Errorf("availability: list open: %w", err)
	}
	defer rows.Close()

	var blocks []Block
	for rows.Next() {
		var b Block
		if err := rows.Scan(&b.ID, &b.SpecialistID, &b.StartAt, &b.EndAt, &b.Available, &b.Reason, &b.Recurring, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("availability: scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("availability: list open: %w", err)
	}
	return blocks, nil
}

// HasBlock reports whether an available generated block starts exactly at
// startAt. Slot quantization makes this an equality test.
func (s *Store) HasBlock(ctx context.Context, specialistID uuid.UUID, startAt time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM availability_blocks
			WHERE specialist_id = $1 AND start_at = $2 AND available
		)`, specialistID, startAt).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("availability: has block: %w", err)
	}
	return exists, nil
}

// LatestBlock returns the start of the specialist's furthest generated
// block, or nil when none exist.
func (s *Store) LatestBlock(ctx context.Context, specialistID uuid.UUID) (*time.Time, error) {
	var latest *time.Time
	err := s.db.QueryRow(ctx, `
		SELECT MAX(start_at) FROM availability_blocks WHERE specialist_id = $1`,
		specialistID).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("availability: latest block: %w", err)
	}
	return latest, nil
}
