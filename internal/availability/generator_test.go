package availability

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xidik12/MiyZapis-sub005/internal/schedule"
)

type stubScheduleSource struct {
	specialist *schedule.Specialist
	err        error
}

func (s *stubScheduleSource) Get(ctx context.Context, specialistID uuid.UUID) (*schedule.Specialist, error) {
	return s.specialist, s.err
}

type stubBlockWriter struct {
	blocks   []Block
	inserted int64
	err      error
}

func (s *stubBlockWriter) BulkInsert(ctx context.Context, blocks []Block) (int64, error) {
	s.blocks = blocks
	if s.err != nil {
		return 0, s.err
	}
	if s.inserted >= 0 {
		return s.inserted, nil
	}
	return int64(len(blocks)), nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGenerateProducesQuantizedBlocks(t *testing.T) {
	specialistID := uuid.New()
	src := &stubScheduleSource{specialist: &schedule.Specialist{
		ID:           specialistID,
		UserID:       uuid.New(),
		WorkingHours: json.RawMessage(`{"monday": {"isWorking": true, "startTime": "09:00", "endTime": "09:45"}}`),
	}}
	writer := &stubBlockWriter{inserted: -1}
	// Monday 2026-08-31, midnight UTC.
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	gen := NewGenerator(src, writer, fixedClock(now), nil, nil)

	inserted, err := gen.Generate(context.Background(), specialistID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inserted)
	require.Len(t, writer.blocks, 3)

	first := writer.blocks[0]
	assert.Equal(t, specialistID, first.SpecialistID)
	assert.Equal(t, time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC), first.StartAt)
	assert.Equal(t, time.Date(2026, 8, 31, 9, 15, 0, 0, time.UTC), first.EndAt)
	assert.True(t, first.Available)
	assert.False(t, first.Recurring)
}

func TestGenerateIdempotentRerun(t *testing.T) {
	specialistID := uuid.New()
	src := &stubScheduleSource{specialist: &schedule.Specialist{
		ID:           specialistID,
		WorkingHours: json.RawMessage(`{"monday": {"isWorking": true, "startTime": "09:00", "endTime": "09:45"}}`),
	}}
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	// The store reports zero rows inserted on the second run; the
	// generator passes that through rather than failing.
	writer := &stubBlockWriter{inserted: 0}
	gen := NewGenerator(src, writer, fixedClock(now), nil, nil)

	inserted, err := gen.Generate(context.Background(), specialistID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)
	assert.Len(t, writer.blocks, 3, "candidates are still offered to the store")
}

func TestGenerateMissingSchedule(t *testing.T) {
	gen := NewGenerator(&stubScheduleSource{}, &stubBlockWriter{}, nil, nil, nil)
	_, err := gen.Generate(context.Background(), uuid.New(), 4)
	require.ErrorIs(t, err, ErrNoSchedule)
}

func TestGenerateMalformedWorkingHours(t *testing.T) {
	src := &stubScheduleSource{specialist: &schedule.Specialist{
		ID:           uuid.New(),
		WorkingHours: json.RawMessage(`{"monday": {"isWorking": true, "startTime": "17:00", "endTime": "09:00"}}`),
	}}
	gen := NewGenerator(src, &stubBlockWriter{}, nil, nil, nil)
	_, err := gen.Generate(context.Background(), uuid.New(), 4)
	var perr *schedule.ScheduleParseError
	require.ErrorAs(t, err, &perr)
}
