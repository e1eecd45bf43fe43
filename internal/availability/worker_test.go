package availability

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xidik12/MiyZapis-sub005/internal/schedule"
	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

type stubSpecialistLister struct {
	ids []uuid.UUID
	err error
}

func (s *stubSpecialistLister) ListIDs(context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

func TestRefreshWorkerProcessDue(t *testing.T) {
	src := &stubScheduleSource{specialist: &schedule.Specialist{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		WorkingHours: json.RawMessage(`{"monday": {"isWorking": true, "startTime": "09:00", "endTime": "10:00"}}`),
	}}
	writer := &stubBlockWriter{inserted: -1}
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	gen := NewGenerator(src, writer, fixedClock(now), nil, nil)

	lister := &stubSpecialistLister{ids: []uuid.UUID{uuid.New(), uuid.New()}}
	w := NewRefreshWorker(lister, gen, 1, logging.New("error"))

	total, err := w.ProcessDue(context.Background())
	require.NoError(t, err)
	// 09:00-10:00 on one Monday is four blocks, generated per specialist.
	assert.Equal(t, int64(8), total)
}

func TestRefreshWorkerSkipsMissingSchedules(t *testing.T) {
	src := &stubScheduleSource{}
	writer := &stubBlockWriter{inserted: -1}
	gen := NewGenerator(src, writer, fixedClock(time.Now()), nil, nil)

	lister := &stubSpecialistLister{ids: []uuid.UUID{uuid.New()}}
	w := NewRefreshWorker(lister, gen, 1, logging.New("error"))

	total, err := w.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRefreshWorkerPropagatesListerError(t *testing.T) {
	src := &stubScheduleSource{}
	writer := &stubBlockWriter{inserted: -1}
	gen := NewGenerator(src, writer, fixedClock(time.Now()), nil, nil)

	lister := &stubSpecialistLister{err: errors.New("connection refused")}
	w := NewRefreshWorker(lister, gen, 1, logging.New("error"))

	_, err := w.ProcessDue(context.Background())
	assert.Error(t, err)
}
