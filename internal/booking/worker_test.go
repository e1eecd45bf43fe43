package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xidik12/MiyZapis-sub005/internal/notify"
	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

type stubExpiryStore struct {
	mu      sync.Mutex
	ids     []uuid.UUID
	err     error
	cutoffs []time.Time
}

func (s *stubExpiryStore) ExpireStale(_ context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffs = append(s.cutoffs, cutoff)
	if s.err != nil {
		return nil, s.err
	}
	return s.ids, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) Notify(_ context.Context, event string, _ any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func TestProcessDueSweepsAndNotifies(t *testing.T) {
	store := &stubExpiryStore{ids: []uuid.UUID{uuid.New(), uuid.New()}}
	sink := &recordingSink{}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	w := NewExpiryWorker(store, 15*time.Minute, sink, logging.New("error"), nil).
		WithClock(func() time.Time { return now })

	count, err := w.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.Len(t, store.cutoffs, 1)
	assert.Equal(t, now.Add(-15*time.Minute), store.cutoffs[0])

	assert.Equal(t, []string{notify.EventBookingCancelled, notify.EventBookingCancelled}, sink.events)
}

func TestProcessDueNothingStale(t *testing.T) {
	store := &stubExpiryStore{}
	sink := &recordingSink{}

	w := NewExpiryWorker(store, 15*time.Minute, sink, logging.New("error"), nil)
	count, err := w.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, sink.events)
}

func TestProcessDuePropagatesStoreError(t *testing.T) {
	store := &stubExpiryStore{err: errors.New("connection refused")}

	w := NewExpiryWorker(store, 15*time.Minute, nil, logging.New("error"), nil)
	_, err := w.ProcessDue(context.Background())
	assert.Error(t, err)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := &stubExpiryStore{}
	w := NewExpiryWorker(store, 15*time.Minute, nil, logging.New("error"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotEmpty(t, store.cutoffs, "worker should have swept at least once")
}
