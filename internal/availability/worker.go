package availability

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

// SpecialistLister enumerates specialists with stored schedules.
type SpecialistLister interface {
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// RefreshWorker keeps every specialist's availability generated out to the
// rolling horizon. Generation is idempotent, so each pass only adds the
// blocks the horizon has newly uncovered.
type RefreshWorker struct {
	specialists  SpecialistLister
	generator    *Generator
	horizonWeeks int
	logger       *logging.Logger
}

// NewRefreshWorker creates the horizon refresh worker.
func NewRefreshWorker(specialists SpecialistLister, generator *Generator, horizonWeeks int, logger *logging.Logger) *RefreshWorker {
	if specialists == nil || generator == nil {
		panic("availability: refresh worker requires a lister and a generator")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RefreshWorker{
		specialists:  specialists,
		generator:    generator,
		horizonWeeks: horizonWeeks,
		logger:       logger,
	}
}

// ProcessDue regenerates availability for every known specialist and
// returns the total number of blocks inserted. Per-specialist failures
// are logged and skipped so one broken schedule cannot starve the rest.
func (w *RefreshWorker) ProcessDue(ctx context.Context) (int64, error) {
	ids, err := w.specialists.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, id := range ids {
		inserted, err := w.generator.Generate(ctx, id, w.horizonWeeks)
		if err != nil {
			if errors.Is(err, ErrNoSchedule) {
				continue
			}
			w.logger.Error("availability refresh failed", "specialist_id", id, "error", err)
			continue
		}
		total += inserted
	}
	if total > 0 {
		w.logger.Info("availability refreshed", "specialists", len(ids), "inserted", total)
	}
	return total, nil
}

// Run refreshes on the given interval until ctx is cancelled. A pass runs
// immediately on start so a fresh deployment has blocks before the first
// tick.
func (w *RefreshWorker) Run(ctx context.Context, every time.Duration) {
	w.logger.Info("availability refresh worker started", "every", every, "horizon_weeks", w.horizonWeeks)
	if _, err := w.ProcessDue(ctx); err != nil {
		w.logger.Error("availability refresh pass failed", "error", err)
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("availability refresh worker stopped")
			return
		case <-ticker.C:
			if _, err := w.ProcessDue(ctx); err != nil {
				w.logger.Error("availability refresh pass failed", "error", err)
			}
		}
	}
}
