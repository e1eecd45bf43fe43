package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xidik12/MiyZapis-sub005/internal/observability/metrics"
	"github.com/xidik12/MiyZapis-sub005/internal/schedule"
	"github.com/xidik12/MiyZapis-sub005/pkg/logging"
)

// ErrNoSchedule is returned when a specialist has no stored working hours.
var ErrNoSchedule = errors.New("availability: specialist schedule not found")

// ScheduleSource loads specialist scheduling profiles.
type ScheduleSource interface {
	Get(ctx context.Context, specialistID uuid.UUID) (*schedule.Specialist, error)
}

// BlockWriter persists generated blocks.
type BlockWriter interface {
	BulkInsert(ctx context.Context, blocks []Block) (int64, error)
}

// Generator expands stored working hours into availability blocks over a
// rolling horizon.
type Generator struct {
	schedules ScheduleSource
	blocks    BlockWriter
	clock     func() time.Time
	logger    *logging.Logger
	metrics   *metrics.SlotMetrics
}

// NewGenerator creates an availability generator. The clock is injectable
// so tests can pin "now"; nil means time.Now.
func NewGenerator(schedules ScheduleSource, blocks BlockWriter, clock func() time.Time, logger *logging.Logger, m *metrics.SlotMetrics) *Generator {
	if schedules == nil || blocks == nil {
		panic("availability: schedule source and block writer required")
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{schedules: schedules, blocks: blocks, clock: clock, logger: logger, metrics: m}
}

// Generate expands the specialist's working hours over horizonWeeks and
// bulk-inserts the resulting blocks. Re-running over the same horizon
// inserts nothing new. Returns the number of blocks inserted.
func (g *Generator) Generate(ctx context.Context, specialistID uuid.UUID, horizonWeeks int) (int64, error) {
	if horizonWeeks <= 0 {
		horizonWeeks = 4
	}
	started := g.clock()

	sp, err := g.schedules.Get(ctx, specialistID)
	if err != nil {
		return 0, fmt.Errorf("availability: load schedule: %w", err)
	}
	if sp == nil || len(sp.WorkingHours) == 0 {
		return 0, ErrNoSchedule
	}

	week, err := schedule.ParseWorkingHours(sp.WorkingHours)
	if err != nil {
		return 0, err
	}

	now := g.clock().In(sp.Location())
	from, to := schedule.Horizon(now, horizonWeeks)
	slots := schedule.GenerateSlots(week, from, to, now)
	if len(slots) == 0 {
		g.logger.Info("availability: nothing to generate",
			"specialist_id", specialistID, "horizon_weeks", horizonWeeks)
		return 0, nil
	}

	blocks := make([]Block, len(slots))
	for i, s := range slots {
		blocks[i] = Block{
			SpecialistID: specialistID,
			StartAt:      s.Start.UTC(),
			EndAt:        s.End.UTC(),
			Available:    true,
			Reason:       "generated from working hours",
		}
	}

	inserted, err := g.blocks.BulkInsert(ctx, blocks)
	if err != nil {
		return inserted, err
	}

	g.metrics.ObserveGeneration(g.clock().Sub(started).Seconds(), inserted)
	g.logger.Info("availability: generated blocks",
		"specialist_id", specialistID,
		"horizon_weeks", horizonWeeks,
		"candidates", len(blocks),
		"inserted", inserted,
	)
	return inserted, nil
}
