// Package scheduler drives the periodic settlement and snapshot jobs. The
// jobs themselves are idempotent (settlement through its marker insert,
// snapshots through deterministic upsert ids), so the loop can fire as often
// as the interval allows without double-applying anything.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
	"github.com/hyeonlab/moneyflow/backend/internal/service"
)

// Scheduler runs the recurring engine jobs on a fixed tick.
type Scheduler struct {
	svc           *service.FinanceService
	logger        zerolog.Logger
	loc           *time.Location
	interval      time.Duration
	settlementDay int
	now           func() time.Time
}

// New creates a scheduler. settlementDay is the day of month on which the
// monthly settlement batch fires.
func New(svc *service.FinanceService, logger zerolog.Logger, loc *time.Location, interval time.Duration, settlementDay int) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		svc:           svc,
		logger:        logger,
		loc:           loc,
		interval:      interval,
		settlementDay: settlementDay,
		now:           time.Now,
	}
}

// Run ticks until the context is cancelled. The first pass runs immediately
// so a restart on the settlement day does not wait a full interval.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Int("settlementDay", s.settlementDay).
		Msg("scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().In(s.loc)

	if now.Day() == s.settlementDay {
		month := model.MonthKeyOf(now)
		result, err := s.svc.SettleAllUsers(ctx, month)
		if err != nil {
			s.logger.Error().Err(err).Str("month", month).Msg("batch settlement failed")
		} else {
			s.logger.Info().
				Str("month", month).
				Int("settledUsers", result.SettledUserCount).
				Int("conflictUsers", result.ConflictUserCount).
				Int("errorUsers", result.ErrorUserCount).
				Msg("batch settlement complete")
		}
	}

	// CaptureSnapshot gates on the month boundary itself; calling every tick
	// only does work on the last day of the month.
	captured, err := s.svc.SnapshotAllUsers(ctx, false)
	if err != nil {
		s.logger.Error().Err(err).Msg("batch snapshot failed")
	} else if captured > 0 {
		s.logger.Info().Int("captured", captured).Msg("batch snapshot complete")
	}
}
