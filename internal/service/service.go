// Package service implements the settlement and balance-reflection engine:
// transaction records, balance deltas, goal-fund projection, monthly
// settlement with rollback, and period-end snapshots. All multi-document
// effects are sequences of independent single-document writes; every applied
// effect is recorded as a signed delta plus target id on the transaction
// itself so it can be reversed exactly.
package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hyeonlab/moneyflow/backend/internal/store"
)

// FinanceService holds the engine's dependencies. One canonical timezone
// drives all "is this occurrence due" date math.
type FinanceService struct {
	store  store.Store
	logger zerolog.Logger
	loc    *time.Location
	now    func() time.Time
}

// Option configures a FinanceService.
type Option func(*FinanceService)

// WithClock overrides the wall clock, used by tests to pin "today".
func WithClock(now func() time.Time) Option {
	return func(s *FinanceService) {
		s.now = now
	}
}

// NewFinanceService creates the engine on top of a document store.
func NewFinanceService(st store.Store, logger zerolog.Logger, loc *time.Location, opts ...Option) *FinanceService {
	if loc == nil {
		loc = time.UTC
	}
	s := &FinanceService{
		store:  st,
		logger: logger,
		loc:    loc,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// isDue reports whether an occurrence date is today-or-earlier in the
// canonical timezone.
func (s *FinanceService) isDue(occurrence time.Time) bool {
	o := occurrence.In(s.loc)
	t := s.now().In(s.loc)
	occDay := time.Date(o.Year(), o.Month(), o.Day(), 0, 0, 0, 0, s.loc)
	today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
	return !occDay.After(today)
}
