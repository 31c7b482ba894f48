// Package scheduler triggers enrichment runs on a cron schedule.
package scheduler

import (
	"context"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// RunFunc is one enrichment run.
type RunFunc func(ctx context.Context) error

// Scheduler fires a RunFunc per cron schedule and optionally once at
// startup. A run still in flight is not re-entered; the overlapping
// trigger is skipped with a warning. The only state kept is the cron
// entry's next fire time.
type Scheduler struct {
	cron         *cron.Cron
	run          RunFunc
	runAtStartup bool
	running      atomic.Bool

	ctx context.Context
}

// New validates the cron expression and prepares the scheduler.
func New(spec string, runAtStartup bool, run RunFunc) (*Scheduler, error) {
	s := &Scheduler{
		cron:         cron.New(),
		run:          run,
		runAtStartup: runAtStartup,
	}
	if _, err := s.cron.AddFunc(spec, s.trigger); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins scheduling. When runAtStartup is set, one run is issued
// immediately (synchronously, so callers can rely on the first fetch
// having been attempted before serving).
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	if s.runAtStartup {
		s.trigger()
	}
	s.cron.Start()
}

// Stop halts scheduling; an in-flight run is not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) trigger() {
	if !s.running.CompareAndSwap(false, true) {
		log.Warn().Msg("enrichment run still in progress, skipping trigger")
		return
	}
	defer s.running.Store(false)

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.run(ctx); err != nil {
		log.Error().Err(err).Msg("enrichment run failed")
	}
}
