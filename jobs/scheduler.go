// Package jobs runs the background closing sweep on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"bidmaster/service"
)

// Scheduler drives the closing sweep that settles expired lots.
type Scheduler struct {
	cron    *cron.Cron
	closing service.ClosingService
	every   time.Duration
}

// NewScheduler creates a scheduler that sweeps at the given interval.
func NewScheduler(closing service.ClosingService, every time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		closing: closing,
		every:   every,
	}
}

// Start registers the sweep and runs it once immediately so lots that
// expired while the process was down settle without waiting a full interval.
func (s *Scheduler) Start(ctx context.Context) error {
	sweep := func() {
		if err := s.closing.CloseExpiredItems(ctx); err != nil {
			log.WithError(err).Error("Closing sweep failed")
		}
	}

	spec := fmt.Sprintf("@every %s", s.every)
	if _, err := s.cron.AddFunc(spec, sweep); err != nil {
		return fmt.Errorf("failed to schedule closing sweep: %w", err)
	}

	go sweep()

	s.cron.Start()
	log.WithFields(log.Fields{
		"interval": s.every.String(),
	}).Info("Closing sweep scheduler started")

	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Closing sweep scheduler stopped")
}
