// Package scheduler runs periodic maintenance: ending sponsorships and subscriptions that expired.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/config"
	"github.com/cineverse-captions/cineverse/internal/db/controller/payment"
	"github.com/cineverse-captions/cineverse/internal/db/controller/subscription"
)

// Result counts the rows changed by one expiry run.
type Result struct {
	Sponsorships  int64
	Subscriptions int64
}

// ExpiryScheduler ends sponsored placements and subscriptions whose time ran out.
type ExpiryScheduler struct {
	db       *gorm.DB
	schedule string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// New creates a scheduler; it does nothing until Start.
func New(db *gorm.DB, cfg config.Scheduler) *ExpiryScheduler {
	return &ExpiryScheduler{
		db:       db,
		schedule: cfg.ExpirySchedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// RunOnce expires everything that ended before now.
func RunOnce(db *gorm.DB, now time.Time) (Result, error) {
	var (
		res Result
		err error
	)

	if res.Sponsorships, err = payment.ExpireSponsorships(db, now); err != nil {
		return res, fmt.Errorf("failed to expire sponsorships: %w", err)
	}

	if res.Subscriptions, err = subscription.ExpireSubscriptions(db, now); err != nil {
		return res, fmt.Errorf("failed to expire subscriptions: %w", err)
	}

	return res, nil
}

// Start schedules the expiry job and stops it when ctx is done.
func (s *ExpiryScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	log.Info().Str("schedule", s.schedule).Time("next_run", s.cron.Entry(entryID).Next).
		Msg("expiry scheduler started")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job and stops the scheduler.
func (s *ExpiryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false

	log.Info().Msg("expiry scheduler stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *ExpiryScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.isRunning
}

func (s *ExpiryScheduler) run() {
	res, err := RunOnce(s.db, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("expiry run failed")
		return
	}

	if res.Sponsorships > 0 || res.Subscriptions > 0 {
		log.Info().Int64("sponsorships", res.Sponsorships).Int64("subscriptions", res.Subscriptions).
			Msg("expired sponsorships and subscriptions")
	}
}
