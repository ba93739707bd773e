package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/bcnelson/maintenance-window-manager/internal/autotag"
	"github.com/bcnelson/maintenance-window-manager/internal/domain"
)

// CleanupScheduler periodically removes expired auto-tags.
// Overlapping runs are skipped rather than queued.
type CleanupScheduler struct {
	tags     *autotag.Manager
	schedule string
	cron     *cron.Cron

	mu      sync.Mutex
	running bool
	last    *domain.CleanupReport
}

// NewCleanupScheduler creates a scheduler for a cron spec such as "@every 1h".
func NewCleanupScheduler(tags *autotag.Manager, schedule string) *CleanupScheduler {
	return &CleanupScheduler{
		tags:     tags,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start runs one pass immediately in the background and then on schedule
// until ctx is cancelled or Stop is called.
func (s *CleanupScheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunNow(ctx) }); err != nil {
		return fmt.Errorf("parsing cleanup schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	go s.RunNow(ctx)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	log.Info().Str("schedule", s.schedule).Msg("auto-tag cleanup scheduled")
	return nil
}

// Stop stops scheduling and waits for a running pass to finish.
func (s *CleanupScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunNow runs one cleanup pass. It returns false without running when another
// pass is still in progress.
func (s *CleanupScheduler) RunNow(ctx context.Context) (domain.CleanupReport, bool) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Debug().Msg("auto-tag cleanup already running, skipping")
		return domain.CleanupReport{}, false
	}
	s.running = true
	s.mu.Unlock()

	report := s.tags.CleanupExpired(ctx)

	s.mu.Lock()
	s.running = false
	s.last = &report
	s.mu.Unlock()
	return report, true
}

// LastReport returns the result of the most recent pass, if any.
func (s *CleanupScheduler) LastReport() (domain.CleanupReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return domain.CleanupReport{}, false
	}
	return *s.last, true
}
