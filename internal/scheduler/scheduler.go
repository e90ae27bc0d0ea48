package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

type reminderSweeper interface {
	SendDueReminders(ctx context.Context, window time.Duration, use24hFlag bool) (int, error)
	SendPackageExpiryAlerts(ctx context.Context) (int, error)
}

type offerExpirer interface {
	ExpireStaleOffers(ctx context.Context) (int, error)
}

// Config controls the sweep cadence. Zero values fall back to the
// defaults below.
type Config struct {
	ReminderInterval time.Duration
	ExpiryInterval   time.Duration
}

// Scheduler drives the time-based sweeps against the core services:
// 24h and 1h session reminders, package expiry alerts and waitlist
// offer expiry. It owns no state machine logic itself.
type Scheduler struct {
	reminders reminderSweeper
	waitlist  offerExpirer
	cfg       Config
	wg        sync.WaitGroup
}

func New(reminders reminderSweeper, waitlist offerExpirer, cfg Config) *Scheduler {
	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = 5 * time.Minute
	}
	if cfg.ExpiryInterval <= 0 {
		cfg.ExpiryInterval = time.Hour
	}
	return &Scheduler{reminders: reminders, waitlist: waitlist, cfg: cfg}
}

// Start launches the sweep loops. They stop when ctx is cancelled;
// Wait blocks until they have drained.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(2)
	go s.runReminders(ctx)
	go s.runExpiry(ctx)
}

func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) runReminders(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.ReminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.reminders.SendDueReminders(ctx, 24*time.Hour, true); err != nil {
				log.Printf("24h reminder sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("sent %d 24h reminders", n)
			}
			if n, err := s.reminders.SendDueReminders(ctx, time.Hour, false); err != nil {
				log.Printf("1h reminder sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("sent %d 1h reminders", n)
			}
		}
	}
}

func (s *Scheduler) runExpiry(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.ExpiryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.waitlist.ExpireStaleOffers(ctx); err != nil {
				log.Printf("waitlist expiry sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("expired %d stale waitlist offers", n)
			}
			if n, err := s.reminders.SendPackageExpiryAlerts(ctx); err != nil {
				log.Printf("package expiry sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("sent %d package expiry alerts", n)
			}
		}
	}
}
