package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingReminders struct {
	due    atomic.Int64
	expiry atomic.Int64
}

func (c *countingReminders) SendDueReminders(_ context.Context, _ time.Duration, _ bool) (int, error) {
	c.due.Add(1)
	return 0, nil
}

func (c *countingReminders) SendPackageExpiryAlerts(context.Context) (int, error) {
	c.expiry.Add(1)
	return 0, nil
}

type countingExpirer struct {
	calls atomic.Int64
}

func (c *countingExpirer) ExpireStaleOffers(context.Context) (int, error) {
	c.calls.Add(1)
	return 0, nil
}

func TestSchedulerRunsSweepsUntilCancelled(t *testing.T) {
	reminders := &countingReminders{}
	expirer := &countingExpirer{}
	sweeps := New(reminders, expirer, Config{
		ReminderInterval: 5 * time.Millisecond,
		ExpiryInterval:   5 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	sweeps.Start(ctx)

	deadline := time.After(2 * time.Second)
	for reminders.due.Load() < 2 || expirer.calls.Load() < 1 {
		select {
		case <-deadline:
			t.Fatalf("sweeps never ran: reminders=%d expiry=%d",
				reminders.due.Load(), expirer.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	done := make(chan struct{})
	go func() {
		sweeps.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Wait did not return after cancel")
	}
}

func TestNewAppliesDefaultIntervals(t *testing.T) {
	sweeps := New(&countingReminders{}, &countingExpirer{}, Config{})
	if sweeps.cfg.ReminderInterval != 5*time.Minute {
		t.Errorf("expected 5m reminder default, got %v", sweeps.cfg.ReminderInterval)
	}
	if sweeps.cfg.ExpiryInterval != time.Hour {
		t.Errorf("expected 1h expiry default, got %v", sweeps.cfg.ExpiryInterval)
	}
}
