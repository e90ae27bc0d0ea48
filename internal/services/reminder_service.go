package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/saeid-a/TrainerScheduleBack/internal/repository"
)

const packageExpiryAlertDays = 7

// ReminderService runs the time-driven sweeps: pre-session reminders
// and package expiry alerts. Each appointment's reminder flag makes the
// sweep at-most-once per window; a failed notification is logged and
// the flag still set.
type ReminderService struct {
	appointmentRepo *repository.AppointmentRepository
	planRepo        *repository.ServicePlanRepository
	notifier        Notifier
}

func NewReminderService(
	appointmentRepo *repository.AppointmentRepository,
	planRepo *repository.ServicePlanRepository,
	notifier Notifier,
) *ReminderService {
	return &ReminderService{
		appointmentRepo: appointmentRepo,
		planRepo:        planRepo,
		notifier:        notifier,
	}
}

// SendDueReminders notifies both parties of appointments starting
// within the window. use24hFlag selects which of the two reminder
// flags guards the sweep.
func (s *ReminderService) SendDueReminders(
	ctx context.Context,
	window time.Duration,
	use24hFlag bool,
) (int, error) {
	due, err := s.appointmentRepo.DueForReminder(ctx, window, use24hFlag)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		a := &due[i]
		if err := s.appointmentRepo.MarkReminderSent(ctx, a.ID, use24hFlag); err != nil {
			log.Printf("reminder flag update failed for appointment %s: %v", a.ID, err)
			continue
		}

		if s.notifier != nil {
			body := fmt.Sprintf("Upcoming session at %s", a.DateTime.Format("Mon Jan 2 15:04"))
			data := map[string]string{"appointment_id": a.ID.String()}
			if a.StudentID != nil {
				s.notifier.Notify(ctx, *a.StudentID, "Session reminder", body, data)
			}
			s.notifier.Notify(ctx, a.TrainerID, "Session reminder", body, data)
		}
		sent++
	}
	return sent, nil
}

// SendPackageExpiryAlerts warns both parties about packages expiring
// within the next week.
func (s *ReminderService) SendPackageExpiryAlerts(ctx context.Context) (int, error) {
	expiring, err := s.planRepo.ExpiringPackages(ctx, packageExpiryAlertDays)
	if err != nil {
		return 0, err
	}

	if s.notifier == nil {
		return 0, nil
	}
	for i := range expiring {
		plan := &expiring[i]
		body := fmt.Sprintf("Plan %q expires on %s", plan.Name, plan.PackageExpiryDate.Format("2006-01-02"))
		data := map[string]string{"service_plan_id": plan.ID.String()}
		s.notifier.Notify(ctx, plan.TrainerID, "Package expiring", body, data)
		s.notifier.Notify(ctx, plan.StudentID, "Package expiring", body, data)
	}
	return len(expiring), nil
}
