package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
)

const (
	// Widest session length considered when fetching overlap candidates
	// before the candidate interval's own start.
	maxCandidateDurationMinutes = 240

	// Gap below which two back-to-back sessions draw a buffer warning.
	bufferMinutes = 15
)

type appointmentWindowReader interface {
	ActiveInWindow(ctx context.Context, trainerID uuid.UUID, from, to time.Time) ([]models.Appointment, error)
	ActiveInWindowForStudent(ctx context.Context, studentID uuid.UUID, from, to time.Time) ([]models.Appointment, error)
}

type availabilityReader interface {
	ListWindowsForDay(ctx context.Context, trainerID uuid.UUID, dayOfWeek int) ([]models.TrainerAvailability, error)
	BlockedSlotsForDate(ctx context.Context, trainerID uuid.UUID, dayOfWeek int, date time.Time) ([]models.TrainerBlockedSlot, error)
	CreateDefaultSettings(ctx context.Context, trainerID uuid.UUID) (*models.TrainerSettings, error)
}

// ScheduleService is the conflict and free-slot engine. It never writes;
// booking paths re-run its checks inside their own transactions.
type ScheduleService struct {
	appointments appointmentWindowReader
	availability availabilityReader
	now          func() time.Time
}

func NewScheduleService(
	appointments appointmentWindowReader,
	availability availabilityReader,
) *ScheduleService {
	return &ScheduleService{
		appointments: appointments,
		availability: availability,
		now:          time.Now,
	}
}

type ConflictCheckInput struct {
	TrainerID       uuid.UUID
	Start           time.Time
	DurationMinutes int
	StudentID       *uuid.UUID
	// ExcludeAppointmentID lets a reschedule ignore the appointment
	// being moved.
	ExcludeAppointmentID *uuid.UUID
}

func (s *ScheduleService) CheckConflicts(
	ctx context.Context,
	input ConflictCheckInput,
) (*models.ConflictCheckResult, error) {
	if input.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}

	result := &models.ConflictCheckResult{
		Conflicts: []models.ConflictDetail{},
		Warnings:  []models.ConflictDetail{},
	}

	start := input.Start.UTC()
	end := start.Add(time.Duration(input.DurationMinutes) * time.Minute)
	windowFrom := start.Add(-maxCandidateDurationMinutes * time.Minute)

	trainerAppointments, err := s.appointments.ActiveInWindow(ctx, input.TrainerID, windowFrom, end)
	if err != nil {
		return nil, err
	}
	for i := range trainerAppointments {
		existing := &trainerAppointments[i]
		if input.ExcludeAppointmentID != nil && existing.ID == *input.ExcludeAppointmentID {
			continue
		}
		if intervalsOverlap(start, input.DurationMinutes, existing.DateTime, existing.DurationMinutes) {
			id := existing.ID
			at := existing.DateTime
			result.Conflicts = append(result.Conflicts, models.ConflictDetail{
				Type:                   "overlap",
				Message:                fmt.Sprintf("overlaps an existing session at %s", existing.DateTime.Format("15:04")),
				ConflictingAppointment: &id,
				ConflictingTime:        &at,
			})
			continue
		}
		if gap := gapMinutes(start, input.DurationMinutes, existing.DateTime, existing.DurationMinutes); gap < bufferMinutes {
			id := existing.ID
			at := existing.DateTime
			result.Warnings = append(result.Warnings, models.ConflictDetail{
				Type:                   "buffer",
				Message:                fmt.Sprintf("only %d minutes between sessions", gap),
				ConflictingAppointment: &id,
				ConflictingTime:        &at,
			})
		}
	}

	if input.StudentID != nil {
		studentAppointments, err := s.appointments.ActiveInWindowForStudent(ctx, *input.StudentID, windowFrom, end)
		if err != nil {
			return nil, err
		}
		for i := range studentAppointments {
			existing := &studentAppointments[i]
			if input.ExcludeAppointmentID != nil && existing.ID == *input.ExcludeAppointmentID {
				continue
			}
			if intervalsOverlap(start, input.DurationMinutes, existing.DateTime, existing.DurationMinutes) {
				id := existing.ID
				at := existing.DateTime
				result.Conflicts = append(result.Conflicts, models.ConflictDetail{
					Type:                   "student_overlap",
					Message:                "the student already has a session in this interval",
					ConflictingAppointment: &id,
					ConflictingTime:        &at,
				})
			}
		}
	}

	windows, err := s.availability.ListWindowsForDay(ctx, input.TrainerID, weekdayIndex(start))
	if err != nil {
		return nil, err
	}
	if len(windows) > 0 && !anyWindowContains(windows, start, input.DurationMinutes) {
		result.Warnings = append(result.Warnings, models.ConflictDetail{
			Type:    "outside_availability",
			Message: "requested time falls outside the trainer's availability",
		})
	}

	result.HasConflicts = len(result.Conflicts) > 0
	return result, nil
}

// AvailableSlots enumerates candidate starts for one day between the
// trainer's default start and end times. Each slot is judged
// independently: past, blocked, or overlapping an active appointment
// makes it unavailable.
func (s *ScheduleService) AvailableSlots(
	ctx context.Context,
	trainerID uuid.UUID,
	date time.Time,
) ([]models.SlotStatus, error) {
	settings, err := s.availability.CreateDefaultSettings(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	dayStart, err := atClock(date, settings.DefaultStartTime)
	if err != nil {
		return nil, err
	}
	dayEnd, err := atClock(date, settings.DefaultEndTime)
	if err != nil {
		return nil, err
	}

	blocked, err := s.availability.BlockedSlotsForDate(ctx, trainerID, weekdayIndex(date), date)
	if err != nil {
		return nil, err
	}

	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	appointments, err := s.appointments.ActiveInWindow(ctx, trainerID, startOfDay, startOfDay.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	duration := settings.SessionDurationMinutes
	interval := time.Duration(settings.SlotIntervalMinutes) * time.Minute
	now := s.now()

	slots := make([]models.SlotStatus, 0)
	for candidate := dayStart; !candidate.Add(time.Duration(duration) * time.Minute).After(dayEnd); candidate = candidate.Add(interval) {
		available := candidate.After(now)

		if available {
			for i := range blocked {
				blockStart, err := atClock(date, blocked[i].StartTime)
				if err != nil {
					return nil, err
				}
				blockEnd, err := atClock(date, blocked[i].EndTime)
				if err != nil {
					return nil, err
				}
				if candidate.Before(blockEnd) && candidate.Add(time.Duration(duration)*time.Minute).After(blockStart) {
					available = false
					break
				}
			}
		}

		if available {
			for i := range appointments {
				if intervalsOverlap(candidate, duration, appointments[i].DateTime, appointments[i].DurationMinutes) {
					available = false
					break
				}
			}
		}

		slots = append(slots, models.SlotStatus{
			Time:      candidate.Format("15:04"),
			Available: available,
		})
	}
	return slots, nil
}

// intervalsOverlap reports whether [aStart, aStart+aDur) and
// [bStart, bStart+bDur) intersect.
func intervalsOverlap(aStart time.Time, aDur int, bStart time.Time, bDur int) bool {
	aEnd := aStart.Add(time.Duration(aDur) * time.Minute)
	bEnd := bStart.Add(time.Duration(bDur) * time.Minute)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// gapMinutes returns the whole minutes between two non-overlapping
// intervals.
func gapMinutes(aStart time.Time, aDur int, bStart time.Time, bDur int) int {
	aEnd := aStart.Add(time.Duration(aDur) * time.Minute)
	bEnd := bStart.Add(time.Duration(bDur) * time.Minute)
	var gap time.Duration
	if aEnd.Before(bStart) || aEnd.Equal(bStart) {
		gap = bStart.Sub(aEnd)
	} else {
		gap = aStart.Sub(bEnd)
	}
	return int(gap.Minutes())
}

// weekdayIndex maps time.Weekday to the 0=Monday..6=Sunday convention
// used by availability and templates.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func anyWindowContains(windows []models.TrainerAvailability, start time.Time, durationMinutes int) bool {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	for i := range windows {
		winStart, err := atClock(start, windows[i].StartTime)
		if err != nil {
			continue
		}
		winEnd, err := atClock(start, windows[i].EndTime)
		if err != nil {
			continue
		}
		if !start.Before(winStart) && !end.After(winEnd) {
			return true
		}
	}
	return false
}

// atClock combines a date with an "HH:MM" clock string in the date's
// location.
func atClock(date time.Time, clock string) (time.Time, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("%w: bad time %q", ErrInvalidInput, clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("%w: bad time %q", ErrInvalidInput, clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: bad time %q", ErrInvalidInput, clock)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}
