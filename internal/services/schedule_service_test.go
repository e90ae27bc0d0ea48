package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/repository"
)

type stubAppointmentWindows struct {
	trainer []models.Appointment
	student []models.Appointment
}

func (s *stubAppointmentWindows) ActiveInWindow(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]models.Appointment, error) {
	return s.trainer, nil
}

func (s *stubAppointmentWindows) ActiveInWindowForStudent(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]models.Appointment, error) {
	return s.student, nil
}

// The conflict engine must accept the concrete repositories as-is.
var (
	_ appointmentWindowReader = (*repository.AppointmentRepository)(nil)
	_ availabilityReader      = (*repository.AvailabilityRepository)(nil)
)

type stubAvailability struct {
	windows  []models.TrainerAvailability
	blocked  []models.TrainerBlockedSlot
	settings models.TrainerSettings
	lastDay  int
}

func (s *stubAvailability) ListWindowsForDay(_ context.Context, _ uuid.UUID, _ int) ([]models.TrainerAvailability, error) {
	return s.windows, nil
}

func (s *stubAvailability) BlockedSlotsForDate(_ context.Context, _ uuid.UUID, dayOfWeek int, _ time.Time) ([]models.TrainerBlockedSlot, error) {
	s.lastDay = dayOfWeek
	return s.blocked, nil
}

func (s *stubAvailability) CreateDefaultSettings(_ context.Context, _ uuid.UUID) (*models.TrainerSettings, error) {
	settings := s.settings
	return &settings, nil
}

func newTestScheduleService(appts *stubAppointmentWindows, avail *stubAvailability, now time.Time) *ScheduleService {
	svc := NewScheduleService(appts, avail)
	svc.now = func() time.Time { return now }
	return svc
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func TestCheckConflictsFlagsOverlapAndBuffer(t *testing.T) {
	trainerID := uuid.New()
	overlapping := models.Appointment{
		ID:              uuid.New(),
		TrainerID:       trainerID,
		DateTime:        mustDate(t, "2026-09-07T09:30:00Z"),
		DurationMinutes: 60,
		Status:          models.AppointmentConfirmed,
	}
	tight := models.Appointment{
		ID:              uuid.New(),
		TrainerID:       trainerID,
		DateTime:        mustDate(t, "2026-09-07T11:05:00Z"),
		DurationMinutes: 60,
		Status:          models.AppointmentConfirmed,
	}
	svc := newTestScheduleService(
		&stubAppointmentWindows{trainer: []models.Appointment{overlapping, tight}},
		&stubAvailability{},
		mustDate(t, "2026-09-01T08:00:00Z"),
	)

	result, err := svc.CheckConflicts(context.Background(), ConflictCheckInput{
		TrainerID:       trainerID,
		Start:           mustDate(t, "2026-09-07T10:00:00Z"),
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("CheckConflicts: %v", err)
	}

	if !result.HasConflicts {
		t.Fatal("expected conflicts")
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0].Type != "overlap" {
		t.Fatalf("expected one overlap conflict, got %+v", result.Conflicts)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Type != "buffer" {
		t.Fatalf("expected one buffer warning, got %+v", result.Warnings)
	}
}

func TestCheckConflictsIgnoresExcludedAppointment(t *testing.T) {
	trainerID := uuid.New()
	existing := models.Appointment{
		ID:              uuid.New(),
		TrainerID:       trainerID,
		DateTime:        mustDate(t, "2026-09-07T10:00:00Z"),
		DurationMinutes: 60,
		Status:          models.AppointmentConfirmed,
	}
	svc := newTestScheduleService(
		&stubAppointmentWindows{trainer: []models.Appointment{existing}},
		&stubAvailability{},
		mustDate(t, "2026-09-01T08:00:00Z"),
	)

	result, err := svc.CheckConflicts(context.Background(), ConflictCheckInput{
		TrainerID:            trainerID,
		Start:                mustDate(t, "2026-09-07T10:00:00Z"),
		DurationMinutes:      60,
		ExcludeAppointmentID: &existing.ID,
	})
	if err != nil {
		t.Fatalf("CheckConflicts: %v", err)
	}
	if result.HasConflicts {
		t.Fatalf("expected no conflicts when the moved appointment is excluded, got %+v", result.Conflicts)
	}
}

func TestCheckConflictsFlagsStudentDoubleBooking(t *testing.T) {
	studentID := uuid.New()
	svc := newTestScheduleService(
		&stubAppointmentWindows{
			student: []models.Appointment{{
				ID:              uuid.New(),
				TrainerID:       uuid.New(),
				DateTime:        mustDate(t, "2026-09-07T10:00:00Z"),
				DurationMinutes: 60,
				Status:          models.AppointmentConfirmed,
			}},
		},
		&stubAvailability{},
		mustDate(t, "2026-09-01T08:00:00Z"),
	)

	result, err := svc.CheckConflicts(context.Background(), ConflictCheckInput{
		TrainerID:       uuid.New(),
		Start:           mustDate(t, "2026-09-07T10:30:00Z"),
		DurationMinutes: 60,
		StudentID:       &studentID,
	})
	if err != nil {
		t.Fatalf("CheckConflicts: %v", err)
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0].Type != "student_overlap" {
		t.Fatalf("expected student_overlap conflict, got %+v", result.Conflicts)
	}
}

func TestCheckConflictsWarnsOutsideAvailability(t *testing.T) {
	svc := newTestScheduleService(
		&stubAppointmentWindows{},
		&stubAvailability{
			// 2026-09-07 is a Monday, index 0.
			windows: []models.TrainerAvailability{{DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00"}},
		},
		mustDate(t, "2026-09-01T08:00:00Z"),
	)

	result, err := svc.CheckConflicts(context.Background(), ConflictCheckInput{
		TrainerID:       uuid.New(),
		Start:           mustDate(t, "2026-09-07T18:00:00Z"),
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("CheckConflicts: %v", err)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Type != "outside_availability" {
		t.Fatalf("expected outside_availability warning, got %+v", result.Warnings)
	}
	if result.HasConflicts {
		t.Fatal("availability is advisory, must not become a conflict")
	}
}

func TestCheckConflictsRejectsNonPositiveDuration(t *testing.T) {
	svc := newTestScheduleService(&stubAppointmentWindows{}, &stubAvailability{}, time.Now())

	if _, err := svc.CheckConflicts(context.Background(), ConflictCheckInput{
		TrainerID: uuid.New(),
		Start:     time.Now(),
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAvailableSlotsEnumeratesAndMarksBooked(t *testing.T) {
	trainerID := uuid.New()
	date := mustDate(t, "2026-09-07T00:00:00Z")
	svc := newTestScheduleService(
		&stubAppointmentWindows{trainer: []models.Appointment{{
			ID:              uuid.New(),
			TrainerID:       trainerID,
			DateTime:        mustDate(t, "2026-09-07T10:00:00Z"),
			DurationMinutes: 60,
			Status:          models.AppointmentConfirmed,
		}}},
		&stubAvailability{settings: models.TrainerSettings{
			DefaultStartTime:       "09:00",
			DefaultEndTime:         "12:00",
			SessionDurationMinutes: 60,
			SlotIntervalMinutes:    30,
		}},
		mustDate(t, "2026-09-01T08:00:00Z"),
	)

	slots, err := svc.AvailableSlots(context.Background(), trainerID, date)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}

	want := map[string]bool{
		"09:00": true,
		"09:30": false,
		"10:00": false,
		"10:30": false,
		"11:00": true,
	}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d: %+v", len(want), len(slots), slots)
	}
	for _, slot := range slots {
		available, ok := want[slot.Time]
		if !ok {
			t.Fatalf("unexpected slot %q", slot.Time)
		}
		if slot.Available != available {
			t.Fatalf("slot %s: expected available=%v, got %v", slot.Time, available, slot.Available)
		}
	}
}

func TestAvailableSlotsExcludesPastAndBlocked(t *testing.T) {
	trainerID := uuid.New()
	date := mustDate(t, "2026-09-07T00:00:00Z")
	avail := &stubAvailability{
		blocked: []models.TrainerBlockedSlot{{StartTime: "11:00", EndTime: "12:00"}},
		settings: models.TrainerSettings{
			DefaultStartTime:       "09:00",
			DefaultEndTime:         "12:00",
			SessionDurationMinutes: 60,
			SlotIntervalMinutes:    30,
		},
		lastDay: -1,
	}
	svc := newTestScheduleService(
		&stubAppointmentWindows{},
		avail,
		// Mid-morning of the same day: 09:00 and 09:30 are in the past.
		mustDate(t, "2026-09-07T09:45:00Z"),
	)

	slots, err := svc.AvailableSlots(context.Background(), trainerID, date)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}

	got := map[string]bool{}
	for _, slot := range slots {
		got[slot.Time] = slot.Available
	}
	for _, past := range []string{"09:00", "09:30"} {
		if got[past] {
			t.Fatalf("slot %s is in the past, must be unavailable", past)
		}
	}
	if got["11:00"] {
		t.Fatal("slot 11:00 overlaps a blocked slot, must be unavailable")
	}
	// 10:00 ends at 11:00 exactly; touching the block is fine.
	if !got["10:00"] {
		t.Fatal("slot 10:00 ends where the block starts and should stay available")
	}
	// 2026-09-07 is a Monday; recurring blocks are matched by weekday.
	if avail.lastDay != 0 {
		t.Fatalf("expected weekday index 0 passed to the block lookup, got %d", avail.lastDay)
	}
}

func TestIntervalsOverlapIsSymmetric(t *testing.T) {
	a := mustDate(t, "2026-09-07T10:00:00Z")
	b := mustDate(t, "2026-09-07T10:30:00Z")

	if !intervalsOverlap(a, 60, b, 60) || !intervalsOverlap(b, 60, a, 60) {
		t.Fatal("expected overlap in both directions")
	}

	// Half-open intervals: back to back is not an overlap.
	c := mustDate(t, "2026-09-07T11:00:00Z")
	if intervalsOverlap(a, 60, c, 60) || intervalsOverlap(c, 60, a, 60) {
		t.Fatal("back-to-back sessions must not overlap")
	}
}

func TestGapMinutes(t *testing.T) {
	a := mustDate(t, "2026-09-07T10:00:00Z")
	b := mustDate(t, "2026-09-07T11:10:00Z")

	if got := gapMinutes(a, 60, b, 60); got != 10 {
		t.Fatalf("expected 10 minute gap, got %d", got)
	}
	if got := gapMinutes(b, 60, a, 60); got != 10 {
		t.Fatalf("expected gap to be order independent, got %d", got)
	}
}

func TestWeekdayIndexIsMondayBased(t *testing.T) {
	monday := mustDate(t, "2026-09-07T00:00:00Z")
	sunday := mustDate(t, "2026-09-13T00:00:00Z")

	if got := weekdayIndex(monday); got != 0 {
		t.Fatalf("expected Monday index 0, got %d", got)
	}
	if got := weekdayIndex(sunday); got != 6 {
		t.Fatalf("expected Sunday index 6, got %d", got)
	}
}

func TestAtClockRejectsMalformedTimes(t *testing.T) {
	date := time.Now()
	for _, clock := range []string{"", "9", "24:00", "10:60", "aa:bb"} {
		if _, err := atClock(date, clock); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %q, got %v", clock, err)
		}
	}

	at, err := atClock(mustDate(t, "2026-09-07T00:00:00Z"), "14:30")
	if err != nil {
		t.Fatalf("atClock: %v", err)
	}
	if at.Hour() != 14 || at.Minute() != 30 {
		t.Fatalf("expected 14:30, got %s", at.Format("15:04"))
	}
}
