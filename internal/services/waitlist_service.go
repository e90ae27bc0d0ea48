package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/repository"
)

// WaitlistService matches queued slot requests to concrete offers.
// waiting -> offered creates a linked PENDING appointment; accepting
// confirms it; stale offers are expired by the sweep, which also
// cancels the linked appointment to free the slot.
type WaitlistService struct {
	db              *pgxpool.Pool
	waitlistRepo    *repository.WaitlistRepository
	appointmentRepo *repository.AppointmentRepository
	notifier        Notifier
	offerTTL        time.Duration
	now             func() time.Time
}

func NewWaitlistService(
	db *pgxpool.Pool,
	waitlistRepo *repository.WaitlistRepository,
	appointmentRepo *repository.AppointmentRepository,
	notifier Notifier,
	offerTTL time.Duration,
) *WaitlistService {
	if offerTTL <= 0 {
		offerTTL = 48 * time.Hour
	}
	return &WaitlistService{
		db:              db,
		waitlistRepo:    waitlistRepo,
		appointmentRepo: appointmentRepo,
		notifier:        notifier,
		offerTTL:        offerTTL,
		now:             time.Now,
	}
}

type JoinWaitlistInput struct {
	TrainerID          uuid.UUID
	PreferredDayOfWeek *int
	PreferredTimeStart *string
	PreferredTimeEnd   *string
	Notes              *string
	OrganizationID     *uuid.UUID
}

func (s *WaitlistService) Join(
	ctx context.Context,
	studentID uuid.UUID,
	input JoinWaitlistInput,
) (*models.WaitlistEntry, error) {
	if studentID == input.TrainerID {
		return nil, ErrInvalidInput
	}
	if input.PreferredDayOfWeek != nil && (*input.PreferredDayOfWeek < 0 || *input.PreferredDayOfWeek > 6) {
		return nil, ErrInvalidInput
	}
	entry, err := s.waitlistRepo.Create(ctx, repository.CreateWaitlistEntryInput{
		StudentID:          studentID,
		TrainerID:          input.TrainerID,
		PreferredDayOfWeek: input.PreferredDayOfWeek,
		PreferredTimeStart: input.PreferredTimeStart,
		PreferredTimeEnd:   input.PreferredTimeEnd,
		Notes:              input.Notes,
		OrganizationID:     input.OrganizationID,
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, input.TrainerID, "Waitlist request",
			"A student joined your waitlist",
			map[string]string{"waitlist_entry_id": entry.ID.String()})
	}
	return entry, nil
}

func (s *WaitlistService) List(
	ctx context.Context,
	trainerID uuid.UUID,
	dayOfWeek *int,
	status string,
) ([]models.WaitlistEntry, error) {
	return s.waitlistRepo.List(ctx, repository.WaitlistListFilter{
		TrainerID: trainerID,
		DayOfWeek: dayOfWeek,
		Status:    status,
	})
}

type OfferSlotInput struct {
	DateTime        time.Time
	DurationMinutes int
	WorkoutType     *string
	Notes           *string
}

// OfferSlot creates a PENDING appointment for a WAITING entry and links
// it. Only the entry's trainer may offer, only from WAITING.
func (s *WaitlistService) OfferSlot(
	ctx context.Context,
	trainerID uuid.UUID,
	entryID uuid.UUID,
	input OfferSlotInput,
) (*models.WaitlistEntry, error) {
	if input.DurationMinutes <= 0 || input.DateTime.Before(s.now()) {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txWaitlist := repository.NewWaitlistRepository(tx)
	entry, err := txWaitlist.GetByIDForUpdate(ctx, entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if entry.TrainerID != trainerID {
		return nil, ErrForbidden
	}
	if entry.Status != models.WaitlistWaiting {
		return nil, ErrInvalidStateTransition
	}

	if err := lockTrainerCalendar(ctx, tx, trainerID); err != nil {
		return nil, err
	}

	txAppointments := repository.NewAppointmentRepository(tx)
	overlaps, err := txAppointments.HasOverlap(ctx, trainerID, input.DateTime.UTC(), input.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, ErrConflict
	}

	appointment, err := txAppointments.Create(ctx, repository.CreateAppointmentInput{
		TrainerID:       trainerID,
		StudentID:       &entry.StudentID,
		OrganizationID:  entry.OrganizationID,
		DateTime:        input.DateTime.UTC(),
		DurationMinutes: input.DurationMinutes,
		WorkoutType:     input.WorkoutType,
		Status:          models.AppointmentPending,
		SessionType:     models.SessionScheduled,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, err
	}

	offered, err := txWaitlist.MarkOffered(ctx, entryID, appointment.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, entry.StudentID, "Slot offered",
			fmt.Sprintf("A slot on %s is on hold for you", appointment.DateTime.Format("Mon Jan 2 15:04")),
			map[string]string{
				"waitlist_entry_id": entry.ID.String(),
				"appointment_id":    appointment.ID.String(),
			})
	}
	return offered, nil
}

// AcceptOffer confirms the linked appointment. Only the entry's student
// may accept, only from OFFERED.
func (s *WaitlistService) AcceptOffer(
	ctx context.Context,
	studentID uuid.UUID,
	entryID uuid.UUID,
) (*models.WaitlistEntry, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txWaitlist := repository.NewWaitlistRepository(tx)
	entry, err := txWaitlist.GetByIDForUpdate(ctx, entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if entry.StudentID != studentID {
		return nil, ErrForbidden
	}
	if entry.Status != models.WaitlistOffered || entry.OfferedAppointmentID == nil {
		return nil, ErrInvalidStateTransition
	}

	txAppointments := repository.NewAppointmentRepository(tx)
	if _, err := txAppointments.UpdateStatusIfCurrent(
		ctx, *entry.OfferedAppointmentID, models.AppointmentPending, models.AppointmentConfirmed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	accepted, err := txWaitlist.MarkAccepted(ctx, entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, entry.TrainerID, "Offer accepted",
			"A waitlisted student accepted the offered slot",
			map[string]string{"waitlist_entry_id": entry.ID.String()})
	}
	return accepted, nil
}

// Leave removes a student's own entry.
func (s *WaitlistService) Leave(ctx context.Context, studentID, entryID uuid.UUID) error {
	entry, err := s.waitlistRepo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if entry.StudentID != studentID && entry.TrainerID != studentID {
		return ErrForbidden
	}
	if err := s.waitlistRepo.Delete(ctx, entryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ExpireStaleOffers expires offers older than the TTL and cancels each
// linked appointment that is still PENDING, freeing the held slot.
// WAITING entries are left alone. Returns the number expired.
func (s *WaitlistService) ExpireStaleOffers(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.offerTTL)
	stale, err := s.waitlistRepo.StaleOffers(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		entry := &stale[i]

		tx, err := s.db.Begin(ctx)
		if err != nil {
			return expired, err
		}

		txWaitlist := repository.NewWaitlistRepository(tx)
		if err := txWaitlist.MarkExpired(ctx, entry.ID); err != nil {
			_ = tx.Rollback(ctx)
			return expired, err
		}

		if entry.OfferedAppointmentID != nil {
			txAppointments := repository.NewAppointmentRepository(tx)
			reason := "waitlist offer expired"
			appointment, err := txAppointments.GetByIDForUpdate(ctx, *entry.OfferedAppointmentID)
			if err == nil && appointment.Status == models.AppointmentPending {
				if _, err := txAppointments.Cancel(ctx, appointment.ID, &reason, appointment.AttendanceStatus); err != nil {
					_ = tx.Rollback(ctx)
					return expired, err
				}
			} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				_ = tx.Rollback(ctx)
				return expired, err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return expired, err
		}
		expired++

		if s.notifier != nil {
			s.notifier.Notify(ctx, entry.StudentID, "Offer expired",
				"The slot held for you was released",
				map[string]string{"waitlist_entry_id": entry.ID.String()})
		}
	}
	return expired, nil
}
