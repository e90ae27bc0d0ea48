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

const defaultGroupLimit = 50

// GroupService manages group sessions and their participant rosters.
// Billing is per participant: each settles attendance against their own
// plan regardless of the parent appointment's status.
type GroupService struct {
	db              *pgxpool.Pool
	appointmentRepo *repository.AppointmentRepository
	participantRepo *repository.ParticipantRepository
	notifier        Notifier
	now             func() time.Time
}

func NewGroupService(
	db *pgxpool.Pool,
	appointmentRepo *repository.AppointmentRepository,
	participantRepo *repository.ParticipantRepository,
	notifier Notifier,
) *GroupService {
	return &GroupService{
		db:              db,
		appointmentRepo: appointmentRepo,
		participantRepo: participantRepo,
		notifier:        notifier,
		now:             time.Now,
	}
}

func (s *GroupService) notify(ctx context.Context, notes []queuedNotification) {
	if s.notifier == nil {
		return
	}
	for _, n := range notes {
		s.notifier.Notify(ctx, n.userID, n.title, n.body, n.data)
	}
}

type GroupParticipantInput struct {
	StudentID       uuid.UUID
	ServicePlanID   *uuid.UUID
	IsComplimentary bool
}

type CreateGroupSessionInput struct {
	DateTime        time.Time
	DurationMinutes int
	WorkoutType     *string
	MaxParticipants *int
	Notes           *string
	OrganizationID  *uuid.UUID
	Participants    []GroupParticipantInput
	AutoConfirm     bool
}

// CreateGroupSession books one appointment plus a SCHEDULED participant
// row per student. The first student doubles as the appointment's
// student_id for single-session compatibility.
func (s *GroupService) CreateGroupSession(
	ctx context.Context,
	trainerID uuid.UUID,
	input CreateGroupSessionInput,
) (*models.AppointmentDetail, error) {
	if len(input.Participants) == 0 || input.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}
	limit := defaultGroupLimit
	if input.MaxParticipants != nil {
		if *input.MaxParticipants <= 0 {
			return nil, ErrInvalidInput
		}
		limit = *input.MaxParticipants
	}
	if len(input.Participants) > limit {
		return nil, fmt.Errorf("%w: %d participants exceed the limit of %d", ErrInvalidInput, len(input.Participants), limit)
	}
	seen := make(map[uuid.UUID]bool, len(input.Participants))
	for _, p := range input.Participants {
		if seen[p.StudentID] {
			return nil, fmt.Errorf("%w: duplicate participant", ErrInvalidInput)
		}
		seen[p.StudentID] = true
	}

	status := models.AppointmentPending
	if input.AutoConfirm {
		status = models.AppointmentConfirmed
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

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

	first := input.Participants[0].StudentID
	maxParticipants := limit
	appointment, err := txAppointments.Create(ctx, repository.CreateAppointmentInput{
		TrainerID:       trainerID,
		StudentID:       &first,
		OrganizationID:  input.OrganizationID,
		DateTime:        input.DateTime.UTC(),
		DurationMinutes: input.DurationMinutes,
		WorkoutType:     input.WorkoutType,
		Status:          status,
		SessionType:     models.SessionScheduled,
		IsGroup:         true,
		MaxParticipants: &maxParticipants,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, err
	}

	txParticipants := repository.NewParticipantRepository(tx)
	participants := make([]models.AppointmentParticipant, 0, len(input.Participants))
	for _, p := range input.Participants {
		created, err := txParticipants.Create(ctx, repository.CreateParticipantInput{
			AppointmentID:   appointment.ID,
			StudentID:       p.StudentID,
			ServicePlanID:   p.ServicePlanID,
			IsComplimentary: p.IsComplimentary,
		})
		if err != nil {
			return nil, err
		}
		participants = append(participants, *created)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	notes := make([]queuedNotification, 0, len(participants))
	for i := range participants {
		notes = append(notes, queuedNotification{
			userID: participants[i].StudentID,
			title:  "Group session scheduled",
			body:   fmt.Sprintf("A group session was scheduled for %s", appointment.DateTime.Format("Mon Jan 2 15:04")),
			data:   map[string]string{"appointment_id": appointment.ID.String()},
		})
	}
	s.notify(ctx, notes)

	return &models.AppointmentDetail{
		Appointment:  *appointment,
		Participants: participants,
	}, nil
}

// AddParticipants grows the roster. Capacity is enforced against the
// session's limit; students already on the roster are skipped silently.
func (s *GroupService) AddParticipants(
	ctx context.Context,
	trainerID uuid.UUID,
	appointmentID uuid.UUID,
	additions []GroupParticipantInput,
) ([]models.AppointmentParticipant, error) {
	if len(additions) == 0 {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txAppointments := repository.NewAppointmentRepository(tx)
	appointment, err := txAppointments.GetByIDForUpdate(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if appointment.TrainerID != trainerID {
		return nil, ErrForbidden
	}
	if !appointment.IsGroup {
		return nil, fmt.Errorf("%w: not a group session", ErrInvalidInput)
	}

	txParticipants := repository.NewParticipantRepository(tx)
	existing, err := txParticipants.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	present := make(map[uuid.UUID]bool, len(existing))
	for i := range existing {
		present[existing[i].StudentID] = true
	}

	newcomers := make([]GroupParticipantInput, 0, len(additions))
	for _, p := range additions {
		if !present[p.StudentID] {
			present[p.StudentID] = true
			newcomers = append(newcomers, p)
		}
	}

	limit := defaultGroupLimit
	if appointment.MaxParticipants != nil {
		limit = *appointment.MaxParticipants
	}
	if len(existing)+len(newcomers) > limit {
		return nil, fmt.Errorf("%w: %d existing plus %d new participants exceed the limit of %d",
			ErrInvalidInput, len(existing), len(newcomers), limit)
	}

	added := make([]models.AppointmentParticipant, 0, len(newcomers))
	for _, p := range newcomers {
		created, err := txParticipants.Create(ctx, repository.CreateParticipantInput{
			AppointmentID:   appointmentID,
			StudentID:       p.StudentID,
			ServicePlanID:   p.ServicePlanID,
			IsComplimentary: p.IsComplimentary,
		})
		if err != nil {
			return nil, err
		}
		added = append(added, *created)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	notes := make([]queuedNotification, 0, len(added))
	for i := range added {
		notes = append(notes, queuedNotification{
			userID: added[i].StudentID,
			title:  "Added to a group session",
			body:   fmt.Sprintf("You were added to the session on %s", appointment.DateTime.Format("Mon Jan 2 15:04")),
			data:   map[string]string{"appointment_id": appointment.ID.String()},
		})
	}
	s.notify(ctx, notes)
	return added, nil
}

// ListParticipants returns the roster. The trainer sees their own
// sessions; a student must be on the roster.
func (s *GroupService) ListParticipants(
	ctx context.Context,
	actorID, appointmentID uuid.UUID,
) ([]models.AppointmentParticipant, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	participants, err := s.participantRepo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.TrainerID != actorID {
		member := false
		for i := range participants {
			if participants[i].StudentID == actorID {
				member = true
				break
			}
		}
		if !member {
			return nil, ErrForbidden
		}
	}
	return participants, nil
}

// RemoveParticipant drops one student from the roster.
func (s *GroupService) RemoveParticipant(
	ctx context.Context,
	trainerID uuid.UUID,
	appointmentID, studentID uuid.UUID,
) error {
	appointment, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if appointment.TrainerID != trainerID {
		return ErrForbidden
	}
	if err := s.participantRepo.Delete(ctx, appointmentID, studentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// MarkParticipantAttendance applies the same credit and makeup rules as
// single-session attendance, scoped to the participant's own plan. The
// parent appointment's status is untouched.
func (s *GroupService) MarkParticipantAttendance(
	ctx context.Context,
	trainerID uuid.UUID,
	appointmentID, studentID uuid.UUID,
	attendanceStatus string,
	grantMakeup bool,
) (*models.AppointmentParticipant, error) {
	switch attendanceStatus {
	case models.AttendanceAttended, models.AttendanceMissed, models.AttendanceLateCancelled:
	default:
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txAppointments := repository.NewAppointmentRepository(tx)
	appointment, err := txAppointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if appointment.TrainerID != trainerID {
		return nil, ErrForbidden
	}

	txParticipants := repository.NewParticipantRepository(tx)
	participant, err := txParticipants.GetForUpdate(ctx, appointmentID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var notes []queuedNotification
	if attendanceStatus == models.AttendanceAttended {
		_, billingNotes, err := settleAttendanceBilling(
			ctx,
			repository.NewServicePlanRepository(tx),
			repository.NewPaymentRepository(tx),
			appointment.TrainerID,
			participant.StudentID,
			participant.ServicePlanID,
			participant.IsComplimentary,
			s.now(),
		)
		if err != nil {
			return nil, err
		}
		notes = append(notes, billingNotes...)
	}

	if attendanceStatus == models.AttendanceMissed && grantMakeup {
		makeup, err := createMakeup(ctx, txAppointments, appointment, participant.StudentID, s.now())
		if err != nil {
			return nil, err
		}
		notes = append(notes, queuedNotification{
			userID: participant.StudentID,
			title:  "Makeup session scheduled",
			body:   fmt.Sprintf("A makeup session was provisionally set for %s", makeup.DateTime.Format("Mon Jan 2 15:04")),
			data:   map[string]string{"appointment_id": makeup.ID.String()},
		})
	}

	updated, err := txParticipants.SetAttendance(ctx, participant.ID, attendanceStatus, nil)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notify(ctx, notes)
	return updated, nil
}
