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

const makeupPlaceholderDays = 7

// AppointmentService owns the session lifecycle: booking, confirmation,
// cancellation policy, attendance and its billing side effects.
type AppointmentService struct {
	db               *pgxpool.Pool
	appointmentRepo  *repository.AppointmentRepository
	participantRepo  *repository.ParticipantRepository
	availabilityRepo *repository.AvailabilityRepository
	planRepo         *repository.ServicePlanRepository
	paymentRepo      *repository.PaymentRepository
	schedule         *ScheduleService
	notifier         Notifier
	now              func() time.Time
}

func NewAppointmentService(
	db *pgxpool.Pool,
	appointmentRepo *repository.AppointmentRepository,
	participantRepo *repository.ParticipantRepository,
	availabilityRepo *repository.AvailabilityRepository,
	planRepo *repository.ServicePlanRepository,
	paymentRepo *repository.PaymentRepository,
	schedule *ScheduleService,
	notifier Notifier,
) *AppointmentService {
	return &AppointmentService{
		db:               db,
		appointmentRepo:  appointmentRepo,
		participantRepo:  participantRepo,
		availabilityRepo: availabilityRepo,
		planRepo:         planRepo,
		paymentRepo:      paymentRepo,
		schedule:         schedule,
		notifier:         notifier,
		now:              time.Now,
	}
}

// lockTrainerCalendar serialises booking writes for one trainer within
// the surrounding transaction, closing the check-then-act race between
// conflict detection and insert.
func lockTrainerCalendar(ctx context.Context, tx pgx.Tx, trainerID uuid.UUID) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))", trainerID)
	return err
}

type queuedNotification struct {
	userID uuid.UUID
	title  string
	body   string
	data   map[string]string
}

func (s *AppointmentService) flushNotifications(ctx context.Context, notes []queuedNotification) {
	if s.notifier == nil {
		return
	}
	for _, n := range notes {
		s.notifier.Notify(ctx, n.userID, n.title, n.body, n.data)
	}
}

type CreateAppointmentInput struct {
	StudentID       *uuid.UUID
	OrganizationID  *uuid.UUID
	DateTime        time.Time
	DurationMinutes int
	WorkoutType     *string
	SessionType     string
	ServicePlanID   *uuid.UUID
	Notes           *string
	AutoConfirm     bool
}

// Create books a session on behalf of the trainer. Hard conflicts block;
// warnings (buffer, outside availability) are returned for the trainer
// to judge.
func (s *AppointmentService) Create(
	ctx context.Context,
	trainerID uuid.UUID,
	input CreateAppointmentInput,
) (*models.Appointment, []models.ConflictDetail, error) {
	if input.DurationMinutes <= 0 {
		return nil, nil, ErrInvalidInput
	}
	sessionType := input.SessionType
	if sessionType == "" {
		sessionType = models.SessionScheduled
	}
	switch sessionType {
	case models.SessionScheduled, models.SessionMakeup, models.SessionExtra, models.SessionTrial:
	default:
		return nil, nil, ErrInvalidInput
	}

	check, err := s.schedule.CheckConflicts(ctx, ConflictCheckInput{
		TrainerID:       trainerID,
		Start:           input.DateTime,
		DurationMinutes: input.DurationMinutes,
		StudentID:       input.StudentID,
	})
	if err != nil {
		return nil, nil, err
	}
	if check.HasConflicts {
		return nil, nil, ErrConflict
	}

	status := models.AppointmentPending
	if input.AutoConfirm {
		status = models.AppointmentConfirmed
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockTrainerCalendar(ctx, tx, trainerID); err != nil {
		return nil, nil, err
	}

	txAppointments := repository.NewAppointmentRepository(tx)
	overlaps, err := txAppointments.HasOverlap(ctx, trainerID, input.DateTime.UTC(), input.DurationMinutes)
	if err != nil {
		return nil, nil, err
	}
	if overlaps {
		return nil, nil, ErrConflict
	}

	appointment, err := txAppointments.Create(ctx, repository.CreateAppointmentInput{
		TrainerID:       trainerID,
		StudentID:       input.StudentID,
		OrganizationID:  input.OrganizationID,
		DateTime:        input.DateTime.UTC(),
		DurationMinutes: input.DurationMinutes,
		WorkoutType:     input.WorkoutType,
		Status:          status,
		SessionType:     sessionType,
		ServicePlanID:   input.ServicePlanID,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	if input.StudentID != nil {
		s.flushNotifications(ctx, []queuedNotification{{
			userID: *input.StudentID,
			title:  "New session scheduled",
			body:   fmt.Sprintf("A session was scheduled for %s", appointment.DateTime.Format("Mon Jan 2 15:04")),
			data:   map[string]string{"appointment_id": appointment.ID.String()},
		}})
	}
	return appointment, check.Warnings, nil
}

type BookingInput struct {
	TrainerID       uuid.UUID
	DateTime        time.Time
	DurationMinutes int
	WorkoutType     *string
	ServicePlanID   *uuid.UUID
	Notes           *string
}

// BookSelfService is the student-facing booking path: the slot must be
// free and the linked plan valid; the result is created CONFIRMED.
func (s *AppointmentService) BookSelfService(
	ctx context.Context,
	studentID uuid.UUID,
	input BookingInput,
) (*models.Appointment, error) {
	if input.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}
	if input.DateTime.Before(s.now()) {
		return nil, ErrInvalidInput
	}
	if studentID == input.TrainerID {
		return nil, ErrInvalidInput
	}

	sessionType := models.SessionScheduled
	isComplimentary := false
	if input.ServicePlanID != nil {
		plan, err := s.planRepo.GetByID(ctx, *input.ServicePlanID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if plan.StudentID != studentID || plan.TrainerID != input.TrainerID {
			return nil, ErrForbidden
		}
		if !plan.IsActive {
			return nil, fmt.Errorf("%w: plan is inactive", ErrInvalidInput)
		}
		if plan.PlanType == models.PlanPackage {
			if plan.RemainingSessions != nil && *plan.RemainingSessions <= 0 {
				return nil, fmt.Errorf("%w: no sessions remaining", ErrInvalidInput)
			}
			if plan.PackageExpiryDate != nil && plan.PackageExpiryDate.Before(s.now()) {
				return nil, fmt.Errorf("%w: package has expired", ErrInvalidInput)
			}
		}
		if plan.PlanType == models.PlanFreeTrial {
			sessionType = models.SessionTrial
			isComplimentary = true
		}
	}

	check, err := s.schedule.CheckConflicts(ctx, ConflictCheckInput{
		TrainerID:       input.TrainerID,
		Start:           input.DateTime,
		DurationMinutes: input.DurationMinutes,
		StudentID:       &studentID,
	})
	if err != nil {
		return nil, err
	}
	if check.HasConflicts {
		return nil, ErrConflict
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockTrainerCalendar(ctx, tx, input.TrainerID); err != nil {
		return nil, err
	}

	txAppointments := repository.NewAppointmentRepository(tx)
	overlaps, err := txAppointments.HasOverlap(ctx, input.TrainerID, input.DateTime.UTC(), input.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, ErrConflict
	}

	appointment, err := txAppointments.Create(ctx, repository.CreateAppointmentInput{
		TrainerID:       input.TrainerID,
		StudentID:       &studentID,
		DateTime:        input.DateTime.UTC(),
		DurationMinutes: input.DurationMinutes,
		WorkoutType:     input.WorkoutType,
		Status:          models.AppointmentConfirmed,
		SessionType:     sessionType,
		IsComplimentary: isComplimentary,
		ServicePlanID:   input.ServicePlanID,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.flushNotifications(ctx, []queuedNotification{{
		userID: input.TrainerID,
		title:  "New booking",
		body:   fmt.Sprintf("A student booked %s", appointment.DateTime.Format("Mon Jan 2 15:04")),
		data:   map[string]string{"appointment_id": appointment.ID.String()},
	}})
	return appointment, nil
}

// Confirm moves PENDING to CONFIRMED. Either party may confirm.
func (s *AppointmentService) Confirm(
	ctx context.Context,
	actorID uuid.UUID,
	id uuid.UUID,
) (*models.Appointment, error) {
	appointment, err := s.getOwned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status != models.AppointmentPending {
		return nil, ErrInvalidStateTransition
	}

	updated, err := s.appointmentRepo.UpdateStatusIfCurrent(
		ctx, id, models.AppointmentPending, models.AppointmentConfirmed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	if other := otherParty(updated, actorID); other != nil {
		s.flushNotifications(ctx, []queuedNotification{{
			userID: *other,
			title:  "Session confirmed",
			body:   fmt.Sprintf("The session on %s is confirmed", updated.DateTime.Format("Mon Jan 2 15:04")),
			data:   map[string]string{"appointment_id": updated.ID.String()},
		}})
	}
	return updated, nil
}

// Cancel applies the trainer's late-cancellation policy. Within the
// window: block rejects, charge consumes a package credit and marks
// LATE_CANCELLED, warn marks LATE_CANCELLED without a credit.
func (s *AppointmentService) Cancel(
	ctx context.Context,
	actorID uuid.UUID,
	id uuid.UUID,
	reason *string,
) (*models.Appointment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txAppointments := repository.NewAppointmentRepository(tx)
	appointment, err := txAppointments.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !appointment.IsParty(actorID) {
		return nil, ErrForbidden
	}
	if appointment.Status != models.AppointmentPending && appointment.Status != models.AppointmentConfirmed {
		return nil, ErrInvalidStateTransition
	}

	settings, err := repository.NewAvailabilityRepository(tx).CreateDefaultSettings(ctx, appointment.TrainerID)
	if err != nil {
		return nil, err
	}

	hoursUntil := appointment.DateTime.Sub(s.now()).Hours()
	late := hoursUntil < float64(settings.LateCancelWindowHours)

	attendance := appointment.AttendanceStatus
	var notes []queuedNotification
	if late {
		switch settings.LateCancelPolicy {
		case models.LateCancelBlock:
			return nil, fmt.Errorf("%w: within the %dh cancellation window", ErrInvalidStateTransition, settings.LateCancelWindowHours)
		case models.LateCancelCharge:
			attendance = models.AttendanceLateCancelled
			if appointment.ServicePlanID != nil && !appointment.IsComplimentary {
				txPlans := repository.NewServicePlanRepository(tx)
				plan, err := txPlans.GetByID(ctx, *appointment.ServicePlanID)
				if err != nil && !errors.Is(err, pgx.ErrNoRows) {
					return nil, err
				}
				if err == nil && plan.PlanType == models.PlanPackage {
					if _, err := txPlans.ConsumeSession(ctx, plan.ID); err != nil {
						return nil, err
					}
				}
			}
		default:
			attendance = models.AttendanceLateCancelled
		}
	}

	cancelled, err := txAppointments.Cancel(ctx, id, reason, attendance)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if other := otherParty(cancelled, actorID); other != nil {
		notes = append(notes, queuedNotification{
			userID: *other,
			title:  "Session cancelled",
			body:   fmt.Sprintf("The session on %s was cancelled", cancelled.DateTime.Format("Mon Jan 2 15:04")),
			data:   map[string]string{"appointment_id": cancelled.ID.String()},
		})
	}
	s.flushNotifications(ctx, notes)
	return cancelled, nil
}

// Reschedule moves a non-terminal appointment. Conflicts at the new
// time never block; they come back as warnings so the trainer can
// override deliberately.
func (s *AppointmentService) Reschedule(
	ctx context.Context,
	actorID uuid.UUID,
	id uuid.UUID,
	newDateTime time.Time,
	note *string,
) (*models.Appointment, []models.ConflictDetail, error) {
	appointment, err := s.getOwned(ctx, actorID, id)
	if err != nil {
		return nil, nil, err
	}
	if appointment.Status == models.AppointmentCompleted || appointment.Status == models.AppointmentCancelled {
		return nil, nil, ErrInvalidStateTransition
	}

	check, err := s.schedule.CheckConflicts(ctx, ConflictCheckInput{
		TrainerID:            appointment.TrainerID,
		Start:                newDateTime,
		DurationMinutes:      appointment.DurationMinutes,
		StudentID:            appointment.StudentID,
		ExcludeAppointmentID: &id,
	})
	if err != nil {
		return nil, nil, err
	}
	warnings := append(check.Warnings, check.Conflicts...)

	entry := fmt.Sprintf("Rescheduled from %s", appointment.DateTime.Format("2006-01-02 15:04"))
	if note != nil && *note != "" {
		entry = entry + ": " + *note
	}
	combined := entry
	if appointment.Notes != nil && *appointment.Notes != "" {
		combined = *appointment.Notes + "\n" + entry
	}

	updated, err := s.appointmentRepo.Reschedule(ctx, id, newDateTime.UTC(), &combined)
	if err != nil {
		return nil, nil, err
	}

	if other := otherParty(updated, actorID); other != nil {
		s.flushNotifications(ctx, []queuedNotification{{
			userID: *other,
			title:  "Session rescheduled",
			body:   fmt.Sprintf("The session moved to %s", updated.DateTime.Format("Mon Jan 2 15:04")),
			data:   map[string]string{"appointment_id": updated.ID.String()},
		}})
	}
	return updated, warnings, nil
}

// Complete marks the session done. Allowed from any state except
// CANCELLED.
func (s *AppointmentService) Complete(
	ctx context.Context,
	trainerID uuid.UUID,
	id uuid.UUID,
	notes *string,
) (*models.Appointment, error) {
	appointment, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.TrainerID != trainerID {
		return nil, ErrForbidden
	}
	if appointment.Status == models.AppointmentCancelled {
		return nil, ErrInvalidStateTransition
	}
	return s.appointmentRepo.Complete(ctx, id, notes)
}

type AttendanceInput struct {
	AttendanceStatus string
	GrantMakeup      bool
	Notes            *string
}

// MarkAttendance records attendance and settles the billing side
// effects: attended forces COMPLETED and consumes a package credit or
// raises a drop-in charge; missed with a makeup grant books a
// placeholder replacement a week out.
func (s *AppointmentService) MarkAttendance(
	ctx context.Context,
	trainerID uuid.UUID,
	id uuid.UUID,
	input AttendanceInput,
) (*models.Appointment, error) {
	switch input.AttendanceStatus {
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
	appointment, err := txAppointments.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if appointment.TrainerID != trainerID {
		return nil, ErrForbidden
	}
	if appointment.Status == models.AppointmentCancelled {
		return nil, ErrInvalidStateTransition
	}

	var forcedStatus *string
	var notes []queuedNotification

	if input.AttendanceStatus == models.AttendanceAttended {
		completed := models.AppointmentCompleted
		forcedStatus = &completed

		if appointment.StudentID != nil {
			paymentID, billingNotes, err := settleAttendanceBilling(
				ctx,
				repository.NewServicePlanRepository(tx),
				repository.NewPaymentRepository(tx),
				appointment.TrainerID,
				*appointment.StudentID,
				appointment.ServicePlanID,
				appointment.IsComplimentary,
				s.now(),
			)
			if err != nil {
				return nil, err
			}
			notes = append(notes, billingNotes...)
			if paymentID != nil {
				if err := txAppointments.SetPaymentID(ctx, id, *paymentID); err != nil {
					return nil, err
				}
			}
		}
	}

	if input.AttendanceStatus == models.AttendanceMissed && input.GrantMakeup && appointment.StudentID != nil {
		makeup, err := createMakeup(ctx, txAppointments, appointment, *appointment.StudentID, s.now())
		if err != nil {
			return nil, err
		}
		notes = append(notes, queuedNotification{
			userID: *appointment.StudentID,
			title:  "Makeup session scheduled",
			body:   fmt.Sprintf("A makeup session was provisionally set for %s", makeup.DateTime.Format("Mon Jan 2 15:04")),
			data:   map[string]string{"appointment_id": makeup.ID.String()},
		})
	}

	updated, err := txAppointments.SetAttendance(ctx, id, input.AttendanceStatus, forcedStatus, input.Notes)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.flushNotifications(ctx, notes)
	return updated, nil
}

// settleAttendanceBilling consumes one package credit or raises a
// pending drop-in charge for an attended session. Shared with the group
// roster, where each participant settles against their own plan.
func settleAttendanceBilling(
	ctx context.Context,
	planRepo *repository.ServicePlanRepository,
	paymentRepo *repository.PaymentRepository,
	trainerID, studentID uuid.UUID,
	servicePlanID *uuid.UUID,
	isComplimentary bool,
	now time.Time,
) (*uuid.UUID, []queuedNotification, error) {
	if servicePlanID == nil || isComplimentary {
		return nil, nil, nil
	}

	plan, err := planRepo.GetByID(ctx, *servicePlanID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	switch plan.PlanType {
	case models.PlanPackage:
		consumed, err := planRepo.ConsumeSession(ctx, plan.ID)
		if err != nil {
			return nil, nil, err
		}
		if consumed.RemainingSessions == nil {
			return nil, nil, nil
		}
		remaining := *consumed.RemainingSessions
		var notes []queuedNotification
		if remaining == 0 {
			notes = append(notes, queuedNotification{
				userID: trainerID,
				title:  "Package depleted",
				body:   fmt.Sprintf("Plan %q has no sessions left", plan.Name),
				data:   map[string]string{"service_plan_id": plan.ID.String()},
			})
		} else if remaining <= 2 {
			notes = append(notes, queuedNotification{
				userID: trainerID,
				title:  "Package running low",
				body:   fmt.Sprintf("Plan %q has %d sessions left", plan.Name, remaining),
				data:   map[string]string{"service_plan_id": plan.ID.String()},
			})
		}
		return nil, notes, nil
	case models.PlanDropIn:
		if plan.PerSessionCents == nil {
			return nil, nil, nil
		}
		payment, err := paymentRepo.CreateSessionPayment(ctx, repository.CreateSessionPaymentInput{
			PayerID:       studentID,
			PayeeID:       trainerID,
			Description:   fmt.Sprintf("Session on %s", now.Format("2006-01-02")),
			AmountCents:   *plan.PerSessionCents,
			DueDate:       now,
			ServicePlanID: &plan.ID,
		})
		if err != nil {
			return nil, nil, err
		}
		return &payment.ID, nil, nil
	}
	return nil, nil, nil
}

// createMakeup books the replacement session granted for a miss, a week
// out as a placeholder the trainer will move.
func createMakeup(
	ctx context.Context,
	appointmentRepo *repository.AppointmentRepository,
	base *models.Appointment,
	studentID uuid.UUID,
	now time.Time,
) (*models.Appointment, error) {
	return appointmentRepo.Create(ctx, repository.CreateAppointmentInput{
		TrainerID:       base.TrainerID,
		StudentID:       &studentID,
		OrganizationID:  base.OrganizationID,
		DateTime:        now.Add(makeupPlaceholderDays * 24 * time.Hour).UTC(),
		DurationMinutes: base.DurationMinutes,
		WorkoutType:     base.WorkoutType,
		Status:          models.AppointmentPending,
		SessionType:     models.SessionMakeup,
		IsComplimentary: true,
		ServicePlanID:   base.ServicePlanID,
	})
}

// Update applies partial edits. Trainer only; terminal states are
// frozen.
func (s *AppointmentService) Update(
	ctx context.Context,
	trainerID uuid.UUID,
	id uuid.UUID,
	input repository.UpdateAppointmentInput,
) (*models.Appointment, error) {
	appointment, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.TrainerID != trainerID {
		return nil, ErrForbidden
	}
	if appointment.Status == models.AppointmentCancelled || appointment.Status == models.AppointmentCompleted {
		return nil, ErrInvalidStateTransition
	}
	return s.appointmentRepo.Update(ctx, id, input)
}

func (s *AppointmentService) Delete(ctx context.Context, trainerID uuid.UUID, id uuid.UUID) error {
	appointment, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if appointment.TrainerID != trainerID {
		return ErrForbidden
	}
	if err := s.appointmentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Get returns the appointment with its participant roster when it is a
// group session. Trainer, booked student, and participants may read.
func (s *AppointmentService) Get(
	ctx context.Context,
	actorID uuid.UUID,
	id uuid.UUID,
) (*models.AppointmentDetail, error) {
	appointment, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.AppointmentDetail{Appointment: *appointment}
	if appointment.IsGroup {
		participants, err := s.participantRepo.ListByAppointment(ctx, id)
		if err != nil {
			return nil, err
		}
		detail.Participants = participants
	}

	if !appointment.IsParty(actorID) {
		member := false
		for i := range detail.Participants {
			if detail.Participants[i].StudentID == actorID {
				member = true
				break
			}
		}
		if !member {
			return nil, ErrForbidden
		}
	}
	return detail, nil
}

func (s *AppointmentService) List(
	ctx context.Context,
	filter repository.AppointmentListFilter,
) ([]models.Appointment, error) {
	return s.appointmentRepo.List(ctx, filter)
}

// Day returns the trainer's appointments for one calendar day.
func (s *AppointmentService) Day(
	ctx context.Context,
	trainerID uuid.UUID,
	date time.Time,
) ([]models.Appointment, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return s.appointmentRepo.ListForRange(ctx, trainerID, start, start.Add(24*time.Hour))
}

// Week returns the trainer's appointments for the seven days starting
// at weekStart.
func (s *AppointmentService) Week(
	ctx context.Context,
	trainerID uuid.UUID,
	weekStart time.Time,
) ([]models.Appointment, error) {
	start := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, weekStart.Location())
	return s.appointmentRepo.ListForRange(ctx, trainerID, start, start.Add(7*24*time.Hour))
}

func (s *AppointmentService) Upcoming(
	ctx context.Context,
	actorID uuid.UUID,
	asTrainer bool,
	limit int,
) ([]models.Appointment, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.appointmentRepo.Upcoming(ctx, actorID, asTrainer, limit)
}

func (s *AppointmentService) getByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return appointment, nil
}

func (s *AppointmentService) getOwned(ctx context.Context, actorID, id uuid.UUID) (*models.Appointment, error) {
	appointment, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appointment.IsParty(actorID) {
		return nil, ErrForbidden
	}
	return appointment, nil
}

func otherParty(a *models.Appointment, actorID uuid.UUID) *uuid.UUID {
	if a.TrainerID != actorID {
		trainer := a.TrainerID
		return &trainer
	}
	if a.StudentID != nil && *a.StudentID != actorID {
		return a.StudentID
	}
	return nil
}
