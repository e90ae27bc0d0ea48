package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/repository"
)

// RecurringService projects weekly blueprints into concrete
// appointments: plan schedules, week duplication and session templates.
// Bulk runs never fail on one item; they count skips and move on.
type RecurringService struct {
	db              *pgxpool.Pool
	appointmentRepo *repository.AppointmentRepository
	templateRepo    *repository.TemplateRepository
	planRepo        *repository.ServicePlanRepository
	now             func() time.Time
}

func NewRecurringService(
	db *pgxpool.Pool,
	appointmentRepo *repository.AppointmentRepository,
	templateRepo *repository.TemplateRepository,
	planRepo *repository.ServicePlanRepository,
) *RecurringService {
	return &RecurringService{
		db:              db,
		appointmentRepo: appointmentRepo,
		templateRepo:    templateRepo,
		planRepo:        planRepo,
		now:             time.Now,
	}
}

// mondayOf truncates to midnight of the Monday of t's week.
func mondayOf(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -weekdayIndex(midnight))
}

// AutoGenerate projects a plan's weekly schedule into the next
// weeksAhead Monday-aligned weeks. Slots in the past or already booked
// for (trainer, student, date_time) are skipped, so re-running is
// idempotent.
func (s *RecurringService) AutoGenerate(
	ctx context.Context,
	trainerID uuid.UUID,
	servicePlanID uuid.UUID,
	weeksAhead int,
	autoConfirm bool,
) (*models.BulkResult, error) {
	if weeksAhead <= 0 || weeksAhead > 52 {
		return nil, ErrInvalidInput
	}

	plan, err := s.planRepo.GetByID(ctx, servicePlanID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if plan.TrainerID != trainerID {
		return nil, ErrForbidden
	}
	if len(plan.ScheduleConfig) == 0 {
		return nil, ErrInvalidInput
	}

	status := models.AppointmentPending
	if autoConfirm {
		status = models.AppointmentConfirmed
	}
	sessionType := models.SessionScheduled
	isComplimentary := false
	if plan.PlanType == models.PlanFreeTrial {
		sessionType = models.SessionTrial
		isComplimentary = true
	}

	now := s.now()
	weekStart := mondayOf(now)
	result := &models.BulkResult{TotalSource: weeksAhead * len(plan.ScheduleConfig)}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	txAppointments := repository.NewAppointmentRepository(tx)

	for week := 0; week < weeksAhead; week++ {
		base := weekStart.AddDate(0, 0, 7*week)
		for _, slot := range plan.ScheduleConfig {
			day := base.AddDate(0, 0, slot.DayOfWeek)
			dateTime, err := atClock(day, slot.Time)
			if err != nil {
				return nil, err
			}
			if !dateTime.After(now) {
				result.Skipped++
				continue
			}

			exists, err := txAppointments.ExistsAt(ctx, plan.TrainerID, plan.StudentID, dateTime.UTC())
			if err != nil {
				return nil, err
			}
			if exists {
				result.Skipped++
				continue
			}

			studentID := plan.StudentID
			if _, err := txAppointments.Create(ctx, repository.CreateAppointmentInput{
				TrainerID:       plan.TrainerID,
				StudentID:       &studentID,
				OrganizationID:  plan.OrganizationID,
				DateTime:        dateTime.UTC(),
				DurationMinutes: slot.DurationMinutes,
				Status:          status,
				SessionType:     sessionType,
				IsComplimentary: isComplimentary,
				ServicePlanID:   &plan.ID,
			}); err != nil {
				return nil, err
			}
			result.Created++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// patternStepDays maps a recurrence pattern to its day step. Monthly
// steps a flat 30 days rather than tracking calendar months.
func patternStepDays(pattern string) (int, bool) {
	switch pattern {
	case models.RecurrenceDaily:
		return 1, true
	case models.RecurrenceWeekly:
		return 7, true
	case models.RecurrenceBiweekly:
		return 14, true
	case models.RecurrenceMonthly:
		return 30, true
	}
	return 0, false
}

type PatternSeriesInput struct {
	StudentID       uuid.UUID
	OrganizationID  *uuid.UUID
	Start           time.Time
	DurationMinutes int
	WorkoutType     *string
	Notes           *string
	Pattern         string
	Occurrences     int
	AutoConfirm     bool
}

// GeneratePattern creates a series of sessions for one student from a
// start time and a recurrence pattern. Occurrences landing on a
// conflicting slot are skipped, not failed.
func (s *RecurringService) GeneratePattern(
	ctx context.Context,
	trainerID uuid.UUID,
	input PatternSeriesInput,
) (*models.BulkResult, error) {
	step, ok := patternStepDays(input.Pattern)
	if !ok {
		return nil, ErrInvalidInput
	}
	if input.Occurrences <= 0 || input.Occurrences > 52 {
		return nil, ErrInvalidInput
	}
	if input.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}
	if !input.Start.After(s.now()) {
		return nil, ErrInvalidInput
	}

	status := models.AppointmentPending
	if input.AutoConfirm {
		status = models.AppointmentConfirmed
	}
	result := &models.BulkResult{TotalSource: input.Occurrences}

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

	start := input.Start.UTC()
	for i := 0; i < input.Occurrences; i++ {
		dateTime := start.AddDate(0, 0, i*step)

		overlaps, err := txAppointments.HasOverlap(ctx, trainerID, dateTime, input.DurationMinutes)
		if err != nil {
			return nil, err
		}
		if overlaps {
			result.Skipped++
			continue
		}

		studentID := input.StudentID
		if _, err := txAppointments.Create(ctx, repository.CreateAppointmentInput{
			TrainerID:       trainerID,
			StudentID:       &studentID,
			OrganizationID:  input.OrganizationID,
			DateTime:        dateTime,
			DurationMinutes: input.DurationMinutes,
			WorkoutType:     input.WorkoutType,
			Status:          status,
			SessionType:     models.SessionScheduled,
			Notes:           input.Notes,
		}); err != nil {
			return nil, err
		}
		result.Created++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// DuplicateWeek copies every non-cancelled appointment of one week,
// shifted by the day delta. Conflicting targets are skipped, not
// failed, unless skipConflicts disables the check entirely.
func (s *RecurringService) DuplicateWeek(
	ctx context.Context,
	trainerID uuid.UUID,
	sourceWeekStart, targetWeekStart time.Time,
	skipConflicts bool,
) (*models.BulkResult, error) {
	source := mondayOf(sourceWeekStart)
	target := mondayOf(targetWeekStart)
	if source.Equal(target) {
		return nil, ErrInvalidInput
	}
	delta := target.Sub(source)

	appointments, err := s.appointmentRepo.ListForRange(ctx, trainerID, source, source.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}

	result := &models.BulkResult{}

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

	for i := range appointments {
		existing := &appointments[i]
		if existing.Status == models.AppointmentCancelled {
			continue
		}
		result.TotalSource++

		newDateTime := existing.DateTime.Add(delta)
		if !skipConflicts {
			overlaps, err := txAppointments.HasOverlap(ctx, trainerID, newDateTime, existing.DurationMinutes)
			if err != nil {
				return nil, err
			}
			if overlaps {
				result.Skipped++
				continue
			}
		}

		if _, err := txAppointments.Create(ctx, repository.CreateAppointmentInput{
			TrainerID:       existing.TrainerID,
			StudentID:       existing.StudentID,
			OrganizationID:  existing.OrganizationID,
			DateTime:        newDateTime,
			DurationMinutes: existing.DurationMinutes,
			WorkoutType:     existing.WorkoutType,
			Status:          models.AppointmentPending,
			SessionType:     existing.SessionType,
			IsComplimentary: existing.IsComplimentary,
			ServicePlanID:   existing.ServicePlanID,
			IsGroup:         existing.IsGroup,
			MaxParticipants: existing.MaxParticipants,
			Notes:           existing.Notes,
		}); err != nil {
			return nil, err
		}
		result.Created++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyTemplates instantiates the selected active templates into the
// target week. Sessions are created unassigned; students are attached
// later.
func (s *RecurringService) ApplyTemplates(
	ctx context.Context,
	trainerID uuid.UUID,
	templateIDs []uuid.UUID,
	weekStart time.Time,
	autoConfirm bool,
) (*models.BulkResult, error) {
	if len(templateIDs) == 0 {
		return nil, ErrInvalidInput
	}

	status := models.AppointmentPending
	if autoConfirm {
		status = models.AppointmentConfirmed
	}
	base := mondayOf(weekStart)
	now := s.now()
	result := &models.BulkResult{TotalSource: len(templateIDs)}

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
	txTemplates := repository.NewTemplateRepository(tx)

	for _, templateID := range templateIDs {
		template, err := txTemplates.GetByID(ctx, templateID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				result.Skipped++
				continue
			}
			return nil, err
		}
		if template.TrainerID != trainerID {
			return nil, ErrForbidden
		}
		if !template.IsActive {
			result.Skipped++
			continue
		}

		day := base.AddDate(0, 0, template.DayOfWeek)
		dateTime, err := atClock(day, template.StartTime)
		if err != nil {
			return nil, err
		}
		if !dateTime.After(now) {
			result.Skipped++
			continue
		}

		overlaps, err := txAppointments.HasOverlap(ctx, trainerID, dateTime.UTC(), template.DurationMinutes)
		if err != nil {
			return nil, err
		}
		if overlaps {
			result.Skipped++
			continue
		}

		if _, err := txAppointments.Create(ctx, repository.CreateAppointmentInput{
			TrainerID:       trainerID,
			OrganizationID:  template.OrganizationID,
			DateTime:        dateTime.UTC(),
			DurationMinutes: template.DurationMinutes,
			WorkoutType:     template.WorkoutType,
			Status:          status,
			SessionType:     models.SessionScheduled,
			IsGroup:         template.IsGroup,
			MaxParticipants: template.MaxParticipants,
			Notes:           template.Notes,
		}); err != nil {
			return nil, err
		}
		result.Created++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// Template CRUD. Templates belong to their trainer.

func (s *RecurringService) CreateTemplate(
	ctx context.Context,
	trainerID uuid.UUID,
	input repository.CreateTemplateInput,
) (*models.SessionTemplate, error) {
	if input.Name == "" || input.DayOfWeek < 0 || input.DayOfWeek > 6 || input.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}
	if _, err := atClock(s.now(), input.StartTime); err != nil {
		return nil, ErrInvalidInput
	}
	input.TrainerID = trainerID
	return s.templateRepo.Create(ctx, input)
}

func (s *RecurringService) ListTemplates(
	ctx context.Context,
	trainerID uuid.UUID,
	activeOnly bool,
) ([]models.SessionTemplate, error) {
	return s.templateRepo.List(ctx, trainerID, activeOnly)
}

func (s *RecurringService) UpdateTemplate(
	ctx context.Context,
	trainerID uuid.UUID,
	id uuid.UUID,
	input repository.UpdateTemplateInput,
) (*models.SessionTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if template.TrainerID != trainerID {
		return nil, ErrForbidden
	}
	if input.DayOfWeek != nil && (*input.DayOfWeek < 0 || *input.DayOfWeek > 6) {
		return nil, ErrInvalidInput
	}
	if input.StartTime != nil {
		if _, err := atClock(s.now(), *input.StartTime); err != nil {
			return nil, ErrInvalidInput
		}
	}
	return s.templateRepo.Update(ctx, id, input)
}

func (s *RecurringService) DeleteTemplate(ctx context.Context, trainerID, id uuid.UUID) error {
	template, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if template.TrainerID != trainerID {
		return ErrForbidden
	}
	return s.templateRepo.Delete(ctx, id)
}
