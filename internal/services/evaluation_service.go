package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/repository"
)

type evaluationAppointmentReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
}

type evaluationRosterReader interface {
	Get(ctx context.Context, appointmentID, studentID uuid.UUID) (*models.AppointmentParticipant, error)
}

type evaluationStore interface {
	Create(ctx context.Context, input repository.CreateEvaluationInput) (*models.SessionEvaluation, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]models.SessionEvaluation, error)
	ExistsForEvaluator(ctx context.Context, appointmentID, evaluatorID uuid.UUID) (bool, error)
}

// EvaluationService records post-session feedback. Only completed
// sessions can be evaluated, and each party evaluates a session once.
type EvaluationService struct {
	appointments evaluationAppointmentReader
	roster       evaluationRosterReader
	evaluations  evaluationStore
}

func NewEvaluationService(
	appointments evaluationAppointmentReader,
	roster evaluationRosterReader,
	evaluations evaluationStore,
) *EvaluationService {
	return &EvaluationService{
		appointments: appointments,
		roster:       roster,
		evaluations:  evaluations,
	}
}

type CreateEvaluationInput struct {
	OverallRating int
	Difficulty    *string
	EnergyLevel   *int
	Notes         *string
}

func validDifficulty(value string) bool {
	switch value {
	case models.DifficultyTooEasy, models.DifficultyJustRight, models.DifficultyTooHard:
		return true
	}
	return false
}

// canAccess reports whether the user is the trainer, the booked student
// or, for group sessions, a roster member.
func (s *EvaluationService) canAccess(
	ctx context.Context,
	appointment *models.Appointment,
	userID uuid.UUID,
) (bool, error) {
	if appointment.IsParty(userID) {
		return true, nil
	}
	if !appointment.IsGroup {
		return false, nil
	}
	if _, err := s.roster.Get(ctx, appointment.ID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *EvaluationService) CreateEvaluation(
	ctx context.Context,
	evaluatorID, appointmentID uuid.UUID,
	input CreateEvaluationInput,
) (*models.SessionEvaluation, error) {
	if input.OverallRating < 1 || input.OverallRating > 5 {
		return nil, fmt.Errorf("%w: overall_rating must be between 1 and 5", ErrInvalidInput)
	}
	if input.EnergyLevel != nil && (*input.EnergyLevel < 1 || *input.EnergyLevel > 5) {
		return nil, fmt.Errorf("%w: energy_level must be between 1 and 5", ErrInvalidInput)
	}
	if input.Difficulty != nil && !validDifficulty(*input.Difficulty) {
		return nil, fmt.Errorf("%w: difficulty must be too_easy, just_right or too_hard", ErrInvalidInput)
	}

	appointment, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	allowed, err := s.canAccess(ctx, appointment, evaluatorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}
	if appointment.Status != models.AppointmentCompleted {
		return nil, fmt.Errorf("%w: only completed sessions can be evaluated", ErrInvalidStateTransition)
	}

	exists, err := s.evaluations.ExistsForEvaluator(ctx, appointmentID, evaluatorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	role := models.EvaluatorStudent
	if evaluatorID == appointment.TrainerID {
		role = models.EvaluatorTrainer
	}

	return s.evaluations.Create(ctx, repository.CreateEvaluationInput{
		AppointmentID: appointmentID,
		EvaluatorID:   evaluatorID,
		EvaluatorRole: role,
		OverallRating: input.OverallRating,
		Difficulty:    input.Difficulty,
		EnergyLevel:   input.EnergyLevel,
		Notes:         input.Notes,
	})
}

func (s *EvaluationService) ListEvaluations(
	ctx context.Context,
	userID, appointmentID uuid.UUID,
) ([]models.SessionEvaluation, error) {
	appointment, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	allowed, err := s.canAccess(ctx, appointment, userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}
	return s.evaluations.ListByAppointment(ctx, appointmentID)
}
