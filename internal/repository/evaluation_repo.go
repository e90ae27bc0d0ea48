package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
)

const evaluationColumns = `
	id, appointment_id, evaluator_id, evaluator_role, overall_rating,
	difficulty, energy_level, notes, created_at, updated_at
`

type CreateEvaluationInput struct {
	AppointmentID uuid.UUID
	EvaluatorID   uuid.UUID
	EvaluatorRole string
	OverallRating int
	Difficulty    *string
	EnergyLevel   *int
	Notes         *string
}

type EvaluationRepository struct {
	db DBTX
}

func NewEvaluationRepository(db DBTX) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

func scanEvaluation(row pgx.Row) (*models.SessionEvaluation, error) {
	var e models.SessionEvaluation
	err := row.Scan(
		&e.ID,
		&e.AppointmentID,
		&e.EvaluatorID,
		&e.EvaluatorRole,
		&e.OverallRating,
		&e.Difficulty,
		&e.EnergyLevel,
		&e.Notes,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EvaluationRepository) Create(
	ctx context.Context,
	input CreateEvaluationInput,
) (*models.SessionEvaluation, error) {
	query := `
		INSERT INTO session_evaluations (
			appointment_id, evaluator_id, evaluator_role, overall_rating,
			difficulty, energy_level, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + evaluationColumns

	return scanEvaluation(r.db.QueryRow(ctx, query,
		input.AppointmentID,
		input.EvaluatorID,
		input.EvaluatorRole,
		input.OverallRating,
		input.Difficulty,
		input.EnergyLevel,
		input.Notes,
	))
}

func (r *EvaluationRepository) ListByAppointment(
	ctx context.Context,
	appointmentID uuid.UUID,
) ([]models.SessionEvaluation, error) {
	query := `
		SELECT ` + evaluationColumns + `
		FROM session_evaluations
		WHERE appointment_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	evaluations := make([]models.SessionEvaluation, 0)
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return evaluations, nil
}

func (r *EvaluationRepository) ExistsForEvaluator(
	ctx context.Context,
	appointmentID, evaluatorID uuid.UUID,
) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM session_evaluations
			WHERE appointment_id = $1 AND evaluator_id = $2
		)`,
		appointmentID, evaluatorID,
	).Scan(&exists)
	return exists, err
}
