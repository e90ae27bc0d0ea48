package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
)

const templateColumns = `
	id, trainer_id, name, day_of_week, start_time, duration_minutes,
	workout_type, is_group, max_participants, notes, is_active,
	organization_id, created_at, updated_at
`

type TemplateRepository struct {
	db DBTX
}

func NewTemplateRepository(db DBTX) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func scanTemplate(row pgx.Row) (*models.SessionTemplate, error) {
	var t models.SessionTemplate
	err := row.Scan(
		&t.ID, &t.TrainerID, &t.Name, &t.DayOfWeek, &t.StartTime,
		&t.DurationMinutes, &t.WorkoutType, &t.IsGroup, &t.MaxParticipants,
		&t.Notes, &t.IsActive, &t.OrganizationID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type CreateTemplateInput struct {
	TrainerID       uuid.UUID
	Name            string
	DayOfWeek       int
	StartTime       string
	DurationMinutes int
	WorkoutType     *string
	IsGroup         bool
	MaxParticipants *int
	Notes           *string
	OrganizationID  *uuid.UUID
}

func (r *TemplateRepository) Create(
	ctx context.Context,
	input CreateTemplateInput,
) (*models.SessionTemplate, error) {
	query := `
		INSERT INTO session_templates (
			trainer_id, name, day_of_week, start_time, duration_minutes,
			workout_type, is_group, max_participants, notes, organization_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + templateColumns
	return scanTemplate(r.db.QueryRow(
		ctx, query,
		input.TrainerID, input.Name, input.DayOfWeek, input.StartTime,
		input.DurationMinutes, input.WorkoutType, input.IsGroup,
		input.MaxParticipants, input.Notes, input.OrganizationID,
	))
}

func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SessionTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM session_templates WHERE id = $1`
	return scanTemplate(r.db.QueryRow(ctx, query, id))
}

func (r *TemplateRepository) List(
	ctx context.Context,
	trainerID uuid.UUID,
	activeOnly bool,
) ([]models.SessionTemplate, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM session_templates
		WHERE trainer_id = $1 AND ($2 = FALSE OR is_active = TRUE)
		ORDER BY day_of_week, start_time
	`
	rows, err := r.db.Query(ctx, query, trainerID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]models.SessionTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return templates, nil
}

type UpdateTemplateInput struct {
	Name            *string
	DayOfWeek       *int
	StartTime       *string
	DurationMinutes *int
	WorkoutType     *string
	IsGroup         *bool
	MaxParticipants *int
	Notes           *string
	IsActive        *bool
}

func (r *TemplateRepository) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateTemplateInput,
) (*models.SessionTemplate, error) {
	query := `
		UPDATE session_templates
		SET name = COALESCE($2, name),
		    day_of_week = COALESCE($3, day_of_week),
		    start_time = COALESCE($4, start_time),
		    duration_minutes = COALESCE($5, duration_minutes),
		    workout_type = COALESCE($6, workout_type),
		    is_group = COALESCE($7, is_group),
		    max_participants = COALESCE($8, max_participants),
		    notes = COALESCE($9, notes),
		    is_active = COALESCE($10, is_active),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + templateColumns
	return scanTemplate(r.db.QueryRow(
		ctx, query, id,
		input.Name, input.DayOfWeek, input.StartTime, input.DurationMinutes,
		input.WorkoutType, input.IsGroup, input.MaxParticipants, input.Notes,
		input.IsActive,
	))
}

func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM session_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
