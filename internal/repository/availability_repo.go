package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
)

// AvailabilityRepository covers the whole availability model: weekly
// windows, blocked slots and per-trainer settings.
type AvailabilityRepository struct {
	db DBTX
}

func NewAvailabilityRepository(db DBTX) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

type AvailabilityWindow struct {
	DayOfWeek int
	StartTime string
	EndTime   string
}

func (r *AvailabilityRepository) ListWindows(
	ctx context.Context,
	trainerID uuid.UUID,
) ([]models.TrainerAvailability, error) {
	query := `
		SELECT id, trainer_id, day_of_week, start_time, end_time, created_at
		FROM trainer_availability
		WHERE trainer_id = $1
		ORDER BY day_of_week, start_time
	`
	rows, err := r.db.Query(ctx, query, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make([]models.TrainerAvailability, 0)
	for rows.Next() {
		var w models.TrainerAvailability
		if err := rows.Scan(&w.ID, &w.TrainerID, &w.DayOfWeek, &w.StartTime, &w.EndTime, &w.CreatedAt); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return windows, nil
}

func (r *AvailabilityRepository) ListWindowsForDay(
	ctx context.Context,
	trainerID uuid.UUID,
	dayOfWeek int,
) ([]models.TrainerAvailability, error) {
	query := `
		SELECT id, trainer_id, day_of_week, start_time, end_time, created_at
		FROM trainer_availability
		WHERE trainer_id = $1 AND day_of_week = $2
		ORDER BY start_time
	`
	rows, err := r.db.Query(ctx, query, trainerID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make([]models.TrainerAvailability, 0)
	for rows.Next() {
		var w models.TrainerAvailability
		if err := rows.Scan(&w.ID, &w.TrainerID, &w.DayOfWeek, &w.StartTime, &w.EndTime, &w.CreatedAt); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return windows, nil
}

// ReplaceWindows swaps a trainer's full weekly availability. Run inside
// a transaction so readers never see a half-replaced week.
func (r *AvailabilityRepository) ReplaceWindows(
	ctx context.Context,
	trainerID uuid.UUID,
	windows []AvailabilityWindow,
) ([]models.TrainerAvailability, error) {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM trainer_availability WHERE trainer_id = $1`, trainerID,
	); err != nil {
		return nil, err
	}

	created := make([]models.TrainerAvailability, 0, len(windows))
	for _, w := range windows {
		var row models.TrainerAvailability
		err := r.db.QueryRow(ctx, `
			INSERT INTO trainer_availability (trainer_id, day_of_week, start_time, end_time)
			VALUES ($1, $2, $3, $4)
			RETURNING id, trainer_id, day_of_week, start_time, end_time, created_at
		`, trainerID, w.DayOfWeek, w.StartTime, w.EndTime).
			Scan(&row.ID, &row.TrainerID, &row.DayOfWeek, &row.StartTime, &row.EndTime, &row.CreatedAt)
		if err != nil {
			return nil, err
		}
		created = append(created, row)
	}
	return created, nil
}

const blockedColumns = `
	id, trainer_id, day_of_week, specific_date, start_time, end_time,
	reason, is_recurring, created_at
`

type CreateBlockedSlotInput struct {
	TrainerID    uuid.UUID
	DayOfWeek    *int
	SpecificDate *time.Time
	StartTime    string
	EndTime      string
	Reason       *string
	IsRecurring  bool
}

func scanBlockedSlot(row pgx.Row) (*models.TrainerBlockedSlot, error) {
	var b models.TrainerBlockedSlot
	err := row.Scan(
		&b.ID, &b.TrainerID, &b.DayOfWeek, &b.SpecificDate,
		&b.StartTime, &b.EndTime, &b.Reason, &b.IsRecurring, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *AvailabilityRepository) CreateBlockedSlot(
	ctx context.Context,
	input CreateBlockedSlotInput,
) (*models.TrainerBlockedSlot, error) {
	query := `
		INSERT INTO trainer_blocked_slots (
			trainer_id, day_of_week, specific_date, start_time, end_time, reason, is_recurring
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + blockedColumns
	return scanBlockedSlot(r.db.QueryRow(
		ctx, query,
		input.TrainerID, input.DayOfWeek, input.SpecificDate,
		input.StartTime, input.EndTime, input.Reason, input.IsRecurring,
	))
}

func (r *AvailabilityRepository) GetBlockedSlot(
	ctx context.Context,
	id uuid.UUID,
) (*models.TrainerBlockedSlot, error) {
	query := `SELECT ` + blockedColumns + ` FROM trainer_blocked_slots WHERE id = $1`
	return scanBlockedSlot(r.db.QueryRow(ctx, query, id))
}

func (r *AvailabilityRepository) ListBlockedSlots(
	ctx context.Context,
	trainerID uuid.UUID,
) ([]models.TrainerBlockedSlot, error) {
	query := `
		SELECT ` + blockedColumns + `
		FROM trainer_blocked_slots
		WHERE trainer_id = $1
		ORDER BY is_recurring DESC, day_of_week, start_time
	`
	rows, err := r.db.Query(ctx, query, trainerID)
	if err != nil {
		return nil, err
	}
	return collectBlockedSlots(rows)
}

// BlockedSlotsForDate returns the blocks effective on one date:
// recurring blocks matched by weekday plus one-off blocks on that date.
func (r *AvailabilityRepository) BlockedSlotsForDate(
	ctx context.Context,
	trainerID uuid.UUID,
	dayOfWeek int,
	date time.Time,
) ([]models.TrainerBlockedSlot, error) {
	query := `
		SELECT ` + blockedColumns + `
		FROM trainer_blocked_slots
		WHERE trainer_id = $1
		  AND (
			(is_recurring = TRUE AND day_of_week = $2)
			OR (is_recurring = FALSE AND specific_date = $3::date)
		  )
		ORDER BY start_time
	`
	rows, err := r.db.Query(ctx, query, trainerID, dayOfWeek, date)
	if err != nil {
		return nil, err
	}
	return collectBlockedSlots(rows)
}

func collectBlockedSlots(rows pgx.Rows) ([]models.TrainerBlockedSlot, error) {
	defer rows.Close()

	blocks := make([]models.TrainerBlockedSlot, 0)
	for rows.Next() {
		b, err := scanBlockedSlot(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *AvailabilityRepository) DeleteBlockedSlot(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trainer_blocked_slots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const settingsColumns = `
	id, trainer_id, default_start_time, default_end_time, session_duration_minutes,
	slot_interval_minutes, late_cancel_window_hours, late_cancel_policy,
	created_at, updated_at
`

func scanSettings(row pgx.Row) (*models.TrainerSettings, error) {
	var s models.TrainerSettings
	err := row.Scan(
		&s.ID, &s.TrainerID, &s.DefaultStartTime, &s.DefaultEndTime,
		&s.SessionDurationMinutes, &s.SlotIntervalMinutes,
		&s.LateCancelWindowHours, &s.LateCancelPolicy,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AvailabilityRepository) GetSettings(
	ctx context.Context,
	trainerID uuid.UUID,
) (*models.TrainerSettings, error) {
	query := `SELECT ` + settingsColumns + ` FROM trainer_settings WHERE trainer_id = $1`
	return scanSettings(r.db.QueryRow(ctx, query, trainerID))
}

// CreateDefaultSettings inserts the default row for a trainer. The
// ON CONFLICT clause keeps lazy creation race-safe.
func (r *AvailabilityRepository) CreateDefaultSettings(
	ctx context.Context,
	trainerID uuid.UUID,
) (*models.TrainerSettings, error) {
	query := `
		INSERT INTO trainer_settings (trainer_id)
		VALUES ($1)
		ON CONFLICT (trainer_id) DO UPDATE SET updated_at = trainer_settings.updated_at
		RETURNING ` + settingsColumns
	return scanSettings(r.db.QueryRow(ctx, query, trainerID))
}

type UpdateSettingsInput struct {
	DefaultStartTime       *string
	DefaultEndTime         *string
	SessionDurationMinutes *int
	SlotIntervalMinutes    *int
	LateCancelWindowHours  *int
	LateCancelPolicy       *string
}

func (r *AvailabilityRepository) UpdateSettings(
	ctx context.Context,
	trainerID uuid.UUID,
	input UpdateSettingsInput,
) (*models.TrainerSettings, error) {
	query := `
		UPDATE trainer_settings
		SET default_start_time = COALESCE($2, default_start_time),
		    default_end_time = COALESCE($3, default_end_time),
		    session_duration_minutes = COALESCE($4, session_duration_minutes),
		    slot_interval_minutes = COALESCE($5, slot_interval_minutes),
		    late_cancel_window_hours = COALESCE($6, late_cancel_window_hours),
		    late_cancel_policy = COALESCE($7, late_cancel_policy),
		    updated_at = NOW()
		WHERE trainer_id = $1
		RETURNING ` + settingsColumns
	return scanSettings(r.db.QueryRow(
		ctx, query, trainerID,
		input.DefaultStartTime, input.DefaultEndTime,
		input.SessionDurationMinutes, input.SlotIntervalMinutes,
		input.LateCancelWindowHours, input.LateCancelPolicy,
	))
}
