package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
)

const waitlistColumns = `
	id, student_id, trainer_id, preferred_day_of_week, preferred_time_start,
	preferred_time_end, notes, status, offered_appointment_id, organization_id,
	offered_at, created_at, updated_at
`

type WaitlistRepository struct {
	db DBTX
}

func NewWaitlistRepository(db DBTX) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

func scanWaitlistEntry(row pgx.Row) (*models.WaitlistEntry, error) {
	var e models.WaitlistEntry
	err := row.Scan(
		&e.ID, &e.StudentID, &e.TrainerID, &e.PreferredDayOfWeek,
		&e.PreferredTimeStart, &e.PreferredTimeEnd, &e.Notes, &e.Status,
		&e.OfferedAppointmentID, &e.OrganizationID, &e.OfferedAt,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

type CreateWaitlistEntryInput struct {
	StudentID          uuid.UUID
	TrainerID          uuid.UUID
	PreferredDayOfWeek *int
	PreferredTimeStart *string
	PreferredTimeEnd   *string
	Notes              *string
	OrganizationID     *uuid.UUID
}

func (r *WaitlistRepository) Create(
	ctx context.Context,
	input CreateWaitlistEntryInput,
) (*models.WaitlistEntry, error) {
	query := `
		INSERT INTO waitlist_entries (
			student_id, trainer_id, preferred_day_of_week, preferred_time_start,
			preferred_time_end, notes, status, organization_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, 'waiting', $7)
		RETURNING ` + waitlistColumns
	return scanWaitlistEntry(r.db.QueryRow(
		ctx, query,
		input.StudentID, input.TrainerID, input.PreferredDayOfWeek,
		input.PreferredTimeStart, input.PreferredTimeEnd, input.Notes,
		input.OrganizationID,
	))
}

func (r *WaitlistRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + ` FROM waitlist_entries WHERE id = $1`
	return scanWaitlistEntry(r.db.QueryRow(ctx, query, id))
}

func (r *WaitlistRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + ` FROM waitlist_entries WHERE id = $1 FOR UPDATE`
	return scanWaitlistEntry(r.db.QueryRow(ctx, query, id))
}

type WaitlistListFilter struct {
	TrainerID uuid.UUID
	DayOfWeek *int
	Status    string
}

func (r *WaitlistRepository) List(
	ctx context.Context,
	filter WaitlistListFilter,
) ([]models.WaitlistEntry, error) {
	args := []any{filter.TrainerID}
	whereParts := []string{"trainer_id = $1"}

	if filter.DayOfWeek != nil {
		args = append(args, *filter.DayOfWeek)
		whereParts = append(whereParts, fmt.Sprintf("preferred_day_of_week = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s FROM waitlist_entries
		WHERE %s
		ORDER BY created_at DESC, id
	`, waitlistColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.WaitlistEntry, 0)
	for rows.Next() {
		e, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// MarkOffered transitions waiting -> offered and links the pending
// appointment; the status guard keeps concurrent offers from clobbering
// each other.
func (r *WaitlistRepository) MarkOffered(
	ctx context.Context,
	id, appointmentID uuid.UUID,
) (*models.WaitlistEntry, error) {
	query := `
		UPDATE waitlist_entries
		SET status = 'offered', offered_appointment_id = $2, offered_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'waiting'
		RETURNING ` + waitlistColumns
	return scanWaitlistEntry(r.db.QueryRow(ctx, query, id, appointmentID))
}

func (r *WaitlistRepository) MarkAccepted(ctx context.Context, id uuid.UUID) (*models.WaitlistEntry, error) {
	query := `
		UPDATE waitlist_entries
		SET status = 'accepted', updated_at = NOW()
		WHERE id = $1 AND status = 'offered'
		RETURNING ` + waitlistColumns
	return scanWaitlistEntry(r.db.QueryRow(ctx, query, id))
}

// StaleOffers returns offered entries whose offer predates the cutoff.
func (r *WaitlistRepository) StaleOffers(
	ctx context.Context,
	cutoff time.Time,
) ([]models.WaitlistEntry, error) {
	query := `
		SELECT ` + waitlistColumns + `
		FROM waitlist_entries
		WHERE status = 'offered' AND offered_at IS NOT NULL AND offered_at < $1
		ORDER BY offered_at
	`
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.WaitlistEntry, 0)
	for rows.Next() {
		e, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *WaitlistRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE waitlist_entries SET status = 'expired', updated_at = NOW() WHERE id = $1 AND status = 'offered'`,
		id,
	)
	return err
}

func (r *WaitlistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM waitlist_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
