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

const appointmentColumns = `
	id, trainer_id, student_id, organization_id, date_time, duration_minutes,
	workout_type, status, attendance_status, session_type, is_complimentary,
	service_plan_id, payment_id, is_group, max_participants, notes,
	cancellation_reason, reminder_24h_sent, reminder_1h_sent, created_at, updated_at
`

type CreateAppointmentInput struct {
	TrainerID       uuid.UUID
	StudentID       *uuid.UUID
	OrganizationID  *uuid.UUID
	DateTime        time.Time
	DurationMinutes int
	WorkoutType     *string
	Status          string
	SessionType     string
	IsComplimentary bool
	ServicePlanID   *uuid.UUID
	IsGroup         bool
	MaxParticipants *int
	Notes           *string
}

type AppointmentListFilter struct {
	ActorID   uuid.UUID
	AsTrainer bool
	StudentID *uuid.UUID
	From      *time.Time
	To        *time.Time
}

type AppointmentRepository struct {
	db DBTX
}

func NewAppointmentRepository(db DBTX) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func scanAppointment(row pgx.Row) (*models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(
		&a.ID,
		&a.TrainerID,
		&a.StudentID,
		&a.OrganizationID,
		&a.DateTime,
		&a.DurationMinutes,
		&a.WorkoutType,
		&a.Status,
		&a.AttendanceStatus,
		&a.SessionType,
		&a.IsComplimentary,
		&a.ServicePlanID,
		&a.PaymentID,
		&a.IsGroup,
		&a.MaxParticipants,
		&a.Notes,
		&a.CancellationReason,
		&a.Reminder24hSent,
		&a.Reminder1hSent,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]models.Appointment, error) {
	defer rows.Close()

	appointments := make([]models.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *AppointmentRepository) Create(
	ctx context.Context,
	input CreateAppointmentInput,
) (*models.Appointment, error) {
	query := fmt.Sprintf(`
		INSERT INTO appointments (
			trainer_id, student_id, organization_id, date_time, duration_minutes,
			workout_type, status, session_type, is_complimentary, service_plan_id,
			is_group, max_participants, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING %s
	`, appointmentColumns)

	return scanAppointment(r.db.QueryRow(
		ctx,
		query,
		input.TrainerID,
		input.StudentID,
		input.OrganizationID,
		input.DateTime,
		input.DurationMinutes,
		input.WorkoutType,
		input.Status,
		input.SessionType,
		input.IsComplimentary,
		input.ServicePlanID,
		input.IsGroup,
		input.MaxParticipants,
		input.Notes,
	))
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentColumns)
	return scanAppointment(r.db.QueryRow(ctx, query, id))
}

func (r *AppointmentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1 FOR UPDATE`, appointmentColumns)
	return scanAppointment(r.db.QueryRow(ctx, query, id))
}

func (r *AppointmentRepository) List(
	ctx context.Context,
	filter AppointmentListFilter,
) ([]models.Appointment, error) {
	args := []any{filter.ActorID}
	whereParts := []string{"student_id = $1"}
	if filter.AsTrainer {
		whereParts = []string{"trainer_id = $1"}
		if filter.StudentID != nil {
			args = append(args, *filter.StudentID)
			whereParts = append(whereParts, fmt.Sprintf("student_id = $%d", len(args)))
		}
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		whereParts = append(whereParts, fmt.Sprintf("date_time >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		whereParts = append(whereParts, fmt.Sprintf("date_time <= $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE %s
		ORDER BY date_time DESC, id
	`, appointmentColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// ListForRange returns a trainer's appointments with date_time inside
// [from, to), ordered by start. The exclusive end keeps an appointment
// on a window boundary out of the next window.
func (r *AppointmentRepository) ListForRange(
	ctx context.Context,
	trainerID uuid.UUID,
	from, to time.Time,
) ([]models.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE trainer_id = $1 AND date_time >= $2 AND date_time < $3
		ORDER BY date_time, id
	`, appointmentColumns)

	rows, err := r.db.Query(ctx, query, trainerID, from, to)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// ActiveInWindow returns PENDING/CONFIRMED appointments whose start
// falls inside [from, to], the overlap candidate set for the conflict
// engine.
func (r *AppointmentRepository) ActiveInWindow(
	ctx context.Context,
	trainerID uuid.UUID,
	from, to time.Time,
) ([]models.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE trainer_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND date_time >= $2 AND date_time <= $3
		ORDER BY date_time, id
	`, appointmentColumns)

	rows, err := r.db.Query(ctx, query, trainerID, from, to)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// ActiveInWindowForStudent is the student-side overlap candidate set.
func (r *AppointmentRepository) ActiveInWindowForStudent(
	ctx context.Context,
	studentID uuid.UUID,
	from, to time.Time,
) ([]models.Appointment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE student_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND date_time >= $2 AND date_time <= $3
		ORDER BY date_time, id
	`, appointmentColumns)

	rows, err := r.db.Query(ctx, query, studentID, from, to)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *AppointmentRepository) Upcoming(
	ctx context.Context,
	actorID uuid.UUID,
	asTrainer bool,
	limit int,
) ([]models.Appointment, int, error) {
	actorColumn := "student_id"
	if asTrainer {
		actorColumn = "trainer_id"
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM appointments
		WHERE %s = $1 AND date_time > NOW() AND status IN ('pending', 'confirmed')
	`, actorColumn)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, actorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE %s = $1 AND date_time > NOW() AND status IN ('pending', 'confirmed')
		ORDER BY date_time, id
		LIMIT $2
	`, appointmentColumns, actorColumn)

	rows, err := r.db.Query(ctx, query, actorID, limit)
	if err != nil {
		return nil, 0, err
	}
	appointments, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

// HasOverlap reports whether any PENDING/CONFIRMED appointment of the
// trainer intersects [start, start+duration).
func (r *AppointmentRepository) HasOverlap(
	ctx context.Context,
	trainerID uuid.UUID,
	start time.Time,
	durationMinutes int,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM appointments
			WHERE trainer_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND date_time < ($2::timestamptz + ($3::int * INTERVAL '1 minute'))
			  AND (date_time + (duration_minutes * INTERVAL '1 minute')) > $2::timestamptz
		)
	`
	var overlaps bool
	if err := r.db.QueryRow(ctx, query, trainerID, start, durationMinutes).Scan(&overlaps); err != nil {
		return false, err
	}
	return overlaps, nil
}

// ExistsAt reports whether a non-cancelled appointment already exists
// for the exact (trainer, student, date_time) triple. The schedule
// generator uses this to dedup reruns.
func (r *AppointmentRepository) ExistsAt(
	ctx context.Context,
	trainerID, studentID uuid.UUID,
	dateTime time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE trainer_id = $1 AND student_id = $2 AND date_time = $3
			  AND status <> 'cancelled'
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, trainerID, studentID, dateTime).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *AppointmentRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	id uuid.UUID,
	currentStatus, nextStatus string,
) (*models.Appointment, error) {
	query := fmt.Sprintf(`
		UPDATE appointments
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, appointmentColumns)
	return scanAppointment(r.db.QueryRow(ctx, query, id, currentStatus, nextStatus))
}

// Cancel finalises a cancellation: status, reason and the attendance
// status decided by the late-cancel policy in one statement.
func (r *AppointmentRepository) Cancel(
	ctx context.Context,
	id uuid.UUID,
	reason *string,
	attendanceStatus string,
) (*models.Appointment, error) {
	query := fmt.Sprintf(`
		UPDATE appointments
		SET status = 'cancelled', cancellation_reason = $2, attendance_status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, appointmentColumns)
	return scanAppointment(r.db.QueryRow(ctx, query, id, reason, attendanceStatus))
}

func (r *AppointmentRepository) Reschedule(
	ctx context.Context,
	id uuid.UUID,
	newDateTime time.Time,
	notes *string,
) (*models.Appointment, error) {
	query := fmt.Sprintf(`
		UPDATE appointments
		SET date_time = $2, notes = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, appointmentColumns)
	return scanAppointment(r.db.QueryRow(ctx, query, id, newDateTime, notes))
}

func (r *AppointmentRepository) Complete(
	ctx context.Context,
	id uuid.UUID,
	notes *string,
) (*models.Appointment, error) {
	query := fmt.Sprintf(`
		UPDATE appointments
		SET status = 'completed', notes = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, appointmentColumns)
	return scanAppointment(r.db.QueryRow(ctx, query, id, notes))
}

type UpdateAppointmentInput struct {
	DateTime        *time.Time
	DurationMinutes *int
	WorkoutType     *string
	Notes           *string
}

func (r *AppointmentRepository) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateAppointmentInput,
) (*models.Appointment, error) {
	query := fmt.Sprintf(`
		UPDATE appointments
		SET date_time = COALESCE($2, date_time),
		    duration_minutes = COALESCE($3, duration_minutes),
		    workout_type = COALESCE($4, workout_type),
		    notes = COALESCE($5, notes),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, appointmentColumns)
	return scanAppointment(r.db.QueryRow(
		ctx, query, id, input.DateTime, input.DurationMinutes, input.WorkoutType, input.Notes,
	))
}

// SetAttendance records attendance and optionally forces the lifecycle
// status (attended marks the appointment completed).
func (r *AppointmentRepository) SetAttendance(
	ctx context.Context,
	id uuid.UUID,
	attendanceStatus string,
	status *string,
	notes *string,
) (*models.Appointment, error) {
	query := fmt.Sprintf(`
		UPDATE appointments
		SET attendance_status = $2,
		    status = COALESCE($3, status),
		    notes = COALESCE($4, notes),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, appointmentColumns)
	return scanAppointment(r.db.QueryRow(ctx, query, id, attendanceStatus, status, notes))
}

func (r *AppointmentRepository) SetPaymentID(ctx context.Context, id, paymentID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE appointments SET payment_id = $2, updated_at = NOW() WHERE id = $1`,
		id, paymentID,
	)
	return err
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DueForReminder returns PENDING/CONFIRMED appointments starting within
// the window whose reminder flag for that window is still unset.
func (r *AppointmentRepository) DueForReminder(
	ctx context.Context,
	window time.Duration,
	use24hFlag bool,
) ([]models.Appointment, error) {
	flag := "reminder_1h_sent"
	if use24hFlag {
		flag = "reminder_24h_sent"
	}
	query := fmt.Sprintf(`
		SELECT %s FROM appointments
		WHERE status IN ('pending', 'confirmed')
		  AND %s = FALSE
		  AND date_time > NOW()
		  AND date_time <= NOW() + ($1::int * INTERVAL '1 minute')
		ORDER BY date_time
	`, appointmentColumns, flag)

	rows, err := r.db.Query(ctx, query, int(window.Minutes()))
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *AppointmentRepository) MarkReminderSent(
	ctx context.Context,
	id uuid.UUID,
	use24hFlag bool,
) error {
	flag := "reminder_1h_sent"
	if use24hFlag {
		flag = "reminder_24h_sent"
	}
	_, err := r.db.Exec(ctx,
		fmt.Sprintf(`UPDATE appointments SET %s = TRUE, updated_at = NOW() WHERE id = $1`, flag),
		id,
	)
	return err
}
