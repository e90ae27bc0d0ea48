package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
)

const participantColumns = `
	id, appointment_id, student_id, attendance_status, service_plan_id,
	is_complimentary, notes, created_at, updated_at
`

type ParticipantRepository struct {
	db DBTX
}

func NewParticipantRepository(db DBTX) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func scanParticipant(row pgx.Row) (*models.AppointmentParticipant, error) {
	var p models.AppointmentParticipant
	err := row.Scan(
		&p.ID,
		&p.AppointmentID,
		&p.StudentID,
		&p.AttendanceStatus,
		&p.ServicePlanID,
		&p.IsComplimentary,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type CreateParticipantInput struct {
	AppointmentID   uuid.UUID
	StudentID       uuid.UUID
	ServicePlanID   *uuid.UUID
	IsComplimentary bool
}

func (r *ParticipantRepository) Create(
	ctx context.Context,
	input CreateParticipantInput,
) (*models.AppointmentParticipant, error) {
	query := `
		INSERT INTO appointment_participants (
			appointment_id, student_id, attendance_status, service_plan_id, is_complimentary
		)
		VALUES ($1, $2, 'scheduled', $3, $4)
		RETURNING ` + participantColumns

	return scanParticipant(r.db.QueryRow(
		ctx, query, input.AppointmentID, input.StudentID, input.ServicePlanID, input.IsComplimentary,
	))
}

func (r *ParticipantRepository) ListByAppointment(
	ctx context.Context,
	appointmentID uuid.UUID,
) ([]models.AppointmentParticipant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM appointment_participants
		WHERE appointment_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]models.AppointmentParticipant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *ParticipantRepository) Get(
	ctx context.Context,
	appointmentID, studentID uuid.UUID,
) (*models.AppointmentParticipant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM appointment_participants
		WHERE appointment_id = $1 AND student_id = $2
	`
	return scanParticipant(r.db.QueryRow(ctx, query, appointmentID, studentID))
}

func (r *ParticipantRepository) GetForUpdate(
	ctx context.Context,
	appointmentID, studentID uuid.UUID,
) (*models.AppointmentParticipant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM appointment_participants
		WHERE appointment_id = $1 AND student_id = $2
		FOR UPDATE
	`
	return scanParticipant(r.db.QueryRow(ctx, query, appointmentID, studentID))
}

func (r *ParticipantRepository) CountByAppointment(
	ctx context.Context,
	appointmentID uuid.UUID,
) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment_participants WHERE appointment_id = $1`,
		appointmentID,
	).Scan(&count)
	return count, err
}

func (r *ParticipantRepository) SetAttendance(
	ctx context.Context,
	id uuid.UUID,
	attendanceStatus string,
	notes *string,
) (*models.AppointmentParticipant, error) {
	query := `
		UPDATE appointment_participants
		SET attendance_status = $2, notes = COALESCE($3, notes), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + participantColumns
	return scanParticipant(r.db.QueryRow(ctx, query, id, attendanceStatus, notes))
}

func (r *ParticipantRepository) Delete(
	ctx context.Context,
	appointmentID, studentID uuid.UUID,
) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM appointment_participants WHERE appointment_id = $1 AND student_id = $2`,
		appointmentID, studentID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
