package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

var appointmentColumnNames = []string{
	"id", "trainer_id", "student_id", "organization_id", "date_time", "duration_minutes",
	"workout_type", "status", "attendance_status", "session_type", "is_complimentary",
	"service_plan_id", "payment_id", "is_group", "max_participants", "notes",
	"cancellation_reason", "reminder_24h_sent", "reminder_1h_sent", "created_at", "updated_at",
}

func appointmentRow(id, trainerID uuid.UUID, dateTime time.Time) *pgxmock.Rows {
	now := time.Now()
	studentID := uuid.New()
	return pgxmock.NewRows(appointmentColumnNames).AddRow(
		id, trainerID, &studentID, (*uuid.UUID)(nil), dateTime, 60,
		(*string)(nil), "confirmed", "scheduled", "scheduled", false,
		(*uuid.UUID)(nil), (*uuid.UUID)(nil), false, (*int)(nil), (*string)(nil),
		(*string)(nil), false, false, now, now,
	)
}

// An appointment starting exactly at the range end belongs to the next
// window, so the end bound must be exclusive.
func TestAppointmentRepositoryListForRangeEndExclusive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	trainerID := uuid.New()
	from := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mock.ExpectQuery(`date_time >= \$2 AND date_time < \$3`).
		WithArgs(trainerID, from, to).
		WillReturnRows(appointmentRow(uuid.New(), trainerID, from.Add(9*time.Hour)))

	repo := NewAppointmentRepository(mock)
	appointments, err := repo.ListForRange(context.Background(), trainerID, from, to)
	if err != nil {
		t.Fatalf("ListForRange: %v", err)
	}
	if len(appointments) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(appointments))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
