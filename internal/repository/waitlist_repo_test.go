package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

var waitlistColumnNames = []string{
	"id", "student_id", "trainer_id", "preferred_day_of_week", "preferred_time_start",
	"preferred_time_end", "notes", "status", "offered_appointment_id", "organization_id",
	"offered_at", "created_at", "updated_at",
}

func waitlistRow(id, studentID, trainerID uuid.UUID, status string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(waitlistColumnNames).AddRow(
		id, studentID, trainerID, (*int)(nil), (*string)(nil),
		(*string)(nil), (*string)(nil), status, (*uuid.UUID)(nil), (*uuid.UUID)(nil),
		(*time.Time)(nil), now, now,
	)
}

func TestWaitlistRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	studentID := uuid.New()
	trainerID := uuid.New()
	day := 2
	start := "17:00"

	mock.ExpectQuery("INSERT INTO waitlist_entries").
		WithArgs(studentID, trainerID, &day, &start, (*string)(nil), (*string)(nil), (*uuid.UUID)(nil)).
		WillReturnRows(waitlistRow(uuid.New(), studentID, trainerID, "waiting"))

	repo := NewWaitlistRepository(mock)
	entry, err := repo.Create(context.Background(), CreateWaitlistEntryInput{
		StudentID:          studentID,
		TrainerID:          trainerID,
		PreferredDayOfWeek: &day,
		PreferredTimeStart: &start,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.Status != "waiting" {
		t.Errorf("expected status waiting, got %q", entry.Status)
	}
	if entry.StudentID != studentID {
		t.Errorf("student id mismatch")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWaitlistRepositoryListAppliesFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	trainerID := uuid.New()
	day := 3

	mock.ExpectQuery("FROM waitlist_entries").
		WithArgs(trainerID, day, "waiting").
		WillReturnRows(waitlistRow(uuid.New(), uuid.New(), trainerID, "waiting"))

	repo := NewWaitlistRepository(mock)
	entries, err := repo.List(context.Background(), WaitlistListFilter{
		TrainerID: trainerID,
		DayOfWeek: &day,
		Status:    "waiting",
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWaitlistRepositoryMarkOfferedGuardsStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	entryID := uuid.New()
	appointmentID := uuid.New()

	mock.ExpectQuery("UPDATE waitlist_entries").
		WithArgs(entryID, appointmentID).
		WillReturnError(pgx.ErrNoRows)

	repo := NewWaitlistRepository(mock)
	_, err = repo.MarkOffered(context.Background(), entryID, appointmentID)
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows for non-waiting entry, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWaitlistRepositoryDeleteMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	entryID := uuid.New()
	mock.ExpectExec("DELETE FROM waitlist_entries").
		WithArgs(entryID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewWaitlistRepository(mock)
	if err := repo.Delete(context.Background(), entryID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWaitlistRepositoryStaleOffers(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	cutoff := time.Now().Add(-30 * time.Minute)
	mock.ExpectQuery("FROM waitlist_entries").
		WithArgs(cutoff).
		WillReturnRows(waitlistRow(uuid.New(), uuid.New(), uuid.New(), "offered"))

	repo := NewWaitlistRepository(mock)
	entries, err := repo.StaleOffers(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("StaleOffers: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != "offered" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
