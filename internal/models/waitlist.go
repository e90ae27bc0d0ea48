package models

import (
	"time"

	"github.com/google/uuid"
)

// Waitlist entry statuses.
const (
	WaitlistWaiting  = "waiting"
	WaitlistOffered  = "offered"
	WaitlistAccepted = "accepted"
	WaitlistExpired  = "expired"
)

// WaitlistEntry queues a student's request for a slot with a trainer.
// waiting -> offered (pending appointment linked) -> accepted;
// offered entries expire by sweep.
type WaitlistEntry struct {
	ID                   uuid.UUID  `json:"id"`
	StudentID            uuid.UUID  `json:"student_id"`
	TrainerID            uuid.UUID  `json:"trainer_id"`
	PreferredDayOfWeek   *int       `json:"preferred_day_of_week,omitempty"`
	PreferredTimeStart   *string    `json:"preferred_time_start,omitempty"`
	PreferredTimeEnd     *string    `json:"preferred_time_end,omitempty"`
	Notes                *string    `json:"notes,omitempty"`
	Status               string     `json:"status"`
	OfferedAppointmentID *uuid.UUID `json:"offered_appointment_id,omitempty"`
	OrganizationID       *uuid.UUID `json:"organization_id,omitempty"`
	OfferedAt            *time.Time `json:"offered_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// SessionTemplate is a reusable weekly blueprint applied in bulk to a
// target week.
type SessionTemplate struct {
	ID              uuid.UUID  `json:"id"`
	TrainerID       uuid.UUID  `json:"trainer_id"`
	Name            string     `json:"name"`
	DayOfWeek       int        `json:"day_of_week"`
	StartTime       string     `json:"start_time"`
	DurationMinutes int        `json:"duration_minutes"`
	WorkoutType     *string    `json:"workout_type,omitempty"`
	IsGroup         bool       `json:"is_group"`
	MaxParticipants *int       `json:"max_participants,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	IsActive        bool       `json:"is_active"`
	OrganizationID  *uuid.UUID `json:"organization_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BulkResult summarises a partial-success batch operation.
type BulkResult struct {
	Created     int `json:"created"`
	Skipped     int `json:"skipped"`
	TotalSource int `json:"total_source"`
}
