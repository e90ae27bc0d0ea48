package models

import (
	"time"

	"github.com/google/uuid"
)

// Appointment lifecycle statuses.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

// Attendance statuses.
const (
	AttendanceScheduled     = "scheduled"
	AttendanceAttended      = "attended"
	AttendanceMissed        = "missed"
	AttendanceLateCancelled = "late_cancelled"
)

// Session types relative to the service plan.
const (
	SessionScheduled = "scheduled"
	SessionMakeup    = "makeup"
	SessionExtra     = "extra"
	SessionTrial     = "trial"
)

// Recurrence patterns for series generation.
const (
	RecurrenceDaily    = "daily"
	RecurrenceWeekly   = "weekly"
	RecurrenceBiweekly = "biweekly"
	RecurrenceMonthly  = "monthly"
)

// Appointment is a trainer-student training session. StudentID is nil
// for template-created sessions that have not been assigned yet.
type Appointment struct {
	ID                 uuid.UUID  `json:"id"`
	TrainerID          uuid.UUID  `json:"trainer_id"`
	StudentID          *uuid.UUID `json:"student_id"`
	OrganizationID     *uuid.UUID `json:"organization_id,omitempty"`
	DateTime           time.Time  `json:"date_time"`
	DurationMinutes    int        `json:"duration_minutes"`
	WorkoutType        *string    `json:"workout_type,omitempty"`
	Status             string     `json:"status"`
	AttendanceStatus   string     `json:"attendance_status"`
	SessionType        string     `json:"session_type"`
	IsComplimentary    bool       `json:"is_complimentary"`
	ServicePlanID      *uuid.UUID `json:"service_plan_id,omitempty"`
	PaymentID          *uuid.UUID `json:"payment_id,omitempty"`
	IsGroup            bool       `json:"is_group"`
	MaxParticipants    *int       `json:"max_participants,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	Reminder24hSent    bool       `json:"-"`
	Reminder1hSent     bool       `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// EndTime is the exclusive end of the booked interval.
func (a *Appointment) EndTime() time.Time {
	return a.DateTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// IsParty reports whether the user is the trainer or the booked student.
func (a *Appointment) IsParty(userID uuid.UUID) bool {
	if a.TrainerID == userID {
		return true
	}
	return a.StudentID != nil && *a.StudentID == userID
}

// AppointmentParticipant carries per-student attendance and billing for
// group sessions. (appointment_id, student_id) is unique.
type AppointmentParticipant struct {
	ID               uuid.UUID  `json:"id"`
	AppointmentID    uuid.UUID  `json:"appointment_id"`
	StudentID        uuid.UUID  `json:"student_id"`
	AttendanceStatus string     `json:"attendance_status"`
	ServicePlanID    *uuid.UUID `json:"service_plan_id,omitempty"`
	IsComplimentary  bool       `json:"is_complimentary"`
	Notes            *string    `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// AppointmentDetail bundles an appointment with its group roster.
type AppointmentDetail struct {
	Appointment
	Participants []AppointmentParticipant `json:"participants,omitempty"`
}
