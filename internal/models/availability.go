package models

import (
	"time"

	"github.com/google/uuid"
)

// Late-cancellation policies.
const (
	LateCancelCharge = "charge"
	LateCancelWarn   = "warn"
	LateCancelBlock  = "block"
)

// TrainerAvailability is one recurring weekly window. Day of week is
// 0=Monday..6=Sunday; times are "HH:MM". Multiple disjoint rows per day
// are allowed.
type TrainerAvailability struct {
	ID        uuid.UUID `json:"id"`
	TrainerID uuid.UUID `json:"trainer_id"`
	DayOfWeek int       `json:"day_of_week"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

// TrainerBlockedSlot excludes time layered over availability. Either
// recurring on DayOfWeek or one-off on SpecificDate.
type TrainerBlockedSlot struct {
	ID           uuid.UUID  `json:"id"`
	TrainerID    uuid.UUID  `json:"trainer_id"`
	DayOfWeek    *int       `json:"day_of_week,omitempty"`
	SpecificDate *time.Time `json:"specific_date,omitempty"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	Reason       *string    `json:"reason,omitempty"`
	IsRecurring  bool       `json:"is_recurring"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TrainerSettings is one row per trainer, lazily created with defaults
// on first access.
type TrainerSettings struct {
	ID                     uuid.UUID `json:"id"`
	TrainerID              uuid.UUID `json:"trainer_id"`
	DefaultStartTime       string    `json:"default_start_time"`
	DefaultEndTime         string    `json:"default_end_time"`
	SessionDurationMinutes int       `json:"session_duration_minutes"`
	SlotIntervalMinutes    int       `json:"slot_interval_minutes"`
	LateCancelWindowHours  int       `json:"late_cancel_window_hours"`
	LateCancelPolicy       string    `json:"late_cancel_policy"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// SlotStatus is one enumerated candidate slot for a day.
type SlotStatus struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// ConflictDetail describes one conflict or warning found for a
// candidate booking.
type ConflictDetail struct {
	Type                   string     `json:"type"`
	Message                string     `json:"message"`
	ConflictingAppointment *uuid.UUID `json:"conflicting_appointment_id,omitempty"`
	ConflictingTime        *time.Time `json:"conflicting_time,omitempty"`
}

// ConflictCheckResult is the conflict engine's verdict: hard conflicts
// block, warnings inform.
type ConflictCheckResult struct {
	HasConflicts bool             `json:"has_conflicts"`
	Conflicts    []ConflictDetail `json:"conflicts"`
	Warnings     []ConflictDetail `json:"warnings"`
}
