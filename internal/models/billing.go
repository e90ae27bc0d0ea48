package models

import (
	"time"

	"github.com/google/uuid"
)

// Service plan types.
const (
	PlanRecurring = "recurring"
	PlanPackage   = "package"
	PlanDropIn    = "drop_in"
	PlanFreeTrial = "free_trial"
)

// Payment statuses and types (session billing only).
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"

	PaymentTypeSession = "session"
)

// ScheduleSlot is one weekly slot in a plan's schedule config.
type ScheduleSlot struct {
	DayOfWeek       int    `json:"day_of_week"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
}

// ServicePlan is owned by billing; this core reads it and mutates
// RemainingSessions as a documented side effect of attendance and
// late-cancellation charges.
type ServicePlan struct {
	ID                uuid.UUID      `json:"id"`
	StudentID         uuid.UUID      `json:"student_id"`
	TrainerID         uuid.UUID      `json:"trainer_id"`
	OrganizationID    *uuid.UUID     `json:"organization_id,omitempty"`
	Name              string         `json:"name"`
	PlanType          string         `json:"plan_type"`
	RemainingSessions *int           `json:"remaining_sessions,omitempty"`
	PackageExpiryDate *time.Time     `json:"package_expiry_date,omitempty"`
	PerSessionCents   *int           `json:"per_session_cents,omitempty"`
	ScheduleConfig    []ScheduleSlot `json:"schedule_config,omitempty"`
	IsActive          bool           `json:"is_active"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Payment is a session charge created when a drop-in attendance is
// marked. Capture and methods live with the billing collaborator.
type Payment struct {
	ID            uuid.UUID  `json:"id"`
	PayerID       uuid.UUID  `json:"payer_id"`
	PayeeID       uuid.UUID  `json:"payee_id"`
	PaymentType   string     `json:"payment_type"`
	Description   string     `json:"description"`
	AmountCents   int        `json:"amount_cents"`
	Status        string     `json:"status"`
	DueDate       time.Time  `json:"due_date"`
	ServicePlanID *uuid.UUID `json:"service_plan_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
