package models

import (
	"time"

	"github.com/google/uuid"
)

// Evaluator roles on a session evaluation.
const (
	EvaluatorTrainer = "trainer"
	EvaluatorStudent = "student"
)

// Perceived difficulty feedback values.
const (
	DifficultyTooEasy   = "too_easy"
	DifficultyJustRight = "just_right"
	DifficultyTooHard   = "too_hard"
)

// SessionEvaluation is post-session feedback left by one side of a
// completed session. (appointment_id, evaluator_id) is unique.
type SessionEvaluation struct {
	ID            uuid.UUID  `json:"id"`
	AppointmentID uuid.UUID  `json:"appointment_id"`
	EvaluatorID   uuid.UUID  `json:"evaluator_id"`
	EvaluatorRole string     `json:"evaluator_role"`
	OverallRating int        `json:"overall_rating"`
	Difficulty    *string    `json:"difficulty,omitempty"`
	EnergyLevel   *int       `json:"energy_level,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
