package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
)

type CreateSessionPaymentInput struct {
	PayerID       uuid.UUID
	PayeeID       uuid.UUID
	Description   string
	AmountCents   int
	DueDate       time.Time
	ServicePlanID *uuid.UUID
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreateSessionPayment records a pending per-session charge for a
// drop-in attendance. Capture belongs to the billing collaborator.
func (r *PaymentRepository) CreateSessionPayment(
	ctx context.Context,
	input CreateSessionPaymentInput,
) (*models.Payment, error) {
	query := `
		INSERT INTO payments (
			payer_id, payee_id, payment_type, description, amount_cents, status, due_date, service_plan_id
		)
		VALUES ($1, $2, 'session', $3, $4, 'pending', $5, $6)
		RETURNING id, payer_id, payee_id, payment_type, description, amount_cents, status,
			due_date, service_plan_id, created_at
	`
	var payment models.Payment
	err := r.db.QueryRow(
		ctx, query,
		input.PayerID, input.PayeeID, input.Description,
		input.AmountCents, input.DueDate, input.ServicePlanID,
	).Scan(
		&payment.ID,
		&payment.PayerID,
		&payment.PayeeID,
		&payment.PaymentType,
		&payment.Description,
		&payment.AmountCents,
		&payment.Status,
		&payment.DueDate,
		&payment.ServicePlanID,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
