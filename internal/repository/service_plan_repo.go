package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
)

const servicePlanColumns = `
	id, student_id, trainer_id, organization_id, name, plan_type,
	remaining_sessions, package_expiry_date, per_session_cents,
	schedule_config, is_active, created_at, updated_at
`

// ServicePlanRepository reads the billing-owned plan table and mutates
// remaining_sessions under the shared-mutation contract.
type ServicePlanRepository struct {
	db DBTX
}

func NewServicePlanRepository(db DBTX) *ServicePlanRepository {
	return &ServicePlanRepository{db: db}
}

func scanServicePlan(row pgx.Row) (*models.ServicePlan, error) {
	var p models.ServicePlan
	var scheduleConfig []byte
	err := row.Scan(
		&p.ID, &p.StudentID, &p.TrainerID, &p.OrganizationID, &p.Name, &p.PlanType,
		&p.RemainingSessions, &p.PackageExpiryDate, &p.PerSessionCents,
		&scheduleConfig, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(scheduleConfig) > 0 {
		if err := json.Unmarshal(scheduleConfig, &p.ScheduleConfig); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (r *ServicePlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ServicePlan, error) {
	query := `SELECT ` + servicePlanColumns + ` FROM service_plans WHERE id = $1`
	return scanServicePlan(r.db.QueryRow(ctx, query, id))
}

// ConsumeSession decrements a package plan's credit atomically with a
// floor of zero and returns the updated plan. Plans without a session
// counter are returned unchanged.
func (r *ServicePlanRepository) ConsumeSession(ctx context.Context, id uuid.UUID) (*models.ServicePlan, error) {
	query := `
		UPDATE service_plans
		SET remaining_sessions = GREATEST(remaining_sessions - 1, 0),
		    updated_at = NOW()
		WHERE id = $1 AND remaining_sessions IS NOT NULL
		RETURNING ` + servicePlanColumns
	plan, err := scanServicePlan(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return r.GetByID(ctx, id)
	}
	return plan, err
}

// ExpiringPackages lists active package plans whose expiry date falls
// within the next `days` days, for the scheduler's expiry alerts.
func (r *ServicePlanRepository) ExpiringPackages(ctx context.Context, days int) ([]models.ServicePlan, error) {
	query := `
		SELECT ` + servicePlanColumns + `
		FROM service_plans
		WHERE plan_type = 'package'
		  AND is_active = TRUE
		  AND package_expiry_date IS NOT NULL
		  AND package_expiry_date >= CURRENT_DATE
		  AND package_expiry_date <= CURRENT_DATE + $1::int
		ORDER BY package_expiry_date
	`
	rows, err := r.db.Query(ctx, query, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]models.ServicePlan, 0)
	for rows.Next() {
		p, err := scanServicePlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}
