package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
)

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(
	ctx context.Context,
	userID uuid.UUID,
	title, body string,
	data map[string]string,
) (*models.Notification, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO notifications (user_id, title, body, data)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, title, body, data, read_at, created_at
	`
	var n models.Notification
	var raw []byte
	err = r.db.QueryRow(ctx, query, userID, title, body, payload).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Body, &raw, &n.ReadAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &n.Data); err != nil {
			return nil, err
		}
	}
	return &n, nil
}

func (r *NotificationRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, title, body, data, read_at, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		var raw []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &raw, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &n.Data); err != nil {
				return nil, err
			}
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	_, err := r.db.Exec(
		ctx,
		`UPDATE notifications SET read_at = NOW() WHERE id = $1 AND user_id = $2 AND read_at IS NULL`,
		id, userID,
	)
	return err
}
