package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/repository"
)

// Notifier delivers a notification to a user. Delivery is best effort:
// callers treat failures as non-fatal and never roll back business
// transactions because a notification could not be sent.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string)
}

type pusher interface {
	PushToUser(userID uuid.UUID, payload []byte)
}

// NotificationService persists notifications and pushes them to any
// connected websocket clients of the target user.
type NotificationService struct {
	repo *repository.NotificationRepository
	hub  pusher
}

func NewNotificationService(repo *repository.NotificationRepository, hub pusher) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

func (s *NotificationService) Notify(
	ctx context.Context,
	userID uuid.UUID,
	title, body string,
	data map[string]string,
) {
	n, err := s.repo.Create(ctx, userID, title, body, data)
	if err != nil {
		log.Printf("notification persist failed for user %s: %v", userID, err)
		return
	}
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		log.Printf("notification marshal failed: %v", err)
		return
	}
	s.hub.PushToUser(userID, payload)
}

func (s *NotificationService) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}
