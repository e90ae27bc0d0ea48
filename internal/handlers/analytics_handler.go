package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/services"
)

type analyticsApplicationService interface {
	ScheduleAnalytics(ctx context.Context, trainerID uuid.UUID, from, to time.Time) (*models.ScheduleAnalytics, error)
	StudentReliability(ctx context.Context, studentID uuid.UUID) (*models.StudentReliability, error)
}

type AnalyticsHandler struct {
	service analyticsApplicationService
}

func NewAnalyticsHandler(service *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Schedule reports the trainer's session distribution for ?from..?to,
// defaulting to the last 30 days.
func (h *AnalyticsHandler) Schedule(c *fiber.Ctx) error {
	trainerID, err := requireTrainer(c)
	if err != nil {
		return err
	}

	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if raw := c.Query("from"); raw != "" {
		from, err = parseDate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be YYYY-MM-DD"})
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = parseDate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be YYYY-MM-DD"})
		}
		to = to.Add(24 * time.Hour)
	}

	analytics, err := h.service.ScheduleAnalytics(c.Context(), trainerID, from, to)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(analytics)
}

// Reliability reports a student's recent attendance record. Trainers
// may look up any student; students only themselves.
func (h *AnalyticsHandler) Reliability(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	studentID, err := paramID(c, "studentId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}
	if actorRole(c) != models.RoleTrainer && studentID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	reliability, err := h.service.StudentReliability(c.Context(), studentID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(reliability)
}
