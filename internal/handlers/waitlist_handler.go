package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/services"
)

type waitlistApplicationService interface {
	Join(ctx context.Context, studentID uuid.UUID, input services.JoinWaitlistInput) (*models.WaitlistEntry, error)
	List(ctx context.Context, trainerID uuid.UUID, dayOfWeek *int, status string) ([]models.WaitlistEntry, error)
	OfferSlot(ctx context.Context, trainerID, entryID uuid.UUID, input services.OfferSlotInput) (*models.WaitlistEntry, error)
	AcceptOffer(ctx context.Context, studentID, entryID uuid.UUID) (*models.WaitlistEntry, error)
	Leave(ctx context.Context, studentID, entryID uuid.UUID) error
}

type WaitlistHandler struct {
	service waitlistApplicationService
}

func NewWaitlistHandler(service *services.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{service: service}
}

type joinWaitlistRequest struct {
	TrainerID          string  `json:"trainer_id"`
	PreferredDayOfWeek *int    `json:"preferred_day_of_week"`
	PreferredTimeStart *string `json:"preferred_time_start"`
	PreferredTimeEnd   *string `json:"preferred_time_end"`
	Notes              *string `json:"notes"`
}

func (h *WaitlistHandler) Join(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleStudent {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	studentID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req joinWaitlistRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	trainerID, err := uuid.Parse(req.TrainerID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer id"})
	}

	entry, err := h.service.Join(c.Context(), studentID, services.JoinWaitlistInput{
		TrainerID:          trainerID,
		PreferredDayOfWeek: req.PreferredDayOfWeek,
		PreferredTimeStart: req.PreferredTimeStart,
		PreferredTimeEnd:   req.PreferredTimeEnd,
		Notes:              req.Notes,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"entry": entry})
}

func (h *WaitlistHandler) List(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var dayOfWeek *int
	if raw := strings.TrimSpace(c.Query("day_of_week")); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 0 || day > 6 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "day_of_week must be 0-6"})
		}
		dayOfWeek = &day
	}

	entries, err := h.service.List(c.Context(), trainerID, dayOfWeek, strings.TrimSpace(c.Query("status")))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

type offerSlotRequest struct {
	DateTime        string  `json:"date_time"`
	DurationMinutes int     `json:"duration_minutes"`
	WorkoutType     *string `json:"workout_type"`
	Notes           *string `json:"notes"`
}

func (h *WaitlistHandler) OfferSlot(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	entryID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid entry id"})
	}

	var req offerSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	dateTime, err := parseTimestamp(req.DateTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date_time must be a valid RFC3339 timestamp"})
	}
	if req.DurationMinutes <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration_minutes must be greater than 0"})
	}

	entry, err := h.service.OfferSlot(c.Context(), trainerID, entryID, services.OfferSlotInput{
		DateTime:        dateTime,
		DurationMinutes: req.DurationMinutes,
		WorkoutType:     req.WorkoutType,
		Notes:           req.Notes,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"entry": entry})
}

func (h *WaitlistHandler) AcceptOffer(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleStudent {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	studentID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	entryID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid entry id"})
	}

	entry, err := h.service.AcceptOffer(c.Context(), studentID, entryID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"entry": entry})
}

func (h *WaitlistHandler) Leave(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	entryID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid entry id"})
	}

	if err := h.service.Leave(c.Context(), userID, entryID); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
