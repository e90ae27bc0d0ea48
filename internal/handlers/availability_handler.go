package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/repository"
	"github.com/saeid-a/TrainerScheduleBack/internal/services"
)

type availabilityApplicationService interface {
	ListWindows(ctx context.Context, trainerID uuid.UUID) ([]models.TrainerAvailability, error)
	ReplaceWindows(ctx context.Context, trainerID uuid.UUID, windows []repository.AvailabilityWindow) ([]models.TrainerAvailability, error)
	CreateBlockedSlot(ctx context.Context, trainerID uuid.UUID, input repository.CreateBlockedSlotInput) (*models.TrainerBlockedSlot, error)
	ListBlockedSlots(ctx context.Context, trainerID uuid.UUID) ([]models.TrainerBlockedSlot, error)
	DeleteBlockedSlot(ctx context.Context, trainerID, id uuid.UUID) error
	Settings(ctx context.Context, trainerID uuid.UUID) (*models.TrainerSettings, error)
	UpdateSettings(ctx context.Context, trainerID uuid.UUID, input repository.UpdateSettingsInput) (*models.TrainerSettings, error)
}

type conflictCheckService interface {
	CheckConflicts(ctx context.Context, input services.ConflictCheckInput) (*models.ConflictCheckResult, error)
	AvailableSlots(ctx context.Context, trainerID uuid.UUID, date time.Time) ([]models.SlotStatus, error)
}

type AvailabilityHandler struct {
	availability availabilityApplicationService
	schedule     conflictCheckService
}

func NewAvailabilityHandler(
	availability *services.AvailabilityService,
	schedule *services.ScheduleService,
) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, schedule: schedule}
}

func (h *AvailabilityHandler) ListWindows(c *fiber.Ctx) error {
	trainerID, err := paramID(c, "trainerId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer id"})
	}
	windows, err := h.availability.ListWindows(c.Context(), trainerID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"availability": windows})
}

type availabilityWindowRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type replaceWindowsRequest struct {
	Windows []availabilityWindowRequest `json:"windows"`
}

func (h *AvailabilityHandler) ReplaceWindows(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req replaceWindowsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	windows := make([]repository.AvailabilityWindow, 0, len(req.Windows))
	for _, w := range req.Windows {
		windows = append(windows, repository.AvailabilityWindow{
			DayOfWeek: w.DayOfWeek,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		})
	}

	replaced, err := h.availability.ReplaceWindows(c.Context(), trainerID, windows)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"availability": replaced})
}

type blockedSlotRequest struct {
	DayOfWeek    *int    `json:"day_of_week"`
	SpecificDate *string `json:"specific_date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Reason       *string `json:"reason"`
	IsRecurring  bool    `json:"is_recurring"`
}

func (h *AvailabilityHandler) CreateBlockedSlot(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req blockedSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := repository.CreateBlockedSlotInput{
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Reason:      req.Reason,
		IsRecurring: req.IsRecurring,
	}
	if req.SpecificDate != nil {
		date, err := parseDate(*req.SpecificDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "specific_date must be YYYY-MM-DD"})
		}
		input.SpecificDate = &date
	}

	slot, err := h.availability.CreateBlockedSlot(c.Context(), trainerID, input)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"blocked_slot": slot})
}

func (h *AvailabilityHandler) ListBlockedSlots(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	slots, err := h.availability.ListBlockedSlots(c.Context(), trainerID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"blocked_slots": slots})
}

func (h *AvailabilityHandler) DeleteBlockedSlot(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid blocked slot id"})
	}

	if err := h.availability.DeleteBlockedSlot(c.Context(), trainerID, id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AvailabilityHandler) Settings(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	settings, err := h.availability.Settings(c.Context(), trainerID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"settings": settings})
}

type updateSettingsRequest struct {
	DefaultStartTime       *string `json:"default_start_time"`
	DefaultEndTime         *string `json:"default_end_time"`
	SessionDurationMinutes *int    `json:"session_duration_minutes"`
	SlotIntervalMinutes    *int    `json:"slot_interval_minutes"`
	LateCancelWindowHours  *int    `json:"late_cancel_window_hours"`
	LateCancelPolicy       *string `json:"late_cancel_policy"`
}

func (h *AvailabilityHandler) UpdateSettings(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	settings, err := h.availability.UpdateSettings(c.Context(), trainerID, repository.UpdateSettingsInput{
		DefaultStartTime:       req.DefaultStartTime,
		DefaultEndTime:         req.DefaultEndTime,
		SessionDurationMinutes: req.SessionDurationMinutes,
		SlotIntervalMinutes:    req.SlotIntervalMinutes,
		LateCancelWindowHours:  req.LateCancelWindowHours,
		LateCancelPolicy:       req.LateCancelPolicy,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"settings": settings})
}

func (h *AvailabilityHandler) AvailableSlots(c *fiber.Ctx) error {
	trainerID, err := paramID(c, "trainerId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer id"})
	}
	date, err := parseDate(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	slots, err := h.schedule.AvailableSlots(c.Context(), trainerID, date)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"slots": slots})
}

type conflictCheckRequest struct {
	TrainerID       string  `json:"trainer_id"`
	DateTime        string  `json:"date_time"`
	DurationMinutes int     `json:"duration_minutes"`
	StudentID       *string `json:"student_id"`
}

func (h *AvailabilityHandler) CheckConflicts(c *fiber.Ctx) error {
	var req conflictCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	trainerID, err := uuid.Parse(req.TrainerID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid trainer id"})
	}
	dateTime, err := parseTimestamp(req.DateTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date_time must be a valid RFC3339 timestamp"})
	}
	if req.DurationMinutes <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration_minutes must be greater than 0"})
	}

	input := services.ConflictCheckInput{
		TrainerID:       trainerID,
		Start:           dateTime,
		DurationMinutes: req.DurationMinutes,
	}
	if req.StudentID != nil {
		studentID, err := uuid.Parse(*req.StudentID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
		}
		input.StudentID = &studentID
	}

	result, err := h.schedule.CheckConflicts(c.Context(), input)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}
