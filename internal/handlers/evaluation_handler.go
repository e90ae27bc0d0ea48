package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/services"
)

type evaluationApplicationService interface {
	CreateEvaluation(ctx context.Context, evaluatorID, appointmentID uuid.UUID, input services.CreateEvaluationInput) (*models.SessionEvaluation, error)
	ListEvaluations(ctx context.Context, userID, appointmentID uuid.UUID) ([]models.SessionEvaluation, error)
}

type EvaluationHandler struct {
	service evaluationApplicationService
}

func NewEvaluationHandler(service *services.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{service: service}
}

type createEvaluationRequest struct {
	OverallRating int     `json:"overall_rating"`
	Difficulty    *string `json:"difficulty"`
	EnergyLevel   *int    `json:"energy_level"`
	Notes         *string `json:"notes"`
}

func (h *EvaluationHandler) Create(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	appointmentID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	var req createEvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	evaluation, err := h.service.CreateEvaluation(c.Context(), userID, appointmentID, services.CreateEvaluationInput{
		OverallRating: req.OverallRating,
		Difficulty:    req.Difficulty,
		EnergyLevel:   req.EnergyLevel,
		Notes:         req.Notes,
	})
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Session already evaluated by this user"})
		}
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"evaluation": evaluation})
}

func (h *EvaluationHandler) List(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	appointmentID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	evaluations, err := h.service.ListEvaluations(c.Context(), userID, appointmentID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"evaluations": evaluations})
}
