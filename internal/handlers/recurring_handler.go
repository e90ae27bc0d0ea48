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

type recurringApplicationService interface {
	AutoGenerate(ctx context.Context, trainerID, servicePlanID uuid.UUID, weeksAhead int, autoConfirm bool) (*models.BulkResult, error)
	GeneratePattern(ctx context.Context, trainerID uuid.UUID, input services.PatternSeriesInput) (*models.BulkResult, error)
	DuplicateWeek(ctx context.Context, trainerID uuid.UUID, sourceWeekStart, targetWeekStart time.Time, skipConflicts bool) (*models.BulkResult, error)
	ApplyTemplates(ctx context.Context, trainerID uuid.UUID, templateIDs []uuid.UUID, weekStart time.Time, autoConfirm bool) (*models.BulkResult, error)
	CreateTemplate(ctx context.Context, trainerID uuid.UUID, input repository.CreateTemplateInput) (*models.SessionTemplate, error)
	ListTemplates(ctx context.Context, trainerID uuid.UUID, activeOnly bool) ([]models.SessionTemplate, error)
	UpdateTemplate(ctx context.Context, trainerID, id uuid.UUID, input repository.UpdateTemplateInput) (*models.SessionTemplate, error)
	DeleteTemplate(ctx context.Context, trainerID, id uuid.UUID) error
}

type RecurringHandler struct {
	service recurringApplicationService
}

func NewRecurringHandler(service *services.RecurringService) *RecurringHandler {
	return &RecurringHandler{service: service}
}

func requireTrainer(c *fiber.Ctx) (uuid.UUID, error) {
	if actorRole(c) != models.RoleTrainer {
		return uuid.Nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return uuid.Nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	return trainerID, nil
}

type autoGenerateRequest struct {
	ServicePlanID string `json:"service_plan_id"`
	WeeksAhead    int    `json:"weeks_ahead"`
	AutoConfirm   bool   `json:"auto_confirm"`
}

func (h *RecurringHandler) AutoGenerate(c *fiber.Ctx) error {
	trainerID, err := requireTrainer(c)
	if err != nil {
		return err
	}

	var req autoGenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	planID, err := uuid.Parse(req.ServicePlanID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid service plan id"})
	}
	if req.WeeksAhead <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "weeks_ahead must be greater than 0"})
	}

	result, err := h.service.AutoGenerate(c.Context(), trainerID, planID, req.WeeksAhead, req.AutoConfirm)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

type patternSeriesRequest struct {
	StudentID       string  `json:"student_id"`
	OrganizationID  *string `json:"organization_id"`
	Start           string  `json:"start"`
	DurationMinutes int     `json:"duration_minutes"`
	WorkoutType     *string `json:"workout_type"`
	Notes           *string `json:"notes"`
	Pattern         string  `json:"pattern"`
	Occurrences     int     `json:"occurrences"`
	AutoConfirm     bool    `json:"auto_confirm"`
}

func (h *RecurringHandler) GeneratePattern(c *fiber.Ctx) error {
	trainerID, err := requireTrainer(c)
	if err != nil {
		return err
	}

	var req patternSeriesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}
	start, err := parseTimestamp(req.Start)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start must be RFC3339"})
	}

	input := services.PatternSeriesInput{
		StudentID:       studentID,
		Start:           start,
		DurationMinutes: req.DurationMinutes,
		WorkoutType:     req.WorkoutType,
		Notes:           req.Notes,
		Pattern:         req.Pattern,
		Occurrences:     req.Occurrences,
		AutoConfirm:     req.AutoConfirm,
	}
	if req.OrganizationID != nil {
		orgID, err := uuid.Parse(*req.OrganizationID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid organization id"})
		}
		input.OrganizationID = &orgID
	}

	result, err := h.service.GeneratePattern(c.Context(), trainerID, input)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

type duplicateWeekRequest struct {
	SourceWeekStart string `json:"source_week_start"`
	TargetWeekStart string `json:"target_week_start"`
	SkipConflicts   bool   `json:"skip_conflicts"`
}

func (h *RecurringHandler) DuplicateWeek(c *fiber.Ctx) error {
	trainerID, err := requireTrainer(c)
	if err != nil {
		return err
	}

	var req duplicateWeekRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	source, err := parseDate(req.SourceWeekStart)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "source_week_start must be YYYY-MM-DD"})
	}
	target, err := parseDate(req.TargetWeekStart)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "target_week_start must be YYYY-MM-DD"})
	}

	result, err := h.service.DuplicateWeek(c.Context(), trainerID, source, target, req.SkipConflicts)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

type applyTemplatesRequest struct {
	TemplateIDs []string `json:"template_ids"`
	WeekStart   string   `json:"week_start"`
	AutoConfirm bool     `json:"auto_confirm"`
}

func (h *RecurringHandler) ApplyTemplates(c *fiber.Ctx) error {
	trainerID, err := requireTrainer(c)
	if err != nil {
		return err
	}

	var req applyTemplatesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if len(req.TemplateIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "template_ids must not be empty"})
	}
	weekStart, err := parseDate(req.WeekStart)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "week_start must be YYYY-MM-DD"})
	}

	templateIDs := make([]uuid.UUID, 0, len(req.TemplateIDs))
	for _, raw := range req.TemplateIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid template id"})
		}
		templateIDs = append(templateIDs, id)
	}

	result, err := h.service.ApplyTemplates(c.Context(), trainerID, templateIDs, weekStart, req.AutoConfirm)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}

type templateRequest struct {
	Name            string  `json:"name"`
	DayOfWeek       int     `json:"day_of_week"`
	StartTime       string  `json:"start_time"`
	DurationMinutes int     `json:"duration_minutes"`
	WorkoutType     *string `json:"workout_type"`
	IsGroup         bool    `json:"is_group"`
	MaxParticipants *int    `json:"max_participants"`
	Notes           *string `json:"notes"`
}

func (h *RecurringHandler) CreateTemplate(c *fiber.Ctx) error {
	trainerID, err := requireTrainer(c)
	if err != nil {
		return err
	}

	var req templateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	template, err := h.service.CreateTemplate(c.Context(), trainerID, repository.CreateTemplateInput{
		Name:            req.Name,
		DayOfWeek:       req.DayOfWeek,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		WorkoutType:     req.WorkoutType,
		IsGroup:         req.IsGroup,
		MaxParticipants: req.MaxParticipants,
		Notes:           req.Notes,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"template": template})
}

func (h *RecurringHandler) ListTemplates(c *fiber.Ctx) error {
	trainerID, err := requireTrainer(c)
	if err != nil {
		return err
	}
	activeOnly := c.Query("active") == "true"
	templates, err := h.service.ListTemplates(c.Context(), trainerID, activeOnly)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"templates": templates})
}

type updateTemplateRequest struct {
	Name            *string `json:"name"`
	DayOfWeek       *int    `json:"day_of_week"`
	StartTime       *string `json:"start_time"`
	DurationMinutes *int    `json:"duration_minutes"`
	WorkoutType     *string `json:"workout_type"`
	IsGroup         *bool   `json:"is_group"`
	MaxParticipants *int    `json:"max_participants"`
	Notes           *string `json:"notes"`
	IsActive        *bool   `json:"is_active"`
}

func (h *RecurringHandler) UpdateTemplate(c *fiber.Ctx) error {
	trainerID, err := requireTrainer(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid template id"})
	}

	var req updateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration_minutes must be greater than 0"})
	}

	template, err := h.service.UpdateTemplate(c.Context(), trainerID, id, repository.UpdateTemplateInput{
		Name:            req.Name,
		DayOfWeek:       req.DayOfWeek,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		WorkoutType:     req.WorkoutType,
		IsGroup:         req.IsGroup,
		MaxParticipants: req.MaxParticipants,
		Notes:           req.Notes,
		IsActive:        req.IsActive,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"template": template})
}

func (h *RecurringHandler) DeleteTemplate(c *fiber.Ctx) error {
	trainerID, err := requireTrainer(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid template id"})
	}

	if err := h.service.DeleteTemplate(c.Context(), trainerID, id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
