package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/services"
)

type calendarApplicationService interface {
	ExportAppointment(ctx context.Context, actorID, id uuid.UUID) (string, error)
	ExportRange(ctx context.Context, actorID uuid.UUID, asTrainer bool, from, to time.Time) (string, error)
}

type CalendarHandler struct {
	service calendarApplicationService
}

func NewCalendarHandler(service *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

func sendICS(c *fiber.Ctx, filename, document string) error {
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.SendString(document)
}

// ExportAppointment serves one appointment as an .ics file.
func (h *CalendarHandler) ExportAppointment(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	document, err := h.service.ExportAppointment(c.Context(), userID, id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return sendICS(c, "session-"+id.String()+".ics", document)
}

// Export serves the actor's schedule between ?from and ?to as an .ics
// file. Defaults to the next 30 days.
func (h *CalendarHandler) Export(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	from := time.Now()
	to := from.AddDate(0, 0, 30)
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

	asTrainer := actorRole(c) == models.RoleTrainer
	document, err := h.service.ExportRange(c.Context(), userID, asTrainer, from, to)
	if err != nil {
		return mapServiceError(c, err)
	}
	return sendICS(c, "schedule.ics", document)
}
