package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/services"
)

type groupApplicationService interface {
	CreateGroupSession(ctx context.Context, trainerID uuid.UUID, input services.CreateGroupSessionInput) (*models.AppointmentDetail, error)
	AddParticipants(ctx context.Context, trainerID, appointmentID uuid.UUID, additions []services.GroupParticipantInput) ([]models.AppointmentParticipant, error)
	ListParticipants(ctx context.Context, actorID, appointmentID uuid.UUID) ([]models.AppointmentParticipant, error)
	RemoveParticipant(ctx context.Context, trainerID, appointmentID, studentID uuid.UUID) error
	MarkParticipantAttendance(ctx context.Context, trainerID, appointmentID, studentID uuid.UUID, attendanceStatus string, grantMakeup bool) (*models.AppointmentParticipant, error)
}

type GroupHandler struct {
	service groupApplicationService
}

func NewGroupHandler(service *services.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

type groupParticipantRequest struct {
	StudentID       string  `json:"student_id"`
	ServicePlanID   *string `json:"service_plan_id"`
	IsComplimentary bool    `json:"is_complimentary"`
}

func parseParticipants(raw []groupParticipantRequest) ([]services.GroupParticipantInput, error) {
	participants := make([]services.GroupParticipantInput, 0, len(raw))
	for _, p := range raw {
		studentID, err := uuid.Parse(p.StudentID)
		if err != nil {
			return nil, err
		}
		input := services.GroupParticipantInput{
			StudentID:       studentID,
			IsComplimentary: p.IsComplimentary,
		}
		if p.ServicePlanID != nil {
			planID, err := uuid.Parse(*p.ServicePlanID)
			if err != nil {
				return nil, err
			}
			input.ServicePlanID = &planID
		}
		participants = append(participants, input)
	}
	return participants, nil
}

type createGroupSessionRequest struct {
	DateTime        string                    `json:"date_time"`
	DurationMinutes int                       `json:"duration_minutes"`
	WorkoutType     *string                   `json:"workout_type"`
	MaxParticipants *int                      `json:"max_participants"`
	Notes           *string                   `json:"notes"`
	Participants    []groupParticipantRequest `json:"participants"`
	AutoConfirm     bool                      `json:"auto_confirm"`
}

func (h *GroupHandler) Create(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createGroupSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	dateTime, err := parseTimestamp(req.DateTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date_time must be a valid RFC3339 timestamp"})
	}
	if len(req.Participants) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "participants must not be empty"})
	}
	participants, err := parseParticipants(req.Participants)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid participant id"})
	}

	detail, err := h.service.CreateGroupSession(c.Context(), trainerID, services.CreateGroupSessionInput{
		DateTime:        dateTime,
		DurationMinutes: req.DurationMinutes,
		WorkoutType:     req.WorkoutType,
		MaxParticipants: req.MaxParticipants,
		Notes:           req.Notes,
		Participants:    participants,
		AutoConfirm:     req.AutoConfirm,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"appointment": detail})
}

type addParticipantsRequest struct {
	Participants []groupParticipantRequest `json:"participants"`
}

func (h *GroupHandler) AddParticipants(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	appointmentID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	var req addParticipantsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	participants, err := parseParticipants(req.Participants)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid participant id"})
	}

	added, err := h.service.AddParticipants(c.Context(), trainerID, appointmentID, participants)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"participants": added})
}

func (h *GroupHandler) ListParticipants(c *fiber.Ctx) error {
	actorID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	appointmentID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	participants, err := h.service.ListParticipants(c.Context(), actorID, appointmentID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"participants": participants})
}

func (h *GroupHandler) RemoveParticipant(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	appointmentID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}
	studentID, err := paramID(c, "studentId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	if err := h.service.RemoveParticipant(c.Context(), trainerID, appointmentID, studentID); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type participantAttendanceRequest struct {
	AttendanceStatus string `json:"attendance_status"`
	GrantMakeup      bool   `json:"grant_makeup"`
}

func (h *GroupHandler) MarkParticipantAttendance(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	appointmentID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}
	studentID, err := paramID(c, "studentId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
	}

	var req participantAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	participant, err := h.service.MarkParticipantAttendance(
		c.Context(), trainerID, appointmentID, studentID, req.AttendanceStatus, req.GrantMakeup,
	)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"participant": participant})
}
