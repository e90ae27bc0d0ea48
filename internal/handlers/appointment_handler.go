package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/repository"
	"github.com/saeid-a/TrainerScheduleBack/internal/services"
)

type appointmentApplicationService interface {
	Create(ctx context.Context, trainerID uuid.UUID, input services.CreateAppointmentInput) (*models.Appointment, []models.ConflictDetail, error)
	BookSelfService(ctx context.Context, studentID uuid.UUID, input services.BookingInput) (*models.Appointment, error)
	Confirm(ctx context.Context, actorID, id uuid.UUID) (*models.Appointment, error)
	Cancel(ctx context.Context, actorID, id uuid.UUID, reason *string) (*models.Appointment, error)
	Reschedule(ctx context.Context, actorID, id uuid.UUID, newDateTime time.Time, note *string) (*models.Appointment, []models.ConflictDetail, error)
	Complete(ctx context.Context, trainerID, id uuid.UUID, notes *string) (*models.Appointment, error)
	MarkAttendance(ctx context.Context, trainerID, id uuid.UUID, input services.AttendanceInput) (*models.Appointment, error)
	Update(ctx context.Context, trainerID, id uuid.UUID, input repository.UpdateAppointmentInput) (*models.Appointment, error)
	Delete(ctx context.Context, trainerID, id uuid.UUID) error
	Get(ctx context.Context, actorID, id uuid.UUID) (*models.AppointmentDetail, error)
	List(ctx context.Context, filter repository.AppointmentListFilter) ([]models.Appointment, error)
	Day(ctx context.Context, trainerID uuid.UUID, date time.Time) ([]models.Appointment, error)
	Week(ctx context.Context, trainerID uuid.UUID, weekStart time.Time) ([]models.Appointment, error)
	Upcoming(ctx context.Context, actorID uuid.UUID, asTrainer bool, limit int) ([]models.Appointment, int, error)
}

type AppointmentHandler struct {
	service appointmentApplicationService
}

func NewAppointmentHandler(service *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

type createAppointmentRequest struct {
	StudentID       *string `json:"student_id"`
	DateTime        string  `json:"date_time"`
	DurationMinutes int     `json:"duration_minutes"`
	WorkoutType     *string `json:"workout_type"`
	SessionType     string  `json:"session_type"`
	ServicePlanID   *string `json:"service_plan_id"`
	Notes           *string `json:"notes"`
	AutoConfirm     bool    `json:"auto_confirm"`
}

func (h *AppointmentHandler) Create(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createAppointmentRequest
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

	input := services.CreateAppointmentInput{
		DateTime:        dateTime,
		DurationMinutes: req.DurationMinutes,
		WorkoutType:     req.WorkoutType,
		SessionType:     req.SessionType,
		Notes:           req.Notes,
		AutoConfirm:     req.AutoConfirm,
	}
	if req.StudentID != nil {
		studentID, err := uuid.Parse(*req.StudentID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
		}
		input.StudentID = &studentID
	}
	if req.ServicePlanID != nil {
		planID, err := uuid.Parse(*req.ServicePlanID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid service plan id"})
		}
		input.ServicePlanID = &planID
	}

	appointment, warnings, err := h.service.Create(c.Context(), trainerID, input)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"appointment": appointment,
		"warnings":    warnings,
	})
}

type bookRequest struct {
	TrainerID       string  `json:"trainer_id"`
	DateTime        string  `json:"date_time"`
	DurationMinutes int     `json:"duration_minutes"`
	WorkoutType     *string `json:"workout_type"`
	ServicePlanID   *string `json:"service_plan_id"`
	Notes           *string `json:"notes"`
}

func (h *AppointmentHandler) Book(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleStudent {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	studentID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req bookRequest
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

	input := services.BookingInput{
		TrainerID:       trainerID,
		DateTime:        dateTime,
		DurationMinutes: req.DurationMinutes,
		WorkoutType:     req.WorkoutType,
		Notes:           req.Notes,
	}
	if req.ServicePlanID != nil {
		planID, err := uuid.Parse(*req.ServicePlanID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid service plan id"})
		}
		input.ServicePlanID = &planID
	}

	appointment, err := h.service.BookSelfService(c.Context(), studentID, input)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"appointment": appointment})
}

func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	filter := repository.AppointmentListFilter{
		ActorID:   userID,
		AsTrainer: actorRole(c) == models.RoleTrainer,
	}
	if raw := strings.TrimSpace(c.Query("student_id")); raw != "" && filter.AsTrainer {
		studentID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student id"})
		}
		filter.StudentID = &studentID
	}
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from must be YYYY-MM-DD"})
		}
		filter.From = &from
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must be YYYY-MM-DD"})
		}
		filter.To = &to
	}

	appointments, err := h.service.List(c.Context(), filter)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"appointments": appointments})
}

func (h *AppointmentHandler) Upcoming(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	appointments, total, err := h.service.Upcoming(
		c.Context(), userID, actorRole(c) == models.RoleTrainer, limit,
	)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"appointments": appointments, "total": total})
}

func (h *AppointmentHandler) Day(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	date, err := parseDate(c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	appointments, err := h.service.Day(c.Context(), trainerID, date)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"appointments": appointments})
}

func (h *AppointmentHandler) Week(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	weekStart, err := parseDate(c.Query("start"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start must be YYYY-MM-DD"})
	}

	appointments, err := h.service.Week(c.Context(), trainerID, weekStart)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"appointments": appointments})
}

func (h *AppointmentHandler) Get(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	detail, err := h.service.Get(c.Context(), userID, id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"appointment": detail})
}

type updateAppointmentRequest struct {
	DateTime        *string `json:"date_time"`
	DurationMinutes *int    `json:"duration_minutes"`
	WorkoutType     *string `json:"workout_type"`
	Notes           *string `json:"notes"`
}

func (h *AppointmentHandler) Update(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	var req updateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := repository.UpdateAppointmentInput{
		DurationMinutes: req.DurationMinutes,
		WorkoutType:     req.WorkoutType,
		Notes:           req.Notes,
	}
	if req.DateTime != nil {
		dateTime, err := parseTimestamp(*req.DateTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date_time must be a valid RFC3339 timestamp"})
		}
		input.DateTime = &dateTime
	}
	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "duration_minutes must be greater than 0"})
	}

	appointment, err := h.service.Update(c.Context(), trainerID, id, input)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}

func (h *AppointmentHandler) Delete(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	if err := h.service.Delete(c.Context(), trainerID, id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AppointmentHandler) Confirm(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	appointment, err := h.service.Confirm(c.Context(), userID, id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}

type cancelRequest struct {
	Reason *string `json:"reason"`
}

func (h *AppointmentHandler) Cancel(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	var req cancelRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	appointment, err := h.service.Cancel(c.Context(), userID, id, req.Reason)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}

type rescheduleRequest struct {
	DateTime string  `json:"date_time"`
	Note     *string `json:"note"`
}

func (h *AppointmentHandler) Reschedule(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	var req rescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	dateTime, err := parseTimestamp(req.DateTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date_time must be a valid RFC3339 timestamp"})
	}

	appointment, warnings, err := h.service.Reschedule(c.Context(), userID, id, dateTime, req.Note)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"appointment": appointment,
		"warnings":    warnings,
	})
}

type completeRequest struct {
	Notes *string `json:"notes"`
}

func (h *AppointmentHandler) Complete(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	var req completeRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	appointment, err := h.service.Complete(c.Context(), trainerID, id, req.Notes)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}

type attendanceRequest struct {
	AttendanceStatus string  `json:"attendance_status"`
	GrantMakeup      bool    `json:"grant_makeup"`
	Notes            *string `json:"notes"`
}

func (h *AppointmentHandler) MarkAttendance(c *fiber.Ctx) error {
	if actorRole(c) != models.RoleTrainer {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	var req attendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	appointment, err := h.service.MarkAttendance(c.Context(), trainerID, id, services.AttendanceInput{
		AttendanceStatus: req.AttendanceStatus,
		GrantMakeup:      req.GrantMakeup,
		Notes:            req.Notes,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}
