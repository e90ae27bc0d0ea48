package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/services"
)

type stubGroupService struct {
	detail            *models.AppointmentDetail
	participants      []models.AppointmentParticipant
	participant       *models.AppointmentParticipant
	err               error
	lastTrainerID     uuid.UUID
	lastAppointmentID uuid.UUID
	lastStudentID     uuid.UUID
	lastCreate        services.CreateGroupSessionInput
	lastAdditions     []services.GroupParticipantInput
	lastStatus        string
	lastGrantMakeup   bool
}

func (s *stubGroupService) CreateGroupSession(_ context.Context, trainerID uuid.UUID, input services.CreateGroupSessionInput) (*models.AppointmentDetail, error) {
	s.lastTrainerID = trainerID
	s.lastCreate = input
	return s.detail, s.err
}

func (s *stubGroupService) AddParticipants(_ context.Context, trainerID, appointmentID uuid.UUID, additions []services.GroupParticipantInput) ([]models.AppointmentParticipant, error) {
	s.lastTrainerID = trainerID
	s.lastAppointmentID = appointmentID
	s.lastAdditions = additions
	return s.participants, s.err
}

func (s *stubGroupService) ListParticipants(_ context.Context, actorID, appointmentID uuid.UUID) ([]models.AppointmentParticipant, error) {
	s.lastTrainerID = actorID
	s.lastAppointmentID = appointmentID
	return s.participants, s.err
}

func (s *stubGroupService) RemoveParticipant(_ context.Context, trainerID, appointmentID, studentID uuid.UUID) error {
	s.lastTrainerID = trainerID
	s.lastAppointmentID = appointmentID
	s.lastStudentID = studentID
	return s.err
}

func (s *stubGroupService) MarkParticipantAttendance(_ context.Context, trainerID, appointmentID, studentID uuid.UUID, attendanceStatus string, grantMakeup bool) (*models.AppointmentParticipant, error) {
	s.lastTrainerID = trainerID
	s.lastAppointmentID = appointmentID
	s.lastStudentID = studentID
	s.lastStatus = attendanceStatus
	s.lastGrantMakeup = grantMakeup
	return s.participant, s.err
}

func newGroupTestApp(service *stubGroupService, userID uuid.UUID, role string) *fiber.App {
	handler := &GroupHandler{service: service}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID.String())
		c.Locals("role", role)
		return c.Next()
	})
	app.Post("/group-sessions", handler.Create)
	app.Post("/group-sessions/:id/participants", handler.AddParticipants)
	app.Delete("/group-sessions/:id/participants/:studentId", handler.RemoveParticipant)
	app.Post("/group-sessions/:id/participants/:studentId/attendance", handler.MarkParticipantAttendance)
	return app
}

func TestCreateGroupSessionPassesRoster(t *testing.T) {
	trainerID := uuid.New()
	studentA := uuid.New()
	studentB := uuid.New()
	planID := uuid.New()
	service := &stubGroupService{
		detail: &models.AppointmentDetail{
			Appointment: models.Appointment{ID: uuid.New(), TrainerID: trainerID, IsGroup: true},
		},
	}
	app := newGroupTestApp(service, trainerID, models.RoleTrainer)

	req := httptest.NewRequest(http.MethodPost, "/group-sessions", strings.NewReader(`{
		"date_time": "2026-09-07T18:00:00Z",
		"duration_minutes": 45,
		"max_participants": 8,
		"participants": [
			{"student_id": "`+studentA.String()+`", "service_plan_id": "`+planID.String()+`"},
			{"student_id": "`+studentB.String()+`", "is_complimentary": true}
		]
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastTrainerID != trainerID {
		t.Fatalf("expected trainer id %s, got %s", trainerID, service.lastTrainerID)
	}
	if service.lastCreate.DurationMinutes != 45 {
		t.Fatalf("expected duration 45, got %d", service.lastCreate.DurationMinutes)
	}
	if len(service.lastCreate.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(service.lastCreate.Participants))
	}
	first := service.lastCreate.Participants[0]
	if first.StudentID != studentA || first.ServicePlanID == nil || *first.ServicePlanID != planID {
		t.Fatalf("first participant not carried through: %+v", first)
	}
	if !service.lastCreate.Participants[1].IsComplimentary {
		t.Fatalf("expected second participant complimentary")
	}
}

func TestCreateGroupSessionRequiresParticipants(t *testing.T) {
	service := &stubGroupService{}
	app := newGroupTestApp(service, uuid.New(), models.RoleTrainer)

	req := httptest.NewRequest(http.MethodPost, "/group-sessions", strings.NewReader(`{
		"date_time": "2026-09-07T18:00:00Z",
		"duration_minutes": 45,
		"participants": []
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty roster, got %d", resp.StatusCode)
	}
}

func TestCreateGroupSessionRejectsStudents(t *testing.T) {
	service := &stubGroupService{}
	app := newGroupTestApp(service, uuid.New(), models.RoleStudent)

	req := httptest.NewRequest(http.MethodPost, "/group-sessions", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestAddParticipantsMapsConflict(t *testing.T) {
	trainerID := uuid.New()
	service := &stubGroupService{err: services.ErrConflict}
	app := newGroupTestApp(service, trainerID, models.RoleTrainer)

	appointmentID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/group-sessions/"+appointmentID.String()+"/participants", strings.NewReader(`{
		"participants": [{"student_id": "`+uuid.New().String()+`"}]
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if service.lastAppointmentID != appointmentID {
		t.Fatalf("expected appointment id %s, got %s", appointmentID, service.lastAppointmentID)
	}
}

func TestRemoveParticipantReturnsNoContent(t *testing.T) {
	trainerID := uuid.New()
	service := &stubGroupService{}
	app := newGroupTestApp(service, trainerID, models.RoleTrainer)

	appointmentID := uuid.New()
	studentID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete,
		"/group-sessions/"+appointmentID.String()+"/participants/"+studentID.String(), nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if service.lastStudentID != studentID {
		t.Fatalf("expected student id %s, got %s", studentID, service.lastStudentID)
	}
}

func TestMarkParticipantAttendancePassesMakeupFlag(t *testing.T) {
	trainerID := uuid.New()
	studentID := uuid.New()
	service := &stubGroupService{
		participant: &models.AppointmentParticipant{
			ID:               uuid.New(),
			StudentID:        studentID,
			AttendanceStatus: models.AttendanceMissed,
		},
	}
	app := newGroupTestApp(service, trainerID, models.RoleTrainer)

	appointmentID := uuid.New()
	req := httptest.NewRequest(http.MethodPost,
		"/group-sessions/"+appointmentID.String()+"/participants/"+studentID.String()+"/attendance",
		strings.NewReader(`{"attendance_status": "missed", "grant_makeup": true}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastStatus != models.AttendanceMissed {
		t.Fatalf("expected missed status, got %q", service.lastStatus)
	}
	if !service.lastGrantMakeup {
		t.Fatalf("expected grant_makeup to be passed through")
	}

	var body struct {
		Participant models.AppointmentParticipant `json:"participant"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Participant.StudentID != studentID {
		t.Fatalf("expected participant for student %s, got %s", studentID, body.Participant.StudentID)
	}
}
