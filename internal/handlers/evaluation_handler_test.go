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

type stubEvaluationService struct {
	evaluation        *models.SessionEvaluation
	evaluations       []models.SessionEvaluation
	err               error
	lastEvaluatorID   uuid.UUID
	lastAppointmentID uuid.UUID
	lastInput         services.CreateEvaluationInput
}

func (s *stubEvaluationService) CreateEvaluation(_ context.Context, evaluatorID, appointmentID uuid.UUID, input services.CreateEvaluationInput) (*models.SessionEvaluation, error) {
	s.lastEvaluatorID = evaluatorID
	s.lastAppointmentID = appointmentID
	s.lastInput = input
	return s.evaluation, s.err
}

func (s *stubEvaluationService) ListEvaluations(_ context.Context, userID, appointmentID uuid.UUID) ([]models.SessionEvaluation, error) {
	s.lastEvaluatorID = userID
	s.lastAppointmentID = appointmentID
	return s.evaluations, s.err
}

func newEvaluationTestApp(service *stubEvaluationService, userID uuid.UUID, role string) *fiber.App {
	handler := &EvaluationHandler{service: service}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID.String())
		c.Locals("role", role)
		return c.Next()
	})
	app.Post("/appointments/:id/evaluations", handler.Create)
	app.Get("/appointments/:id/evaluations", handler.List)
	return app
}

func TestCreateEvaluationPassesFields(t *testing.T) {
	userID := uuid.New()
	appointmentID := uuid.New()
	service := &stubEvaluationService{
		evaluation: &models.SessionEvaluation{ID: uuid.New(), AppointmentID: appointmentID},
	}
	app := newEvaluationTestApp(service, userID, models.RoleStudent)

	body := `{"overall_rating":4,"difficulty":"just_right","energy_level":3,"notes":"Solid session"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments/"+appointmentID.String()+"/evaluations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastEvaluatorID != userID || service.lastAppointmentID != appointmentID {
		t.Errorf("evaluator or appointment id not passed through")
	}
	if service.lastInput.OverallRating != 4 {
		t.Errorf("expected rating 4, got %d", service.lastInput.OverallRating)
	}
	if service.lastInput.Difficulty == nil || *service.lastInput.Difficulty != "just_right" {
		t.Errorf("difficulty not passed through")
	}
	if service.lastInput.EnergyLevel == nil || *service.lastInput.EnergyLevel != 3 {
		t.Errorf("energy level not passed through")
	}
}

func TestCreateEvaluationMapsRepeatTo409(t *testing.T) {
	service := &stubEvaluationService{err: services.ErrConflict}
	app := newEvaluationTestApp(service, uuid.New(), models.RoleTrainer)

	req := httptest.NewRequest(http.MethodPost, "/appointments/"+uuid.New().String()+"/evaluations", strings.NewReader(`{"overall_rating":5}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["error"] != "Session already evaluated by this user" {
		t.Errorf("unexpected error message %q", payload["error"])
	}
}

func TestCreateEvaluationMapsIncompleteSessionTo422(t *testing.T) {
	service := &stubEvaluationService{err: services.ErrInvalidStateTransition}
	app := newEvaluationTestApp(service, uuid.New(), models.RoleTrainer)

	req := httptest.NewRequest(http.MethodPost, "/appointments/"+uuid.New().String()+"/evaluations", strings.NewReader(`{"overall_rating":5}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestListEvaluationsReturnsAll(t *testing.T) {
	userID := uuid.New()
	appointmentID := uuid.New()
	service := &stubEvaluationService{
		evaluations: []models.SessionEvaluation{
			{ID: uuid.New(), EvaluatorRole: models.EvaluatorTrainer},
			{ID: uuid.New(), EvaluatorRole: models.EvaluatorStudent},
		},
	}
	app := newEvaluationTestApp(service, userID, models.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/appointments/"+appointmentID.String()+"/evaluations", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Evaluations []models.SessionEvaluation `json:"evaluations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Evaluations) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(payload.Evaluations))
	}
	if service.lastAppointmentID != appointmentID {
		t.Errorf("appointment id not passed through")
	}
}
