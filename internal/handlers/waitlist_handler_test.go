package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/services"
)

type stubWaitlistService struct {
	entry       *models.WaitlistEntry
	entries     []models.WaitlistEntry
	err         error
	lastActorID uuid.UUID
	lastEntryID uuid.UUID
	lastDay     *int
	lastStatus  string
	lastOffer   services.OfferSlotInput
}

func (s *stubWaitlistService) Join(_ context.Context, studentID uuid.UUID, _ services.JoinWaitlistInput) (*models.WaitlistEntry, error) {
	s.lastActorID = studentID
	return s.entry, s.err
}

func (s *stubWaitlistService) List(_ context.Context, trainerID uuid.UUID, dayOfWeek *int, status string) ([]models.WaitlistEntry, error) {
	s.lastActorID = trainerID
	s.lastDay = dayOfWeek
	s.lastStatus = status
	return s.entries, s.err
}

func (s *stubWaitlistService) OfferSlot(_ context.Context, trainerID, entryID uuid.UUID, input services.OfferSlotInput) (*models.WaitlistEntry, error) {
	s.lastActorID = trainerID
	s.lastEntryID = entryID
	s.lastOffer = input
	return s.entry, s.err
}

func (s *stubWaitlistService) AcceptOffer(_ context.Context, studentID, entryID uuid.UUID) (*models.WaitlistEntry, error) {
	s.lastActorID = studentID
	s.lastEntryID = entryID
	return s.entry, s.err
}

func (s *stubWaitlistService) Leave(_ context.Context, studentID, entryID uuid.UUID) error {
	s.lastActorID = studentID
	s.lastEntryID = entryID
	return s.err
}

func newWaitlistTestApp(service *stubWaitlistService, userID uuid.UUID, role string) *fiber.App {
	handler := &WaitlistHandler{service: service}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID.String())
		c.Locals("role", role)
		return c.Next()
	})
	app.Post("/waitlist", handler.Join)
	app.Get("/waitlist", handler.List)
	app.Post("/waitlist/:id/offer", handler.OfferSlot)
	app.Post("/waitlist/:id/accept", handler.AcceptOffer)
	return app
}

func TestJoinWaitlistRequiresStudentRole(t *testing.T) {
	service := &stubWaitlistService{}
	app := newWaitlistTestApp(service, uuid.New(), models.RoleTrainer)

	req := httptest.NewRequest(http.MethodPost, "/waitlist", strings.NewReader(`{}`))
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

func TestListWaitlistParsesFilters(t *testing.T) {
	trainerID := uuid.New()
	service := &stubWaitlistService{entries: []models.WaitlistEntry{}}
	app := newWaitlistTestApp(service, trainerID, models.RoleTrainer)

	req := httptest.NewRequest(http.MethodGet, "/waitlist?day_of_week=2&status=waiting", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastDay == nil || *service.lastDay != 2 {
		t.Fatalf("expected day filter 2, got %v", service.lastDay)
	}
	if service.lastStatus != models.WaitlistWaiting {
		t.Fatalf("expected status filter waiting, got %q", service.lastStatus)
	}
}

func TestOfferSlotMapsConflict(t *testing.T) {
	service := &stubWaitlistService{err: services.ErrConflict}
	app := newWaitlistTestApp(service, uuid.New(), models.RoleTrainer)

	req := httptest.NewRequest(http.MethodPost, "/waitlist/"+uuid.New().String()+"/offer", strings.NewReader(`{
		"date_time": "2026-09-07T10:00:00Z",
		"duration_minutes": 60
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
}

func TestAcceptOfferPassesEntryID(t *testing.T) {
	studentID := uuid.New()
	entryID := uuid.New()
	service := &stubWaitlistService{
		entry: &models.WaitlistEntry{ID: entryID, Status: models.WaitlistAccepted},
	}
	app := newWaitlistTestApp(service, studentID, models.RoleStudent)

	req := httptest.NewRequest(http.MethodPost, "/waitlist/"+entryID.String()+"/accept", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastActorID != studentID || service.lastEntryID != entryID {
		t.Fatalf("expected (%s, %s), got (%s, %s)", studentID, entryID, service.lastActorID, service.lastEntryID)
	}
}
