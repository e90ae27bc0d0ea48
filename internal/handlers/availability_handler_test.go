package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/repository"
	"github.com/saeid-a/TrainerScheduleBack/internal/services"
)

type stubAvailabilityService struct {
	windows      []models.TrainerAvailability
	blocked      []models.TrainerBlockedSlot
	blockedSlot  *models.TrainerBlockedSlot
	settings     *models.TrainerSettings
	err          error
	lastTrainer  uuid.UUID
	lastWindows  []repository.AvailabilityWindow
	lastBlocked  repository.CreateBlockedSlotInput
	lastSettings repository.UpdateSettingsInput
	lastSlotID   uuid.UUID
}

func (s *stubAvailabilityService) ListWindows(_ context.Context, trainerID uuid.UUID) ([]models.TrainerAvailability, error) {
	s.lastTrainer = trainerID
	return s.windows, s.err
}

func (s *stubAvailabilityService) ReplaceWindows(_ context.Context, trainerID uuid.UUID, windows []repository.AvailabilityWindow) ([]models.TrainerAvailability, error) {
	s.lastTrainer = trainerID
	s.lastWindows = windows
	return s.windows, s.err
}

func (s *stubAvailabilityService) CreateBlockedSlot(_ context.Context, trainerID uuid.UUID, input repository.CreateBlockedSlotInput) (*models.TrainerBlockedSlot, error) {
	s.lastTrainer = trainerID
	s.lastBlocked = input
	return s.blockedSlot, s.err
}

func (s *stubAvailabilityService) ListBlockedSlots(_ context.Context, trainerID uuid.UUID) ([]models.TrainerBlockedSlot, error) {
	s.lastTrainer = trainerID
	return s.blocked, s.err
}

func (s *stubAvailabilityService) DeleteBlockedSlot(_ context.Context, trainerID, id uuid.UUID) error {
	s.lastTrainer = trainerID
	s.lastSlotID = id
	return s.err
}

func (s *stubAvailabilityService) Settings(_ context.Context, trainerID uuid.UUID) (*models.TrainerSettings, error) {
	s.lastTrainer = trainerID
	return s.settings, s.err
}

func (s *stubAvailabilityService) UpdateSettings(_ context.Context, trainerID uuid.UUID, input repository.UpdateSettingsInput) (*models.TrainerSettings, error) {
	s.lastTrainer = trainerID
	s.lastSettings = input
	return s.settings, s.err
}

type stubConflictChecker struct {
	result      *models.ConflictCheckResult
	slots       []models.SlotStatus
	err         error
	lastInput   services.ConflictCheckInput
	lastTrainer uuid.UUID
	lastDate    time.Time
}

func (s *stubConflictChecker) CheckConflicts(_ context.Context, input services.ConflictCheckInput) (*models.ConflictCheckResult, error) {
	s.lastInput = input
	return s.result, s.err
}

func (s *stubConflictChecker) AvailableSlots(_ context.Context, trainerID uuid.UUID, date time.Time) ([]models.SlotStatus, error) {
	s.lastTrainer = trainerID
	s.lastDate = date
	return s.slots, s.err
}

func newAvailabilityTestApp(
	availability *stubAvailabilityService,
	schedule *stubConflictChecker,
	userID uuid.UUID,
	role string,
) *fiber.App {
	handler := &AvailabilityHandler{availability: availability, schedule: schedule}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID.String())
		c.Locals("role", role)
		return c.Next()
	})
	app.Put("/availability/windows", handler.ReplaceWindows)
	app.Post("/availability/blocked-slots", handler.CreateBlockedSlot)
	app.Put("/availability/settings", handler.UpdateSettings)
	app.Get("/availability/slots/:trainerId", handler.AvailableSlots)
	app.Post("/availability/check-conflicts", handler.CheckConflicts)
	return app
}

func TestReplaceWindowsPassesAllWindows(t *testing.T) {
	trainerID := uuid.New()
	availability := &stubAvailabilityService{windows: []models.TrainerAvailability{}}
	app := newAvailabilityTestApp(availability, &stubConflictChecker{}, trainerID, models.RoleTrainer)

	req := httptest.NewRequest(http.MethodPut, "/availability/windows", strings.NewReader(`{
		"windows": [
			{"day_of_week": 0, "start_time": "08:00", "end_time": "12:00"},
			{"day_of_week": 2, "start_time": "14:00", "end_time": "20:00"}
		]
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if availability.lastTrainer != trainerID {
		t.Fatalf("expected trainer %s, got %s", trainerID, availability.lastTrainer)
	}
	if len(availability.lastWindows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(availability.lastWindows))
	}
	if availability.lastWindows[1].DayOfWeek != 2 || availability.lastWindows[1].StartTime != "14:00" {
		t.Fatalf("second window not carried through: %+v", availability.lastWindows[1])
	}
}

func TestReplaceWindowsRejectsStudents(t *testing.T) {
	app := newAvailabilityTestApp(&stubAvailabilityService{}, &stubConflictChecker{}, uuid.New(), models.RoleStudent)

	req := httptest.NewRequest(http.MethodPut, "/availability/windows", strings.NewReader(`{"windows": []}`))
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

func TestCreateBlockedSlotParsesSpecificDate(t *testing.T) {
	trainerID := uuid.New()
	availability := &stubAvailabilityService{
		blockedSlot: &models.TrainerBlockedSlot{ID: uuid.New(), TrainerID: trainerID},
	}
	app := newAvailabilityTestApp(availability, &stubConflictChecker{}, trainerID, models.RoleTrainer)

	req := httptest.NewRequest(http.MethodPost, "/availability/blocked-slots", strings.NewReader(`{
		"specific_date": "2026-09-10",
		"start_time": "11:00",
		"end_time": "12:00",
		"reason": "physio"
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
	if availability.lastBlocked.SpecificDate == nil {
		t.Fatalf("expected specific date to be parsed")
	}
	if got := availability.lastBlocked.SpecificDate.Format("2006-01-02"); got != "2026-09-10" {
		t.Fatalf("expected 2026-09-10, got %s", got)
	}
	if availability.lastBlocked.IsRecurring {
		t.Fatalf("one off block must not be recurring")
	}
}

func TestCreateBlockedSlotRejectsBadDate(t *testing.T) {
	app := newAvailabilityTestApp(&stubAvailabilityService{}, &stubConflictChecker{}, uuid.New(), models.RoleTrainer)

	req := httptest.NewRequest(http.MethodPost, "/availability/blocked-slots", strings.NewReader(`{
		"specific_date": "10/09/2026",
		"start_time": "11:00",
		"end_time": "12:00"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpdateSettingsPassesPartialFields(t *testing.T) {
	trainerID := uuid.New()
	availability := &stubAvailabilityService{
		settings: &models.TrainerSettings{TrainerID: trainerID, SlotIntervalMinutes: 15},
	}
	app := newAvailabilityTestApp(availability, &stubConflictChecker{}, trainerID, models.RoleTrainer)

	req := httptest.NewRequest(http.MethodPut, "/availability/settings", strings.NewReader(`{
		"slot_interval_minutes": 15,
		"late_cancel_policy": "charge"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if availability.lastSettings.SlotIntervalMinutes == nil || *availability.lastSettings.SlotIntervalMinutes != 15 {
		t.Fatalf("expected slot interval 15, got %+v", availability.lastSettings.SlotIntervalMinutes)
	}
	if availability.lastSettings.LateCancelPolicy == nil || *availability.lastSettings.LateCancelPolicy != "charge" {
		t.Fatalf("expected charge policy, got %+v", availability.lastSettings.LateCancelPolicy)
	}
	if availability.lastSettings.DefaultStartTime != nil {
		t.Fatalf("unset fields must stay nil")
	}
}

func TestAvailableSlotsRequiresDate(t *testing.T) {
	app := newAvailabilityTestApp(&stubAvailabilityService{}, &stubConflictChecker{}, uuid.New(), models.RoleStudent)

	req := httptest.NewRequest(http.MethodGet, "/availability/slots/"+uuid.New().String(), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without date, got %d", resp.StatusCode)
	}
}

func TestAvailableSlotsReturnsSchedule(t *testing.T) {
	trainerID := uuid.New()
	schedule := &stubConflictChecker{
		slots: []models.SlotStatus{
			{Time: "09:00", Available: true},
			{Time: "09:30", Available: false},
		},
	}
	app := newAvailabilityTestApp(&stubAvailabilityService{}, schedule, uuid.New(), models.RoleStudent)

	req := httptest.NewRequest(http.MethodGet,
		"/availability/slots/"+trainerID.String()+"?date=2026-09-07", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if schedule.lastTrainer != trainerID {
		t.Fatalf("expected trainer %s, got %s", trainerID, schedule.lastTrainer)
	}
	if !schedule.lastDate.Equal(time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", schedule.lastDate)
	}

	var body struct {
		Slots []models.SlotStatus `json:"slots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Slots) != 2 || body.Slots[0].Time != "09:00" || body.Slots[1].Available {
		t.Fatalf("unexpected slots: %+v", body.Slots)
	}
}

func TestCheckConflictsValidatesInput(t *testing.T) {
	app := newAvailabilityTestApp(&stubAvailabilityService{}, &stubConflictChecker{}, uuid.New(), models.RoleTrainer)

	cases := []struct {
		name string
		body string
	}{
		{"bad trainer id", `{"trainer_id": "nope", "date_time": "2026-09-07T10:00:00Z", "duration_minutes": 60}`},
		{"bad timestamp", `{"trainer_id": "` + uuid.New().String() + `", "date_time": "tomorrow", "duration_minutes": 60}`},
		{"zero duration", `{"trainer_id": "` + uuid.New().String() + `", "date_time": "2026-09-07T10:00:00Z", "duration_minutes": 0}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/availability/check-conflicts", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestCheckConflictsReturnsVerdict(t *testing.T) {
	trainerID := uuid.New()
	studentID := uuid.New()
	schedule := &stubConflictChecker{
		result: &models.ConflictCheckResult{
			HasConflicts: true,
			Conflicts:    []models.ConflictDetail{{Type: "overlap", Message: "overlaps an existing session"}},
			Warnings:     []models.ConflictDetail{},
		},
	}
	app := newAvailabilityTestApp(&stubAvailabilityService{}, schedule, uuid.New(), models.RoleTrainer)

	req := httptest.NewRequest(http.MethodPost, "/availability/check-conflicts", strings.NewReader(`{
		"trainer_id": "`+trainerID.String()+`",
		"date_time": "2026-09-07T10:00:00Z",
		"duration_minutes": 60,
		"student_id": "`+studentID.String()+`"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if schedule.lastInput.TrainerID != trainerID {
		t.Fatalf("expected trainer %s, got %s", trainerID, schedule.lastInput.TrainerID)
	}
	if schedule.lastInput.StudentID == nil || *schedule.lastInput.StudentID != studentID {
		t.Fatalf("expected student id carried through")
	}

	var body models.ConflictCheckResult
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.HasConflicts || len(body.Conflicts) != 1 || body.Conflicts[0].Type != "overlap" {
		t.Fatalf("unexpected verdict: %+v", body)
	}
}
