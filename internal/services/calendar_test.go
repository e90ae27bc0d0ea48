package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
)

func TestBuildICSRendersEvents(t *testing.T) {
	workout := "Strength, upper body"
	notes := "Bring resistance bands\nand a towel"
	appointment := models.Appointment{
		ID:              uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		TrainerID:       uuid.New(),
		DateTime:        mustDate(t, "2026-09-07T10:00:00Z"),
		DurationMinutes: 60,
		WorkoutType:     &workout,
		Status:          models.AppointmentConfirmed,
		SessionType:     models.SessionScheduled,
		Notes:           &notes,
	}

	ics := BuildICS([]models.Appointment{appointment}, nil)

	if !strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
		t.Fatalf("malformed document envelope:\n%s", ics)
	}
	for _, want := range []string{
		"UID:11111111-2222-3333-4444-555555555555@trainerschedule",
		"DTSTART:20260907T100000Z",
		"DTEND:20260907T110000Z",
		"SUMMARY:Strength\\, upper body",
		"DESCRIPTION:Bring resistance bands\\nand a towel",
		"STATUS:CONFIRMED",
	} {
		if !strings.Contains(ics, want) {
			t.Fatalf("missing %q in:\n%s", want, ics)
		}
	}
	if strings.Contains(strings.ReplaceAll(ics, "\r\n", "|"), "\n") {
		t.Fatal("lines must be CRLF separated")
	}
}

func TestBuildICSStatusesAndDecorations(t *testing.T) {
	group := models.Appointment{
		ID:              uuid.New(),
		DateTime:        mustDate(t, "2026-09-07T10:00:00Z"),
		DurationMinutes: 60,
		Status:          models.AppointmentPending,
		SessionType:     models.SessionScheduled,
		IsGroup:         true,
	}
	makeup := models.Appointment{
		ID:              uuid.New(),
		DateTime:        mustDate(t, "2026-09-08T10:00:00Z"),
		DurationMinutes: 60,
		Status:          models.AppointmentCancelled,
		SessionType:     models.SessionMakeup,
	}

	ics := BuildICS([]models.Appointment{group, makeup}, map[string]int{
		group.ID.String(): 4,
	})

	if !strings.Contains(ics, "SUMMARY:Training session (group\\, 4 participants)") {
		t.Fatalf("expected group participant count in summary:\n%s", ics)
	}
	if !strings.Contains(ics, "STATUS:TENTATIVE") {
		t.Fatal("pending session should render TENTATIVE")
	}
	if !strings.Contains(ics, "STATUS:CANCELLED") {
		t.Fatal("cancelled session should render CANCELLED")
	}
	if !strings.Contains(ics, "(makeup)") {
		t.Fatal("makeup session should be marked in the summary")
	}
}

func TestBuildICSEmpty(t *testing.T) {
	ics := BuildICS(nil, nil)
	if strings.Contains(ics, "BEGIN:VEVENT") {
		t.Fatal("empty schedule must not contain events")
	}
	if !strings.Contains(ics, "PRODID:") {
		t.Fatal("calendar header missing")
	}
}
