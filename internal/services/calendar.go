package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/repository"
)

// CalendarService exports appointments as iCalendar documents.
type CalendarService struct {
	appointmentRepo *repository.AppointmentRepository
	participantRepo *repository.ParticipantRepository
}

func NewCalendarService(
	appointmentRepo *repository.AppointmentRepository,
	participantRepo *repository.ParticipantRepository,
) *CalendarService {
	return &CalendarService{
		appointmentRepo: appointmentRepo,
		participantRepo: participantRepo,
	}
}

// ExportAppointment renders a single appointment the actor is part of.
func (s *CalendarService) ExportAppointment(
	ctx context.Context,
	actorID uuid.UUID,
	id uuid.UUID,
) (string, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if !appointment.IsParty(actorID) {
		member, err := s.isParticipant(ctx, id, actorID)
		if err != nil {
			return "", err
		}
		if !member {
			return "", ErrForbidden
		}
	}

	counts, err := s.participantCounts(ctx, []models.Appointment{*appointment})
	if err != nil {
		return "", err
	}
	return BuildICS([]models.Appointment{*appointment}, counts), nil
}

// ExportRange renders the actor's appointments between from and to.
func (s *CalendarService) ExportRange(
	ctx context.Context,
	actorID uuid.UUID,
	asTrainer bool,
	from, to time.Time,
) (string, error) {
	if !to.After(from) {
		return "", ErrInvalidInput
	}
	appointments, err := s.appointmentRepo.List(ctx, repository.AppointmentListFilter{
		ActorID:   actorID,
		AsTrainer: asTrainer,
		From:      &from,
		To:        &to,
	})
	if err != nil {
		return "", err
	}
	counts, err := s.participantCounts(ctx, appointments)
	if err != nil {
		return "", err
	}
	return BuildICS(appointments, counts), nil
}

func (s *CalendarService) isParticipant(
	ctx context.Context,
	appointmentID, studentID uuid.UUID,
) (bool, error) {
	_, err := s.participantRepo.Get(ctx, appointmentID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *CalendarService) participantCounts(
	ctx context.Context,
	appointments []models.Appointment,
) (map[string]int, error) {
	counts := make(map[string]int)
	for i := range appointments {
		if !appointments[i].IsGroup {
			continue
		}
		count, err := s.participantRepo.CountByAppointment(ctx, appointments[i].ID)
		if err != nil {
			return nil, err
		}
		counts[appointments[i].ID.String()] = count
	}
	return counts, nil
}

const icsTimeLayout = "20060102T150405Z"

// BuildICS renders appointments as an iCalendar document. Group
// sessions carry their participant count in the summary.
func BuildICS(appointments []models.Appointment, participantCounts map[string]int) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//TrainerSchedule//Schedule Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}

	for i := range appointments {
		a := &appointments[i]

		summary := "Training session"
		if a.WorkoutType != nil && *a.WorkoutType != "" {
			summary = *a.WorkoutType
		}
		if a.IsGroup {
			count := participantCounts[a.ID.String()]
			summary = fmt.Sprintf("%s (group, %d participants)", summary, count)
		}
		if a.SessionType == models.SessionMakeup {
			summary = summary + " (makeup)"
		}

		description := ""
		if a.Notes != nil {
			description = *a.Notes
		}

		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+a.ID.String()+"@trainerschedule",
			"DTSTART:"+a.DateTime.UTC().Format(icsTimeLayout),
			"DTEND:"+a.EndTime().UTC().Format(icsTimeLayout),
			"SUMMARY:"+escapeICS(summary),
			"LOCATION:",
			"DESCRIPTION:"+escapeICS(description),
			"STATUS:"+icsStatus(a.Status),
			"END:VEVENT",
		)
	}

	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

func icsStatus(status string) string {
	switch status {
	case models.AppointmentConfirmed, models.AppointmentCompleted:
		return "CONFIRMED"
	case models.AppointmentCancelled:
		return "CANCELLED"
	default:
		return "TENTATIVE"
	}
}

func escapeICS(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return replacer.Replace(s)
}
