package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/saeid-a/TrainerScheduleBack/internal/models"
	"github.com/saeid-a/TrainerScheduleBack/internal/repository"
)

const reliabilityWindowDays = 90

// AnalyticsService aggregates schedule and attendance figures. All
// aggregation happens in memory over the range query result.
type AnalyticsService struct {
	appointmentRepo *repository.AppointmentRepository
	now             func() time.Time
}

func NewAnalyticsService(appointmentRepo *repository.AppointmentRepository) *AnalyticsService {
	return &AnalyticsService{appointmentRepo: appointmentRepo, now: time.Now}
}

func (s *AnalyticsService) ScheduleAnalytics(
	ctx context.Context,
	trainerID uuid.UUID,
	from, to time.Time,
) (*models.ScheduleAnalytics, error) {
	if !to.After(from) {
		return nil, ErrInvalidInput
	}
	appointments, err := s.appointmentRepo.ListForRange(ctx, trainerID, from, to)
	if err != nil {
		return nil, err
	}
	return computeScheduleAnalytics(appointments), nil
}

func computeScheduleAnalytics(appointments []models.Appointment) *models.ScheduleAnalytics {
	result := &models.ScheduleAnalytics{
		TotalSessions: len(appointments),
		ByHour:        make(map[int]int),
	}
	perStudent := make(map[uuid.UUID]*models.StudentSessionCount)

	for i := range appointments {
		a := &appointments[i]
		switch a.Status {
		case models.AppointmentPending:
			result.Pending++
		case models.AppointmentConfirmed:
			result.Confirmed++
		case models.AppointmentCompleted:
			result.Completed++
		case models.AppointmentCancelled:
			result.Cancelled++
		}
		switch a.AttendanceStatus {
		case models.AttendanceAttended:
			result.Attended++
		case models.AttendanceMissed:
			result.Missed++
		case models.AttendanceLateCancelled:
			result.LateCancelled++
		}

		result.ByDayOfWeek[weekdayIndex(a.DateTime)]++
		result.ByHour[a.DateTime.Hour()]++

		if a.StudentID != nil {
			row, ok := perStudent[*a.StudentID]
			if !ok {
				row = &models.StudentSessionCount{StudentID: *a.StudentID}
				perStudent[*a.StudentID] = row
			}
			row.Sessions++
			if a.AttendanceStatus == models.AttendanceAttended {
				row.Attended++
			}
		}
	}

	resolved := result.Attended + result.Missed + result.LateCancelled
	if resolved > 0 {
		result.AttendanceRate = float64(result.Attended) / float64(resolved)
	}

	result.ByStudent = make([]models.StudentSessionCount, 0, len(perStudent))
	for _, row := range perStudent {
		result.ByStudent = append(result.ByStudent, *row)
	}
	sort.Slice(result.ByStudent, func(i, j int) bool {
		if result.ByStudent[i].Sessions != result.ByStudent[j].Sessions {
			return result.ByStudent[i].Sessions > result.ByStudent[j].Sessions
		}
		return result.ByStudent[i].StudentID.String() < result.ByStudent[j].StudentID.String()
	})
	return result
}

// StudentReliability scores a student's attendance over the trailing
// window: the score is attended over resolved sessions, the trend
// compares the older half of the window against the newer half.
func (s *AnalyticsService) StudentReliability(
	ctx context.Context,
	studentID uuid.UUID,
) (*models.StudentReliability, error) {
	now := s.now()
	from := now.AddDate(0, 0, -reliabilityWindowDays)
	appointments, err := s.appointmentRepo.List(ctx, repository.AppointmentListFilter{
		ActorID: studentID,
		From:    &from,
		To:      &now,
	})
	if err != nil {
		return nil, err
	}
	return computeReliability(studentID, appointments, now), nil
}

func computeReliability(
	studentID uuid.UUID,
	appointments []models.Appointment,
	now time.Time,
) *models.StudentReliability {
	result := &models.StudentReliability{
		StudentID:  studentID,
		WindowDays: reliabilityWindowDays,
		Rating:     models.ReliabilityLow,
		Trend:      models.TrendSteady,
	}

	midpoint := now.AddDate(0, 0, -reliabilityWindowDays/2)
	var olderAttended, olderResolved, newerAttended, newerResolved int

	for i := range appointments {
		a := &appointments[i]
		resolved := false
		switch a.AttendanceStatus {
		case models.AttendanceAttended:
			result.Attended++
			resolved = true
		case models.AttendanceMissed:
			result.Missed++
			resolved = true
		case models.AttendanceLateCancelled:
			result.LateCancelled++
			resolved = true
		}
		result.TotalSessions++
		if !resolved {
			continue
		}
		if a.DateTime.Before(midpoint) {
			olderResolved++
			if a.AttendanceStatus == models.AttendanceAttended {
				olderAttended++
			}
		} else {
			newerResolved++
			if a.AttendanceStatus == models.AttendanceAttended {
				newerAttended++
			}
		}
	}

	resolved := result.Attended + result.Missed + result.LateCancelled
	if resolved == 0 {
		return result
	}
	result.Score = float64(result.Attended) / float64(resolved)

	switch {
	case result.Score >= 0.85:
		result.Rating = models.ReliabilityHigh
	case result.Score >= 0.6:
		result.Rating = models.ReliabilityMedium
	}

	if olderResolved > 0 && newerResolved > 0 {
		olderRate := float64(olderAttended) / float64(olderResolved)
		newerRate := float64(newerAttended) / float64(newerResolved)
		switch {
		case newerRate > olderRate+0.1:
			result.Trend = models.TrendImproving
		case newerRate < olderRate-0.1:
			result.Trend = models.TrendDeclining
		}
	}
	return result
}
