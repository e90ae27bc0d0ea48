package models

import "github.com/google/uuid"

// StudentSessionCount is one row of the per-student breakdown.
type StudentSessionCount struct {
	StudentID uuid.UUID `json:"student_id"`
	Sessions  int       `json:"sessions"`
	Attended  int       `json:"attended"`
}

// ScheduleAnalytics summarises a trainer's schedule over a date range.
type ScheduleAnalytics struct {
	TotalSessions  int                   `json:"total_sessions"`
	Pending        int                   `json:"pending"`
	Confirmed      int                   `json:"confirmed"`
	Completed      int                   `json:"completed"`
	Cancelled      int                   `json:"cancelled"`
	Attended       int                   `json:"attended"`
	Missed         int                   `json:"missed"`
	LateCancelled  int                   `json:"late_cancelled"`
	AttendanceRate float64               `json:"attendance_rate"`
	ByDayOfWeek    [7]int                `json:"by_day_of_week"`
	ByHour         map[int]int           `json:"by_hour"`
	ByStudent      []StudentSessionCount `json:"by_student"`
}

// Reliability ratings and trends.
const (
	ReliabilityHigh   = "high"
	ReliabilityMedium = "medium"
	ReliabilityLow    = "low"

	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendSteady    = "steady"
)

// StudentReliability scores a student's recent attendance record.
type StudentReliability struct {
	StudentID     uuid.UUID `json:"student_id"`
	WindowDays    int       `json:"window_days"`
	TotalSessions int       `json:"total_sessions"`
	Attended      int       `json:"attended"`
	Missed        int       `json:"missed"`
	LateCancelled int       `json:"late_cancelled"`
	Score         float64   `json:"score"`
	Rating        string    `json:"rating"`
	Trend         string    `json:"trend"`
}
