package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCreateGroupSessionValidation(t *testing.T) {
	svc := NewGroupService(nil, nil, nil, nil)
	start := time.Date(2026, 9, 7, 18, 0, 0, 0, time.UTC)
	limit := 2
	student := uuid.New()

	cases := []struct {
		name  string
		input CreateGroupSessionInput
	}{
		{"empty roster", CreateGroupSessionInput{
			DateTime:        start,
			DurationMinutes: 60,
		}},
		{"zero duration", CreateGroupSessionInput{
			DateTime:     start,
			Participants: []GroupParticipantInput{{StudentID: uuid.New()}},
		}},
		{"roster over limit", CreateGroupSessionInput{
			DateTime:        start,
			DurationMinutes: 60,
			MaxParticipants: &limit,
			Participants: []GroupParticipantInput{
				{StudentID: uuid.New()}, {StudentID: uuid.New()}, {StudentID: uuid.New()},
			},
		}},
		{"duplicate participant", CreateGroupSessionInput{
			DateTime:        start,
			DurationMinutes: 60,
			Participants: []GroupParticipantInput{
				{StudentID: student}, {StudentID: student},
			},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateGroupSession(context.Background(), uuid.New(), tc.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateGroupSessionRejectsNonPositiveLimit(t *testing.T) {
	svc := NewGroupService(nil, nil, nil, nil)
	limit := 0
	_, err := svc.CreateGroupSession(context.Background(), uuid.New(), CreateGroupSessionInput{
		DateTime:        time.Date(2026, 9, 7, 18, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		MaxParticipants: &limit,
		Participants:    []GroupParticipantInput{{StudentID: uuid.New()}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero limit, got %v", err)
	}
}
